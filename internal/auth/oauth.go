package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"gwi.com/chat-persistence/internal/store"
)

// WeChat's OAuth endpoints. WeChat speaks the standard code flow but names
// the client credential parameters appid/secret instead of
// client_id/client_secret, so those are set per request below.
var wechatEndpoint = oauth2.Endpoint{
	AuthURL:  "https://open.weixin.qq.com/connect/oauth2/authorize",
	TokenURL: "https://api.weixin.qq.com/sns/oauth2/access_token",
}

const wechatUserInfoURL = "https://api.weixin.qq.com/sns/userinfo"

// Profile is the subset of the identity provider's userinfo response the
// service cares about.
type Profile struct {
	OpenID    string `json:"openid"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"headimgurl"`
}

// Email synthesizes an address for the account: the provider exposes no
// email, so the openid stands in for the local part.
func (p Profile) Email() string {
	return p.OpenID + "@wechat.com"
}

// OAuthProvider drives the delegated login dance: authorize redirect, code
// exchange, userinfo fetch, and mapping the profile onto a stored user.
type OAuthProvider struct {
	conf   *oauth2.Config
	secret string
	store  *store.Store
	client *http.Client
}

func NewOAuthProvider(appID, appSecret, redirectURL string, s *store.Store) *OAuthProvider {
	return &OAuthProvider{
		conf: &oauth2.Config{
			ClientID:    appID,
			RedirectURL: redirectURL,
			Scopes:      []string{"snsapi_userinfo"},
			Endpoint:    wechatEndpoint,
		},
		secret: appSecret,
		store:  s,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether provider credentials were configured.
func (p *OAuthProvider) Enabled() bool {
	return p.conf.ClientID != "" && p.secret != ""
}

// AuthorizeURL is where the caller should redirect the user's browser.
func (p *OAuthProvider) AuthorizeURL(state string) string {
	return p.conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("appid", p.conf.ClientID),
	)
}

// Exchange trades the callback code for an access token. The provider
// returns the user's openid alongside the token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := p.conf.Exchange(ctx, code,
		oauth2.SetAuthURLParam("appid", p.conf.ClientID),
		oauth2.SetAuthURLParam("secret", p.secret),
	)
	if err != nil {
		return nil, "", fmt.Errorf("token exchange failed: %w", err)
	}
	openID, _ := token.Extra("openid").(string)
	if openID == "" {
		return nil, "", fmt.Errorf("token response carries no openid")
	}
	return token, openID, nil
}

// FetchProfile calls the provider's userinfo endpoint.
func (p *OAuthProvider) FetchProfile(ctx context.Context, token *oauth2.Token, openID string) (*Profile, error) {
	q := url.Values{}
	q.Set("access_token", token.AccessToken)
	q.Set("openid", openID)
	q.Set("lang", "zh_CN")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wechatUserInfoURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	if profile.OpenID == "" {
		return nil, fmt.Errorf("userinfo response carries no openid")
	}
	return &profile, nil
}

// ResolveUser maps a provider profile onto a stored user, creating the
// account on first login. The local password is random; these accounts
// only ever sign in through the provider.
func (p *OAuthProvider) ResolveUser(ctx context.Context, profile *Profile) (*store.User, error) {
	user, err := p.store.GetUserByEmail(ctx, profile.Email())
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	hash, err := HashPassword(store.NewID())
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}
	return p.store.CreateUser(ctx, profile.Email(), hash)
}

// Login runs the whole callback side of the dance: code -> token ->
// profile -> user.
func (p *OAuthProvider) Login(ctx context.Context, code string) (*store.User, error) {
	token, openID, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := p.FetchProfile(ctx, token, openID)
	if err != nil {
		return nil, err
	}
	return p.ResolveUser(ctx, profile)
}
