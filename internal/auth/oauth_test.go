package auth

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"gwi.com/chat-persistence/internal/store"
)

func TestAuthorizeURL(t *testing.T) {
	p := NewOAuthProvider("app-id", "app-secret", "http://localhost:8080/api/auth/callback/wechat", nil)
	require.True(t, p.Enabled())

	raw := p.AuthorizeURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "open.weixin.qq.com", u.Host)

	q := u.Query()
	require.Equal(t, "app-id", q.Get("appid"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "snsapi_userinfo", q.Get("scope"))
	require.Equal(t, "state-123", q.Get("state"))
	require.Equal(t, "http://localhost:8080/api/auth/callback/wechat", q.Get("redirect_uri"))
}

func TestProviderDisabledWithoutCredentials(t *testing.T) {
	p := NewOAuthProvider("", "", "http://localhost:8080", nil)
	require.False(t, p.Enabled())
}

func TestProfileEmail(t *testing.T) {
	p := Profile{OpenID: "openid-42", Nickname: "nick"}
	require.Equal(t, "openid-42@wechat.com", p.Email())
}

func TestResolveUserGetOrCreate(t *testing.T) {
	s := store.New(store.NewMemorySubstrate())
	p := NewOAuthProvider("app-id", "app-secret", "http://localhost:8080", s)
	ctx := context.Background()

	profile := &Profile{OpenID: "openid-42"}
	user, err := p.ResolveUser(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, "openid-42@wechat.com", user.Email)

	// Second login maps onto the same account.
	again, err := p.ResolveUser(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
}
