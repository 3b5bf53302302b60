// Package auth covers credentials: password hashing, session tokens, the
// credentials authenticator, and the delegated OAuth login.
package auth

import (
	"context"
	"log"
	"net/mail"

	"gwi.com/chat-persistence/internal/store"
)

const minPasswordLength = 6

// Authenticator resolves an (email, password) pair to a user.
type Authenticator struct {
	store *store.Store
}

func NewAuthenticator(s *store.Store) *Authenticator {
	return &Authenticator{store: s}
}

// validCredentials rejects malformed input before it reaches the store,
// which performs no validation of its own.
func validCredentials(email, password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Authenticate returns the user for the credential pair, or nil.
//
// When no user with the email exists, one is created on the spot with the
// supplied password. Auto-registration on a first "login" attempt is
// intended behavior carried over from the product, not an accident; do not
// remove it without a product decision.
//
// Store trouble is logged and reported as "no user", never propagated.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validCredentials(email, password) {
		return nil, nil
	}

	user, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		log.Printf("auth: lookup for %s failed: %v", email, err)
		return nil, nil
	}

	if user == nil {
		hash, err := HashPassword(password)
		if err != nil {
			log.Printf("auth: failed to hash password for %s: %v", email, err)
			return nil, nil
		}
		created, err := a.store.CreateUser(ctx, email, hash)
		if err != nil {
			log.Printf("auth: failed to auto-register %s: %v", email, err)
			return nil, nil
		}
		return created, nil
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}
