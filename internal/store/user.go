package store

import "context"

// GetUserByEmail returns the first user with the given email, or nil.
// Email uniqueness is not enforced here; callers that care must check
// before creating.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var found *User
	err := s.read(ctx, func(snap *Snapshot) {
		for _, user := range snap.Users {
			if user.Email == email {
				found = user
				return
			}
		}
	})
	return found, err
}

// CreateUser inserts a new user with a generated id. No uniqueness check is
// performed; the authenticator looks up the email first.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           NewID(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := s.write(ctx, func(snap *Snapshot) bool {
		snap.Users[user.ID] = user
		return true
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
