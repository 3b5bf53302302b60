package store

import (
	"context"
	"time"
)

// GetChatByID returns the chat with the given id, or nil.
func (s *Store) GetChatByID(ctx context.Context, id string) (*Chat, error) {
	var found *Chat
	err := s.read(ctx, func(snap *Snapshot) {
		found = snap.Chats[id]
	})
	return found, err
}

// GetChatsByUserID returns every chat owned by the user, in no particular
// order.
func (s *Store) GetChatsByUserID(ctx context.Context, userID string) ([]Chat, error) {
	var chats []Chat
	err := s.read(ctx, func(snap *Snapshot) {
		for _, chat := range snap.Chats {
			if chat.UserID == userID {
				chats = append(chats, *chat)
			}
		}
	})
	return chats, err
}

// SaveChat writes a chat under the given id, overwriting any existing chat
// with that id. Visibility always starts private and CreatedAt is set to
// now, even on overwrite.
func (s *Store) SaveChat(ctx context.Context, id, userID, title string) (*Chat, error) {
	chat := &Chat{
		ID:         id,
		UserID:     userID,
		Title:      title,
		CreatedAt:  time.Now(),
		Visibility: VisibilityPrivate,
	}
	err := s.write(ctx, func(snap *Snapshot) bool {
		snap.Chats[id] = chat
		return true
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// UpdateChatVisibility flips a chat between public and private. A missing
// chat is a no-op, not an error.
func (s *Store) UpdateChatVisibility(ctx context.Context, chatID string, visibility Visibility) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		chat, ok := snap.Chats[chatID]
		if !ok {
			return false
		}
		chat.Visibility = visibility
		return true
	})
}

// DeleteChat removes the chat together with its message and vote lists.
// Dependent records keyed under other ids are left alone.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		delete(snap.Chats, id)
		delete(snap.Messages, id)
		delete(snap.Votes, id)
		return true
	})
}
