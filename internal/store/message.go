package store

import (
	"context"
	"time"
)

// GetMessagesByChatID returns the chat's messages in insertion order, empty
// if there are none.
func (s *Store) GetMessagesByChatID(ctx context.Context, chatID string) ([]Message, error) {
	var messages []Message
	err := s.read(ctx, func(snap *Snapshot) {
		messages = append(messages, snap.Messages[chatID]...)
	})
	return messages, err
}

// GetMessageByID scans every chat's list for the message. O(total messages).
func (s *Store) GetMessageByID(ctx context.Context, id string) (*Message, error) {
	var found *Message
	err := s.read(ctx, func(snap *Snapshot) {
		for _, list := range snap.Messages {
			for i := range list {
				if list[i].ID == id {
					msg := list[i]
					found = &msg
					return
				}
			}
		}
	})
	return found, err
}

// SaveMessages appends a batch of messages to their chats, preserving input
// order. Missing fields are filled in: id generated, role "user", content
// empty, createdAt now. Entries without a chat id are silently dropped.
func (s *Store) SaveMessages(ctx context.Context, messages []Message) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		for _, msg := range messages {
			if msg.ChatID == "" {
				continue
			}
			if msg.ID == "" {
				msg.ID = NewID()
			}
			if msg.Role == "" {
				msg.Role = "user"
			}
			if msg.Content == nil {
				msg.Content = []byte(`""`)
			}
			if msg.CreatedAt.IsZero() {
				msg.CreatedAt = time.Now()
			}
			snap.Messages[msg.ChatID] = append(snap.Messages[msg.ChatID], msg)
		}
		return true
	})
}

// DeleteMessagesAfterTimestamp removes the chat's messages created strictly
// after the timestamp; messages with createdAt <= timestamp survive.
func (s *Store) DeleteMessagesAfterTimestamp(ctx context.Context, chatID string, timestamp time.Time) error {
	return s.write(ctx, func(snap *Snapshot) bool {
		list, ok := snap.Messages[chatID]
		if !ok {
			return false
		}
		kept := list[:0]
		for _, msg := range list {
			if !msg.CreatedAt.After(timestamp) {
				kept = append(kept, msg)
			}
		}
		snap.Messages[chatID] = kept
		return true
	})
}
