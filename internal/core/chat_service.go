package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"gwi.com/chat-persistence/internal/store"
)

const maxFallbackTitleLen = 40

// ChatService mediates between the HTTP handlers and the store, and owns
// chat title generation.
type ChatService struct {
	store  *store.Store
	titles *TitleService // nil when title generation is disabled
}

func NewChatService(s *store.Store, titles *TitleService) *ChatService {
	return &ChatService{store: s, titles: titles}
}

// CreateChat saves a chat and, when provided, its first message. A missing
// id is generated; a missing title is derived from the first message,
// preferring the title service when it is available.
func (s *ChatService) CreateChat(ctx context.Context, userID, id, title string, firstMessage json.RawMessage) (*store.Chat, error) {
	if id == "" {
		id = store.NewID()
	}
	if title == "" {
		title = s.titleFor(ctx, firstMessage)
	}

	chat, err := s.store.SaveChat(ctx, id, userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	if len(firstMessage) > 0 {
		msg := store.Message{ChatID: chat.ID, Role: "user", Content: firstMessage}
		if err := s.store.SaveMessages(ctx, []store.Message{msg}); err != nil {
			// The chat exists either way; an empty chat beats a failed create.
			log.Printf("Failed to store first message for chat %s: %v", chat.ID, err)
		}
	}
	return chat, nil
}

// titleFor asks the title service for a name and falls back to truncating
// the first message.
func (s *ChatService) titleFor(ctx context.Context, firstMessage json.RawMessage) string {
	basis := messageText(firstMessage)
	if basis == "" {
		return "New chat"
	}
	if s.titles != nil {
		title, err := s.titles.GenerateTitle(ctx, basis)
		if err == nil {
			return title
		}
		log.Printf("Title generation failed, falling back to excerpt: %v", err)
	}
	if len(basis) > maxFallbackTitleLen {
		basis = strings.TrimSpace(basis[:maxFallbackTitleLen])
	}
	return basis
}

// messageText extracts a plain-text basis from an opaque message payload.
// String payloads are unquoted; anything else is used verbatim.
func messageText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(content))
}

func (s *ChatService) GetChats(ctx context.Context, userID string) ([]store.Chat, error) {
	return s.store.GetChatsByUserID(ctx, userID)
}

// GetChatDetails returns the chat and its messages, or (nil, nil, nil) when
// the chat does not exist.
func (s *ChatService) GetChatDetails(ctx context.Context, chatID string) (*store.Chat, []store.Message, error) {
	chat, err := s.store.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return nil, nil, nil
	}
	messages, err := s.store.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages for chat: %w", err)
	}
	return chat, messages, nil
}

func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	return s.store.DeleteChat(ctx, chatID)
}

func (s *ChatService) UpdateVisibility(ctx context.Context, chatID string, visibility store.Visibility) error {
	return s.store.UpdateChatVisibility(ctx, chatID, visibility)
}

// PostMessages appends a batch of messages to the chat.
func (s *ChatService) PostMessages(ctx context.Context, chatID string, messages []store.Message) error {
	for i := range messages {
		messages[i].ChatID = chatID
	}
	return s.store.SaveMessages(ctx, messages)
}

// TrimMessagesAfter removes the chat's messages newer than the timestamp;
// messages at or before it survive.
func (s *ChatService) TrimMessagesAfter(ctx context.Context, chatID string, timestamp time.Time) error {
	return s.store.DeleteMessagesAfterTimestamp(ctx, chatID, timestamp)
}

func (s *ChatService) GetVotes(ctx context.Context, chatID string) ([]store.Vote, error) {
	return s.store.GetVotesByChatID(ctx, chatID)
}

func (s *ChatService) VoteMessage(ctx context.Context, chatID, messageID string, voteType store.VoteType) error {
	return s.store.VoteMessage(ctx, chatID, messageID, voteType)
}
