package core

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"gwi.com/chat-persistence/internal/store"
)

func newTestService(t *testing.T) (*ChatService, *store.Store) {
	t.Helper()
	s := store.New(store.NewMemorySubstrate())
	return NewChatService(s, nil), s
}

func TestCreateChatGeneratesIDAndTitle(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "user-1", "", "", json.RawMessage(`"What is the weather like in Athens today?"`))
	require.NoError(t, err)
	require.NotEmpty(t, chat.ID)
	require.Equal(t, store.VisibilityPrivate, chat.Visibility)

	// Without a title service the title is a truncated excerpt of the
	// first message.
	require.NotEmpty(t, chat.Title)
	require.LessOrEqual(t, len(chat.Title), maxFallbackTitleLen)
	require.True(t, strings.HasPrefix("What is the weather like in Athens today?", chat.Title))

	messages, err := s.GetMessagesByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "user", messages[0].Role)
}

func TestCreateChatKeepsProvidedIDAndTitle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "user-1", "chat-42", "My title", nil)
	require.NoError(t, err)
	require.Equal(t, "chat-42", chat.ID)
	require.Equal(t, "My title", chat.Title)

	got, messages, err := svc.GetChatDetails(ctx, "chat-42")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, messages)
}

func TestCreateChatWithoutMessageUsesPlaceholderTitle(t *testing.T) {
	svc, _ := newTestService(t)

	chat, err := svc.CreateChat(context.Background(), "user-1", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, "New chat", chat.Title)
}

func TestGetChatDetailsMissing(t *testing.T) {
	svc, _ := newTestService(t)

	chat, messages, err := svc.GetChatDetails(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, chat)
	require.Nil(t, messages)
}

func TestMessageText(t *testing.T) {
	require.Equal(t, "hello", messageText(json.RawMessage(`"hello"`)))
	require.Equal(t, `{"parts":["hi"]}`, messageText(json.RawMessage(`{"parts":["hi"]}`)))
	require.Equal(t, "", messageText(nil))
}

func TestPostMessagesStampsChatID(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	err := svc.PostMessages(ctx, "chat-1", []store.Message{
		{Content: json.RawMessage(`"a"`)},
		{ChatID: "some-other-chat", Content: json.RawMessage(`"b"`)},
	})
	require.NoError(t, err)

	messages, err := s.GetMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
}
