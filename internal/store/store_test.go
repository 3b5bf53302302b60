package store

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(NewMemorySubstrate())
}

func TestSaveChatDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	chat, err := s.SaveChat(ctx, "chat-1", "user-1", "First chat")
	require.NoError(t, err)
	require.Equal(t, VisibilityPrivate, chat.Visibility)
	require.False(t, chat.CreatedAt.IsZero())

	got, err := s.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, VisibilityPrivate, got.Visibility)
	require.False(t, got.CreatedAt.IsZero())
}

func TestSaveChatOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveChat(ctx, "chat-1", "user-1", "Old title")
	require.NoError(t, err)
	require.NoError(t, s.UpdateChatVisibility(ctx, "chat-1", VisibilityPublic))

	_, err = s.SaveChat(ctx, "chat-1", "user-2", "New title")
	require.NoError(t, err)

	got, err := s.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, "New title", got.Title)
	require.Equal(t, "user-2", got.UserID)
	// Overwrite resets visibility to the private default.
	require.Equal(t, VisibilityPrivate, got.Visibility)
}

func TestGetChatsByUserID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"a", "b"} {
		_, err := s.SaveChat(ctx, id, "user-1", "chat "+id)
		require.NoError(t, err)
	}
	_, err := s.SaveChat(ctx, "c", "user-2", "someone else's")
	require.NoError(t, err)

	chats, err := s.GetChatsByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	for _, chat := range chats {
		require.Equal(t, "user-1", chat.UserID)
	}
}

func TestUpdateChatVisibility(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveChat(ctx, "chat-1", "user-1", "t")
	require.NoError(t, err)

	require.NoError(t, s.UpdateChatVisibility(ctx, "chat-1", VisibilityPublic))
	got, err := s.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, VisibilityPublic, got.Visibility)

	// Absent chat is a no-op, not an error.
	require.NoError(t, s.UpdateChatVisibility(ctx, "no-such-chat", VisibilityPublic))
}

func TestDeleteChatCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveChat(ctx, "chat-1", "user-1", "t")
	require.NoError(t, err)
	require.NoError(t, s.SaveMessages(ctx, []Message{{ChatID: "chat-1"}, {ChatID: "chat-1"}}))
	require.NoError(t, s.VoteMessage(ctx, "chat-1", "msg-1", VoteUp))

	require.NoError(t, s.DeleteChat(ctx, "chat-1"))

	chat, err := s.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	require.Nil(t, chat)

	messages, err := s.GetMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Empty(t, messages)

	votes, err := s.GetVotesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Empty(t, votes)
}

func TestSaveMessagesDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	batch := []Message{
		{ChatID: "chat-1", Content: json.RawMessage(`"hello"`)},
		{ChatID: "chat-1", Role: "assistant"},
		{Content: json.RawMessage(`"no chat id, dropped"`)},
	}
	require.NoError(t, s.SaveMessages(ctx, batch))

	messages, err := s.GetMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	first, second := messages[0], messages[1]
	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, second.ID)
	require.NotEqual(t, first.ID, second.ID)
	require.JSONEq(t, `"hello"`, string(first.Content))
	require.Equal(t, "user", first.Role)
	require.Equal(t, "assistant", second.Role)
	require.JSONEq(t, `""`, string(second.Content))
	require.False(t, first.CreatedAt.IsZero())
	require.False(t, second.CreatedAt.IsZero())
}

func TestSaveMessagesPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var batch []Message
	for i := 0; i < 5; i++ {
		batch = append(batch, Message{ChatID: "chat-1", Content: json.RawMessage(`"m"`)})
	}
	require.NoError(t, s.SaveMessages(ctx, batch))
	require.NoError(t, s.SaveMessages(ctx, []Message{{ChatID: "chat-1", Role: "assistant"}}))

	messages, err := s.GetMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 6)
	require.Equal(t, "assistant", messages[5].Role)
}

func TestGetMessageByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveMessages(ctx, []Message{
		{ID: "m1", ChatID: "chat-1"},
		{ID: "m2", ChatID: "chat-2"},
	}))

	msg, err := s.GetMessageByID(ctx, "m2")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "chat-2", msg.ChatID)

	missing, err := s.GetMessageByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDeleteMessagesAfterTimestampBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().Truncate(time.Second)
	t1, t2, t3 := base, base.Add(time.Minute), base.Add(2*time.Minute)
	require.NoError(t, s.SaveMessages(ctx, []Message{
		{ID: "m1", ChatID: "chat-1", CreatedAt: t1},
		{ID: "m2", ChatID: "chat-1", CreatedAt: t2},
		{ID: "m3", ChatID: "chat-1", CreatedAt: t3},
	}))

	require.NoError(t, s.DeleteMessagesAfterTimestamp(ctx, "chat-1", t2))

	messages, err := s.GetMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "m1", messages[0].ID)
	require.Equal(t, "m2", messages[1].ID)
}

func TestVoteMessageUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.VoteMessage(ctx, "chat-1", "m1", VoteUp))
	require.NoError(t, s.VoteMessage(ctx, "chat-1", "m1", VoteUp))

	votes, err := s.GetVotesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	require.True(t, votes[0].IsUpvoted)

	require.NoError(t, s.VoteMessage(ctx, "chat-1", "m1", VoteDown))
	votes, err = s.GetVotesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	require.False(t, votes[0].IsUpvoted)

	// A second message gets its own vote record.
	require.NoError(t, s.VoteMessage(ctx, "chat-1", "m2", VoteUp))
	votes, err = s.GetVotesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, votes, 2)
}

func TestDocumentVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveDocument(ctx, "doc-1", "v1", "first", DocumentKindText, "user-1")
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, "doc-1", "v2", "second", DocumentKindText, "user-1")
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, "doc-2", "other", "", DocumentKindCode, "user-1")
	require.NoError(t, err)

	versions, err := s.GetDocumentsByID(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	one, err := s.GetDocumentByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, one)
	require.Equal(t, "doc-1", one.ID)
}

func TestDeleteDocumentsAfterTimestamp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	early, err := s.SaveDocument(ctx, "doc-1", "early", "", DocumentKindText, "user-1")
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, "doc-1", "late", "", DocumentKindText, "user-1")
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, "doc-2", "unrelated", "", DocumentKindText, "user-1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteDocumentsAfterTimestamp(ctx, "doc-1", early.CreatedAt))

	versions, err := s.GetDocumentsByID(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, "early", versions[0].Title)

	// Other ids are untouched.
	other, err := s.GetDocumentsByID(ctx, "doc-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveSuggestions(ctx, []Suggestion{
		{ID: "s1", DocumentID: "doc-1", UserID: "user-1", OriginalText: "teh", SuggestedText: "the"},
		{ID: "s2", DocumentID: "doc-1", UserID: "user-2"},
		{ID: "s3", DocumentID: "doc-2", UserID: "user-1"},
	}))

	matches, err := s.GetSuggestionsByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	none, err := s.GetSuggestionsByDocumentID(ctx, "doc-3")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	missing, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)

	user, err := s.CreateUser(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	found, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.ID, found.ID)
}

func TestCancelledContextFailsFast(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetChatByID(ctx, "chat-1")
	require.Error(t, err)
	require.NoError(t, s.write(context.Background(), func(*Snapshot) bool { return false }))
}
