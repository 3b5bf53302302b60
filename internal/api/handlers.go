package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gwi.com/chat-persistence/internal/auth"
	"gwi.com/chat-persistence/internal/core"
	"gwi.com/chat-persistence/internal/store"
)

type APIHandler struct {
	chatService   *core.ChatService
	authenticator *auth.Authenticator
	oauth         *auth.OAuthProvider
	store         *store.Store
}

func NewAPIHandler(cs *core.ChatService, a *auth.Authenticator, oauth *auth.OAuthProvider, s *store.Store) *APIHandler {
	return &APIHandler{
		chatService:   cs,
		authenticator: a,
		oauth:         oauth,
		store:         s,
	}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginHandler resolves credentials to a session token. An unknown email
// registers a new account; see auth.Authenticator.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil || user == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(LoginResponse{Token: token, ID: user.ID, Email: user.Email})
}

// OAuthAuthorizeHandler redirects the browser to the identity provider.
func (h *APIHandler) OAuthAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || !h.oauth.Enabled() {
		http.Error(w, "OAuth login is not configured", http.StatusNotFound)
		return
	}
	state := store.NewID()
	http.Redirect(w, r, h.oauth.AuthorizeURL(state), http.StatusFound)
}

// OAuthCallbackHandler finishes the delegated login: exchanges the code,
// fetches the profile, maps it to a user and issues a session token.
func (h *APIHandler) OAuthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || !h.oauth.Enabled() {
		http.Error(w, "OAuth login is not configured", http.StatusNotFound)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	user, err := h.oauth.Login(r.Context(), code)
	if err != nil {
		log.Printf("OAuth login failed: %v", err)
		http.Error(w, "OAuth login failed", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(LoginResponse{Token: token, ID: user.ID, Email: user.Email})
}

// HistoryHandler lists the caller's chats.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	chats, err := h.chatService.GetChats(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing chats for user %s: %v", userID, err)
		http.Error(w, "Failed to list chats", http.StatusInternalServerError)
		return
	}
	if chats == nil {
		chats = []store.Chat{}
	}
	json.NewEncoder(w).Encode(chats)
}

type CreateChatRequest struct {
	ID           string          `json:"id,omitempty"`
	Title        string          `json:"title,omitempty"`
	FirstMessage json.RawMessage `json:"first_message,omitempty"`
}

func (h *APIHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req CreateChatRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	chat, err := h.chatService.CreateChat(r.Context(), userID, req.ID, req.Title, req.FirstMessage)
	if err != nil {
		log.Printf("Error creating chat for user %s: %v", userID, err)
		http.Error(w, "Failed to create chat", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(chat)
}

type GetChatDetailsResponse struct {
	*store.Chat
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) GetChatDetailsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	chatID := chi.URLParam(r, "chatID")

	chat, messages, err := h.chatService.GetChatDetails(r.Context(), chatID)
	if err != nil {
		log.Printf("Error getting chat details for user %s, chat %s: %v", userID, chatID, err)
		http.Error(w, "Failed to get chat details", http.StatusInternalServerError)
		return
	}
	if chat == nil {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}
	// Private chats are visible to their owner only.
	if chat.Visibility != store.VisibilityPublic && chat.UserID != userID {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}

	json.NewEncoder(w).Encode(GetChatDetailsResponse{Chat: chat, Messages: messages})
}

// requireOwnedChat loads the chat and enforces that the caller owns it.
// Responds and returns nil when that is not the case.
func (h *APIHandler) requireOwnedChat(w http.ResponseWriter, r *http.Request) *store.Chat {
	userID := r.Context().Value("userID").(string)
	chatID := chi.URLParam(r, "chatID")

	chat, err := h.store.GetChatByID(r.Context(), chatID)
	if err != nil {
		log.Printf("Error loading chat %s: %v", chatID, err)
		http.Error(w, "Failed to load chat", http.StatusInternalServerError)
		return nil
	}
	if chat == nil || chat.UserID != userID {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return nil
	}
	return chat
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chat := h.requireOwnedChat(w, r)
	if chat == nil {
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chat.ID); err != nil {
		log.Printf("Error deleting chat %s: %v", chat.ID, err)
		http.Error(w, "Failed to delete chat", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdateVisibilityRequest struct {
	Visibility store.Visibility `json:"visibility"`
}

func (h *APIHandler) UpdateVisibilityHandler(w http.ResponseWriter, r *http.Request) {
	chat := h.requireOwnedChat(w, r)
	if chat == nil {
		return
	}

	var req UpdateVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Visibility != store.VisibilityPublic && req.Visibility != store.VisibilityPrivate {
		http.Error(w, "Visibility must be public or private", http.StatusBadRequest)
		return
	}

	if err := h.chatService.UpdateVisibility(r.Context(), chat.ID, req.Visibility); err != nil {
		log.Printf("Error updating visibility for chat %s: %v", chat.ID, err)
		http.Error(w, "Failed to update visibility", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PostMessagesRequest struct {
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) PostMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chat := h.requireOwnedChat(w, r)
	if chat == nil {
		return
	}

	var req PostMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "Messages cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.chatService.PostMessages(r.Context(), chat.ID, req.Messages); err != nil {
		log.Printf("Error posting messages to chat %s: %v", chat.ID, err)
		http.Error(w, "Failed to post messages", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// TrimMessagesHandler removes messages newer than the "after" timestamp;
// messages at or before it are kept.
func (h *APIHandler) TrimMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chat := h.requireOwnedChat(w, r)
	if chat == nil {
		return
	}

	after := r.URL.Query().Get("after")
	timestamp, err := time.Parse(time.RFC3339, after)
	if err != nil {
		http.Error(w, "Invalid or missing after timestamp", http.StatusBadRequest)
		return
	}

	if err := h.chatService.TrimMessagesAfter(r.Context(), chat.ID, timestamp); err != nil {
		log.Printf("Error trimming messages in chat %s: %v", chat.ID, err)
		http.Error(w, "Failed to trim messages", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetVotesHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	votes, err := h.chatService.GetVotes(r.Context(), chatID)
	if err != nil {
		log.Printf("Error listing votes for chat %s: %v", chatID, err)
		http.Error(w, "Failed to list votes", http.StatusInternalServerError)
		return
	}
	if votes == nil {
		votes = []store.Vote{}
	}
	json.NewEncoder(w).Encode(votes)
}

type VoteRequest struct {
	MessageID string         `json:"message_id"`
	Type      store.VoteType `json:"type"`
}

func (h *APIHandler) VoteHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.MessageID == "" {
		http.Error(w, "message_id is required", http.StatusBadRequest)
		return
	}
	if req.Type != store.VoteUp && req.Type != store.VoteDown {
		http.Error(w, "type must be up or down", http.StatusBadRequest)
		return
	}

	if err := h.chatService.VoteMessage(r.Context(), chatID, req.MessageID, req.Type); err != nil {
		log.Printf("Error voting on message %s in chat %s: %v", req.MessageID, chatID, err)
		http.Error(w, "Failed to record vote", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDocumentHandler returns every version of a document.
func (h *APIHandler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	documents, err := h.store.GetDocumentsByID(r.Context(), id)
	if err != nil {
		log.Printf("Error loading document %s: %v", id, err)
		http.Error(w, "Failed to load document", http.StatusInternalServerError)
		return
	}
	if len(documents) == 0 {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(documents)
}

type SaveDocumentRequest struct {
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Kind    store.DocumentKind `json:"kind"`
}

// SaveDocumentHandler appends a new version of the document.
func (h *APIHandler) SaveDocumentHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	var req SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	switch req.Kind {
	case store.DocumentKindText, store.DocumentKindCode, store.DocumentKindImage, store.DocumentKindSheet:
	default:
		http.Error(w, "kind must be text, code, image or sheet", http.StatusBadRequest)
		return
	}

	doc, err := h.store.SaveDocument(r.Context(), id, req.Title, req.Content, req.Kind, userID)
	if err != nil {
		log.Printf("Error saving document %s for user %s: %v", id, userID, err)
		http.Error(w, "Failed to save document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

// DeleteDocumentHandler drops document versions newer than the timestamp.
func (h *APIHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}
	timestamp, err := time.Parse(time.RFC3339, r.URL.Query().Get("timestamp"))
	if err != nil {
		http.Error(w, "Invalid or missing timestamp", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteDocumentsAfterTimestamp(r.Context(), id, timestamp); err != nil {
		log.Printf("Error deleting versions of document %s: %v", id, err)
		http.Error(w, "Failed to delete document versions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("documentId")
	if documentID == "" {
		http.Error(w, "Missing documentId", http.StatusBadRequest)
		return
	}

	suggestions, err := h.store.GetSuggestionsByDocumentID(r.Context(), documentID)
	if err != nil {
		log.Printf("Error listing suggestions for document %s: %v", documentID, err)
		http.Error(w, "Failed to list suggestions", http.StatusInternalServerError)
		return
	}
	if suggestions == nil {
		suggestions = []store.Suggestion{}
	}
	json.NewEncoder(w).Encode(suggestions)
}

type SaveSuggestionsRequest struct {
	Suggestions []store.Suggestion `json:"suggestions"`
}

func (h *APIHandler) SaveSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req SaveSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Suggestions) == 0 {
		http.Error(w, "Suggestions cannot be empty", http.StatusBadRequest)
		return
	}
	for i := range req.Suggestions {
		if req.Suggestions[i].ID == "" {
			req.Suggestions[i].ID = store.NewID()
		}
		req.Suggestions[i].UserID = userID
	}

	if err := h.store.SaveSuggestions(r.Context(), req.Suggestions); err != nil {
		log.Printf("Error saving suggestions for user %s: %v", userID, err)
		http.Error(w, "Failed to save suggestions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
