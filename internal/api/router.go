package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/auth/wechat/authorize", apiHandler.OAuthAuthorizeHandler)
		r.Get("/auth/callback/wechat", apiHandler.OAuthCallbackHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			// Chat routes
			r.Get("/history", apiHandler.HistoryHandler)
			r.Post("/chats", apiHandler.CreateChatHandler)
			r.Get("/chats/{chatID}", apiHandler.GetChatDetailsHandler)
			r.Delete("/chats/{chatID}", apiHandler.DeleteChatHandler)
			r.Post("/chats/{chatID}/visibility", apiHandler.UpdateVisibilityHandler)
			r.Post("/chats/{chatID}/messages", apiHandler.PostMessagesHandler)
			r.Delete("/chats/{chatID}/messages", apiHandler.TrimMessagesHandler)
			r.Get("/chats/{chatID}/votes", apiHandler.GetVotesHandler)
			r.Patch("/chats/{chatID}/votes", apiHandler.VoteHandler)

			// Document routes
			r.Get("/document", apiHandler.GetDocumentHandler)
			r.Post("/document", apiHandler.SaveDocumentHandler)
			r.Delete("/document", apiHandler.DeleteDocumentHandler)

			// Suggestion routes
			r.Get("/suggestions", apiHandler.GetSuggestionsHandler)
			r.Post("/suggestions", apiHandler.SaveSuggestionsHandler)
		})
	})

	return r
}
