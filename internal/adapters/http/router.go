package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/auth"
	"github.com/berningb/dream-speak-sub000/internal/metrics"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(server *Server, verifier *auth.Verifier, baseLogger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingContext(baseLogger))
	r.Use(recoverer)
	r.Use(withCORS)
	r.Use(bearerAuth(verifier))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signin", server.handleSignIn)
		r.Post("/auth/signout", server.handleSignOut)

		r.Route("/dreams", func(r chi.Router) {
			r.Get("/", server.handleListDreams)
			r.Post("/", server.handleCreateDream)
			r.Get("/all", server.handleListAllMine)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", server.handleGetDream)
				r.Patch("/", server.handleUpdateDream)
				r.Delete("/", server.handleDeleteDream)

				r.Post("/interpret", server.handleInterpretDream)
				r.Post("/describe", server.handleDescribeScene)
				r.Post("/image", server.handleGenerateImage)

				r.Get("/comments", server.handleListComments)
				r.Post("/comments", server.handleAddComment)

				r.Put("/reactions/{kind}", server.handleSetReaction)
				r.Delete("/reactions/{kind}", server.handleClearReaction)
				r.Get("/reactions/{kind}/count", server.handleCountReactions)
			})
		})

		r.Delete("/comments/{id}", server.handleDeleteComment)
		r.Get("/favorites", server.handleListFavorites)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", server.handleListNotes)
			r.Post("/", server.handleCreateNote)
			r.Patch("/{id}", server.handleUpdateNote)
			r.Delete("/{id}", server.handleDeleteNote)
		})

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", server.handleListFriends)
			r.Get("/requests", server.handleListPendingRequests)
			r.Post("/requests", server.handleSendFriendRequest)
			r.Post("/requests/{id}/respond", server.handleRespondFriendRequest)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", server.handleListSessions)
			r.Post("/", server.handleStartSession)
			r.Get("/{id}/messages", server.handleGetTimeline)
			r.Post("/{id}/messages", server.handleSendMessage)
		})

		r.Get("/users/{id}", server.handleGetProfile)
		r.Put("/me/profile", server.handleUpdateProfile)
		r.Get("/usage", server.handleGetUsage)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}
