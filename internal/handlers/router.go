package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notely/pkg/db"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context(), a.store.DB); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", a.handleSignup)
			r.Post("/login", a.handleLogin)
			r.Post("/refresh", a.handleRefresh)
			r.Post("/logout", a.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth)
				r.Get("/me", a.handleCurrentUser)
				r.Post("/me/avatar", a.handleAvatarUpload)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", a.handleListNotes)
				r.Post("/", a.handleCreateNote)
				r.Get("/export", a.handleExportNotes)
				r.Get("/{id}", a.handleGetNote)
				r.Put("/{id}", a.handleUpdateNote)
				r.Delete("/{id}", a.handleDeleteNote)
				r.Patch("/{id}/pin", a.handleTogglePin)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", a.handleListFolders)
				r.Post("/", a.handleCreateFolder)
				r.Put("/{id}", a.handleUpdateFolder)
				r.Delete("/{id}", a.handleDeleteFolder)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/summarize", a.handleSummarize)
				r.Post("/generate-tags", a.handleGenerateTags)
				r.Post("/generate-title", a.handleGenerateTitle)
				r.Post("/chat", a.handleChat)
				r.Get("/semantic-search", a.handleSemanticSearch)
			})
		})
	})

	return r
}
