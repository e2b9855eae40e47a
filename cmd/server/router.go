package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/hanzi-srs/internal/api"
	apiMiddleware "github.com/phrazzld/hanzi-srs/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	notebookHandler := api.NewNotebookHandler(app.reviewService, app.logger)
	userCharacterHandler := api.NewUserCharacterHandler(app.reviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Anonymous callers get an empty lookup result.
		r.With(authMiddleware.OptionalAuthenticate).Get("/user-characters", userCharacterHandler.Lookup)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/notebook", func(r chi.Router) {
				r.Post("/review", notebookHandler.SubmitReview)
				r.Get("/due", notebookHandler.GetDue)
				r.Get("/stats", notebookHandler.Stats)
				r.Get("/characters", notebookHandler.ListCharacters)
				r.Patch("/characters", notebookHandler.UpdateFamiliarity)
				r.Get("/characters/{id}/preview", notebookHandler.PreviewIntervals)
			})

			r.Post("/user-character", userCharacterHandler.MarkCharacter)
			r.Post("/user-characters/bulk", userCharacterHandler.BulkMark)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
