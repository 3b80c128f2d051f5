package routes

import (
	"net/http"

	"github.com/courtside-dev/bracket-engine/handlers"
	"github.com/courtside-dev/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	bracketHandler *handlers.BracketHandler,
	scoreHandler *handlers.ScoreHandler,
	auditHandler *handlers.AuditHandler,
	stopHandler *handlers.StopHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/stops", func(r chi.Router) {
		r.Get("/", stopHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(middleware.RoleAdmin, middleware.RoleDirector))

			r.Post("/", stopHandler.Create)
		})

		r.Route("/{stopID}", func(r chi.Router) {
			// Публичные маршруты для просмотра сетки
			r.Get("/", stopHandler.Get)
			r.Get("/bracket", bracketHandler.Get)
			r.Get("/matches/live", bracketHandler.ListLive)
			r.Get("/teams", teamHandler.List)

			// Мутации сетки - только для ролей с правом судейства
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(auth.Authorize(middleware.RoleAdmin, middleware.RoleDirector))

				r.Post("/bracket", bracketHandler.Generate)
				r.Post("/audit", auditHandler.Run)
				r.Post("/teams", teamHandler.Create)
			})
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", bracketHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(middleware.RoleAdmin, middleware.RoleDirector, middleware.RoleScorer))

			r.Put("/games/{slot}/score", scoreHandler.SubmitScore)
			r.Post("/forfeit", scoreHandler.SetForfeit)
		})
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.Authorize(middleware.RoleAdmin, middleware.RoleDirector))

		r.Put("/", teamHandler.Update)
		r.Delete("/", teamHandler.Delete)
	})

	router.Get("/ws/stops/{stopID}", webSocketHandler.ServeWs)
}
