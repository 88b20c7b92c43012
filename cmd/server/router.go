package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/action-deck/internal/api"
	apiMiddleware "github.com/phrazzld/action-deck/internal/api/middleware"
	"github.com/phrazzld/action-deck/internal/app"
)

// setupRouter creates the router with all routes and middleware.
func setupRouter(a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(a.Logger))

	sessionHandler := api.NewSessionHandler(a.Controller, a.Logger)
	historyHandler := api.NewHistoryHandler(a.Ledger)
	feedHandler := api.NewFeedHandler(a.Feed, a.Catalog)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", sessionHandler.GetSession)
		r.Post("/session/accept", sessionHandler.Accept)
		r.Post("/session/skip", sessionHandler.Skip)
		r.Post("/session/reshuffle", sessionHandler.Reshuffle)

		r.Get("/progress", sessionHandler.GetProgress)

		r.Get("/history", historyHandler.GetHistory)
		r.Delete("/history", historyHandler.ClearHistory)

		r.Post("/entitlement/unlock", sessionHandler.Unlock)
		r.Post("/entitlement/restore", sessionHandler.Restore)
		r.Post("/paywall/dismiss", sessionHandler.DismissPaywall)

		r.Get("/events", feedHandler.GetEvents)
		r.Get("/catalog", feedHandler.GetCatalog)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			a.Logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	return r
}
