package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aurion-studio/aurion-web/backend/internal/config"
	"github.com/aurion-studio/aurion-web/backend/internal/handler/relay"
	middlewarePkg "github.com/aurion-studio/aurion-web/backend/internal/middleware"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	relayService "github.com/aurion-studio/aurion-web/backend/internal/service/relay"
	"github.com/aurion-studio/aurion-web/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the relay service.
func NewRouter(cfg *config.Config, logger zerolog.Logger, profiles profile.Store, relaySvc *relayService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	relayHandler := relay.New(relaySvc, profiles, relay.Options{
		DefaultProfile:       profile.DefaultID,
		ExposeUpstreamDetail: cfg.AI.ExposeDetail,
		MaxBodyBytes:         cfg.Server.MaxBodySize,
	})
	relayHandler.RegisterRoutes(r, cfg.Server.RelayPath)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"provider":  cfg.AI.Provider,
			"connected": relaySvc.Connected(),
		})
	})

	r.Get("/api/profiles", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, profiles.List())
	})

	return r
}
