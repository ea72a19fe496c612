package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/aurion-studio/aurion-web/backend/internal/config"
	"github.com/aurion-studio/aurion-web/backend/internal/handler"
	"github.com/aurion-studio/aurion-web/backend/internal/logging"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	"github.com/aurion-studio/aurion-web/backend/internal/service/ai"
	"github.com/aurion-studio/aurion-web/backend/internal/service/conversation"
	"github.com/aurion-studio/aurion-web/backend/internal/service/relay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.Log)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}

	profiles := profile.NewMemoryStore(profile.Seed())

	var completer relay.Completer
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize AI service, relay answers engine not connected")
		} else {
			completer = aiService
			logger.Info().Str("provider", aiService.Provider()).Str("model", cfg.AI.Model).Msg("AI service initialized")
		}
	} else {
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("provider credential not configured, skipping AI initialization")
	}

	g, ctx := errgroup.WithContext(ctx)

	var opts []relay.Option
	if cfg.Limit.ServerSide {
		counter, err := newCounter(ctx, g, cfg.Limit, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize conversation counter")
		}
		opts = append(opts, relay.WithCounter(counter))
		logger.Info().Str("backend", cfg.Limit.Backend).Dur("ttl", cfg.Limit.TTL).Msg("server-side conversation counter enabled")
	}

	relaySvc := relay.NewService(completer, opts...)
	router := handler.NewRouter(cfg, logger, profiles, relaySvc)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("path", cfg.Server.RelayPath).Msg("Aurion relay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

// newCounter builds the configured counter backend. The memory backend gets a
// pruning loop tied to the server's lifetime.
func newCounter(ctx context.Context, g *errgroup.Group, cfg config.LimitConfig, logger zerolog.Logger) (conversation.Counter, error) {
	if cfg.Backend == config.LimitBackendRedis {
		client, err := conversation.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			<-ctx.Done()
			return client.Close()
		})
		return conversation.NewRedisCounter(client, cfg.TTL), nil
	}

	counter := conversation.NewMemoryCounter(cfg.TTL)
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := counter.Prune(); n > 0 {
					logger.Debug().Int("expired", n).Msg("pruned conversation counters")
				}
			}
		}
	})
	return counter, nil
}
