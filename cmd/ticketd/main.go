package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	authservice "github.com/bmaportal/ticketd/internal/auth"
	"github.com/bmaportal/ticketd/internal/infrastructure/configs"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
	"github.com/bmaportal/ticketd/internal/infrastructure/ratelimiter"
	"github.com/bmaportal/ticketd/internal/infrastructure/repository"
	"github.com/bmaportal/ticketd/internal/infrastructure/tracing"
	"github.com/bmaportal/ticketd/internal/presentation/api"
	authHandler "github.com/bmaportal/ticketd/internal/presentation/handler/auth"
	healthHandler "github.com/bmaportal/ticketd/internal/presentation/handler/health"
	ticketHandler "github.com/bmaportal/ticketd/internal/presentation/handler/tickets"
	"github.com/bmaportal/ticketd/internal/seed"
	"github.com/bmaportal/ticketd/internal/tickets"
)

const serviceName = "ticketd"

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	cfg, err := configs.Load(configs.DeterminePath())
	if err != nil {
		log.Fatal(err)
	}

	store, err := kv.Open(kv.Config{
		Path:       cfg.Store.Path,
		SyncWrites: cfg.Store.SyncWrites,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ticketRepo := repository.NewTicketRepository(store)
	userRepo := repository.NewUserRepository(store)
	sessionRepo := repository.NewSessionRepository(store)

	if err := seed.Run(ctx, store, userRepo, ticketRepo, logger); err != nil {
		log.Fatal(err)
	}

	ticketService := tickets.NewService(ticketRepo, userRepo, logger)
	authService := authservice.NewService(userRepo, sessionRepo, logger)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(
		*cfg,
		*ticketHandler.NewHandler(ticketService),
		*authHandler.NewHandler(authService),
		*healthHandler.NewHandler(),
		logger,
		rl,
	)

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
