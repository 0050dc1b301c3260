package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/bmaportal/ticketd/internal/infrastructure/configs"
	"github.com/bmaportal/ticketd/internal/infrastructure/ratelimiter"
	authHandler "github.com/bmaportal/ticketd/internal/presentation/handler/auth"
	healthHandler "github.com/bmaportal/ticketd/internal/presentation/handler/health"
	ticketHandler "github.com/bmaportal/ticketd/internal/presentation/handler/tickets"
)

type Application struct {
	config        configs.Config
	ticketHandler ticketHandler.Handler
	authHandler   authHandler.Handler
	healthHandler healthHandler.Handler
	logger        *zap.SugaredLogger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	ticketHandler ticketHandler.Handler,
	authHandler authHandler.Handler,
	healthHandler healthHandler.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		ticketHandler: ticketHandler,
		authHandler:   authHandler,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.loggerMiddleware)
	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", app.authHandler.LoginHandler)
			r.Post("/logout", app.authHandler.LogoutHandler)
			r.Get("/me", app.authHandler.MeHandler)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Use(app.requireSession)

			r.Get("/", app.ticketHandler.ListTicketsHandler)
			r.Post("/", app.ticketHandler.CreateTicketHandler)
			r.Get("/export", app.ticketHandler.ExportCSVHandler)
			r.Get("/{ticketId}", app.ticketHandler.GetTicketHandler)
			r.Patch("/{ticketId}/status", app.ticketHandler.UpdateStatusHandler)
			r.Post("/{ticketId}/assign", app.ticketHandler.AssignTicketHandler)
			r.Post("/{ticketId}/comments", app.ticketHandler.AddCommentHandler)
			r.Post("/{ticketId}/close", app.ticketHandler.CloseTicketHandler)
			r.Post("/{ticketId}/reopen", app.ticketHandler.ReopenTicketHandler)
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	return otelhttp.NewHandler(r, "ticketd")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
