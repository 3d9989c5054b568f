package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/vedran77/lobby/internal/config"
	"github.com/vedran77/lobby/internal/database"
	"github.com/vedran77/lobby/internal/logging"
	"github.com/vedran77/lobby/internal/repository"
	postgresrepo "github.com/vedran77/lobby/internal/repository/postgres"
	"github.com/vedran77/lobby/internal/repository/sqlite"
	"github.com/vedran77/lobby/internal/service"
	"github.com/vedran77/lobby/internal/transport/http/handlers"
	"github.com/vedran77/lobby/internal/transport/http/middleware"
	"github.com/vedran77/lobby/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Sentry error tracking
	var extra []slog.Handler
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		extra = append(extra, logging.NewSentryHandler(slog.LevelError))
	}

	// Structured logging (JSON to stdout)
	if err := logging.Setup(os.Stdout, cfg.LogLevel, extra...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()
	slog.Info("store ready", "driver", cfg.StoreDriver)

	// Services
	authService := service.NewAuthService(store.users, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmails)
	chatService := service.NewChatService(store.chats, store.users)
	presenceService := service.NewPresenceService(store.users)
	profileService := service.NewProfileService(store.users)
	gameService := service.NewGameService(store.games)

	// WebSocket hub
	hub := ws.NewHub(cfg.BroadcastScope, chatService)
	notifier := ws.NewHubNotifier(hub)
	chatService.SetNotifier(notifier)

	// Handlers
	userHandler := handlers.NewUserHandler(profileService, presenceService)
	userHandler.SetNotifier(notifier)

	api := http.NewServeMux()
	handlers.Router{
		Auth:   handlers.NewAuthHandler(authService),
		Users:  userHandler,
		Chats:  handlers.NewChatHandler(chatService),
		Games:  handlers.NewGameHandler(gameService),
		Health: handlers.NewHealthHandler(store.pinger),
	}.Register(api, authService)

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	root := http.NewServeMux()
	root.Handle("GET /ws", ws.ServeWS(hub, authService, cfg.CORSOrigins))
	root.Handle("/", sentryHandler.Handle(middleware.CORS(cfg.CORSOrigins)(api)))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           middleware.Logger(middleware.Recover(root)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", server.Addr, "scope", hub.Scope())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

type backend struct {
	users  repository.UserRepository
	games  repository.GameRepository
	chats  repository.ChatRepository
	pinger handlers.Pinger
	close  func()
}

func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{
			users:  store.Users(),
			games:  store.Games(),
			chats:  store.Chats(),
			pinger: store,
			close:  func() { _ = store.Close() },
		}, nil

	default:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			users:  postgresrepo.NewUserRepo(pool),
			games:  postgresrepo.NewGameRepo(pool),
			chats:  postgresrepo.NewChatRepo(pool),
			pinger: pool,
			close:  pool.Close,
		}, nil
	}
}
