package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/data/db"
	"github.com/yungbote/drawhub-backend/internal/http"
	"github.com/yungbote/drawhub-backend/internal/observability"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	boot, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	boot.Info("Loading configuration...")
	cfg, err := LoadConfig(boot)
	if err != nil {
		boot.Sync()
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, hub)
	handlerset := wireHandlers(log, cfg, serviceset, hub)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       hub,
		Server:       wireServer(log, cfg, handlerset),
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and, when Redis is configured, relays bus messages into the
// local hub. It returns after ctx is cancelled and shutdown completes.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	addr := net.JoinHostPort("", a.Cfg.Port)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		if err := a.Server.Run(addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.Clients.Bus != nil {
		g.Go(func() error {
			if err := a.Clients.Bus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
				return fmt.Errorf("realtime forwarder: %w", err)
			}
			a.Log.Info("Realtime forwarder started", "channel", a.Cfg.Redis.Channel)
			<-gctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server", "timeout", a.Cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Cfg.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
