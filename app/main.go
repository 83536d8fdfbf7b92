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

	"github.com/lysyi3m/crawler-api/app/api"
	"github.com/lysyi3m/crawler-api/app/auth"
	"github.com/lysyi3m/crawler-api/app/bootstrap"
	"github.com/lysyi3m/crawler-api/app/cfg"
	"github.com/lysyi3m/crawler-api/app/database"
	"github.com/lysyi3m/crawler-api/app/feed"
	"github.com/lysyi3m/crawler-api/app/identity"
	"github.com/lysyi3m/crawler-api/app/items"
)

func main() {
	appCfg, err := cfg.Load()
	if errors.Is(err, cfg.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := run(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting crawler API", "version", appCfg.Version, "port", appCfg.Port)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("Connected to database", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	tokens, err := auth.NewTokenService(auth.Options{
		Issuer:        appCfg.JWTIssuer,
		Audience:      appCfg.JWTAudience,
		Secret:        appCfg.JWTSecret,
		ExpiryMinutes: appCfg.JWTExpiryMinutes,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()

	userManager := identity.NewManager(database.NewUserRepository(db))
	if err := userManager.EnsureRoles(ctx, identity.AllRoles...); err != nil {
		return fmt.Errorf("failed to create roles: %w", err)
	}

	accounts := identity.NewAccounts(userManager, tokens)
	itemService := items.NewService(database.NewItemRepository(db))

	if appCfg.BootstrapFile != "" {
		file, err := bootstrap.Load(appCfg.BootstrapFile)
		if err != nil {
			return err
		}
		summary, err := bootstrap.Apply(ctx, file, accounts, itemService)
		if err != nil {
			return fmt.Errorf("failed to apply bootstrap file: %w", err)
		}
		slog.Info("Bootstrap file applied", "file", appCfg.BootstrapFile,
			"users_created", summary.UsersCreated, "items_seeded", summary.ItemsSeeded)
	}

	handler := api.NewHandler(itemService, feed.NewImporter(itemService), accounts, tokens, appCfg.Version)
	server := api.NewServer(handler, appCfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")

	return serveErr
}
