package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"

	"freight-ops-backend/config"
	"freight-ops-backend/internal/api"
	"freight-ops-backend/internal/dashboard"
	"freight-ops-backend/internal/db"
	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/loads"
	"freight-ops-backend/internal/notification"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation loop and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(resolveConfigPath(configPath))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or "+DefaultConfigPath+")")

	return cmd
}

// resolveConfigPath prefers the flag, then CONFIG_PATH, then the default.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultConfigPath
}

func runServe(configPath string) error {
	logger := log.New(os.Stdout, "opsd ", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")

	store, err := kv.Open(cfg.Storage, gormDB)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	if rs, ok := store.(*kv.RedisStore); ok {
		defer rs.Close()
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rs.Ping(pingCtx); err != nil {
			logger.Printf("Warning: redis is not reachable yet: %v. State will be empty until it is.", err)
		}
		cancelPing()
	}
	logger.Printf("state store initialized (%s)", cfg.Storage.Driver)

	provider, err := loads.New(cfg.Loads)
	if err != nil {
		return fmt.Errorf("failed to configure loads source: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var push dashboard.Dispatcher
	if cfg.Push.Enabled() {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
		pool.Start(ctx)
		push = pool
	} else {
		logger.Println("VAPID keys are not configured; web push is disabled")
	}

	svc := dashboard.NewService(cfg.Evaluator, cfg.Storage.KeyPrefix, provider, store, push)
	router := api.NewRouter(cfg.Server, svc, gormDB, &webpushOptions)
	go svc.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Println("Shutdown signal received, stopping services...")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	logger.Println("Server gracefully stopped")
	return nil
}
