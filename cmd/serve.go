package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/tagscope/config"
	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/logging"
	"github.com/seo-optimizer/tagscope/middleware"
	"github.com/seo-optimizer/tagscope/server"
	"github.com/seo-optimizer/tagscope/service"
	"github.com/seo-optimizer/tagscope/stats"
	"github.com/seo-optimizer/tagscope/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	retainMonths    = 12
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		log.Printf("Using SQLite store at %s", cfg.SQLitePath())
		return storage.NewSQLiteStore(ctx, cfg.SQLitePath())
	default:
		log.Println("Using in-memory store, analyses will not survive a restart")
		return storage.NewMemoryStore(), nil
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	// Set up Gin mode
	gin.SetMode(cfg.GinMode)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	monthly, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	defer func() {
		if err := monthly.Shutdown(); err != nil {
			log.Printf("Failed to flush monthly statistics: %v", err)
		}
	}()
	monthly.Cleanup(retainMonths)

	requests := logging.New(filepath.Join(cfg.DataDir, logging.DefaultFileName), cfg.DevMode)
	defer func() {
		if err := requests.Save(); err != nil {
			log.Printf("Failed to save request statistics: %v", err)
		}
	}()

	svc := service.New(fetcher.New(cfg.FetcherOptions()), store, monthly, cfg.ServiceOptions())
	defer svc.Close()

	router := server.New(server.Options{
		Service:     svc,
		Requests:    requests,
		Monthly:     monthly,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
