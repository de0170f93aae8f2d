package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogd/config"
	"blogd/database"
	"blogd/handlers"
	"blogd/middleware"
	"blogd/routes"
	"blogd/services"
	"blogd/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:          "blogd",
		Short:        "Blog platform backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes or tables for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})
	return root
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("✅ %s store migrated", st.Name())
	return nil
}

func runServe(ctx context.Context) error {
	log.Println("🚀 Starting blog backend...")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.TracingEnabled, os.Stdout)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	log.Printf("🔌 Connecting to %s store...", cfg.StoreDriver)
	st, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Printf("❌ Failed to close store: %v", err)
		}
	}()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("✅ %s store ready", st.Name())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	issuer := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.NewHandler(services.New(st, services.NewBcryptHasher()), st, issuer, cfg.RequestTimeout)
	router := routes.SetupRouter(h, routes.Options{
		Issuer:      issuer,
		Metrics:     middleware.NewMetrics(registry),
		Gatherer:    registry,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("👋 Server stopped gracefully")
	return nil
}
