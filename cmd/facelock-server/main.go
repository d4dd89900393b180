package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alejandrodlv/facelock/internal/config"
	"github.com/alejandrodlv/facelock/internal/db"
	"github.com/alejandrodlv/facelock/internal/facelock/service"
	"github.com/alejandrodlv/facelock/internal/facelock/store/sqlite"
	"github.com/alejandrodlv/facelock/internal/httpapi"
)

func main() {
	logger := log.New(os.Stdout, "facelock-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{AdminPIN: cfg.DevAdminPIN}); err != nil {
			logger.Fatalf("seed dev: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	identityStore := sqlite.NewIdentityStore(conn, writer)
	auditLog := sqlite.NewAuditLog(conn, writer)

	// Metrics
	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry)

	// Services
	mailbox := service.NewMailbox(metrics)
	coordinator := service.NewCoordinator(auditLog, identityStore, mailbox, metrics, logger)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		Coordinator:    coordinator,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimit: httpapi.RateLimit{
			PerSecond: cfg.RateLimitPerSecond,
			Burst:     cfg.RateLimitBurst,
		},
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
