package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/oliauusc/CSCI201-Group7/internal/adapters/http"
	natsadapter "github.com/oliauusc/CSCI201-Group7/internal/adapters/nats"
	"github.com/oliauusc/CSCI201-Group7/internal/adapters/postgres"
	"github.com/oliauusc/CSCI201-Group7/internal/adapters/valkey"
	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/core/ports"
	"github.com/oliauusc/CSCI201-Group7/internal/core/usecases"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/config"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/logging"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("campusfood-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log, "campusfood-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache and events are optional: without them the service runs on a
	// single replica with in-process session bounds.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var events ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	// Use cases
	placeSvc := usecases.NewPlaceService(postgres.NewPlaceRepo(db), cacheSvc)
	reviewSvc := usecases.NewReviewService(postgres.NewReviewRepo(db), placeSvc, cacheSvc, events)
	mapSvc := usecases.NewMapService(placeSvc, cacheSvc, events, usecases.MapSettings{
		Bounds:            cfg.Map.ViewportBounds(),
		DefaultSize:       cfg.Map.DefaultSize(),
		MarkerMarginPx:    cfg.Map.MarkerMarginPx,
		ExpandPaddingDeg:  cfg.Map.ExpandPaddingDeg,
		SessionTTLSeconds: cfg.Map.SessionTTLSeconds,
	})

	// Cross-replica sync
	if publisher != nil {
		sub, err := subscribe(ctx, cfg.NATS.URL, placeSvc, reviewSvc, mapSvc)
		if err != nil {
			slog.Warn("event subscriptions unavailable", "error", err)
		} else {
			defer sub.Close()
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	deps := &http.Dependencies{
		Places:  placeSvc,
		Map:     mapSvc,
		Reviews: reviewSvc,
		Origin:  cfg.Map.OriginPoint(),
		NATS:    natsConn,
		DB:      db,
		Cache:   cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Campus Food Locator API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + http.HeaderSessionID + ", " + http.HeaderUserName,
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// subscribe keeps this replica's caches and session bounds in step with
// events published by the others.
func subscribe(ctx context.Context, url string, places *usecases.PlaceService, reviews *usecases.ReviewService, maps *usecases.MapService) (*natsadapter.Subscriber, error) {
	instance, err := os.Hostname()
	if err != nil || instance == "" {
		instance = "api-" + uuid.NewString()
	}

	sub, err := natsadapter.NewSubscriber(url, instance)
	if err != nil {
		return nil, err
	}

	err = sub.SubscribeReviewPosted(ctx, func(ctx context.Context, e *domain.ReviewPostedEvent) error {
		places.InvalidateCache(ctx)
		reviews.InvalidatePlace(ctx, e.PlaceID)
		return nil
	})
	if err != nil {
		sub.Close()
		return nil, err
	}

	err = sub.SubscribeViewportExpanded(ctx, func(ctx context.Context, e *domain.ViewportExpandedEvent) error {
		if maps.Adopt(ctx, e) {
			slog.DebugContext(ctx, "adopted map bounds from replica", "session_id", e.SessionID)
		}
		return nil
	})
	if err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		case <-ctx.Done():
			return
		}
	}
}
