package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"listingtrendgo/internal/config"
	"listingtrendgo/internal/database/db_client"
	"listingtrendgo/internal/http/http_server"
	"listingtrendgo/internal/http/listinghandler"
	"listingtrendgo/internal/queue/trendingqueue"
	"listingtrendgo/internal/redis/redis_client"
	"listingtrendgo/internal/scheduler/sweepscheduler"
	"listingtrendgo/internal/services/listing"
	"listingtrendgo/internal/services/trending"
	"listingtrendgo/internal/store/listingstore"
	"listingtrendgo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client + schema
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()
	if err := db_client.EnsureSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 5. Services
	store := listingstore.New(pgDb)
	reevalQueue := trendingqueue.New(redisClient, trendingqueue.Options{
		Delay:        time.Duration(cfg.ReevalDelayMs) * time.Millisecond,
		MaxAttempts:  cfg.ReevalMaxAttempts,
		BackoffBase:  time.Duration(cfg.ReevalBackoffBaseMs) * time.Millisecond,
		Workers:      cfg.ReevalWorkers,
		PollInterval: time.Duration(cfg.ReevalPollIntervalMs) * time.Millisecond,
	})
	trendingService := trending.NewService(store, reevalQueue, redisClient, trending.Thresholds{
		MinViews: cfg.TrendingMinViews,
		MaxSlots: cfg.TrendingMaxSlots,
	})
	listingService := listing.NewListingService(store)

	// 6. Background: queue workers consuming re-evaluation jobs
	reevalQueue.Run(ctx, trendingService.Reconcile)

	// 7. Background: scheduled bulk reconciliation
	sched := sweepscheduler.New(trendingService, cfg.TrendingSweepCron)
	if err := sched.Start(ctx); err != nil {
		Log.Fatal("sweep-schedule", zap.Error(err))
	}
	defer sched.Stop()

	// 8. WebSockets hub + Redis fan-out of trending events
	hub := ws.NewHub()
	go ws.SubscribeTrendingEvents(ctx, redisClient, hub)
	wsSrv := ws.NewWsServer(hub, sched)

	// 9. HTTP + WS server
	handler := listinghandler.New(listingService, trendingService, sched)
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, handler)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
