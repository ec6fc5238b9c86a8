package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/config"
	"tavola-rest-api/internal/events"
	"tavola-rest-api/internal/handler"
	"tavola-rest-api/internal/repository"
	"tavola-rest-api/internal/router"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting tavola api",
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Document store
	mongo, err := repository.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout, logger)
	if err != nil {
		logger.Fatal("mongodb init failed", zap.Error(err))
	}
	defer func() { _ = mongo.Close() }()
	mongo.EnsureIndexes(ctx)

	// Cache layer. The service degrades to an in-process cache when Redis
	// is unreachable rather than refusing to start.
	var (
		cacheBackend cache.Cache
		publisher    events.Publisher = events.NopPublisher{}
	)
	switch cfg.Cache.Type {
	case "memory":
		cacheBackend = cache.NewMemoryCache()
		logger.Info("using in-memory cache")
	default:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			OpTimeout: cfg.Cache.OpTimeout,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
			cacheBackend = cache.NewMemoryCache()
		} else {
			cacheBackend = redisCache
			publisher = events.NewRedisPublisher(redisCache.Client(), logger)
			logger.Info("redis cache initialized", zap.String("addr", cfg.Cache.RedisAddress()))
		}
	}
	defer func() { _ = cacheBackend.Close() }()

	store := cache.NewStore(cacheBackend, logger)
	keys := cache.NewKeys(cfg.Cache.KeyPrefix)
	ttl := cache.TTLSet{
		Product:     cfg.Cache.ProductTTL,
		ProductList: cfg.Cache.ProductListTTL,
		Coupon:      cfg.Cache.CouponTTL,
		CouponList:  cfg.Cache.CouponListTTL,
		Today:       cfg.Cache.TodayStatsTTL,
		Weekly:      cfg.Cache.WeeklyChartTTL,
		Hourly:      cfg.Cache.HourlyChartTTL,
		Top:         cfg.Cache.TopProductsTTL,
		Activity:    cfg.Cache.ActivityTTL,
	}
	policies := cache.NewPolicies(keys, ttl)

	// Repositories
	businessRepo := repository.NewMongoBusinessRepository(mongo)
	productRepo := repository.NewMongoProductRepository(mongo)
	couponRepo := repository.NewMongoCouponRepository(mongo)
	customerRepo := repository.NewMongoCustomerRepository(mongo)
	orderRepo := repository.NewMongoOrderRepository(mongo)

	// Background workers
	pool := worker.New(cfg.Worker.Size, cfg.Worker.QueueSize, cfg.Worker.TaskTimeout, logger)

	// Services
	businessService := service.NewBusinessService(businessRepo, store, policies, publisher)
	productService := service.NewProductService(productRepo, store, policies)
	couponService := service.NewCouponService(couponRepo, store, policies)
	customerService := service.NewCustomerService(customerRepo)
	aggregator := service.NewAggregator(productRepo, customerRepo, store, policies, cfg.Analytics, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, businessService, couponService, aggregator, pool, publisher, logger)
	dashboardService := service.NewDashboardService(orderRepo, mongo, store, keys, ttl, cfg.Analytics.TopProductsLimit)

	// HTTP surface
	r := router.New(router.Config{
		Logger:           logger,
		HealthHandler:    handler.NewHealthHandler(cfg.App.Version, mongo, cacheBackend),
		BusinessHandler:  handler.NewBusinessHandler(businessService),
		ProductHandler:   handler.NewProductHandler(productService),
		CouponHandler:    handler.NewCouponHandler(couponService),
		OrderHandler:     handler.NewOrderHandler(orderService),
		CustomerHandler:  handler.NewCustomerHandler(customerService),
		DashboardHandler: handler.NewDashboardHandler(dashboardService),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Let queued aggregations finish before connections go away.
	pool.Close(cfg.Worker.DrainTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.App.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
