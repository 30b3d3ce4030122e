package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panelmurah/ptero-store/internal/configs"
	"github.com/panelmurah/ptero-store/internal/handlers"
	"github.com/panelmurah/ptero-store/internal/services"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/cache"
	"github.com/panelmurah/ptero-store/pkg/clock"
	"github.com/panelmurah/ptero-store/pkg/database"
	middleware "github.com/panelmurah/ptero-store/pkg/middlewares"
	"github.com/panelmurah/ptero-store/pkg/pakasir"
	"github.com/panelmurah/ptero-store/pkg/pterodactyl"
	"github.com/panelmurah/ptero-store/pkg/repositories"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	aesKey, err := utils.DecodeAESKey(cfg.AesKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid AES key: %w", err)
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}
	db, disconnectDb, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnectDb()
		return nil, nil, err
	}

	// Redis backs sessions and the order-creation rate counter
	redisClient, disconnectRedis, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		disconnectDb()
		return nil, nil, err
	}

	notifier := buildNotifier(ctx, logger, cfg)

	gateway := pakasir.NewClient(logger, pakasir.Config{
		BaseURL: cfg.PakasirBaseURL,
		Project: cfg.PakasirProject,
		APIKey:  cfg.PakasirAPIKey,
	})
	panelAPI := pterodactyl.NewClient(logger, pterodactyl.Config{
		BaseURL:    cfg.PteroBaseURL,
		APIKey:     cfg.PteroAPIKey,
		NestID:     cfg.PteroNestID,
		EggID:      cfg.PteroEggID,
		LocationID: cfg.PteroLocationID,
	})

	clk := clock.NewSystem()
	orderRepo := repositories.NewOrderRepository(db)
	panelRepo := repositories.NewPanelRepository(db)
	userRepo := repositories.NewUserRepository(db)

	orderService := services.NewOrderService(logger, cfg, aesKey, gateway, panelAPI,
		orderRepo, panelRepo, notifier, clk)
	authService := services.NewAuthService(logger, cfg, userRepo,
		services.NewRedisSessionStore(redisClient), notifier, clk)
	adminService := services.NewAdminService(logger, panelAPI, orderRepo, panelRepo, notifier, clk)

	limiter := pkg.NewDistributedLimiter(redisClient, "global:order_rate",
		cfg.OrderRate, cfg.OrderBurst, time.Minute, logger)

	baseHandler := handlers.NewBaseHandler(logger)
	authHandler := handlers.NewAuthHandler(logger, authService)
	orderHandler := handlers.NewOrderHandler(logger, orderService, limiter)
	adminHandler := handlers.NewAdminHandler(logger, adminService)

	// Router
	r := gin.Default()
	baseHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	authHandler.RegisterRoutes(api.Group("/auth"))
	orderHandler.RegisterPublicRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Auth(redisClient))
	authHandler.RegisterProtectedRoutes(authed.Group("/auth"))
	orderHandler.RegisterRoutes(authed)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	adminHandler.RegisterRoutes(admin)

	// Background sweep so abandoned orders expire even when nobody polls them
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	go runExpiryScheduler(schedulerCtx, logger, orderService, cfg.ExpirePeriod)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		stopScheduler()
		notifier.Close()
		disconnectRedis()
		disconnectDb()
	}

	return srv, cleanup, nil
}

func runExpiryScheduler(ctx context.Context, logger *zap.Logger, svc services.OrderService, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireStale(ctx); err != nil {
				logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// buildNotifier assembles the configured event channels. Both are optional;
// with neither configured events are dropped.
func buildNotifier(ctx context.Context, logger *zap.Logger, cfg *configs.Config) services.Notifier {
	var targets []services.Notifier

	if !utils.IsEmpty(cfg.KafkaBrokers) {
		kafkaNotifier, err := services.NewKafkaNotifier(logger, ctx, cfg)
		if err != nil {
			logger.Error("kafka notifier disabled", zap.Error(err))
		} else {
			targets = append(targets, kafkaNotifier)
		}
	}
	if !utils.IsEmpty(cfg.TelegramBotToken) && !utils.IsEmpty(cfg.TelegramChatID) {
		targets = append(targets, services.NewTelegramNotifier(logger, cfg.TelegramBotToken, cfg.TelegramChatID))
	}

	if len(targets) == 0 {
		return services.NoopNotifier{}
	}
	return services.NewFanoutNotifier(targets...)
}
