package api

import (
	"time"

	"recipe-planner/internal/api/handlers/health"
	"recipe-planner/internal/api/handlers/parse"
	"recipe-planner/internal/api/handlers/planner"
	shoppingHandler "recipe-planner/internal/api/handlers/shopping"
	"recipe-planner/internal/api/middleware"
	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/pkg/common"
	"recipe-planner/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store shoppingService.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查與指標
	pinger, _ := store.(shoppingService.Pinger)
	health.NewHandler(cfg.App.Version, cfg.Store.Driver, pinger).Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthOptions{
		JWTSecret:   cfg.Auth.JWTSecret,
		AllowHeader: cfg.Auth.AllowHeader,
	}))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(middleware.NewRateLimiter(
			cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst,
		)))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))

	// 唯讀儲存（Supabase）不提供寫入端點
	seeder, _ := store.(shoppingService.Seeder)
	{
		shoppingHandler.NewHandler(shoppingService.NewListService(store)).Register(api)
		parse.Register(api)
		planner.NewHandler(store, seeder).Register(api)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("seeding", seeder != nil),
	)

	return router, nil
}

// allowsAnyOrigin 萬用來源不能搭配 credentials
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
