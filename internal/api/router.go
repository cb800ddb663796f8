package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"whattocook/internal/api/handlers/health"
	menuHandler "whattocook/internal/api/handlers/menu"
	"whattocook/internal/api/handlers/preference"
	recipeHandler "whattocook/internal/api/handlers/recipe"
	"whattocook/internal/api/middleware"
	"whattocook/internal/core/corpus"
	"whattocook/internal/core/menu"
	"whattocook/internal/core/recipe"
	"whattocook/internal/core/storage"
	"whattocook/internal/infrastructure/config"
	"whattocook/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求超時
const timeoutDuration = 30 * time.Second

// Dependencies 路由需要的服務
type Dependencies struct {
	Corpus      *corpus.Store
	Preferences *storage.Manager
	Parser      *recipe.Parser
	// Random 為 nil 時使用預設亂數來源
	Random menu.RandomSource
	// RateLimiter 為 nil 時不限流
	RateLimiter *middleware.RateLimiter
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
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
	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", preference.ClientIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Corpus)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}
	{
		recipes := recipeHandler.NewHandler(deps.Corpus, deps.Parser)
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("", recipes.HandleList)
			recipeGroup.GET("/:id", recipes.HandleGet)
			recipeGroup.POST("/parse", recipes.HandleParse)
			recipeGroup.POST("/reload", recipes.HandleReload)
		}

		menus := menuHandler.NewHandler(deps.Corpus, deps.Preferences, deps.Random)
		menuGroup := api.Group("/menu")
		{
			menuGroup.POST("/recommend", menus.HandleRecommend)
			menuGroup.POST("/shopping-list", menus.HandleShoppingList)
			menuGroup.GET("/advice", menus.HandleAdvice)
		}

		prefs := preference.NewHandler(deps.Preferences)
		prefGroup := api.Group("/preferences")
		{
			prefGroup.GET("", prefs.HandleGet)
			prefGroup.DELETE("", prefs.HandleClear)
			prefGroup.POST("/visit", prefs.HandleVisit)
			prefGroup.PUT("/people-count", prefs.HandleSetPeopleCount)
			prefGroup.POST("/favorites/:id", prefs.HandleAddFavorite)
			prefGroup.DELETE("/favorites/:id", prefs.HandleRemoveFavorite)
			prefGroup.POST("/purchased/:name/toggle", prefs.HandleTogglePurchased)
			prefGroup.DELETE("/purchased", prefs.HandleClearPurchased)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", deps.RateLimiter != nil),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Duration("timeout", timeoutDuration),
	)

	return router
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// NewServer 以設定建立 HTTP 伺服器
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
