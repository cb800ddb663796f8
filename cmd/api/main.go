package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"whattocook/internal/api"
	"whattocook/internal/api/middleware"
	"whattocook/internal/core/corpus"
	"whattocook/internal/core/menu"
	"whattocook/internal/core/recipe"
	"whattocook/internal/core/storage"
	"whattocook/internal/infrastructure/config"
	"whattocook/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 菜譜來源
	parser := recipe.NewParser()
	var source corpus.Source
	if cfg.Corpus.UseRemote() {
		source = corpus.NewRemoteSource(cfg.Corpus.RemoteBaseURL, cfg.Corpus.RemoteManifest, cfg.Corpus.RemoteTimeout)
	} else {
		source = corpus.NewDirSource(os.DirFS(cfg.Corpus.Dir), cfg.Corpus.Dir, cfg.Corpus.AssetBaseURL)
	}
	store := corpus.NewStore(source, parser)

	common.LogInfo("載入設定",
		zap.String("corpus_source", source.Name()),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	// 預先載入；失敗時留待第一次請求重試
	if _, err := store.Snapshot(ctx); err != nil {
		common.LogWarn("預先載入菜譜庫失敗", zap.Error(err))
	}

	if cfg.Corpus.Watch && !cfg.Corpus.UseRemote() {
		watcher, err := corpus.NewWatcher(cfg.Corpus.Dir, store)
		if err != nil {
			common.LogWarn("無法監看菜譜目錄", zap.String("dir", cfg.Corpus.Dir), zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	// 偏好儲存
	backend, closeBackend, err := newPreferenceBackend(ctx, cfg.Storage)
	if err != nil {
		common.LogError("Failed to initialize preference storage", zap.Error(err))
		return
	}
	defer closeBackend()
	preferences := storage.NewManager(backend, cfg.Storage.Key)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
	}

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Corpus:      store,
		Preferences: preferences,
		Parser:      parser,
		Random:      menu.DefaultSource(),
		RateLimiter: limiter,
	})
	srv := api.NewServer(cfg, router)

	// 啟動服務器
	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.String("addr", srv.Addr),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// 等待中斷信號
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		return
	}

	common.LogInfo("Server exited")
}

// newPreferenceBackend 依設定建立偏好儲存，回傳的 close 函式在結束時呼叫
func newPreferenceBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, func(), error) {
	if cfg.Driver != config.StorageRedis {
		return storage.NewMemoryBackend(), func() {}, nil
	}

	rb, err := storage.NewRedisBackend(ctx, storage.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return rb, func() {
		if err := rb.Close(); err != nil {
			common.LogWarn("關閉 Redis 連線失敗", zap.Error(err))
		}
	}, nil
}
