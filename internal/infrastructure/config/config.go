package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Storage   StorageConfig   `mapstructure:"storage"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	LogLevel  string          `mapstructure:"log_level"`
	LogDir    string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// CorpusConfig 菜譜來源設定；RemoteBaseURL 不為空時優先使用遠端來源
type CorpusConfig struct {
	Dir            string        `mapstructure:"dir"`
	Watch          bool          `mapstructure:"watch"`
	AssetBaseURL   string        `mapstructure:"asset_base_url"`
	RemoteBaseURL  string        `mapstructure:"remote_base_url"`
	RemoteManifest string        `mapstructure:"remote_manifest"`
	RemoteTimeout  time.Duration `mapstructure:"remote_timeout"`
}

// UseRemote 是否使用遠端來源
func (c CorpusConfig) UseRemote() bool {
	return c.RemoteBaseURL != ""
}

// StorageConfig 偏好資料儲存設定
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"`
	Key           string        `mapstructure:"key"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// 儲存驅動
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Requests        int           `mapstructure:"requests"`
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// PerSecond 平均每秒允許的請求數
func (c RateLimitConfig) PerSecond() float64 {
	if c.Window <= 0 {
		return 0
	}
	return float64(c.Requests) / c.Window.Seconds()
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時只使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用的無前綴環境變量
	_ = v.BindEnv("corpus.dir", "APP_CORPUS_DIR", "CORPUS_DIR")
	_ = v.BindEnv("storage.driver", "APP_STORAGE_DRIVER", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.redis_addr", "APP_STORAGE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("storage.redis_password", "APP_STORAGE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "APP_RATE_LIMIT_REQUESTS", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "APP_RATE_LIMIT_WINDOW", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_dir", "APP_LOG_DIR", "LOG_DIR")
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(configPath)

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "whattocook")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.cors_origins", []string{"*"})

	// 菜譜來源
	v.SetDefault("corpus.dir", "./HowToCook")
	v.SetDefault("corpus.watch", false)
	v.SetDefault("corpus.remote_manifest", "/manifest.json")
	v.SetDefault("corpus.remote_timeout", "15s")

	// 偏好儲存
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.key", "whattocook_data")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.ttl", "0s")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.cleanup_interval", "5m")

	// 日誌
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	// 驗證菜譜來源
	if config.Corpus.Dir == "" && !config.Corpus.UseRemote() {
		return fmt.Errorf("corpus dir or remote base url is required")
	}
	if config.Corpus.UseRemote() && config.Corpus.RemoteTimeout <= 0 {
		return fmt.Errorf("invalid corpus remote timeout")
	}

	// 驗證儲存設定
	switch config.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if config.Storage.RedisAddr == "" {
			return fmt.Errorf("redis addr is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
	if config.Storage.TTL < 0 {
		return fmt.Errorf("invalid storage ttl")
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
