package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Cache     CacheConfig     `mapstructure:"cache"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig 仪表盘缓存策略。TTL 单位为秒。
type CacheConfig struct {
	// Backend 为 redis 或 memory，memory 仅用于本地开发
	Backend          string `mapstructure:"backend"`
	GlobalTTL        int    `mapstructure:"global_ttl"`
	StudentTTL       int    `mapstructure:"student_ttl"`
	CourseTTL        int    `mapstructure:"course_ttl"`
	QueryTimeoutSecs int    `mapstructure:"query_timeout_seconds"`
}

// GlobalExpiry 平台级仪表盘缓存有效期
func (c CacheConfig) GlobalExpiry() time.Duration {
	return secondsOrDefault(c.GlobalTTL, 300*time.Second)
}

// StudentExpiry 学生维度仪表盘缓存有效期
func (c CacheConfig) StudentExpiry() time.Duration {
	return secondsOrDefault(c.StudentTTL, 300*time.Second)
}

// CourseExpiry 课程维度仪表盘缓存有效期
func (c CacheConfig) CourseExpiry() time.Duration {
	return secondsOrDefault(c.CourseTTL, 600*time.Second)
}

// QueryTimeout 单次聚合查询的超时上限
func (c CacheConfig) QueryTimeout() time.Duration {
	return secondsOrDefault(c.QueryTimeoutSecs, 5*time.Second)
}

func secondsOrDefault(secs int, def time.Duration) time.Duration {
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNHUB")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Cache
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.global_ttl", "CACHE_GLOBAL_TTL")
	viper.BindEnv("cache.student_ttl", "CACHE_STUDENT_TTL")
	viper.BindEnv("cache.course_ttl", "CACHE_COURSE_TTL")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}
