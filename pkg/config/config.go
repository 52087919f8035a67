package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig

	// External APIs
	DART  DARTConfig
	Naver NaverConfig

	// Scorecard engine
	Scorecard ScorecardConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DARTConfig holds DART (전자공시) API configuration
type DARTConfig struct {
	APIKey  string
	BaseURL string
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL string
}

// ScorecardConfig holds batch scoring settings
type ScorecardConfig struct {
	Workers         int           // 동시 처리 워커 수
	RatePerSec      float64       // 데이터 소스 호출 한도 (초당)
	BandsFile       string        // 등급 구간 YAML (비어있으면 기본 테이블)
	IncludeQuality  bool          // 퀄리티(10점) 확장 카테고리 포함 여부
	Output          string        // 기본 결과 저장 위치
	FinancialSource string        // db | dart
	MarketSource    string        // db | naver
	CacheTTL        time.Duration // 수집 데이터 캐시 TTL
	Schedule        string        // cron 표현식 (초 포함)
	Retention       time.Duration // DB 결과 보관 기간
}

// Source names accepted by ScorecardConfig
const (
	SourceDB    = "db"
	SourceDART  = "dart"
	SourceNaver = "naver"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		DART: DARTConfig{
			APIKey:  getEnv("DART_API_KEY", ""),
			BaseURL: getEnv("DART_BASE_URL", "https://opendart.fss.or.kr"),
		},

		Naver: NaverConfig{
			BaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
		},

		Scorecard: ScorecardConfig{
			Workers:         getEnvAsInt("SCORECARD_WORKERS", 4),
			RatePerSec:      getEnvAsFloat("SCORECARD_RATE_PER_SEC", 10),
			BandsFile:       getEnv("SCORECARD_BANDS_FILE", ""),
			IncludeQuality:  getEnvAsBool("SCORECARD_INCLUDE_QUALITY", false),
			Output:          getEnv("SCORECARD_OUTPUT", "screening_results.csv"),
			FinancialSource: strings.ToLower(getEnv("SCORECARD_FINANCIAL_SOURCE", SourceDB)),
			MarketSource:    strings.ToLower(getEnv("SCORECARD_MARKET_SOURCE", SourceDB)),
			CacheTTL:        getEnvAsDuration("SCORECARD_CACHE_TTL", "24h"),
			Schedule:        getEnv("SCORECARD_SCHEDULE", "0 30 18 * * 1-5"),
			Retention:       getEnvAsDuration("SCORECARD_RETENTION", "2160h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return c.Scorecard.validate(c.DART.APIKey)
}

func (s *ScorecardConfig) validate(dartKey string) error {
	if s.Workers < 1 {
		return fmt.Errorf("SCORECARD_WORKERS must be >= 1")
	}
	if s.RatePerSec <= 0 {
		return fmt.Errorf("SCORECARD_RATE_PER_SEC must be > 0")
	}
	if s.Retention <= 0 {
		return fmt.Errorf("SCORECARD_RETENTION must be > 0")
	}

	switch s.FinancialSource {
	case SourceDB:
	case SourceDART:
		if dartKey == "" {
			return fmt.Errorf("DART_API_KEY is required when SCORECARD_FINANCIAL_SOURCE=dart")
		}
	default:
		return fmt.Errorf("SCORECARD_FINANCIAL_SOURCE must be one of: db, dart")
	}

	if s.MarketSource != SourceDB && s.MarketSource != SourceNaver {
		return fmt.Errorf("SCORECARD_MARKET_SOURCE must be one of: db, naver")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from the working directory or next to the binary
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
