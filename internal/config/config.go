package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"leverage/internal/exchange"
)

// DefaultPairs - пары, пересчитываемые по расписанию, если список
// не переопределен переменной DEFAULT_PAIRS
var DefaultPairs = []string{
	"BTC/USDT:USDT",
	"ETH/USDT:USDT",
	"ADA/USDT:USDT",
	"SOL/USDT:USDT",
	"MATIC/USDT:USDT",
	"DOT/USDT:USDT",
	"LINK/USDT:USDT",
	"UNI/USDT:USDT",
}

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Exchange ExchangeConfig
	Updater  UpdaterConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port         int
	Host         string
	MaxBodyBytes int64
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ExchangeConfig - настройки источника рыночных данных
type ExchangeConfig struct {
	Name         string
	Timeframe    string
	FetchTimeout time.Duration
	RateLimit    float64 // запросов в секунду
}

// UpdaterConfig - настройки цикла обновления метрик
type UpdaterConfig struct {
	BenchmarkPair string
	Pairs         []string
	LookbackDays  int
	UpdateHour    int
	UpdateMinute  int
	UpdateOnStart bool
}

// SecurityConfig - настройки аутентификации API
type SecurityConfig struct {
	APIKeyRequired bool
	APIKey         string // ключ в открытом виде (dev окружения)
	APIKeyHash     string // bcrypt-хеш ключа (production)
	AllowedOrigins string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load загружает конфигурацию из переменных окружения.
// Файл .env подхватывается, если присутствует (локальная разработка).
func Load() (*Config, error) {
	// Отсутствие .env - не ошибка, в production переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8079),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 16*1024*1024)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "leverage"),
			User:     getEnv("DB_USER", "leverage"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Exchange: ExchangeConfig{
			Name:         getEnv("EXCHANGE", "binance"),
			Timeframe:    getEnv("TIMEFRAME", "1d"),
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
			RateLimit:    float64(getEnvAsInt("EXCHANGE_RATE_LIMIT", 10)),
		},
		Updater: UpdaterConfig{
			BenchmarkPair: getEnv("BENCHMARK_PAIR", "ETH/USDT:USDT"),
			Pairs:         getEnvAsSlice("DEFAULT_PAIRS", DefaultPairs),
			LookbackDays:  getEnvAsInt("LOOKBACK_DAYS", 28),
			UpdateHour:    getEnvAsInt("UPDATE_HOUR", 2),
			UpdateMinute:  getEnvAsInt("UPDATE_MINUTE", 0),
			UpdateOnStart: getEnvAsBool("UPDATE_ON_START", false),
		},
		Security: SecurityConfig{
			APIKeyRequired: getEnvAsBool("API_KEY_REQUIRED", false),
			APIKey:         getEnv("API_KEY", ""),
			APIKeyHash:     getEnv("API_KEY_HASH", ""),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет критичные параметры конфигурации
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if !exchange.IsSupported(c.Exchange.Name) {
		return fmt.Errorf("EXCHANGE %q is not supported, use one of: %s",
			c.Exchange.Name, strings.Join(exchange.SupportedExchanges, ", "))
	}

	if c.Exchange.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.Exchange.FetchTimeout)
	}

	// Минимум 2 дня истории: для одной доходности нужны две свечи
	if c.Updater.LookbackDays < 2 {
		return fmt.Errorf("LOOKBACK_DAYS must be at least 2, got %d", c.Updater.LookbackDays)
	}

	if c.Updater.UpdateHour < 0 || c.Updater.UpdateHour > 23 {
		return fmt.Errorf("UPDATE_HOUR must be between 0 and 23, got %d", c.Updater.UpdateHour)
	}

	if c.Updater.UpdateMinute < 0 || c.Updater.UpdateMinute > 59 {
		return fmt.Errorf("UPDATE_MINUTE must be between 0 and 59, got %d", c.Updater.UpdateMinute)
	}

	if c.Updater.BenchmarkPair == "" {
		return fmt.Errorf("BENCHMARK_PAIR must not be empty")
	}

	if len(c.Updater.Pairs) == 0 {
		return fmt.Errorf("DEFAULT_PAIRS must contain at least one pair")
	}

	if c.Security.APIKeyRequired && c.Security.APIKey == "" && c.Security.APIKeyHash == "" {
		return fmt.Errorf("API_KEY_REQUIRED is set but neither API_KEY nor API_KEY_HASH is provided")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
