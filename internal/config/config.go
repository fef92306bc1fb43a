package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

var (
	// ErrReadConfig ошибка чтения файла конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")
	// ErrInvalidConfig некорректное значение параметра
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig      `toml:"server"`
	Database       DatabaseConfig    `toml:"database"`
	Logs           LogsConfig        `toml:"logs"`
	Metrics        MetricsConfig     `toml:"metrics"`
	Redis          RedisConfig       `toml:"redis"`
	Lock           LockConfig        `toml:"lock"`
	TherapyCatalog IntegrationConfig `toml:"therapy_catalog"`
	Identity       IntegrationConfig `toml:"identity"`
	Payments       PaymentsConfig    `toml:"payments"`
	RateLimit      RateLimitConfig   `toml:"rate_limit"`
	Scheduling     SchedulingConfig  `toml:"scheduling"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	// SerializableRetries число повторов транзакции бронирования при конфликте сериализации
	SerializableRetries int `toml:"serializable_retries"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL строка подключения для golang-migrate
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	URL      string `toml:"url"`
	PoolSize int    `toml:"pool_size"`
}

// LockConfig блокировки календаря врача; длительности в миллисекундах
type LockConfig struct {
	// Backend local или redis
	Backend         string `toml:"backend"`
	TTLMs           int    `toml:"ttl_ms"`
	WaitTimeoutMs   int    `toml:"wait_timeout_ms"`
	RetryIntervalMs int    `toml:"retry_interval_ms"`
}

func (c LockConfig) TTL() time.Duration           { return time.Duration(c.TTLMs) * time.Millisecond }
func (c LockConfig) WaitTimeout() time.Duration   { return time.Duration(c.WaitTimeoutMs) * time.Millisecond }
func (c LockConfig) RetryInterval() time.Duration { return time.Duration(c.RetryIntervalMs) * time.Millisecond }

// IntegrationConfig внешний HTTP-сервис с circuit breaker
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
	// BreakerFailures подряд идущих ошибок до размыкания
	BreakerFailures int `toml:"breaker_failures"`
	// BreakerOpenTimeout секунд в разомкнутом состоянии
	BreakerOpenTimeout int `toml:"breaker_open_timeout"`
}

type PaymentsConfig struct {
	WebhookSecret string `toml:"webhook_secret"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type SchedulingConfig struct {
	// Timezone часовой пояс, в котором заданы даты и время записей
	Timezone                  string `toml:"timezone"`
	DefaultGranularityMinutes int    `toml:"default_granularity_minutes"`
	WorkdayStart              string `toml:"workday_start"`
	WorkdayEnd                string `toml:"workday_end"`
}

// Location загруженный часовой пояс; Validate гарантирует корректность
func (c SchedulingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load читает config.toml, затем .env и переменные окружения поверх файла
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Payments.WebhookSecret, "PAYMENT_WEBHOOK_SECRET")
	setString(&c.Logs.Level, "LOG_LEVEL")

	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	setDefault(&c.Database.SerializableRetries, 3)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "therapy-booking-service"
	}

	if c.Lock.Backend == "" {
		c.Lock.Backend = "local"
	}
	setDefault(&c.Lock.TTLMs, 10000)
	setDefault(&c.Lock.WaitTimeoutMs, 3000)
	setDefault(&c.Lock.RetryIntervalMs, 50)

	for _, integration := range []*IntegrationConfig{&c.TherapyCatalog, &c.Identity} {
		setDefault(&integration.Timeout, 5)
		setDefault(&integration.BreakerFailures, 5)
		setDefault(&integration.BreakerOpenTimeout, 30)
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	setDefault(&c.RateLimit.Burst, 20)

	if c.Scheduling.Timezone == "" {
		c.Scheduling.Timezone = "UTC"
	}
	setDefault(&c.Scheduling.DefaultGranularityMinutes, domain.DefaultSlotGranularityMinutes)
	if c.Scheduling.WorkdayStart == "" {
		c.Scheduling.WorkdayStart = domain.DefaultWorkdayStart
	}
	if c.Scheduling.WorkdayEnd == "" {
		c.Scheduling.WorkdayEnd = domain.DefaultWorkdayEnd
	}
}

// Validate проверяет обязательные параметры и диапазоны
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	switch c.Lock.Backend {
	case "local":
	case "redis":
		if c.Redis.URL == "" {
			problems = append(problems, "redis.url is required for lock.backend=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("lock.backend %q must be local or redis", c.Lock.Backend))
	}
	if c.TherapyCatalog.URL == "" {
		problems = append(problems, "therapy_catalog.url is required")
	}
	if c.Identity.URL == "" {
		problems = append(problems, "identity.url is required")
	}
	if _, err := time.LoadLocation(c.Scheduling.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("scheduling.timezone %q: %v", c.Scheduling.Timezone, err))
	}
	g := c.Scheduling.DefaultGranularityMinutes
	if g < domain.MinSlotGranularityMinutes || g > domain.MaxSlotGranularityMinutes {
		problems = append(problems, fmt.Sprintf("scheduling.default_granularity_minutes %d out of range", g))
	}
	start, errStart := types.NewTimeStringFromString(c.Scheduling.WorkdayStart)
	end, errEnd := types.NewTimeStringFromString(c.Scheduling.WorkdayEnd)
	if errStart != nil || errEnd != nil || !end.IsAfter(start) {
		problems = append(problems, "scheduling workday_start/workday_end must be HH:MM with end after start")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDefault(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
