package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// storage, one of: sqlite, redis
	StorageBackend string `toml:"storage_backend"`
	SQLitePath     string `toml:"sqlite_path"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	// progress store
	FlushInterval       Duration `toml:"flush_interval"`
	MorningReminderTime string   `toml:"morning_reminder_time"`
	EveningPrepTime     string   `toml:"evening_prep_time"`
	CheckinRateLimit    int      `toml:"checkin_rate_limit_per_min"`

	// offline cache
	CacheVersion      string   `toml:"cache_version"`
	CacheBackend      string   `toml:"cache_backend"`
	CacheMemorySizeMB int      `toml:"cache_memory_size_mb"`
	AppShellOrigin    string   `toml:"app_shell_origin"`
	AppShellManifest  []string `toml:"app_shell_manifest"`

	// development only: CORS for any http://localhost and http://127.0.0.1 port
	CorsAllowLocalhost bool `toml:"cors_allow_localhost"`

	// weather advisory
	AdvisoryProvider string `toml:"advisory_provider"`
	WeatherCityID    int    `toml:"weather_city_id"`
	OpenWeatherURL   string `toml:"open_weather_url"`
}

// Duration lets TOML values like "5s" decode into time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with unset values replaced by defaults.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8545
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "9545"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "sqlite"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "./data/fitness-tracker.db"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.FlushInterval.Duration == 0 {
		c.FlushInterval.Duration = 5 * time.Second
	}
	if c.MorningReminderTime == "" {
		c.MorningReminderTime = "05:45"
	}
	if c.EveningPrepTime == "" {
		c.EveningPrepTime = "21:00"
	}
	if c.CacheVersion == "" {
		c.CacheVersion = "fitness-tracker-v1.0"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "memory"
	}
	if c.CacheMemorySizeMB == 0 {
		c.CacheMemorySizeMB = 64
	}
	if c.AppShellOrigin == "" {
		c.AppShellOrigin = "http://localhost:8080"
	}
	if len(c.AppShellManifest) == 0 {
		c.AppShellManifest = []string{
			"/",
			"/index.html",
			"/app.js",
			"/manifest.json",
			"/icon-192.png",
			"/icon-512.png",
		}
	}
	if c.AdvisoryProvider == "" {
		c.AdvisoryProvider = "static"
	}
	if c.OpenWeatherURL == "" {
		c.OpenWeatherURL = "http://api.openweathermap.org/data/2.5"
	}
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("invalid storage backend: %s", c.StorageBackend)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %s", c.CacheBackend)
	}
	switch c.AdvisoryProvider {
	case "static", "random", "openweather":
	default:
		return fmt.Errorf("invalid advisory provider: %s", c.AdvisoryProvider)
	}
	if c.CorsAllowLocalhost && c.IsProduction() {
		return fmt.Errorf("cors_allow_localhost is only allowed in development")
	}
	if _, err := time.Parse("15:04", c.MorningReminderTime); err != nil {
		return fmt.Errorf("invalid morning reminder time %q: %w", c.MorningReminderTime, err)
	}
	if _, err := time.Parse("15:04", c.EveningPrepTime); err != nil {
		return fmt.Errorf("invalid evening prep time %q: %w", c.EveningPrepTime, err)
	}
	return nil
}
