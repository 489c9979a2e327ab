package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Tiles     TilesConfig     `mapstructure:"tiles"`
	Render    RenderConfig    `mapstructure:"render"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// RenderTimeout bounds one synchronous render request, in seconds.
	RenderTimeout int `mapstructure:"render_timeout"`
	BodyLimit     int `mapstructure:"body_limit"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TilesConfig struct {
	URLTemplate     string   `mapstructure:"url_template"`
	Subdomains      []string `mapstructure:"subdomains"`
	UserAgent       string   `mapstructure:"user_agent"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds"`
	MaxConnsPerHost int      `mapstructure:"max_conns_per_host"`
	// Seed fixes the subdomain chooser; 0 means time-seeded.
	Seed int64 `mapstructure:"seed"`
}

// Timeout returns the per-tile timeout.
func (t TilesConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type RenderConfig struct {
	ViewportWidth    int     `mapstructure:"viewport_width"`
	ViewportHeight   int     `mapstructure:"viewport_height"`
	PlaceholderColor string  `mapstructure:"placeholder_color"`
	DefaultLineColor string  `mapstructure:"default_line_color"`
	DefaultLineWidth float64 `mapstructure:"default_line_width"`
	MaxDimension     int     `mapstructure:"max_dimension"`
	ImageTTLSeconds  int     `mapstructure:"image_ttl_seconds"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.render_timeout", 30)
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trackmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "trackmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tiles.url_template", "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png")
	v.SetDefault("tiles.subdomains", []string{"a", "b", "c", "d"})
	v.SetDefault("tiles.user_agent", "trackmap/1.0")
	v.SetDefault("tiles.timeout_seconds", 10)
	v.SetDefault("tiles.cache_ttl_seconds", 86400)
	v.SetDefault("tiles.max_conns_per_host", 16)
	v.SetDefault("tiles.seed", 0)
	v.SetDefault("render.viewport_width", 1024)
	v.SetDefault("render.viewport_height", 768)
	v.SetDefault("render.placeholder_color", "#e5e5e5")
	v.SetDefault("render.default_line_color", "#3b82f6")
	v.SetDefault("render.default_line_width", 4.0)
	v.SetDefault("render.max_dimension", 4096)
	v.SetDefault("render.image_ttl_seconds", 3600)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "trackmap-render")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRACKMAP_TILES_URL_TEMPLATE → tiles.url_template
	v.SetEnvPrefix("TRACKMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RenderTimeout <= 0 {
		errs = append(errs, "server.render_timeout must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Tiles.URLTemplate == "" {
		errs = append(errs, "tiles.url_template is required")
	} else {
		for _, p := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(c.Tiles.URLTemplate, p) {
				errs = append(errs, fmt.Sprintf("tiles.url_template must contain %s", p))
			}
		}
		if strings.Contains(c.Tiles.URLTemplate, "{s}") && len(c.Tiles.Subdomains) == 0 {
			errs = append(errs, "tiles.subdomains is required when url_template uses {s}")
		}
	}
	if c.Tiles.TimeoutSeconds <= 0 {
		errs = append(errs, "tiles.timeout_seconds must be positive")
	}
	if c.Render.ViewportWidth <= 0 || c.Render.ViewportHeight <= 0 {
		errs = append(errs, "render.viewport_width and render.viewport_height must be positive")
	}
	if c.Render.DefaultLineWidth <= 0 {
		errs = append(errs, "render.default_line_width must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
