package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
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
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
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

// MapConfig describes the static campus map.
type MapConfig struct {
	Bounds            BoundsConfig `mapstructure:"bounds"`
	Origin            PointConfig  `mapstructure:"origin"`
	WidthPx           float64      `mapstructure:"width_px"`
	HeightPx          float64      `mapstructure:"height_px"`
	MarkerMarginPx    float64      `mapstructure:"marker_margin_px"`
	ExpandPaddingDeg  float64      `mapstructure:"expand_padding_deg"`
	SessionTTLSeconds int          `mapstructure:"session_ttl_seconds"`
}

type BoundsConfig struct {
	North float64 `mapstructure:"north"`
	South float64 `mapstructure:"south"`
	East  float64 `mapstructure:"east"`
	West  float64 `mapstructure:"west"`
}

type PointConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

// ViewportBounds returns the configured starting bounds.
func (m MapConfig) ViewportBounds() domain.ViewportBounds {
	return domain.ViewportBounds{
		North: m.Bounds.North,
		South: m.Bounds.South,
		East:  m.Bounds.East,
		West:  m.Bounds.West,
	}
}

// DefaultSize is the viewport size used when a request does not send one.
func (m MapConfig) DefaultSize() domain.ViewportSize {
	return domain.ViewportSize{WidthPx: m.WidthPx, HeightPx: m.HeightPx}
}

// OriginPoint is the campus centre used when no user position is known.
func (m MapConfig) OriginPoint() domain.GeoPoint {
	return domain.GeoPoint{Lat: m.Origin.Lat, Lng: m.Origin.Lng}
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// A local .env fills in variables the environment does not already set.
	_ = godotenv.Load()

	// Environment variables: CAMPUSFOOD_DATABASE_HOST → database.host
	v.SetEnvPrefix("CAMPUSFOOD")
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

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "campusfood")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "foodlocator")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "campusfood:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// USC University Park campus.
	v.SetDefault("map.bounds.north", 34.0280)
	v.SetDefault("map.bounds.south", 34.0200)
	v.SetDefault("map.bounds.east", -118.2820)
	v.SetDefault("map.bounds.west", -118.2880)
	v.SetDefault("map.origin.lat", 34.0224)
	v.SetDefault("map.origin.lng", -118.2851)
	v.SetDefault("map.width_px", 800)
	v.SetDefault("map.height_px", 600)
	v.SetDefault("map.marker_margin_px", 12)
	v.SetDefault("map.expand_padding_deg", 0.001)
	v.SetDefault("map.session_ttl_seconds", 86400)
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
	errs = append(errs, c.Map.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validate rejects map settings that would make projection or clamping degenerate.
func (m MapConfig) validate() []string {
	var errs []string

	if m.Bounds.North <= m.Bounds.South {
		errs = append(errs, fmt.Sprintf("map.bounds.north (%g) must be greater than map.bounds.south (%g)", m.Bounds.North, m.Bounds.South))
	}
	if m.Bounds.East <= m.Bounds.West {
		errs = append(errs, fmt.Sprintf("map.bounds.east (%g) must be greater than map.bounds.west (%g)", m.Bounds.East, m.Bounds.West))
	}
	if m.WidthPx <= 0 || m.HeightPx <= 0 {
		errs = append(errs, "map.width_px and map.height_px must be positive")
	}
	if m.MarkerMarginPx < 0 {
		errs = append(errs, "map.marker_margin_px must not be negative")
	} else if m.MarkerMarginPx*2 >= m.WidthPx || m.MarkerMarginPx*2 >= m.HeightPx {
		errs = append(errs, "map.marker_margin_px must be less than half the viewport width and height")
	}
	if m.ExpandPaddingDeg < 0 {
		errs = append(errs, "map.expand_padding_deg must not be negative")
	}
	if m.SessionTTLSeconds <= 0 {
		errs = append(errs, "map.session_ttl_seconds must be positive")
	}
	return errs
}
