package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("campusfood-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "campusfood-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, domain.ViewportBounds{North: 34.0280, South: 34.0200, East: -118.2820, West: -118.2880}, cfg.Map.ViewportBounds())
	assert.Equal(t, domain.GeoPoint{Lat: 34.0224, Lng: -118.2851}, cfg.Map.OriginPoint())
	assert.Equal(t, domain.ViewportSize{WidthPx: 800, HeightPx: 600}, cfg.Map.DefaultSize())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CAMPUSFOOD_SERVER_PORT", "9090")
	t.Setenv("CAMPUSFOOD_MAP_EXPAND_PADDING_DEG", "0.005")

	cfg, err := Load("campusfood-test")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.005, cfg.Map.ExpandPaddingDeg)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("CAMPUSFOOD_SERVER_PORT=9191\nCAMPUSFOOD_LOG_LEVEL=debug\n"), 0o600))

	// Register restores, then clear so the .env values apply.
	t.Setenv("CAMPUSFOOD_SERVER_PORT", "")
	t.Setenv("CAMPUSFOOD_LOG_LEVEL", "warn")
	require.NoError(t, os.Unsetenv("CAMPUSFOOD_SERVER_PORT"))

	cfg, err := Load("campusfood-test")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level, "real environment wins over .env")
}

func TestLoad_RejectsInvertedBounds(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CAMPUSFOOD_MAP_BOUNDS_NORTH", "34.0100")

	_, err := Load("campusfood-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map.bounds.north")
}

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "campusfood", DBName: "foodlocator"},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Map: MapConfig{
			Bounds:            BoundsConfig{North: 34.0280, South: 34.0200, East: -118.2820, West: -118.2880},
			WidthPx:           800,
			HeightPx:          600,
			MarkerMarginPx:    12,
			ExpandPaddingDeg:  0.001,
			SessionTTLSeconds: 60,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"flat bounds", func(c *Config) { c.Map.Bounds.East = c.Map.Bounds.West }, "map.bounds.east"},
		{"zero width", func(c *Config) { c.Map.WidthPx = 0 }, "map.width_px"},
		{"margin too wide", func(c *Config) { c.Map.MarkerMarginPx = 300 }, "less than half"},
		{"negative padding", func(c *Config) { c.Map.ExpandPaddingDeg = -1 }, "expand_padding_deg"},
		{"no session ttl", func(c *Config) { c.Map.SessionTTLSeconds = 0 }, "session_ttl_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "foodlocator", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/foodlocator?sslmode=disable", d.DSN())
}
