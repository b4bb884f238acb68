package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	JWTSecret          string
	StorageBackend     string
	SnapshotPath       string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	EventSubjectPrefix string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COURSEWORK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Coursework API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("snapshot.path", "data/assignments.json")
	v.SetDefault("event.subject_prefix", "coursework")

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		JWTSecret:          v.GetString("jwt.secret"),
		StorageBackend:     strings.ToLower(v.GetString("storage.backend")),
		SnapshotPath:       v.GetString("snapshot.path"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		EventSubjectPrefix: v.GetString("event.subject_prefix"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageBackend {
	case "file", "database", "redis":
	default:
		return Config{}, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}

	if cfg.StorageBackend == "database" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided for the database backend")
	}

	if cfg.StorageBackend == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided for the redis backend")
	}

	return cfg, nil
}
