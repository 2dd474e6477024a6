package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/rpattn/rentroll/internal/db"
	"github.com/rpattn/rentroll/internal/infercache"
)

// Config gathers everything the server needs at startup.
type Config struct {
	ServerAddr     string
	Database       db.Config
	CacheTTL       time.Duration
	EngineBaseURL  string
	EngineModel    string
	EngineTimeout  time.Duration
	WatchDir       string
	MigrationsPath string
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		ServerAddr:     ":8080",
		Database:       db.DefaultConfig(),
		CacheTTL:       infercache.DefaultTTL,
		EngineTimeout:  2 * time.Minute,
		MigrationsPath: "./migrations",
	}
}

// Load reads config.yaml from configPath, allowing environment overrides
// with the RENTROLL prefix (e.g. RENTROLL_ENGINE_BASE_URL).
func Load(configPath string, logf func(format string, args ...any)) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("RENTROLL")

	v.BindEnv("server.addr")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("cache.ttl")
	v.BindEnv("engine.base_url")
	v.BindEnv("engine.model")
	v.BindEnv("engine.timeout")
	v.BindEnv("watch.dir")

	if err := v.ReadInConfig(); err != nil {
		if logf != nil {
			logf("no config.yaml found, using defaults and env vars")
		}
	} else if logf != nil {
		logf("loaded config.yaml")
	}

	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("cache.ttl") {
		cfg.CacheTTL = v.GetDuration("cache.ttl")
	}
	if v.IsSet("engine.base_url") {
		cfg.EngineBaseURL = v.GetString("engine.base_url")
	}
	if v.IsSet("engine.model") {
		cfg.EngineModel = v.GetString("engine.model")
	}
	if v.IsSet("engine.timeout") {
		cfg.EngineTimeout = v.GetDuration("engine.timeout")
	}
	if v.IsSet("watch.dir") {
		cfg.WatchDir = v.GetString("watch.dir")
	}

	return cfg, nil
}
