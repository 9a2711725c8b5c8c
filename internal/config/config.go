package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	defaultConfigPath         = "config/config.yaml"
	defaultAddress            = ":4000"
	defaultDriver             = "mysql"
	defaultMongoDatabase      = "outswap"
	defaultRateLimitRPS       = 20
	defaultRateLimitBurst     = 40
	defaultActivationSchedule = "@every 1m"
)

type Config struct {
	App struct {
		Env         string `yaml:"env"`
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"app"`
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver        string `yaml:"driver"`
		URL           string `yaml:"url"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Scheduler struct {
		Activation string `yaml:"activation"`
	} `yaml:"scheduler"`
}

// Development reports whether internal error details may be exposed.
func (c Config) Development() bool {
	return c.App.Env == "development"
}

// LoadConfig reads .env (if present), then the YAML file at CONFIG_PATH
// (optional), then applies environment overrides and defaults.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && os.Getenv("CONFIG_PATH") == "":
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)

	if cfg.Database.Driver != "mysql" && cfg.Database.Driver != "mongo" {
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.FrontendURL, "FRONTEND_URL")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.MongoURI, "MONGODB_URI")
	setString(&cfg.Database.MongoDatabase, "MONGODB_DATABASE")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Scheduler.Activation, "ACTIVATION_SCHEDULE")

	if v, err := readFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
	} else if v != nil {
		cfg.RateLimit.RPS = *v
	}
	if v, err := readIntEnv("RATE_LIMIT_BURST"); err != nil {
		return fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
	} else if v != nil {
		cfg.RateLimit.Burst = *v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "production"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaultDriver
	}
	if cfg.Database.MongoDatabase == "" {
		cfg.Database.MongoDatabase = defaultMongoDatabase
	}
	if cfg.RateLimit.RPS <= 0 {
		cfg.RateLimit.RPS = defaultRateLimitRPS
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = defaultRateLimitBurst
	}
	if cfg.Scheduler.Activation == "" {
		cfg.Scheduler.Activation = defaultActivationSchedule
	}
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readFloatEnv(name string) (*float64, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
