package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreRedis  StoreBackend = "redis"
	StoreMemory StoreBackend = "memory"
)

type Config struct {
	Port string `yaml:"port"`

	Store       StoreBackend `yaml:"store"`
	DBPath      string       `yaml:"db_path"`
	RedisAddr   string       `yaml:"redis_addr"`
	RedisPrefix string       `yaml:"redis_prefix"`

	LogLevel string `yaml:"log_level"`

	ReplyDelayMin time.Duration `yaml:"reply_delay_min"`
	ReplyDelayMax time.Duration `yaml:"reply_delay_max"`
	ReplyTimeout  time.Duration `yaml:"reply_timeout"` // bound on one responder call

	CatalogPath string `yaml:"catalog_path"` // empty = built-in keyword catalog
	StaticDir   string `yaml:"static_dir"`
	PrefersDark bool   `yaml:"prefers_dark"` // initial OS color scheme
}

func Default() *Config {
	return &Config{
		Port:          "8100",
		Store:         StoreSQLite,
		DBPath:        "lumi.db",
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "lumi",
		LogLevel:      "info",
		ReplyDelayMin: time.Second,
		ReplyDelayMax: 3 * time.Second,
		ReplyTimeout:  30 * time.Second,
		StaticDir:     "web",
	}
}

// Load builds the config from defaults, the YAML file named by LUMI_CONFIG
// (if set) and LUMI_* environment overrides, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("LUMI_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "LUMI_PORT")
	setString((*string)(&c.Store), "LUMI_STORE")
	setString(&c.DBPath, "LUMI_DB_PATH")
	setString(&c.RedisAddr, "LUMI_REDIS_ADDR")
	setString(&c.RedisPrefix, "LUMI_REDIS_PREFIX")
	setString(&c.LogLevel, "LUMI_LOG_LEVEL")
	setString(&c.CatalogPath, "LUMI_CATALOG_PATH")
	setString(&c.StaticDir, "LUMI_STATIC_DIR")

	if err := setDuration(&c.ReplyDelayMin, "LUMI_REPLY_DELAY_MIN"); err != nil {
		return err
	}
	if err := setDuration(&c.ReplyDelayMax, "LUMI_REPLY_DELAY_MAX"); err != nil {
		return err
	}
	if err := setDuration(&c.ReplyTimeout, "LUMI_REPLY_TIMEOUT"); err != nil {
		return err
	}
	if v := os.Getenv("LUMI_PREFERS_DARK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LUMI_PREFERS_DARK: %w", err)
		}
		c.PrefersDark = b
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for the sqlite store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want sqlite, redis or memory)", c.Store)
	}

	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.ReplyDelayMin < 0 || c.ReplyDelayMax < c.ReplyDelayMin {
		return fmt.Errorf("reply delay range %s..%s is invalid", c.ReplyDelayMin, c.ReplyDelayMax)
	}
	if c.ReplyTimeout <= 0 {
		return fmt.Errorf("reply_timeout must be positive, got %s", c.ReplyTimeout)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
