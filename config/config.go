package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

type Configs struct {
	Env string `toml:"env"`

	Log       LogConfigs      `toml:"log"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Database  DatabaseConfigs `toml:"database"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Draw      DrawConfigs     `toml:"draw"`
}

type LogConfigs struct {
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// File is the sqlite database path, used only when Driver is "sqlite".
	File string `toml:"file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr   string `toml:"addr"`
	Prefix string `toml:"prefix"`
}

type KafkaConfigs struct {
	// Addr is empty when the change feed runs in-process only.
	Addr  string `toml:"addr"`
	Topic string `toml:"topic"`
}

// Duration decodes TOML strings such as "25ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

type DrawConfigs struct {
	Backend      string   `toml:"backend"`
	MaxAttempts  int      `toml:"max_attempts"`
	RetryBackoff Duration `toml:"retry_backoff"`
	WinnerWindow int      `toml:"winner_window"`
	NodeID       int64    `toml:"node_id"`
}

func Default() Configs {
	return Configs{
		Env: "local",
		Log: LogConfigs{Level: "info"},
		ApiServer: ServerConfigs{
			Host:           "",
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfigs{
			Driver: "sqlite",
			File:   "prizechest.db",
		},
		Redis: RedisConfigs{
			Addr:   "localhost:6379",
			Prefix: "prizechest",
		},
		Kafka: KafkaConfigs{
			Topic: "prizechest.changes",
		},
		Draw: DrawConfigs{
			Backend:      BackendMemory,
			MaxAttempts:  5,
			RetryBackoff: Duration{10 * time.Millisecond},
			WinnerWindow: 50,
			NodeID:       1,
		},
	}
}

// Load reads the optional .env file, decodes the TOML file at path on top of
// the defaults, then applies PRIZECHEST_* environment overrides. A missing
// file at path is not an error.
func Load(path string) (Configs, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Configs{}, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Configs{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Configs{}, err
	}
	cfg.Draw.Backend = strings.ToLower(strings.TrimSpace(cfg.Draw.Backend))

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Configs) error {
	strs := map[string]*string{
		"PRIZECHEST_ENV":               &cfg.Env,
		"PRIZECHEST_LOG_LEVEL":         &cfg.Log.Level,
		"PRIZECHEST_API_PORT":          &cfg.ApiServer.Port,
		"PRIZECHEST_DRAW_BACKEND":      &cfg.Draw.Backend,
		"PRIZECHEST_DATABASE_DRIVER":   &cfg.Database.Driver,
		"PRIZECHEST_DATABASE_HOST":     &cfg.Database.Host,
		"PRIZECHEST_DATABASE_PORT":     &cfg.Database.Port,
		"PRIZECHEST_DATABASE_NAME":     &cfg.Database.Database,
		"PRIZECHEST_DATABASE_USER":     &cfg.Database.User,
		"PRIZECHEST_DATABASE_PASSWORD": &cfg.Database.Password,
		"PRIZECHEST_REDIS_ADDR":        &cfg.Redis.Addr,
		"PRIZECHEST_KAFKA_ADDR":        &cfg.Kafka.Addr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("PRIZECHEST_DRAW_NODE_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PRIZECHEST_DRAW_NODE_ID: %w", err)
		}
		cfg.Draw.NodeID = id
	}

	return nil
}

func (c Configs) Validate() error {
	switch c.Draw.Backend {
	case BackendMemory, BackendDatabase, BackendRedis:
	default:
		return fmt.Errorf("unknown draw backend %q", c.Draw.Backend)
	}

	if c.Draw.MaxAttempts <= 0 {
		return fmt.Errorf("draw.max_attempts must be a positive number")
	}

	if c.Draw.WinnerWindow <= 0 {
		return fmt.Errorf("draw.winner_window must be a positive number")
	}

	return nil
}
