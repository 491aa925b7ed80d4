// Package config carga la configuración del servicio: defaults, archivo YAML opcional
// y variables de entorno GOTEO_* (en ese orden de prioridad creciente).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "GOTEO"
	EnvConfigPath     = "GOTEO_CONFIG"
	DefaultConfigPath = "configs/config.yaml"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	// ID separa el historial de instancias que comparten almacén.
	ID string `mapstructure:"id"`
	// Env "dev" habilita X-Debug-User-ID cuando no hay verificador.
	Env string `mapstructure:"env"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // memory | postgres | redis
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type NotifyConfig struct {
	Driver        string `mapstructure:"driver"` // log | pushover | none
	PushoverToken string `mapstructure:"pushover_token"`
	PushoverUser  string `mapstructure:"pushover_user"`
	PushoverURL   string `mapstructure:"pushover_url"`
}

type AuthConfig struct {
	VerifyURL      string `mapstructure:"verify_url"`
	APIKey         string `mapstructure:"api_key"`
	AllowAnonymous bool   `mapstructure:"allow_anonymous"`
}

type ReminderConfig struct {
	DefaultMinutesBefore float64 `mapstructure:"default_minutes_before"`
}

type SessionConfig struct {
	// IdleTTL en 0 mantiene las sesiones hasta apagar el proceso.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Log:      LogConfig{Level: "info", Format: "json"},
		App:      AppConfig{Name: "goteo", ID: "default", Env: "dev"},
		Storage:  StorageConfig{Driver: "memory", RedisAddr: "localhost:6379"},
		Notify:   NotifyConfig{Driver: "log"},
		Auth:     AuthConfig{AllowAnonymous: true},
		Reminder: ReminderConfig{DefaultMinutesBefore: 5},
		Session:  SessionConfig{IdleTTL: 12 * time.Hour},
	}
}

// Load usa GOTEO_CONFIG o DefaultConfigPath.
func Load() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFrom(path)
}

// LoadFrom parte de Default, aplica el archivo si existe y después las env vars.
// Un archivo inexistente no es error; uno ilegible sí.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registra cada key; AutomaticEnv solo ve las keys conocidas.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.id", d.App.ID)
	v.SetDefault("app.env", d.App.Env)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.redis_addr", d.Storage.RedisAddr)
	v.SetDefault("storage.redis_password", d.Storage.RedisPassword)
	v.SetDefault("storage.redis_db", d.Storage.RedisDB)
	v.SetDefault("notify.driver", d.Notify.Driver)
	v.SetDefault("notify.pushover_token", d.Notify.PushoverToken)
	v.SetDefault("notify.pushover_user", d.Notify.PushoverUser)
	v.SetDefault("notify.pushover_url", d.Notify.PushoverURL)
	v.SetDefault("auth.verify_url", d.Auth.VerifyURL)
	v.SetDefault("auth.api_key", d.Auth.APIKey)
	v.SetDefault("auth.allow_anonymous", d.Auth.AllowAnonymous)
	v.SetDefault("reminder.default_minutes_before", d.Reminder.DefaultMinutesBefore)
	v.SetDefault("session.idle_ttl", d.Session.IdleTTL)
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Notify.Driver = strings.ToLower(strings.TrimSpace(c.Notify.Driver))
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	c.App.ID = strings.TrimSpace(c.App.ID)
}

// IsDev indica si se aceptan identidades de depuración.
func (c *Config) IsDev() bool {
	return c.App.Env == "dev"
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.App.ID == "" {
		errs = append(errs, errors.New("app.id is required"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for postgres"))
		}
	case "redis":
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be memory, postgres or redis", c.Storage.Driver))
	}

	switch c.Notify.Driver {
	case "log", "none":
	case "pushover":
		if strings.TrimSpace(c.Notify.PushoverToken) == "" || strings.TrimSpace(c.Notify.PushoverUser) == "" {
			errs = append(errs, errors.New("notify.pushover_token and notify.pushover_user are required for pushover"))
		}
	default:
		errs = append(errs, fmt.Errorf("notify.driver %q must be log, pushover or none", c.Notify.Driver))
	}

	if !(c.Reminder.DefaultMinutesBefore > 0) {
		errs = append(errs, errors.New("reminder.default_minutes_before must be > 0"))
	}
	if c.Session.IdleTTL < 0 {
		errs = append(errs, errors.New("session.idle_ttl must be >= 0"))
	}

	return errors.Join(errs...)
}
