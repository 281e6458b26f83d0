// Package config loads fitlog settings from a YAML file, FITLOG_* environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/app"
)

const EnvPrefix = "FITLOG"

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Meals         MealsConfig         `mapstructure:"meals"`
	Session       SessionConfig       `mapstructure:"session"`
	Log           LogConfig           `mapstructure:"log"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	// Hasher is the digest used for new registrations: sha256 or bcrypt.
	Hasher string `mapstructure:"hasher"`
}

type MealsConfig struct {
	HighCalorieThreshold float64 `mapstructure:"high_calorie_threshold"`
}

type SessionConfig struct {
	// Path is the file holding the current login token. Empty means next
	// to the database.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OpenFoodFactsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Options locate the config sources. Empty fields select the defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load merges defaults, the config file, the .env file and the environment,
// in increasing precedence. A missing config or .env file is not an error.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFile
	explicit := path != ""
	if !explicit {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.Path == "" {
		p, err := app.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.Database.Path = p
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.hasher", "sha256")
	v.SetDefault("meals.high_calorie_threshold", 1200.0)
	v.SetDefault("session.path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
	case "postgres", "pgx":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (use sqlite or postgres)", c.Database.Driver)
	}
	if c.Meals.HighCalorieThreshold <= 0 {
		return fmt.Errorf("meals.high_calorie_threshold must be > 0")
	}
	return nil
}

// SessionPath is where the login token lives for this config.
func (c Config) SessionPath() string {
	if c.Session.Path != "" {
		return c.Session.Path
	}
	return app.SessionPathFor(c.Database.Path)
}
