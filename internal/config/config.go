// Package config loads the service settings from defaults, an optional
// config file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"woodcraft/internal/repositories"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "WOODCRAFT_CONFIG_FILE"

type Config struct {
	AppPort         string        `mapstructure:"app_port"`
	LogLevel        string        `mapstructure:"log_level"`
	StoreDriver     string        `mapstructure:"store_driver"`
	DatabaseDSN     string        `mapstructure:"database_dsn"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTTTL          time.Duration `mapstructure:"jwt_ttl"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	RabbitMQURL     string        `mapstructure:"rabbitmq_url"`
	ActivityQueue   string        `mapstructure:"activity_queue"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads the configuration. args are the command line arguments without
// the program name; only --config is read from them.
func Load(args []string) (Config, error) {
	const op = "config.Load"

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: failed to load config file: %w", op, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", repositories.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "woodcraft.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "woodcraft")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ACTIVITY_QUEUE", "activity_queue")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("woodcraft", pflag.ContinueOnError)
	// Binaries declare their own flags next to --config.
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	cmdLine.Usage = func() {}
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case repositories.DriverMemory, repositories.DriverSQLite, repositories.DriverPostgres, repositories.DriverMongo:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Origins splits AllowedOrigins on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
