// Package config resolves rollover settings from defaults, an optional
// .env file, an optional policy file and ROLLOVER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/schoolops/rollover/internal/service"
	"github.com/schoolops/rollover/internal/transition"
)

const envPrefix = "ROLLOVER"

// Config is the resolved configuration of one invocation.
type Config struct {
	DBPath            string
	UpperCapacity     int
	LowerCapacity     int
	ConflictsBlock    bool
	ConfirmationToken string
	LogUseCases       bool
	PermitTTL         time.Duration
}

// Options tells Load where to look for optional files. Empty fields use
// ".env" in the working directory and $ROLLOVER_CONFIG.
type Options struct {
	DotEnvPath string
	ConfigFile string
}

// Load resolves the configuration. Precedence, highest first: environment,
// policy file, defaults. A missing .env file is not an error.
func Load(opts Options) (*Config, error) {
	dotEnv := opts.DotEnvPath
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if _, err := os.Stat(dotEnv); err == nil {
		if err := godotenv.Load(dotEnv); err != nil {
			return nil, fmt.Errorf("loading %s: %w", dotEnv, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", dotEnv, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("db", defaultDBPath())
	v.SetDefault("upper_capacity", transition.DefaultCapacityPolicy().UpperCapacity)
	v.SetDefault("lower_capacity", transition.DefaultCapacityPolicy().LowerCapacity)
	v.SetDefault("conflicts_block", false)
	v.SetDefault("confirmation_token", service.DefaultConfirmationToken)
	v.SetDefault("log_use_cases", false)
	v.SetDefault("permit_ttl", service.DefaultPermitTTL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	file := opts.ConfigFile
	if file == "" {
		file = os.Getenv(envPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		DBPath:            v.GetString("db"),
		UpperCapacity:     v.GetInt("upper_capacity"),
		LowerCapacity:     v.GetInt("lower_capacity"),
		ConflictsBlock:    v.GetBool("conflicts_block"),
		ConfirmationToken: v.GetString("confirmation_token"),
		LogUseCases:       v.GetBool("log_use_cases"),
		PermitTTL:         v.GetDuration("permit_ttl"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db path is empty")
	}
	if c.LowerCapacity < 0 || c.UpperCapacity < 0 {
		return fmt.Errorf("config: capacities must not be negative")
	}
	if c.UpperCapacity > 0 && c.LowerCapacity > c.UpperCapacity {
		return fmt.Errorf("config: lower_capacity %d exceeds upper_capacity %d", c.LowerCapacity, c.UpperCapacity)
	}
	if strings.TrimSpace(c.ConfirmationToken) != c.ConfirmationToken || c.ConfirmationToken == "" {
		return fmt.Errorf("config: confirmation_token must be non-empty without surrounding spaces")
	}
	if c.PermitTTL <= 0 {
		return fmt.Errorf("config: permit_ttl must be positive")
	}
	return nil
}

// Policy returns the capacity policy handed to the simulation.
func (c *Config) Policy() transition.CapacityPolicy {
	return transition.CapacityPolicy{
		UpperCapacity:  c.UpperCapacity,
		LowerCapacity:  c.LowerCapacity,
		ConflictsBlock: c.ConflictsBlock,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rollover.db"
	}
	return filepath.Join(home, ".rollover", "rollover.db")
}
