package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration resolved from file, environment
// and defaults.
type Config struct {
	DBPath        string
	Timezone      string
	HouseholdFile string

	// Retention, in periods kept per rolling window. Zero keeps everything.
	RetainDaily   int
	RetainWeekly  int
	RetainMonthly int
	RetainYearly  int

	// SweepInterval drives the board's background overdue/reset pass.
	SweepInterval time.Duration
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load resolves configuration. Precedence: explicit path argument, then
// $CWD/.kidschores/config.yaml, then ~/.config/kc/config.yaml, then
// environment (KC_*), then defaults.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("db_path", "")
	v.SetDefault("timezone", "")
	v.SetDefault("household_file", "")
	v.SetDefault("retain_daily", 90)
	v.SetDefault("retain_weekly", 52)
	v.SetDefault("retain_monthly", 24)
	v.SetDefault("retain_yearly", 0)
	v.SetDefault("sweep_interval", "1m")

	configFileSet := false
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		configFileSet = true
	}
	if !configFileSet {
		if cwd, err := os.Getwd(); err == nil {
			path := filepath.Join(cwd, ".kidschores", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			path := filepath.Join(configDir, "kc", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("KC")
	v.AutomaticEnv()

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:        v.GetString("db_path"),
		Timezone:      v.GetString("timezone"),
		HouseholdFile: v.GetString("household_file"),
		RetainDaily:   v.GetInt("retain_daily"),
		RetainWeekly:  v.GetInt("retain_weekly"),
		RetainMonthly: v.GetInt("retain_monthly"),
		RetainYearly:  v.GetInt("retain_yearly"),
		SweepInterval: v.GetDuration("sweep_interval"),
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return cfg, nil
}

// WriteStarter writes a commented starter config next to the household file.
func WriteStarter(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	starter := `# KidsChores configuration.
# db_path: /path/to/kidschores.db
# timezone: America/New_York
# household_file: household.yaml
# retain_daily: 90
# retain_weekly: 52
# retain_monthly: 24
# retain_yearly: 0
# sweep_interval: 1m
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
