package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		StorePath   string `yaml:"store_path"`
		JournalPath string `yaml:"journal_path"`
	} `yaml:"database"`
	Feed struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"feed"`
	Chart struct {
		Ticker string `yaml:"ticker"`
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Days   int    `yaml:"days"`
	} `yaml:"chart"`
	Schedule struct {
		SimCron   string `yaml:"sim_cron"`
		ChartCron string `yaml:"chart_cron"`
		SweepCron string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Sim struct {
		Enabled bool    `yaml:"enabled"`
		MaxStep float64 `yaml:"max_step"`
	} `yaml:"sim"`
	Notify struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"notify"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error;
// the defaults stand alone for local development.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DESK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DESK_STORE_PATH"); v != "" {
		cfg.Database.StorePath = v
	}
	if v := os.Getenv("DESK_JOURNAL_PATH"); v != "" {
		cfg.Database.JournalPath = v
	}
	if v := os.Getenv("POLYGON_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("DESK_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.StorePath == "" {
		cfg.Database.StorePath = "data/desk.db"
	}
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = "https://api.polygon.io"
	}
	if cfg.Chart.Ticker == "" {
		cfg.Chart.Ticker = "SPY"
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 800
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 400
	}
	if cfg.Chart.Days == 0 {
		cfg.Chart.Days = 30
	}
	if cfg.Schedule.SimCron == "" {
		cfg.Schedule.SimCron = "*/15 * * * * *"
	}
	if cfg.Schedule.ChartCron == "" {
		cfg.Schedule.ChartCron = "0 */10 * * * *"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 * * * * *"
	}
	if cfg.Sim.MaxStep == 0 {
		cfg.Sim.MaxStep = 0.02
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.StorePath == "" {
		return fmt.Errorf("database.store_path is required")
	}
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		return fmt.Errorf("chart dimensions must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.Days < 1 {
		return fmt.Errorf("chart.days must be positive, got %d", c.Chart.Days)
	}
	if c.Sim.MaxStep <= 0 || c.Sim.MaxStep >= 1 {
		return fmt.Errorf("sim.max_step must be in (0, 1), got %v", c.Sim.MaxStep)
	}
	return nil
}
