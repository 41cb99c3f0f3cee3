// Package config assembles runtime settings from an optional YAML file
// and the environment. Environment variables win over the file; the
// file wins over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	RateLimitRPS      float64       `yaml:"rateLimitRps"`
	RateLimitBurst    int           `yaml:"rateLimitBurst"`
}

type Optimizer struct {
	Capacity        int           `yaml:"capacity"`
	MaxRouteTimeMin int           `yaml:"maxRouteTimeMin"`
	AverageSpeedMph float64       `yaml:"averageSpeedMph"`
	ServiceTimeMin  int           `yaml:"serviceTimeMin"`
	FleetSize       int           `yaml:"fleetSize"`
	CostPerMile     float64       `yaml:"costPerMile"`
	IdealMilesStop  float64       `yaml:"idealMilesPerStop"`
	TimeBudget      time.Duration `yaml:"timeBudget"`
}

type Forecast struct {
	DefaultHorizonDays int `yaml:"defaultHorizonDays"`
	MaxHorizonDays     int `yaml:"maxHorizonDays"`
}

type Stock struct {
	LeadTimeDays int     `yaml:"leadTimeDays"`
	ServiceLevel float64 `yaml:"serviceLevel"`
}

type Config struct {
	Server      Server    `yaml:"server"`
	Optimizer   Optimizer `yaml:"optimizer"`
	Forecast    Forecast  `yaml:"forecast"`
	Stock       Stock     `yaml:"stock"`
	DatabaseURL string    `yaml:"databaseUrl"`
	RedisURL    string    `yaml:"redisUrl"`
}

// Default returns the built-in settings used when nothing overrides them.
func Default() Config {
	return Config{
		Server: Server{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			RateLimitRPS:      20,
			RateLimitBurst:    40,
		},
		Optimizer: Optimizer{
			Capacity:        1000,
			MaxRouteTimeMin: 480,
			AverageSpeedMph: 50,
			ServiceTimeMin:  15,
			FleetSize:       1,
			CostPerMile:     2.5,
			IdealMilesStop:  10,
			TimeBudget:      30 * time.Second,
		},
		Forecast: Forecast{
			DefaultHorizonDays: 7,
			MaxHorizonDays:     90,
		},
		Stock: Stock{
			LeadTimeDays: 7,
			ServiceLevel: 0.95,
		},
	}
}

// Load builds the effective configuration. A YAML file at CONFIG_PATH
// is read if present; individual environment variables override it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v, ok := envFloat("RATE_LIMIT_RPS"); ok {
		cfg.Server.RateLimitRPS = v
	}
	if v, ok := envInt("RATE_LIMIT_BURST"); ok {
		cfg.Server.RateLimitBurst = v
	}
	if v, ok := envInt("OPTIMIZER_CAPACITY"); ok {
		cfg.Optimizer.Capacity = v
	}
	if v, ok := envInt("OPTIMIZER_MAX_ROUTE_TIME_MIN"); ok {
		cfg.Optimizer.MaxRouteTimeMin = v
	}
	if v, ok := envFloat("OPTIMIZER_AVERAGE_SPEED_MPH"); ok {
		cfg.Optimizer.AverageSpeedMph = v
	}
	if v, ok := envInt("OPTIMIZER_FLEET_SIZE"); ok {
		cfg.Optimizer.FleetSize = v
	}
	if v := os.Getenv("OPTIMIZER_TIME_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Optimizer.TimeBudget = d
		}
	}
	if v, ok := envInt("STOCK_LEAD_TIME_DAYS"); ok {
		cfg.Stock.LeadTimeDays = v
	}
	if v, ok := envFloat("STOCK_SERVICE_LEVEL"); ok {
		cfg.Stock.ServiceLevel = v
	}
}

func (c Config) validate() error {
	if c.Optimizer.Capacity <= 0 {
		return fmt.Errorf("optimizer capacity must be positive, got %d", c.Optimizer.Capacity)
	}
	if c.Optimizer.AverageSpeedMph <= 0 {
		return fmt.Errorf("optimizer average speed must be positive, got %v", c.Optimizer.AverageSpeedMph)
	}
	if c.Optimizer.FleetSize <= 0 {
		return fmt.Errorf("optimizer fleet size must be positive, got %d", c.Optimizer.FleetSize)
	}
	if c.Optimizer.TimeBudget <= 0 {
		return fmt.Errorf("optimizer time budget must be positive, got %v", c.Optimizer.TimeBudget)
	}
	if c.Stock.ServiceLevel <= 0 || c.Stock.ServiceLevel >= 1 {
		return fmt.Errorf("stock service level must be in (0,1), got %v", c.Stock.ServiceLevel)
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
