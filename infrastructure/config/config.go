// Package config loads the editor core's runtime configuration from
// defaults, an optional YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domaincfg "canvascore/domain/config"
)

// Environment identifies the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the full runtime configuration
type Config struct {
	Environment Environment  `yaml:"environment"`
	Server      ServerConfig `yaml:"server"`
	Logging     LogConfig    `yaml:"logging"`
	Domain      DomainConfig `yaml:"domain"`
}

// ServerConfig configures the REST adapter
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DomainConfig holds the runtime-tunable limits of the consistency core.
// These are the knobs hot reload is allowed to touch.
type DomainConfig struct {
	RecoveryTolerance float64       `yaml:"recovery_tolerance"`
	SignatureGrid     float64       `yaml:"signature_grid"`
	TieBreakOrder     []string      `yaml:"tie_break_order"`
	MaxHistorySize    int           `yaml:"max_history_size"`
	WorkflowTTL       time.Duration `yaml:"workflow_ttl"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	MaxCoordinate     float64       `yaml:"max_coordinate"`
}

// Default returns the baseline configuration before file and env overrides
func Default() Config {
	d := domaincfg.DefaultDomainConfig()
	order := make([]string, len(d.TieBreakOrder))
	for i, rule := range d.TieBreakOrder {
		order[i] = string(rule)
	}

	return Config{
		Environment: Development,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Domain: DomainConfig{
			RecoveryTolerance: d.RecoveryTolerance,
			SignatureGrid:     d.SignatureGrid,
			TieBreakOrder:     order,
			MaxHistorySize:    d.MaxHistorySize,
			WorkflowTTL:       d.WorkflowTTL,
			SweepInterval:     d.SweepInterval,
			MaxCoordinate:     d.MaxCoordinate,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if present), then environment variable overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	} else if _, err := os.Stat("config.yaml"); err == nil {
		if err := cfg.loadFile("config.yaml"); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile builds the configuration from defaults plus the given YAML file
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = Environment(v)
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("RECOVERY_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Domain.RecoveryTolerance = f
		}
	}
	if v := os.Getenv("MAX_HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Domain.MaxHistorySize = n
		}
	}
	if v := os.Getenv("WORKFLOW_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Domain.WorkflowTTL = d
		}
	}
	if v := os.Getenv("TIE_BREAK_ORDER"); v != "" {
		c.Domain.TieBreakOrder = strings.Split(v, ",")
	}
}

// Validate checks the configuration for values the core cannot run with
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown environment: %s", c.Environment)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Domain.RecoveryTolerance < 0 {
		return fmt.Errorf("recovery tolerance cannot be negative: %f", c.Domain.RecoveryTolerance)
	}
	if c.Domain.SignatureGrid <= 0 {
		return fmt.Errorf("signature grid must be positive: %f", c.Domain.SignatureGrid)
	}
	if c.Domain.WorkflowTTL <= 0 {
		return fmt.Errorf("workflow TTL must be positive: %s", c.Domain.WorkflowTTL)
	}
	if c.Domain.MaxHistorySize < 0 {
		return fmt.Errorf("max history size cannot be negative: %d", c.Domain.MaxHistorySize)
	}
	for _, rule := range c.Domain.TieBreakOrder {
		switch domaincfg.TieBreakRule(rule) {
		case domaincfg.TieBreakSignature, domaincfg.TieBreakNearest, domaincfg.TieBreakNewest:
		default:
			return fmt.Errorf("unknown tie-break rule: %s", rule)
		}
	}
	return nil
}

// ToDomain converts the tunable section into the domain's config type
func (c *Config) ToDomain() *domaincfg.DomainConfig {
	order := make([]domaincfg.TieBreakRule, len(c.Domain.TieBreakOrder))
	for i, rule := range c.Domain.TieBreakOrder {
		order[i] = domaincfg.TieBreakRule(rule)
	}

	return &domaincfg.DomainConfig{
		RecoveryTolerance: c.Domain.RecoveryTolerance,
		SignatureGrid:     c.Domain.SignatureGrid,
		TieBreakOrder:     order,
		MaxHistorySize:    c.Domain.MaxHistorySize,
		WorkflowTTL:       c.Domain.WorkflowTTL,
		SweepInterval:     c.Domain.SweepInterval,
		MaxCoordinate:     c.Domain.MaxCoordinate,
	}
}
