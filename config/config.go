// Package config loads and validates run configuration. A Config is
// built once and passed into constructors; no package-level state
// survives a run, so independent backtests can share a process.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/sim"
)

// Config is the complete configuration for one backtest run.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Analysis  AnalysisConfig  `json:"analysis" yaml:"analysis"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Data      DataConfig      `json:"data" yaml:"data"`
}

// AccountConfig sets the starting state of the simulated account.
type AccountConfig struct {
	Balance float64 `json:"balance" yaml:"balance"`
}

// StrategyConfig names the strategy and its indicator windows.
// Fast/Slow of 0 mean "use the strategy's defaults" (20/50 for
// ema-sma-cross, 50/200 for golden-cross, 200 for monthly-ma).
type StrategyConfig struct {
	Name       string `json:"name" yaml:"name"`
	Instrument string `json:"instrument" yaml:"instrument"`
	Fast       int    `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow       int    `json:"slow,omitempty" yaml:"slow,omitempty"`

	// MonthEnds lists the last trading day of each month as ISO dates,
	// normally produced by an exchange calendar service. Only used by
	// monthly-ma; when empty the month ends are derived from the bars.
	MonthEnds []string `json:"month_ends,omitempty" yaml:"month_ends,omitempty"`
}

// ExecutionConfig controls fill semantics.
type ExecutionConfig struct {
	// FillTiming is "same-bar" (default) or "next-bar".
	FillTiming string `json:"fill_timing,omitempty" yaml:"fill_timing,omitempty"`

	// CloseEnd flattens any open position after the last bar.
	CloseEnd bool `json:"close_end,omitempty" yaml:"close_end,omitempty"`
}

// AnalysisConfig parametrizes the analyzers.
type AnalysisConfig struct {
	RiskFreeRate   float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	PeriodsPerYear int     `json:"periods_per_year" yaml:"periods_per_year"`
}

// JournalConfig selects where trade and equity records go, in addition
// to the in-memory journal the analyzers always use.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "memory", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// DataConfig points at the bar series.
type DataConfig struct {
	CSV string `json:"csv" yaml:"csv"`
}

// LoadFromFile reads a YAML or JSON config and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config as YAML (.yaml/.yml) or JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Instrument == "" {
		return fmt.Errorf("strategy.instrument is required")
	}
	if c.Strategy.Fast < 0 || c.Strategy.Slow < 0 {
		return fmt.Errorf("strategy windows must not be negative")
	}
	if _, err := sim.ParseFillTiming(c.Execution.FillTiming); err != nil {
		return err
	}
	if c.Analysis.RiskFreeRate < 0 {
		return fmt.Errorf("analysis.risk_free_rate must not be negative")
	}
	if c.Analysis.PeriodsPerYear <= 0 {
		return fmt.Errorf("analysis.periods_per_year must be positive")
	}
	switch c.Journal.Type {
	case "", "memory":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration matching the classic SPY runs:
// $1000 starting balance, 5% risk-free rate, 252 daily periods.
func Default() *Config {
	return &Config{
		Account: AccountConfig{Balance: 1000},
		Strategy: StrategyConfig{
			Name:       "ema-sma-cross",
			Instrument: "SPY",
		},
		Execution: ExecutionConfig{FillTiming: string(sim.SameBar)},
		Analysis: AnalysisConfig{
			RiskFreeRate:   0.05,
			PeriodsPerYear: 252,
		},
		Journal: JournalConfig{Type: "memory"},
	}
}
