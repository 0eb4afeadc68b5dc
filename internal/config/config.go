package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Configuration is the immutable snapshot of limit values used by one
// processing run. Changing any value means starting a new run with its own
// ledgers; nothing mutates a Configuration after it is built.
type Configuration struct {
	DailyLimit             decimal.Decimal
	WeeklyLimit            decimal.Decimal
	DailyLoadCount         int
	PrimeIDDailyLimit      decimal.Decimal
	PrimeIDDailyCount      int
	MondayMultiplier       int
	MinCustomerIDLength    int
	MinTransactionIDLength int

	// CustomerAnomalyThreshold declines further loads once a customer has
	// this many accepted transactions in the run. Zero disables the check.
	CustomerAnomalyThreshold int
}

// Default returns the standard limits: $5,000/day, $20,000 rolling week,
// 3 loads/day, $9,999 and 1 load/day for prime IDs, 2x Monday multiplier.
func Default() Configuration {
	return Configuration{
		DailyLimit:               decimal.RequireFromString("5000.00"),
		WeeklyLimit:              decimal.RequireFromString("20000.00"),
		DailyLoadCount:           3,
		PrimeIDDailyLimit:        decimal.RequireFromString("9999.00"),
		PrimeIDDailyCount:        1,
		MondayMultiplier:         2,
		MinCustomerIDLength:      3,
		MinTransactionIDLength:   3,
		CustomerAnomalyThreshold: 10,
	}
}

// fileConfig is the on-disk shape. Monetary fields are strings so limits
// round-trip exactly; omitted fields keep their defaults.
type fileConfig struct {
	DailyLimit               string `yaml:"daily_limit" json:"daily_limit"`
	WeeklyLimit              string `yaml:"weekly_limit" json:"weekly_limit"`
	DailyLoadCount           *int   `yaml:"daily_load_count" json:"daily_load_count"`
	PrimeIDDailyLimit        string `yaml:"prime_id_daily_limit" json:"prime_id_daily_limit"`
	PrimeIDDailyCount        *int   `yaml:"prime_id_daily_count" json:"prime_id_daily_count"`
	MondayMultiplier         *int   `yaml:"monday_multiplier" json:"monday_multiplier"`
	MinCustomerIDLength      *int   `yaml:"min_customer_id_length" json:"min_customer_id_length"`
	MinTransactionIDLength   *int   `yaml:"min_transaction_id_length" json:"min_transaction_id_length"`
	CustomerAnomalyThreshold *int   `yaml:"customer_anomaly_threshold" json:"customer_anomaly_threshold"`
}

// Load reads a configuration file (YAML, or JSON for .json files) and merges
// it over the defaults.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := Default()
	if err := applyFileConfig(&cfg, fc); err != nil {
		return Configuration{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseJSON builds a Configuration from a JSON document, merging it over
// the defaults. Used by the API layer for configuration updates.
func ParseJSON(data []byte) (Configuration, error) {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return Configuration{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg := Default()
	if err := applyFileConfig(&cfg, fc); err != nil {
		return Configuration{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func applyFileConfig(cfg *Configuration, fc fileConfig) error {
	var err error
	if fc.DailyLimit != "" {
		if cfg.DailyLimit, err = decimal.NewFromString(fc.DailyLimit); err != nil {
			return fmt.Errorf("daily_limit: %w", err)
		}
	}
	if fc.WeeklyLimit != "" {
		if cfg.WeeklyLimit, err = decimal.NewFromString(fc.WeeklyLimit); err != nil {
			return fmt.Errorf("weekly_limit: %w", err)
		}
	}
	if fc.PrimeIDDailyLimit != "" {
		if cfg.PrimeIDDailyLimit, err = decimal.NewFromString(fc.PrimeIDDailyLimit); err != nil {
			return fmt.Errorf("prime_id_daily_limit: %w", err)
		}
	}
	if fc.DailyLoadCount != nil {
		cfg.DailyLoadCount = *fc.DailyLoadCount
	}
	if fc.PrimeIDDailyCount != nil {
		cfg.PrimeIDDailyCount = *fc.PrimeIDDailyCount
	}
	if fc.MondayMultiplier != nil {
		cfg.MondayMultiplier = *fc.MondayMultiplier
	}
	if fc.MinCustomerIDLength != nil {
		cfg.MinCustomerIDLength = *fc.MinCustomerIDLength
	}
	if fc.MinTransactionIDLength != nil {
		cfg.MinTransactionIDLength = *fc.MinTransactionIDLength
	}
	if fc.CustomerAnomalyThreshold != nil {
		cfg.CustomerAnomalyThreshold = *fc.CustomerAnomalyThreshold
	}
	return nil
}

// Validate rejects configurations no run could sensibly use.
func (c Configuration) Validate() error {
	if c.DailyLimit.IsNegative() || c.DailyLimit.IsZero() {
		return fmt.Errorf("daily_limit must be positive, got %s", c.DailyLimit)
	}
	if c.WeeklyLimit.IsNegative() || c.WeeklyLimit.IsZero() {
		return fmt.Errorf("weekly_limit must be positive, got %s", c.WeeklyLimit)
	}
	if c.PrimeIDDailyLimit.IsNegative() || c.PrimeIDDailyLimit.IsZero() {
		return fmt.Errorf("prime_id_daily_limit must be positive, got %s", c.PrimeIDDailyLimit)
	}
	if c.DailyLoadCount < 1 {
		return fmt.Errorf("daily_load_count must be at least 1, got %d", c.DailyLoadCount)
	}
	if c.PrimeIDDailyCount < 1 {
		return fmt.Errorf("prime_id_daily_count must be at least 1, got %d", c.PrimeIDDailyCount)
	}
	if c.MondayMultiplier < 1 {
		return fmt.Errorf("monday_multiplier must be at least 1, got %d", c.MondayMultiplier)
	}
	if c.MinCustomerIDLength < 1 {
		return fmt.Errorf("min_customer_id_length must be at least 1, got %d", c.MinCustomerIDLength)
	}
	if c.MinTransactionIDLength < 1 {
		return fmt.Errorf("min_transaction_id_length must be at least 1, got %d", c.MinTransactionIDLength)
	}
	if c.CustomerAnomalyThreshold < 0 {
		return fmt.Errorf("customer_anomaly_threshold must not be negative, got %d", c.CustomerAnomalyThreshold)
	}
	return nil
}

// Snapshot returns the configuration as a plain map for statistics output
// and API responses. Monetary values are rendered as strings.
func (c Configuration) Snapshot() map[string]any {
	return map[string]any{
		"daily_limit":                c.DailyLimit.StringFixed(2),
		"weekly_limit":               c.WeeklyLimit.StringFixed(2),
		"daily_load_count":           c.DailyLoadCount,
		"prime_id_daily_limit":       c.PrimeIDDailyLimit.StringFixed(2),
		"prime_id_daily_count":       c.PrimeIDDailyCount,
		"monday_multiplier":          c.MondayMultiplier,
		"min_customer_id_length":     c.MinCustomerIDLength,
		"min_transaction_id_length":  c.MinTransactionIDLength,
		"customer_anomaly_threshold": c.CustomerAnomalyThreshold,
	}
}
