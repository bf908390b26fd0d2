package demo

import (
	"strconv"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Default driver parameters.
const (
	DefaultHistoryDays  = 90
	DefaultTransactions = 12
)

// Config holds the parsed driver parameters of a demo module.
type Config struct {
	// HistoryDays is how far back generated transactions go.
	HistoryDays int

	// Transactions is the number of transactions per account.
	Transactions int
}

// ParseConfig reads the driver parameters from the module manifest.
func ParseConfig(cfg driven.BackendConfig) (*Config, error) {
	days, err := positiveParam(cfg, "history_days", DefaultHistoryDays)
	if err != nil {
		return nil, err
	}
	count, err := positiveParam(cfg, "transactions", DefaultTransactions)
	if err != nil {
		return nil, err
	}
	return &Config{HistoryDays: days, Transactions: count}, nil
}

func positiveParam(cfg driven.BackendConfig, key string, fallback int) (int, error) {
	raw := cfg.Param(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.NewConfigError(key, "%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
