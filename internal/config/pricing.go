package config

import (
	"fmt"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// Prices parses the per-service price table. Every price must be a positive
// SOL amount expressible in whole lamports.
func (c *Config) Prices() (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(c.Pricing))
	for service, raw := range c.Pricing {
		amount, err := domain.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("pricing.%s: %w", service, err)
		}
		if _, err := domain.ToLamports(amount); err != nil {
			return nil, fmt.Errorf("pricing.%s: %w", service, err)
		}
		prices[service] = amount
	}
	return prices, nil
}
