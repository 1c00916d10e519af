// Package config holds the tunable policy constants that bound the vault
// core's behavior. The shape (a JSON-loadable struct with package-level
// defaults) is adapted from chantools' ltconfig
// package, repurposed here for vault policy instead of Lightning Terminal
// recovery scenarios.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Policy bounds the vault core's accepted parameter ranges. All fields have
// sane defaults (see DefaultPolicy); a caller may load a stricter or looser
// policy from disk via LoadPolicy.
type Policy struct {
	// MinDelayBlocks is the smallest CSV delay the core will accept for
	// any VaultTemplate.
	MinDelayBlocks uint32 `json:"min_delay_blocks"`

	// MaxDelayBlocks is the largest CSV delay expressible in BIP68
	// block-based relative-locktime encoding.
	MaxDelayBlocks uint32 `json:"max_delay_blocks"`

	// DefaultSavingsDelay and DefaultSpendingDelay are the canonical
	// delay_blocks for the Savings and Spending templates. 1008 is
	// canonical here, and it is configurable rather than hard-coded.
	DefaultSavingsDelay  uint32 `json:"default_savings_delay"`
	DefaultSpendingDelay uint32 `json:"default_spending_delay"`

	// DustLimitSats is the P2TR dust threshold used by the PSBT builder.
	DustLimitSats int64 `json:"dust_limit_sats"`

	// MinFeeRateSatPerVByte and MaxFeeRateSatPerVByte bound
	// verify_psbt_policy's fee-rate sanity check.
	MinFeeRateSatPerVByte int64 `json:"min_fee_rate_sat_per_vbyte"`
	MaxFeeRateSatPerVByte int64 `json:"max_fee_rate_sat_per_vbyte"`

	// ScanWindowDefault is the number of vault indices, starting at 0,
	// that reconstruct_vault searches. derive_scan_addresses does not use
	// it; its caller always passes an explicit count.
	ScanWindowDefault uint32 `json:"scan_window_default"`

	// RecoveryMaxRetries bounds the exponential-backoff retry loop in
	// the recovery scanner.
	RecoveryMaxRetries int `json:"recovery_max_retries"`
}

// DefaultPolicy returns the canonical default policy values.
func DefaultPolicy() *Policy {
	return &Policy{
		MinDelayBlocks:        144,
		MaxDelayBlocks:        65535,
		DefaultSavingsDelay:   1008,
		DefaultSpendingDelay:  144,
		DustLimitSats:         330,
		MinFeeRateSatPerVByte: 1,
		MaxFeeRateSatPerVByte: 1000,
		ScanWindowDefault:     100,
		RecoveryMaxRetries:    3,
	}
}

// LoadPolicy reads a JSON policy file, starting from the defaults so an
// override file only needs to specify the fields it changes.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	policy := DefaultPolicy()
	if err := json.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return policy, nil
}

// Validate checks the internal consistency of the policy's bounds.
func (p *Policy) Validate() error {
	if p.MinDelayBlocks < 1 || p.MinDelayBlocks > p.MaxDelayBlocks {
		return fmt.Errorf("invalid min_delay_blocks %d (max %d)",
			p.MinDelayBlocks, p.MaxDelayBlocks)
	}
	if p.MaxDelayBlocks > 65535 {
		return fmt.Errorf("max_delay_blocks %d exceeds BIP68 "+
			"block-based encoding range", p.MaxDelayBlocks)
	}
	if p.DustLimitSats <= 0 {
		return fmt.Errorf("dust_limit_sats must be positive")
	}
	if p.MinFeeRateSatPerVByte <= 0 ||
		p.MinFeeRateSatPerVByte > p.MaxFeeRateSatPerVByte {

		return fmt.Errorf("invalid fee rate bounds [%d, %d]",
			p.MinFeeRateSatPerVByte, p.MaxFeeRateSatPerVByte)
	}
	if p.RecoveryMaxRetries < 0 {
		return fmt.Errorf("recovery_max_retries cannot be negative")
	}
	return nil
}
