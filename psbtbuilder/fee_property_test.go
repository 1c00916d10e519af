package psbtbuilder

import (
	"testing"

	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/vault"
	"pgregory.net/rapid"
)

// TestFeeMonotonicity checks that for a fixed spend intent and UTXO set,
// a higher fee_rate never produces a lower fee.
func TestFeeMonotonicity(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()

	rapid.Check(t, func(tt *rapid.T) {
		value := rapid.Int64Range(100_000, 10_000_000).Draw(tt, "value")
		lowRate := rapid.Int64Range(1, 500).Draw(tt, "lowRate")
		highRate := rapid.Int64Range(lowRate, 1000).Draw(tt, "highRate")

		utxos := []vault.Utxo{{
			Txid:         fakeTxid(1),
			Vout:         0,
			ValueSats:    value,
			ScriptPubKey: cfg.ScriptPubKey,
			BlockHeight:  800_000,
		}}

		intentLow := vault.SpendIntent{
			Destination: cfg.Address,
			FeeRate:     lowRate,
			PathType:    vault.PathDelayed,
		}
		intentHigh := intentLow
		intentHigh.FeeRate = highRate

		lowResult, err := BuildDelayedSpendPSBT(
			cfg, intentLow, utxos, policy, keys.Regtest, 0,
		)
		if err != nil {
			return
		}
		highResult, err := BuildDelayedSpendPSBT(
			cfg, intentHigh, utxos, policy, keys.Regtest, 0,
		)
		if err != nil {
			return
		}

		if highResult.Summary.FeeSats < lowResult.Summary.FeeSats {
			tt.Fatalf("fee decreased as fee_rate increased: "+
				"%d sat/vB -> %d sats, %d sat/vB -> %d sats",
				lowRate, lowResult.Summary.FeeSats, highRate,
				highResult.Summary.FeeSats)
		}
	})
}
