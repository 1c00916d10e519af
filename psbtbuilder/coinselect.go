package psbtbuilder

import (
	"sort"

	"github.com/taproot-vault/vaultcore/vault"
)

// selectCoins implements deterministic oldest-first
// coin selection by (block_height, txid, vout), stopping as soon as the
// running total covers target (plus whatever fee upper bound the caller
// folded into target already). sweepAll ignores target and returns every
// UTXO sorted the same way.
func selectCoins(utxos []vault.Utxo, target int64, sweepAll bool) []vault.Utxo {
	sorted := make([]vault.Utxo, len(utxos))
	copy(sorted, utxos)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].BlockHeight != sorted[j].BlockHeight {
			return sorted[i].BlockHeight < sorted[j].BlockHeight
		}
		if sorted[i].Txid != sorted[j].Txid {
			return sorted[i].Txid < sorted[j].Txid
		}
		return sorted[i].Vout < sorted[j].Vout
	})

	if sweepAll {
		return sorted
	}

	selected := make([]vault.Utxo, 0, len(sorted))
	var total int64
	for _, u := range sorted {
		if total >= target {
			break
		}
		selected = append(selected, u)
		total += u.ValueSats
	}
	return selected
}

func sumValue(utxos []vault.Utxo) int64 {
	var total int64
	for _, u := range utxos {
		total += u.ValueSats
	}
	return total
}
