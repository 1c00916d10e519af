package psbtbuilder

import (
	"github.com/lightningnetwork/lnd/input"
	"github.com/taproot-vault/vaultcore/vault"
)

// Conservative per-leaf witness byte counts. Depth
// is fixed at 1 (two leaves), so the control block is always 33 + 32 = 65
// bytes: a 1-byte parity/leaf-version prefix, a 32-byte internal key, and a
// single 32-byte sibling hash.
const (
	schnorrSigSize      = 64
	controlBlockSize    = 33 + 32
	taprootMerkleDepth1 = 1
)

// scriptPathWitnessSize returns the total serialized witness size (item
// count varint plus a length-prefixed byte string per item) for a
// script-path spend revealing spendScript: [signature, script,
// control_block]. The formula mirrors chantools' hand-expanded witness-size
// constants (see cmd/chantools/rescuefunding.go's MultiSigWitnessSize).
func scriptPathWitnessSize(spendScriptLen int) int {
	return 1 + // number of witness elements
		(1 + schnorrSigSize) + // signature
		(1 + spendScriptLen) + // revealed leaf script
		(1 + controlBlockSize) // control block
}

// keyPathWitnessSize returns the witness size for a key-path spend: a
// single Schnorr signature, nothing else.
func keyPathWitnessSize() int {
	return 1 + (1 + schnorrSigSize)
}

// estimateFee computes vsize * feeRate for the given path, with vsize the
// estimated weight divided by 4 and rounded up. The weight comes from
// lnd/input's TxWeightEstimator, used the same way chantools'
// sweeptimelock.go and pullanchor.go do: one P2TR output and numInputs
// witness inputs of the path-appropriate size.
func estimateFee(pathType vault.PathType, numInputs, spendScriptLen int,
	feeRateSatPerVByte int64) int64 {

	var estimator input.TxWeightEstimator
	for i := 0; i < numInputs; i++ {
		switch pathType {
		case vault.PathDelayed:
			estimator.AddWitnessInput(
				scriptPathWitnessSize(spendScriptLen),
			)
		case vault.PathEmergency:
			estimator.AddWitnessInput(keyPathWitnessSize())
		}
	}
	estimator.AddP2TROutput()

	weight := int64(estimator.Weight())
	vsize := (weight + 3) / 4

	return vsize * feeRateSatPerVByte
}
