package psbtbuilder

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/lightningnetwork/lnd/input"
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/taproot"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// VerifyPSBTPolicy implements verify_psbt_policy: decode the
// PSBT and, without any network access, check it against cfg. Violations
// accumulate into an ordered errors list; issues that don't invalidate the
// PSBT (e.g. an unusually high fee) go into warnings.
func VerifyPSBTPolicy(psbtBase64 string, cfg *vault.VaultConfig,
	policy *config.Policy) (*vault.PsbtPolicyResult, error) {

	packet, err := psbt.NewFromRawBytes(
		bytes.NewReader([]byte(psbtBase64)), true,
	)
	if err != nil {
		return nil, vaulterr.SerializationError(
			"could not decode PSBT", err)
	}

	var errs, warnings []string
	addErr := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	addWarn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	tx := packet.UnsignedTx

	if len(packet.Inputs) != len(tx.TxIn) {
		addErr("PSBT input count mismatch: %d PSBT inputs, %d tx "+
			"inputs", len(packet.Inputs), len(tx.TxIn))
		return &vault.PsbtPolicyResult{Errors: errs}, nil
	}

	pathType, pathKnown := classifyPath(packet)
	if !pathKnown {
		addErr("could not determine path_type: inputs carry " +
			"neither a Taproot leaf script nor a Taproot " +
			"internal key")
	}

	var totalIn int64
	for i, pIn := range packet.Inputs {
		if pIn.WitnessUtxo == nil {
			addErr("input %d is missing its witness UTXO", i)
			continue
		}
		totalIn += pIn.WitnessUtxo.Value

		if !bytes.Equal(pIn.WitnessUtxo.PkScript, cfg.ScriptPubKey) {
			addErr("input %d's previous output does not belong "+
				"to this vault's script_pubkey", i)
		}

		if pathKnown {
			verifySequence(tx.TxIn[i].Sequence, pathType, cfg, i, addErr)
			verifyTaprootAnnotation(pIn, pathType, cfg, i, addErr)
		}
	}

	if len(tx.TxOut) != 1 {
		addErr("expected exactly one output, found %d", len(tx.TxOut))
	}

	var totalOut int64
	for _, out := range tx.TxOut {
		totalOut += out.Value
	}

	if totalIn > 0 && totalOut > 0 && totalIn > totalOut {
		fee := totalIn - totalOut
		vsize := estimatedVsize(pathType, len(packet.Inputs), cfg)
		if vsize > 0 {
			feeRate := fee / vsize
			if feeRate < policy.MinFeeRateSatPerVByte {
				addErr("fee rate %d sat/vB is below the "+
					"minimum %d sat/vB", feeRate,
					policy.MinFeeRateSatPerVByte)
			} else if feeRate > policy.MaxFeeRateSatPerVByte {
				addWarn("fee rate %d sat/vB is unusually "+
					"high (policy max %d sat/vB)", feeRate,
					policy.MaxFeeRateSatPerVByte)
			}
		}
	} else if totalIn > 0 && totalOut >= totalIn {
		addErr("output value %d is not less than input value %d: "+
			"no fee would be paid", totalOut, totalIn)
	}

	return &vault.PsbtPolicyResult{
		Valid:    len(errs) == 0,
		Warnings: warnings,
		Errors:   errs,
	}, nil
}

// classifyPath inspects the first input's Taproot annotation to determine
// which of the two spend paths this PSBT was built for.
func classifyPath(packet *psbt.Packet) (vault.PathType, bool) {
	for _, pIn := range packet.Inputs {
		if len(pIn.TaprootLeafScript) > 0 {
			return vault.PathDelayed, true
		}
		if len(pIn.TaprootInternalKey) > 0 {
			return vault.PathEmergency, true
		}
	}
	return 0, false
}

func verifySequence(sequence uint32, pathType vault.PathType,
	cfg *vault.VaultConfig, idx int, addErr func(string, ...interface{})) {

	switch pathType {
	case vault.PathDelayed:
		want := csvSequence(cfg.Template.DelayBlocks)
		if sequence != want {
			addErr("input %d has nSequence %d, expected %d for "+
				"a %d-block delayed spend", idx, sequence,
				want, cfg.Template.DelayBlocks)
		}
	case vault.PathEmergency:
		if sequence != rbfSequence {
			addErr("input %d has nSequence %d, expected %d for "+
				"an emergency spend", idx, sequence,
				uint32(rbfSequence))
		}
	}
}

func verifyTaprootAnnotation(pIn psbt.PInput, pathType vault.PathType,
	cfg *vault.VaultConfig, idx int, addErr func(string, ...interface{})) {

	switch pathType {
	case vault.PathDelayed:
		if len(pIn.TaprootLeafScript) != 1 {
			addErr("input %d must carry exactly one Taproot "+
				"leaf script for a delayed spend", idx)
			return
		}
		leaf := pIn.TaprootLeafScript[0]
		if !bytes.Equal(leaf.Script, cfg.SpendingScript) {
			addErr("input %d's revealed leaf does not match "+
				"this vault's spending script", idx)
			return
		}

		internalKeyPub, err := schnorr.ParsePubKey(cfg.InternalKey[:])
		if err != nil {
			addErr("input %d: vault internal key is malformed",
				idx)
			return
		}
		tree := taproot.BuildTree(taproot.Leaves{
			SpendingScript: cfg.SpendingScript,
			MetadataScript: cfg.MetadataScript,
		})
		outputKeyPub := taproot.OutputKey(internalKeyPub, cfg.MerkleRoot)
		wantCB, err := taproot.ControlBlock(
			internalKeyPub, outputKeyPub, true, tree,
		)
		if err != nil || !bytes.Equal(leaf.ControlBlock, wantCB) {
			addErr("input %d's control block does not validate "+
				"against this vault's Taproot tree", idx)
		}

	case vault.PathEmergency:
		if !bytes.Equal(pIn.TaprootInternalKey, cfg.InternalKey[:]) {
			addErr("input %d's Taproot internal key does not "+
				"match the vault's emergency key", idx)
		}
		if cfg.Metadata == nil ||
			cfg.Metadata.RecoveryType != codec.RecoveryEmergencyKey {

			addErr("input %d: vault's recovery_type does not "+
				"permit an immediate emergency spend", idx)
		}
	}
}

// estimatedVsize recomputes the conservative witness-size estimate used at
// build time, so verification stays self-consistent with construction.
func estimatedVsize(pathType vault.PathType, numInputs int,
	cfg *vault.VaultConfig) int64 {

	var estimator input.TxWeightEstimator
	for i := 0; i < numInputs; i++ {
		switch pathType {
		case vault.PathDelayed:
			estimator.AddWitnessInput(
				scriptPathWitnessSize(len(cfg.SpendingScript)),
			)
		case vault.PathEmergency:
			estimator.AddWitnessInput(keyPathWitnessSize())
		}
	}
	estimator.AddP2TROutput()

	// witness weight units to virtual bytes, rounding up.
	return int64(estimator.Weight()+3) / 4
}
