// Package psbtbuilder implements C5: assembling delayed-spend, emergency
// and cancel PSBTs, verifying a signed or unsigned PSBT against a vault's
// policy, and finalizing a fully-signed PSBT into a raw transaction. The
// wire.MsgTx/psbt.Packet assembly follows chantools' pullanchor.go and
// zombierecovery_makeoffer.go; fee estimation follows sweeptimelock.go.
package psbtbuilder

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/taproot"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaultscript"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// rbfSequence is used for the Emergency path: RBF-signaling while disabling
// BIP68 relative-locktime enforcement for the input.
const rbfSequence = 0xFFFFFFFE

// csvSequence encodes delayBlocks as a BIP68 block-based relative locktime:
// disable flag (bit 31) and type flag (bit 22) both clear, value in the low
// 16 bits. Policy already bounds delayBlocks to [1, 65535], so no masking
// beyond the uint32->uint32 identity is needed.
func csvSequence(delayBlocks uint32) uint32 {
	return delayBlocks
}

// buildResult is the internal shape shared by all three build_*_psbt
// operations before they're rendered to vault.PsbtData.
type buildResult struct {
	packet   *psbt.Packet
	selected []vault.Utxo
	fee      int64
	output   int64
}

// buildSpendPSBT implements the shared assembly pipeline
// for both path types. destination is a previously-validated address
// string; amountSats == nil means sweep-all.
func buildSpendPSBT(cfg *vault.VaultConfig, pathType vault.PathType,
	destination string, amountSats *int64, feeRateSatPerVByte int64,
	utxos []vault.Utxo, policy *config.Policy, network keys.Network) (
	*buildResult, error) {

	if feeRateSatPerVByte <= 0 {
		return nil, vaulterr.InvalidInput("fee_rate must be positive")
	}
	if len(utxos) == 0 {
		return nil, vaulterr.InvalidInput("no utxos supplied")
	}

	destAddr, err := btcutil.DecodeAddress(destination, network.Params())
	if err != nil {
		return nil, vaulterr.InvalidAddress(
			"could not decode destination address", err)
	}
	destScript, err := txscript.PayToAddrScript(destAddr)
	if err != nil {
		return nil, vaulterr.InvalidAddress(
			"could not build destination script", err)
	}

	spendScriptLen := len(cfg.SpendingScript)

	all := selectCoins(utxos, 0, true)
	available := sumValue(all)

	var (
		selected   []vault.Utxo
		outputSats int64
		fee        int64
	)

	if amountSats == nil {
		// Sweep-all: select every UTXO, output is whatever remains
		// after fee.
		selected = all
		fee = estimateFee(
			pathType, len(selected), spendScriptLen,
			feeRateSatPerVByte,
		)
		outputSats = available - fee
	} else {
		target := *amountSats
		if target <= 0 {
			return nil, vaulterr.InvalidInput(
				"amount_sats must be positive")
		}

		// Grow the selection oldest-first until it covers target
		// plus the fee implied by the selection made so far.
		selected = make([]vault.Utxo, 0, len(all))
		var total int64
		for _, u := range all {
			selected = append(selected, u)
			total += u.ValueSats

			fee = estimateFee(
				pathType, len(selected), spendScriptLen,
				feeRateSatPerVByte,
			)
			if total >= target+fee {
				break
			}
		}

		fee = estimateFee(
			pathType, len(selected), spendScriptLen,
			feeRateSatPerVByte,
		)
		if total < target+fee {
			needed := target + estimateFee(
				pathType, len(all), spendScriptLen,
				feeRateSatPerVByte,
			)
			return nil, vaulterr.InsufficientFunds(
				needed, available)
		}

		// No change output: any excess beyond target+fee is folded
		// into the fee.
		outputSats = target
		fee = total - outputSats
	}

	if outputSats < policy.DustLimitSats {
		return nil, vaulterr.DustOutput(fmt.Sprintf(
			"output value %d sats is below the %d sat dust "+
				"limit", outputSats, policy.DustLimitSats))
	}

	tx := wire.NewMsgTx(2)
	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, vaulterr.PsbtBuildFailed(
			"could not create PSBT", err)
	}

	for _, u := range selected {
		txid, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			return nil, vaulterr.PsbtBuildFailed(fmt.Sprintf(
				"invalid utxo txid %q", u.Txid), err)
		}

		sequence := uint32(rbfSequence)
		if pathType == vault.PathDelayed {
			sequence = csvSequence(cfg.Template.DelayBlocks)
		}

		packet.UnsignedTx.TxIn = append(packet.UnsignedTx.TxIn, &wire.TxIn{
			PreviousOutPoint: wire.OutPoint{
				Hash:  *txid,
				Index: u.Vout,
			},
			Sequence: sequence,
		})

		pIn := psbt.PInput{
			WitnessUtxo: &wire.TxOut{
				Value:    u.ValueSats,
				PkScript: cfg.ScriptPubKey,
			},
		}

		if err := annotateTaprootInput(&pIn, cfg, pathType); err != nil {
			return nil, err
		}

		packet.Inputs = append(packet.Inputs, pIn)
	}

	packet.UnsignedTx.TxOut = append(packet.UnsignedTx.TxOut, &wire.TxOut{
		Value:    outputSats,
		PkScript: destScript,
	})
	packet.Outputs = append(packet.Outputs, psbt.POutput{})

	if err := packet.SanityCheck(); err != nil {
		return nil, vaulterr.PsbtBuildFailed(
			"assembled PSBT failed sanity check", err)
	}

	return &buildResult{
		packet:   packet,
		selected: selected,
		fee:      fee,
		output:   outputSats,
	}, nil
}

// annotateTaprootInput fills in the per-input Taproot annotation fields:
// the control block and leaf script for a script-path spend, or the
// internal key and merkle root for a key-path spend.
func annotateTaprootInput(pIn *psbt.PInput, cfg *vault.VaultConfig,
	pathType vault.PathType) error {

	switch pathType {
	case vault.PathDelayed:
		tree := taproot.BuildTree(taproot.Leaves{
			SpendingScript: cfg.SpendingScript,
			MetadataScript: cfg.MetadataScript,
		})

		internalKeyPub, err := schnorr.ParsePubKey(cfg.InternalKey[:])
		if err != nil {
			return vaulterr.SerializationError(
				"could not parse vault internal key", err)
		}
		outputKeyPub := taproot.OutputKey(internalKeyPub, cfg.MerkleRoot)

		cb, err := taproot.ControlBlock(
			internalKeyPub, outputKeyPub, true, tree,
		)
		if err != nil {
			return err
		}

		pIn.TaprootLeafScript = []*psbt.TaprootTapLeafScript{
			{
				ControlBlock: cb,
				Script:       cfg.SpendingScript,
				LeafVersion:  vaultscript.LeafVersion,
			},
		}

	case vault.PathEmergency:
		internalKey := cfg.InternalKey
		pIn.TaprootInternalKey = internalKey[:]
		merkleRoot := cfg.MerkleRoot
		pIn.TaprootMerkleRoot = merkleRoot[:]

	default:
		return vaulterr.InvalidInput("unknown path_type")
	}

	return nil
}

// renderPsbtData turns a buildResult into the caller-facing vault.PsbtData,
// including the human-auditable summary.
func renderPsbtData(result *buildResult, cfg *vault.VaultConfig,
	pathType vault.PathType, destination string,
	tipHeight uint32) (*vault.PsbtData, error) {

	b64, err := result.packet.B64Encode()
	if err != nil {
		return nil, vaulterr.SerializationError(
			"could not base64-encode PSBT", err)
	}

	summary := vault.PsbtSummary{
		From:       cfg.Address,
		To:         destination,
		AmountSats: result.output,
		FeeSats:    result.fee,
		Path:       pathType.String(),
	}
	if pathType == vault.PathDelayed {
		summary.DelayBlocks = cfg.Template.DelayBlocks
		if tipHeight > 0 {
			summary.EstimatedUnlockHeight =
				tipHeight + cfg.Template.DelayBlocks
		}
	}

	return &vault.PsbtData{
		PsbtBase64: b64,
		Summary:    summary,
		IsValid:    true,
		Warnings:   nil,
	}, nil
}

// BuildDelayedSpendPSBT implements build_delayed_spend_psbt: a script-path
// spend that reveals the spending leaf and waits out delay_blocks.
func BuildDelayedSpendPSBT(cfg *vault.VaultConfig, intent vault.SpendIntent,
	utxos []vault.Utxo, policy *config.Policy, network keys.Network,
	tipHeight uint32) (*vault.PsbtData, error) {

	if intent.PathType != vault.PathDelayed {
		return nil, vaulterr.InvalidInput(
			"build_delayed_spend_psbt requires path_type Delayed")
	}

	result, err := buildSpendPSBT(
		cfg, vault.PathDelayed, intent.Destination, intent.AmountSats,
		intent.FeeRate, utxos, policy, network,
	)
	if err != nil {
		return nil, err
	}

	return renderPsbtData(
		result, cfg, vault.PathDelayed, intent.Destination, tipHeight,
	)
}

// BuildEmergencyPSBT implements build_emergency_psbt: a key-path spend
// available immediately regardless of delay_blocks.
func BuildEmergencyPSBT(cfg *vault.VaultConfig, destination string,
	feeRateSatPerVByte int64, utxos []vault.Utxo, policy *config.Policy,
	network keys.Network) (*vault.PsbtData, error) {

	result, err := buildSpendPSBT(
		cfg, vault.PathEmergency, destination, nil, feeRateSatPerVByte,
		utxos, policy, network,
	)
	if err != nil {
		return nil, err
	}

	return renderPsbtData(result, cfg, vault.PathEmergency, destination, 0)
}

// BuildCancelPSBT implements build_cancel_psbt: build_emergency_psbt
// applied to a destination controlled by the same vault owner, replacing
// an in-flight spend with a strictly higher fee rate. previousFeeRate is
// the fee rate of the spend being cancelled, supplied by the caller (the
// gateway passes its own caller's CancelPsbtRequest.PreviousFeeRate
// through unchanged); C5 itself has no chain access and cannot look it up.
func BuildCancelPSBT(cfg *vault.VaultConfig, originalTxid string,
	previousFeeRate, replacementFeeRate int64, destination string,
	utxos []vault.Utxo, policy *config.Policy, network keys.Network) (
	*vault.PsbtData, error) {

	if originalTxid == "" {
		return nil, vaulterr.InvalidInput(
			"original_txid is required to build a cancel PSBT")
	}
	if replacementFeeRate <= previousFeeRate {
		return nil, vaulterr.PolicyViolation(fmt.Sprintf(
			"replacement fee rate %d must exceed the original "+
				"spend's fee rate %d", replacementFeeRate,
			previousFeeRate))
	}

	return BuildEmergencyPSBT(
		cfg, destination, replacementFeeRate, utxos, policy, network,
	)
}
