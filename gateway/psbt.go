package gateway

import (
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/psbtbuilder"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// BuildDelayedSpendPSBT implements build_delayed_spend_psbt. The table
// names only {SpendIntent, [Utxo]} as input; cfg is the VaultConfig the
// intent's vault_id names, which this core has no store to resolve itself
// (see DESIGN.md) so the caller supplies it directly.
func BuildDelayedSpendPSBT(cfg *vault.VaultConfig, intent vault.SpendIntent,
	utxos []vault.Utxo, policy *config.Policy, network keys.Network,
	tipHeight uint32) (*vault.PsbtData, error) {

	return psbtbuilder.BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, network, tipHeight,
	)
}

// BuildEmergencyPSBT implements build_emergency_psbt.
func BuildEmergencyPSBT(req EmergencyPsbtRequest, policy *config.Policy,
	network keys.Network) (*vault.PsbtData, error) {

	if req.Config == nil {
		return nil, vaulterr.InvalidInput("config is required")
	}

	return psbtbuilder.BuildEmergencyPSBT(
		req.Config, req.Destination, req.FeeRate, req.Utxos, policy,
		network,
	)
}

// BuildCancelPSBT implements build_cancel_psbt.
func BuildCancelPSBT(req CancelPsbtRequest, policy *config.Policy,
	network keys.Network) (*vault.PsbtData, error) {

	if req.Config == nil {
		return nil, vaulterr.InvalidInput("config is required")
	}

	return psbtbuilder.BuildCancelPSBT(
		req.Config, req.OriginalTxid, req.PreviousFeeRate,
		req.ReplacementFeeRate, req.Destination, req.Utxos, policy,
		network,
	)
}

// VerifyPsbtPolicy implements verify_psbt_policy.
func VerifyPsbtPolicy(psbtBase64 string, cfg *vault.VaultConfig,
	policy *config.Policy) (*vault.PsbtPolicyResult, error) {

	return psbtbuilder.VerifyPSBTPolicy(psbtBase64, cfg, policy)
}

// FinalizePsbt implements finalize_psbt.
func FinalizePsbt(signedPsbtBase64 string) (*vault.FinalizedTx, error) {
	return psbtbuilder.FinalizePSBT(signedPsbtBase64)
}
