package gateway

import (
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/recovery"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// DeriveScanAddresses implements derive_scan_addresses: a pure, adapter-
// free restatement of the candidate address universe recovery.ScanWindow
// would probe — useful to a caller that wants to run its own indexer
// lookups instead of delegating them to this core. Each index yields one
// row per known template (Savings, Spending), since both are always
// scan-eligible candidates at every index.
func DeriveScanAddresses(req DeriveScanAddressesRequest, policy *config.Policy) (
	[]ScanAddressEntry, error) {

	if req.Count == 0 {
		return nil, vaulterr.InvalidInput("count must be positive")
	}

	templates := vault.KnownTemplates(
		policy.DefaultSavingsDelay, policy.DefaultSpendingDelay,
	)

	entries := make([]ScanAddressEntry, 0, req.Count*uint32(len(templates)))
	for offset := uint32(0); offset < req.Count; offset++ {
		index := req.StartIndex + offset
		for _, template := range templates {
			candidate, err := recovery.DeriveCandidate(
				req.Xpub, req.Network, template, index,
			)
			if err != nil {
				return nil, err
			}

			entries = append(entries, ScanAddressEntry{
				Index:      index,
				TemplateID: template.TemplateID,
				Address:    candidate.Address,
				Descriptor: candidate.Descriptor,
			})
		}
	}

	return entries, nil
}

// ReconstructVault implements reconstruct_vault: given an address already
// known to hold funds, brute-force match it against the known templates
// derivable from xpub over the policy's default scan window and return
// its VaultConfig on a hit.
func ReconstructVault(req ReconstructVaultRequest, policy *config.Policy) (
	*vault.VaultConfig, error) {

	if len(req.Utxos) == 0 {
		return nil, vaulterr.InvalidInput(
			"utxos must be non-empty: reconstruct_vault only " +
				"applies to an address already known to hold funds")
	}

	return recovery.ReconstructVault(
		req.Xpub, req.Network, req.Address, 0, policy.ScanWindowDefault,
		policy,
	)
}
