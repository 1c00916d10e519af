// Package gateway implements C7: the typed request/response surface the
// rest of the vault core is driven through. Every operation here mirrors
// one row of the external-interface table and is total — it returns either
// a typed result or a *vaulterr.Error, never panics. The JSON-tagged
// plain-struct request/response style follows chantools' dataformat
// package (dataformat/summary.go); a foreign caller wanting JSON wraps
// these types at its own boundary, per the "foreign-boundary layer" design
// note — this package never serializes anything itself.
package gateway

import (
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/vault"
)

// Version is the core's own release identifier, independent of the
// network protocol versions it speaks (BIP341, BIP174, ...).
const Version = "0.1.0"

// GenerateVaultAddressRequest is generate_vault_address's input. Template
// carries the tagged-variant fields (Kind, DelayBlocks, RecoveryType,
// TemplateID) from the vault package; DestinationIndices, CreatedAtBlock
// and the MultiSig fields are the remaining VaultMetadata fields a caller
// may set only for a Custom template (see GenerateVaultAddress's doc
// comment on why canonical templates ignore them).
type GenerateVaultAddressRequest struct {
	PrimaryXpub        string             `json:"primary_xpub"`
	EmergencyXpub      string             `json:"emergency_xpub,omitempty"`
	Template           vault.VaultTemplate `json:"template"`
	VaultIndex         uint32             `json:"vault_index"`
	Network            keys.Network       `json:"network"`
	DestinationIndices []uint8            `json:"destination_indices,omitempty"`
	CreatedAtBlock     uint32             `json:"created_at_block,omitempty"`
	MultiSigThreshold  uint8              `json:"multisig_threshold,omitempty"`
	MultiSigTotal      uint8              `json:"multisig_total,omitempty"`
}

// GenerateVaultAddressResponse is generate_vault_address's output.
type GenerateVaultAddressResponse struct {
	Address           string              `json:"address"`
	Descriptor        string              `json:"descriptor"`
	InternalKey       [32]byte            `json:"internal_key"`
	SpendingScriptHex string              `json:"spending_script_hex"`
	MetadataScriptHex string              `json:"metadata_script_hex"`
	Metadata          *codec.VaultMetadata `json:"metadata"`
}

// EmergencyPsbtRequest is build_emergency_psbt's input. The table names
// only {vault_id, destination, fee_rate}; this core holds no vault store,
// so the caller passes the already-derived VaultConfig directly rather
// than an id the core would have to resolve (see DESIGN.md).
type EmergencyPsbtRequest struct {
	Config      *vault.VaultConfig `json:"config"`
	Destination string             `json:"destination"`
	FeeRate     int64              `json:"fee_rate"`
	Utxos       []vault.Utxo       `json:"utxos"`
}

// CancelPsbtRequest is build_cancel_psbt's input, extended with the
// destination, the original spend's fee rate and the utxos still needed
// to rebuild the replacement (the table's {original_txid, VaultConfig,
// fee_rate} elides these for brevity).
type CancelPsbtRequest struct {
	OriginalTxid       string             `json:"original_txid"`
	Config             *vault.VaultConfig `json:"config"`
	Destination        string             `json:"destination"`
	PreviousFeeRate    int64              `json:"previous_fee_rate"`
	ReplacementFeeRate int64              `json:"fee_rate"`
	Utxos              []vault.Utxo       `json:"utxos"`
}

// ScanAddressEntry is one row of derive_scan_addresses's output list.
// TemplateID distinguishes which of the known templates this row's address
// belongs to, since each index has one candidate per known template.
type ScanAddressEntry struct {
	Index      uint32 `json:"index"`
	TemplateID string `json:"template_id"`
	Address    string `json:"address"`
	Descriptor string `json:"descriptor"`
}

// DeriveScanAddressesRequest is derive_scan_addresses's input.
type DeriveScanAddressesRequest struct {
	Xpub       string       `json:"xpub"`
	StartIndex uint32       `json:"start_index"`
	Count      uint32       `json:"count"`
	Network    keys.Network `json:"network"`
}

// ReconstructVaultRequest is reconstruct_vault's input. Utxos only needs
// to be non-empty: it tells the core this address is known-funded, so
// it's worth the brute-force match against the known templates; the
// individual UTXO values play no part in reconstruction itself.
type ReconstructVaultRequest struct {
	Address string       `json:"address"`
	Utxos   []vault.Utxo `json:"utxos"`
	Xpub    string       `json:"xpub"`
	Network keys.Network `json:"network"`
}

// ValidateAddressResponse is validate_address's output.
type ValidateAddressResponse struct {
	Valid   bool         `json:"valid"`
	Type    string       `json:"type"`
	Network keys.Network `json:"network"`
}

// ValidateXpubResponse is validate_xpub's output.
type ValidateXpubResponse struct {
	Valid   bool         `json:"valid"`
	Network keys.Network `json:"network"`
}
