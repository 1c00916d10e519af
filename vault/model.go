// Package vault holds the value objects shared across the key derivation,
// script assembly, PSBT building and recovery components: VaultTemplate,
// VaultConfig, Utxo, SpendIntent and PsbtData. The JSON-tagged plain-struct
// style follows chantools' dataformat package (see dataformat/summary.go);
// these are caller-facing value objects, never mutated once returned.
package vault

import (
	"time"

	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/keys"
)

// TemplateKind discriminates the VaultTemplate tagged variant.
type TemplateKind uint8

const (
	TemplateSavings TemplateKind = iota
	TemplateSpending
	TemplateCustom
)

func (k TemplateKind) String() string {
	switch k {
	case TemplateSavings:
		return "Savings"
	case TemplateSpending:
		return "Spending"
	case TemplateCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// VaultTemplate is the tagged variant describing a vault's shape: Savings,
// Spending or Custom. KnownTemplates lists the subset a recovery sweep
// checks against every candidate index.
type VaultTemplate struct {
	Kind         TemplateKind        `json:"kind"`
	DelayBlocks  uint32               `json:"delay_blocks"`
	RecoveryType codec.RecoveryType   `json:"recovery_type"`
	TemplateID   string               `json:"template_id"`
}

// SavingsTemplate builds the default Savings{delay_blocks} variant.
func SavingsTemplate(delayBlocks uint32) VaultTemplate {
	return VaultTemplate{
		Kind:         TemplateSavings,
		DelayBlocks:  delayBlocks,
		RecoveryType: codec.RecoveryTimelockOnly,
		TemplateID:   "savings_v1",
	}
}

// SpendingTemplate builds the default Spending{delay_blocks} variant.
func SpendingTemplate(delayBlocks uint32) VaultTemplate {
	return VaultTemplate{
		Kind:         TemplateSpending,
		DelayBlocks:  delayBlocks,
		RecoveryType: codec.RecoveryTimelockOnly,
		TemplateID:   "spending_v1",
	}
}

// CustomTemplate builds a Custom{delay_blocks, recovery_type} variant.
func CustomTemplate(delayBlocks uint32, recoveryType codec.RecoveryType) VaultTemplate {
	return VaultTemplate{
		Kind:         TemplateCustom,
		DelayBlocks:  delayBlocks,
		RecoveryType: recoveryType,
		TemplateID:   "custom_v1",
	}
}

// KnownTemplates returns the small closed set of templates the recovery
// scanner checks against every candidate index. The
// delay values are the policy's canonical defaults; a Custom template or a
// non-default delay is not part of this set and is not scanned.
func KnownTemplates(defaultSavingsDelay, defaultSpendingDelay uint32) []VaultTemplate {
	return []VaultTemplate{
		SavingsTemplate(defaultSavingsDelay),
		SpendingTemplate(defaultSpendingDelay),
	}
}

// VaultConfig is the logical identity of a vault: its id, template, owning
// xpubs, network, descriptor, address and committed metadata. A VaultConfig
// owns its Metadata and Descriptor; PrimaryXpub/EmergencyXpub are referenced
// by value since they are small immutable strings.
type VaultConfig struct {
	ID             string              `json:"id"`
	DisplayName    string              `json:"display_name"`
	Template       VaultTemplate       `json:"template"`
	PrimaryXpub    string              `json:"primary_xpub"`
	EmergencyXpub  string              `json:"emergency_xpub,omitempty"`
	Network        keys.Network        `json:"network"`
	Descriptor     string              `json:"descriptor"`
	Address        string              `json:"address"`
	ScriptPubKey   []byte              `json:"script_pubkey"`
	InternalKey    [32]byte            `json:"internal_key"`
	SpendingScript []byte              `json:"spending_script"`
	MetadataScript []byte              `json:"metadata_script"`
	MerkleRoot     [32]byte            `json:"merkle_root"`
	Metadata       *codec.VaultMetadata `json:"metadata"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Utxo is a caller-supplied unspent output. ValueSats must be > 0; Txid is
// the 32-byte transaction id in RPC (big-endian-displayed) byte order.
type Utxo struct {
	Txid            string `json:"txid"`
	Vout            uint32 `json:"vout"`
	ValueSats       int64  `json:"value_sats"`
	ScriptPubKey    []byte `json:"script_pubkey_bytes"`
	Confirmations   uint32 `json:"confirmations"`
	BlockHeight     uint32 `json:"block_height,omitempty"`
	HasBlockHeight  bool   `json:"-"`
}

// PathType selects between the two spend pipelines of C5.
type PathType uint8

const (
	PathDelayed PathType = iota
	PathEmergency
)

func (p PathType) String() string {
	if p == PathEmergency {
		return "Emergency"
	}
	return "Delayed"
}

// SpendIntent describes a requested spend. AmountSats == nil means
// sweep-all (every selected UTXO's value, minus fee, to Destination).
type SpendIntent struct {
	VaultID     string   `json:"vault_id"`
	Destination string   `json:"destination"`
	AmountSats  *int64   `json:"amount_sats,omitempty"`
	FeeRate     int64    `json:"fee_rate"`
	PathType    PathType `json:"path_type"`
}

// PsbtSummary is the human-auditable triple carried alongside every built
// PSBT.
type PsbtSummary struct {
	From                   string `json:"from"`
	To                     string `json:"to"`
	AmountSats             int64  `json:"amount_sats"`
	FeeSats                int64  `json:"fee_sats"`
	Path                   string `json:"path"`
	DelayBlocks            uint32 `json:"delay_blocks,omitempty"`
	EstimatedUnlockHeight  uint32 `json:"estimated_unlock_height,omitempty"`
}

// PsbtData is the output of every PSBT-building operation.
type PsbtData struct {
	PsbtBase64 string      `json:"psbt_base64"`
	Summary    PsbtSummary `json:"summary"`
	IsValid    bool        `json:"is_valid"`
	Warnings   []string    `json:"warnings"`
}

// PsbtPolicyResult is the output of verify_psbt_policy: an ordered list of
// violations (any of which invalidates the PSBT) and a separate list of
// warnings that do not.
type PsbtPolicyResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// FinalizedTx is the output of finalize_psbt.
type FinalizedTx struct {
	TxHex string `json:"tx_hex"`
	Txid  string `json:"txid"`
	Vsize int64  `json:"vsize"`
}
