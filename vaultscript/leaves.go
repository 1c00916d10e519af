// Package vaultscript implements C3: the two tapscript leaves committed
// into every vault's Taproot tree, and the VaultMetadata leaf script that
// wraps the codec package's binary payload. Script construction follows
// chantools' txscript.NewScriptBuilder idiom (see
// cmd/chantools/closepoolaccount.go's CSV/CLTV leaf construction and
// cmd/chantools/sweeptaprootassets.go's tapleaf handling).
package vaultscript

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// LeafVersion is the BIP341 tapscript leaf version used by both leaves in
// this tree. It is exported so callers constructing control blocks don't
// need to depend on txscript directly for this constant.
const LeafVersion = txscript.BaseLeafVersion

// BuildSpendingLeaf builds the delayed-spend tapscript leaf:
//
//	<x_only_primary_key_32B> OP_CHECKSIGVERIFY
//	<delay_blocks as minimally-encoded CScriptNum> OP_CSV
//
// OP_CHECKSIGVERIFY consumes the signature and fails the script unless
// valid; OP_CHECKSEQUENCEVERIFY (OP_CSV) enforces that the spending
// input's nSequence satisfies the BIP68 relative timelock. delayBlocks
// must already have been validated against the policy's
// [MinDelayBlocks, MaxDelayBlocks] range by the caller.
func BuildSpendingLeaf(primaryXOnly [32]byte, delayBlocks uint32) (
	[]byte, error) {

	builder := txscript.NewScriptBuilder()
	builder.AddData(primaryXOnly[:])
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	builder.AddInt64(int64(delayBlocks))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	script, err := builder.Script()
	if err != nil {
		return nil, vaulterr.SerializationError(
			"failed building spending leaf script", err)
	}
	return script, nil
}

// BuildMetadataLeaf builds the provably-unspendable metadata leaf:
//
//	OP_RETURN <encoded VaultMetadata bytes>
//
// OP_RETURN makes the leaf immediately fail script evaluation, so it can
// never be a valid spend path; the data is nonetheless committed to the
// Taproot Merkle root and can be recovered by revealing this leaf.
func BuildMetadataLeaf(metadata *codec.VaultMetadata) ([]byte, error) {
	encoded, err := metadata.Encode()
	if err != nil {
		return nil, err
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_RETURN)
	builder.AddData(encoded)

	script, err := builder.Script()
	if err != nil {
		return nil, vaulterr.SerializationError(
			"failed building metadata leaf script", err)
	}
	return script, nil
}

// TapLeaf wraps a raw tapscript in chantools' tagged-leaf-hash idiom
// (txscript.NewBaseTapLeaf(script).TapHash(), as used throughout
// cmd/chantools/sweeptaprootassets.go and closepoolaccount.go) so the
// taproot package never needs to construct a txscript.TapLeaf itself.
func TapLeaf(script []byte) txscript.TapLeaf {
	return txscript.NewBaseTapLeaf(script)
}

// DecodeMetadataLeaf is the inverse of BuildMetadataLeaf: given the raw
// leaf script bytes (for example the metadata script that
// generate_vault_address returns), it strips the OP_RETURN/push-data
// framing and decodes the VaultMetadata payload.
func DecodeMetadataLeaf(script []byte) (*codec.VaultMetadata, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, vaulterr.MetadataDecodeFailed(
			"metadata leaf script does not start with OP_RETURN",
			nil)
	}

	if !tokenizer.Next() {
		return nil, vaulterr.MetadataDecodeFailed(
			"metadata leaf script missing data push", tokenizer.Err())
	}
	payload := tokenizer.Data()

	if tokenizer.Next() {
		return nil, vaulterr.MetadataDecodeFailed(
			"metadata leaf script has unexpected trailing opcodes",
			nil)
	}
	if err := tokenizer.Err(); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"malformed metadata leaf script", err)
	}

	return codec.Decode(payload)
}
