package vaultscript

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/taproot-vault/vaultcore/codec"
)

// commitmentSaltTag domain-separates the unspendable-internal-key salt from
// every other tagged hash used in this codebase (TapLeaf, TapBranch,
// TapTweak), following the same chainhash.TaggedHash idiom the taproot
// package uses for those.
const commitmentSaltTag = "VaultCore/UnspendableSalt"

// DeriveCommitmentSalt computes the salt tweaking BIP341's NUMS point into
// this vault's provably-unspendable internal key.
// It is a pure function of the fields a recovery sweep already knows before
// finding a vault on-chain — the primary key, the candidate vault_index,
// and the template being probed — so that generate_vault_address and the
// recovery scanner always agree on the same internal key without either
// side needing to guess at caller-supplied metadata (destination_indices,
// created_at_block) ahead of time.
func DeriveCommitmentSalt(primaryXOnly [32]byte, vaultIndex uint32,
	templateID string, delayBlocks uint32,
	recoveryType codec.RecoveryType) [32]byte {

	var indexBytes, delayBytes [4]byte
	binary.LittleEndian.PutUint32(indexBytes[:], vaultIndex)
	binary.LittleEndian.PutUint32(delayBytes[:], delayBlocks)

	hash := chainhash.TaggedHash(
		commitmentSaltTag,
		primaryXOnly[:],
		indexBytes[:],
		[]byte(templateID),
		delayBytes[:],
		[]byte{byte(recoveryType)},
	)

	var out [32]byte
	copy(out[:], hash[:])
	return out
}
