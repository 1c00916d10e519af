// Package taproot implements C4: the two-leaf Merkle tree, internal-key
// selection, TapTweak, P2TR address encoding, and descriptor serialization
// described below. Leaf hashing and output-key tweaking are
// grounded on chantools' rescuetweakedkey.go (chainhash.TaggedHash usage)
// and lnd/hdkeychain.go's P2TRAddr helper; the descriptor checksum is
// adapted from chantools' btc/descriptors.go (BIP-380 Bech32 checksum).
package taproot

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// numsPointXOnly is BIP341's well-known "nothing up my sleeve" point H,
// whose discrete logarithm is unknown to anyone. Tweaking it by a known
// scalar (see UnspendableInternalKey below) yields another point whose
// discrete log is still unknown, the standard technique for a verifiably
// unspendable Taproot key-path.
var numsPointXOnly = func() [32]byte {
	b, err := hex.DecodeString(
		"50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0",
	)
	if err != nil {
		panic(err)
	}
	var out [32]byte
	copy(out[:], b)
	return out
}()

// Leaves holds the two tapscript leaves every vault commits: the delayed
// spending leaf and the OP_RETURN metadata leaf.
type Leaves struct {
	SpendingScript []byte
	MetadataScript []byte
}

// Tree is the assembled depth-1 Merkle tree over Leaves plus the control-
// block material needed to spend either leaf.
type Tree struct {
	SpendingLeafHash chainhash.Hash
	MetadataLeafHash chainhash.Hash
	MerkleRoot       [32]byte
}

// BuildTree computes the depth-1 Merkle tree over the two leaves, sorting
// the leaf hashes into ascending byte order before combining per BIP341's
// lexicographic rule.
func BuildTree(leaves Leaves) Tree {
	spendHash := txscript.NewBaseTapLeaf(leaves.SpendingScript).TapHash()
	metaHash := txscript.NewBaseTapLeaf(leaves.MetadataScript).TapHash()

	left, right := spendHash[:], metaHash[:]
	if bytes.Compare(left, right) > 0 {
		left, right = right, left
	}

	branch := chainhash.TaggedHash(chainhash.TagTapBranch, left, right)

	var root [32]byte
	copy(root[:], branch[:])

	return Tree{
		SpendingLeafHash: spendHash,
		MetadataLeafHash: metaHash,
		MerkleRoot:       root,
	}
}

// UnspendableInternalKey derives a provably-unspendable internal key by
// tweaking BIP341's NUMS point H with a scalar bound to saltAndMetadata, so
// the unspendability stays independently verifiable. Any third party can
// redo this computation and confirm the result still has no known
// discrete log, because H itself has none.
func UnspendableInternalKey(saltAndMetadata []byte) (*btcec.PublicKey, error) {
	h, err := schnorr.ParsePubKey(numsPointXOnly[:])
	if err != nil {
		return nil, vaulterr.SerializationError(
			"failed to parse BIP341 NUMS point", err)
	}

	tweaked := txscript.ComputeTaprootOutputKey(h, saltAndMetadata)
	return tweaked, nil
}

// InternalKey selects the Taproot internal key P:
// the emergency key if one is configured and reachable, otherwise the
// salted NUMS point.
func InternalKey(emergencyXOnly *btcec.PublicKey, salt []byte) (
	*btcec.PublicKey, bool, error) {

	if emergencyXOnly != nil {
		return emergencyXOnly, true, nil
	}

	key, err := UnspendableInternalKey(salt)
	if err != nil {
		return nil, false, err
	}
	return key, false, nil
}

// OutputKey computes the final Taproot output key Q = P + t·G, where
// t = taggedHash("TapTweak", P_x || merkle_root), via
// txscript.ComputeTaprootOutputKey (the same helper chantools uses in
// rescueclosed.go/sweeptaprootassets.go).
func OutputKey(internalKey *btcec.PublicKey, merkleRoot [32]byte) *btcec.PublicKey {
	return txscript.ComputeTaprootOutputKey(internalKey, merkleRoot[:])
}

// Address encodes the Taproot output key as a bech32m P2TR address for
// network.
func Address(outputKey *btcec.PublicKey, network keys.Network) (
	*btcutil.AddressTaproot, error) {

	addr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(outputKey), network.Params(),
	)
	if err != nil {
		return nil, vaulterr.InvalidAddress(
			"failed to encode taproot address", err)
	}
	return addr, nil
}

// ScriptPubKey returns the witness v1 program script (OP_1 <Q_x>) for the
// given output key.
func ScriptPubKey(outputKey *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_1)
	builder.AddData(schnorr.SerializePubKey(outputKey))

	script, err := builder.Script()
	if err != nil {
		return nil, vaulterr.SerializationError(
			"failed building P2TR script pubkey", err)
	}
	return script, nil
}

// ControlBlock builds the witness control block revealing internalKey and
// the single sibling hash needed to spend the spending leaf (or, with
// spendingLeaf false, the metadata leaf) out of the two-leaf tree.
func ControlBlock(internalKey, outputKey *btcec.PublicKey,
	spendingLeaf bool, tree Tree) ([]byte, error) {

	sibling := tree.MetadataLeafHash
	if !spendingLeaf {
		sibling = tree.SpendingLeafHash
	}

	cb := txscript.ControlBlock{
		InternalKey:     internalKey,
		LeafVersion:     txscript.BaseLeafVersion,
		OutputKeyYIsOdd: outputKey.SerializeCompressed()[0] == 0x03,
		InclusionProof:  sibling[:],
	}

	blockBytes, err := cb.ToBytes()
	if err != nil {
		return nil, vaulterr.SerializationError(
			"failed serializing control block", err)
	}
	return blockBytes, nil
}

// Descriptor renders the output descriptor string
// tr(INTERNAL_KEY,{SPEND_LEAF,META_LEAF}) with its checksum appended,
// emitting only the miniscript-legal raw_script() wrapping of both leaves
// rather than an informal pseudo-descriptor.
func Descriptor(internalKey *btcec.PublicKey, spendingScript,
	metadataScript []byte) string {

	body := fmt.Sprintf(
		"tr(%x,{raw_script(%x),raw_script(%x)})",
		schnorr.SerializePubKey(internalKey),
		spendingScript,
		metadataScript,
	)
	return DescriptorSumCreate(body)
}
