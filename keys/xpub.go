package keys

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// ParseXpub parses and network-checks an extended public key string. It
// fails with InvalidXpub on checksum/length corruption and NetworkMismatch
// if the key's version bytes don't belong to network.
func ParseXpub(xpub string, network Network) (*hdkeychain.ExtendedKey, error) {
	if xpub == "" {
		return nil, vaulterr.InvalidInput("xpub must not be empty")
	}

	extKey, err := hdkeychain.NewKeyFromString(xpub)
	if err != nil {
		return nil, vaulterr.InvalidXpub(
			"could not parse extended public key", err)
	}

	if extKey.IsPrivate() {
		return nil, vaulterr.InvalidXpub(
			"expected an extended public key, got a private key",
			nil)
	}

	if !extKey.IsForNet(network.Params()) {
		return nil, vaulterr.NetworkMismatch(fmt.Sprintf(
			"xpub version bytes do not match network %s", network),
			nil)
	}

	return extKey, nil
}

// DeriveChild derives the child key at the canonical vault path 0/vaultIndex
// from an account-level xpub. The account-level path
// (m/86'/coin'/0') is assumed to already have been performed by hardware
// before export; this derives only the non-hardened 0/vaultIndex receive
// path, which is the only derivation possible from a neutered key.
func DeriveChild(extKey *hdkeychain.ExtendedKey, vaultIndex uint32) (
	*hdkeychain.ExtendedKey, error) {

	changeKey, err := extKey.DeriveNonStandard(0)
	if err != nil {
		return nil, vaulterr.KeyDerivationFailed(
			"could not derive change-level key", err)
	}

	childKey, err := changeKey.DeriveNonStandard(vaultIndex)
	if err != nil {
		return nil, vaulterr.KeyDerivationFailed(fmt.Sprintf(
			"could not derive child key at index %d", vaultIndex),
			err)
	}

	return childKey, nil
}

// XOnly extracts the public key of a derived extended public key. The
// returned key still carries its y parity; XOnlyBytes gives the 32-byte
// x-only form used throughout BIP340/BIP341.
func XOnly(extKey *hdkeychain.ExtendedKey) (*btcec.PublicKey, error) {
	pubKey, err := extKey.ECPubKey()
	if err != nil {
		return nil, vaulterr.KeyDerivationFailed(
			"could not extract public key", err)
	}
	return pubKey, nil
}

// XOnlyBytes returns the 32-byte x-only serialization of pubKey, the form
// committed into tapscripts and control blocks.
func XOnlyBytes(pubKey *btcec.PublicKey) [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(pubKey))
	return out
}

// DeriveXOnly is the common-case helper: parse an xpub, derive the vault
// child, and return its public key (see XOnly) in one call.
func DeriveXOnly(xpub string, vaultIndex uint32, network Network) (
	*btcec.PublicKey, error) {

	extKey, err := ParseXpub(xpub, network)
	if err != nil {
		return nil, err
	}

	child, err := DeriveChild(extKey, vaultIndex)
	if err != nil {
		return nil, err
	}

	return XOnly(child)
}
