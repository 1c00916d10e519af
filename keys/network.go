// Package keys implements C2: xpub parsing, BIP32 non-hardened child
// derivation, x-only key projection, and network tagging. It is adapted
// from chantools' lnd/hdkeychain.go and btc/hdkeychain.go, trimmed to the
// public-key-only (no private key, no hardened derivation) operations the
// vault core is allowed to perform.
package keys

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// Network is a tagged variant over the four chains the vault core
// understands. It determines the bech32m human-readable part, the BIP32
// xpub version bytes, and which chaincfg.Params child-key derivation and
// address encoding use.
type Network int

const (
	Mainnet Network = iota
	Testnet
	Signet
	Regtest
)

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Signet:
		return "signet"
	case Regtest:
		return "regtest"
	default:
		return "unknown"
	}
}

// ParseNetwork maps a network name to its Network value. Unknown names
// return ok=false so callers can surface InvalidInput.
func ParseNetwork(name string) (Network, bool) {
	switch name {
	case "mainnet", "":
		return Mainnet, true
	case "testnet":
		return Testnet, true
	case "signet":
		return Signet, true
	case "regtest":
		return Regtest, true
	default:
		return 0, false
	}
}

// Params returns the chaincfg.Params this network uses for address and
// xpub-prefix validation.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case Mainnet:
		return &chaincfg.MainNetParams
	case Testnet:
		return &chaincfg.TestNet3Params
	case Signet:
		return &chaincfg.SigNetParams
	case Regtest:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}
