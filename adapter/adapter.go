// Package adapter defines the dependency-inversion boundary between the
// vault core and whatever blockchain data source a deployment wires in: the
// core never talks to a node or indexer directly, it only calls through
// BlockchainAdapter. This mirrors chantools' own split between the pure
// recovery/assembly logic in lnd/ and btc/ and the thin HTTP client in
// btc/explorer_api.go that feeds it chain data.
package adapter

import (
	"context"

	"github.com/taproot-vault/vaultcore/vault"
)

// BlockchainAdapter is the read-only chain-data surface the recovery scanner
// (C6) and the PSBT builder's callers need. Every call takes a ctx so a
// caller can cancel an in-flight sweep; implementations should return
// vaulterr.AdapterTransient for retryable failures (timeouts, 5xx,
// temporary DNS errors) and vaulterr.AdapterPermanent for anything else,
// since C6's retry/backoff state machine branches on that distinction.
type BlockchainAdapter interface {
	// GetUtxos returns the confirmed and unconfirmed unspent outputs paying
	// to address, in no particular order.
	GetUtxos(ctx context.Context, address string) ([]vault.Utxo, error)

	// GetTipHeight returns the current best block height, used to compute
	// estimated_unlock_height for delayed spends.
	GetTipHeight(ctx context.Context) (uint32, error)

	// GetTxWitness returns the witness stack of the input at vout of txid
	// that spends it, if the output has been spent. The second return value
	// is false if the output is unspent or the spending transaction has not
	// been observed.
	GetTxWitness(ctx context.Context, txid string, vout uint32) (
		[][]byte, bool, error)
}
