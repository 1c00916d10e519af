// Package recovery implements C6: deriving the universe of candidate vault
// addresses from an xpub alone, querying the injected blockchain adapter for
// on-chain presence, and reconstructing VaultConfig on a hit. The retry/
// backoff and per-index state-machine shape follows chantools'
// findLoopInSwap/findLoopOutSwap (cmd/chantools/recoverloopin.go,
// recoverloopout.go), the only places in chantools that poll an external
// source across a ctx-cancellable loop.
package recovery

import (
	"context"
	"time"

	"github.com/taproot-vault/vaultcore/adapter"
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/taproot"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaultscript"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// IndexStatus is the per-candidate-index state machine:
// Pending -> Queried -> (Empty | Found | TransientError | PermanentError).
// Every non-Pending/Queried state is terminal; there are no back-edges.
type IndexStatus uint8

const (
	StatusPending IndexStatus = iota
	StatusQueried
	StatusEmpty
	StatusFound
	StatusTransientError
	StatusPermanentError
)

func (s IndexStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusQueried:
		return "Queried"
	case StatusEmpty:
		return "Empty"
	case StatusFound:
		return "Found"
	case StatusTransientError:
		return "TransientError"
	case StatusPermanentError:
		return "PermanentError"
	default:
		return "Unknown"
	}
}

// CandidateResult is the terminal outcome of scanning one vault_index.
type CandidateResult struct {
	VaultIndex uint32
	Status     IndexStatus
	Config     *vault.VaultConfig
	Err        error
}

// SweepResult is the aggregate outcome of a full scan window.
type SweepResult struct {
	// Vaults is sorted by ascending VaultIndex regardless of the order the
	// adapter answered queries in.
	Vaults []*vault.VaultConfig

	// Failures holds every index whose terminal state was TransientError
	// or PermanentError, in scan order, so a caller can retry or report
	// them without aborting the rest of the sweep. Empty indices are not
	// listed.
	Failures []CandidateResult

	// Cancelled is true if ctx was cancelled before the window completed.
	// Vaults already found up to that point are still returned.
	Cancelled bool
}

// backoffDelay is the fixed exponential delay used between retries of a
// single address query: 100ms, 200ms, 400ms, ... config.Policy's
// RecoveryMaxRetries bounds how many retries follow the first attempt.
func backoffDelay(attempt int) time.Duration {
	delay := 100 * time.Millisecond
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// DeriveCandidate builds the VaultConfig a canonical (Savings or Spending)
// template would produce at vaultIndex, without requiring any caller-
// supplied metadata beyond what the template and index already fix. See
// DESIGN.md's Open Question (d): destination_indices and created_at_block
// are caller-supplied free-form fields that a blind scan cannot predict, so
// the canonical templates scanned here always commit them as the zero
// value; a Custom vault that sets them to anything else is out of reach of
// blind scanning by construction, and its owner must track its address
// directly.
func DeriveCandidate(primaryXpub string, network keys.Network,
	template vault.VaultTemplate, vaultIndex uint32) (*vault.VaultConfig, error) {

	primaryPub, err := keys.DeriveXOnly(primaryXpub, vaultIndex, network)
	if err != nil {
		return nil, err
	}
	primaryXOnly := keys.XOnlyBytes(primaryPub)

	metadata := &codec.VaultMetadata{
		Version:      codec.MetadataSchemaVersion,
		TemplateID:   template.TemplateID,
		DelayBlocks:  template.DelayBlocks,
		RecoveryType: template.RecoveryType,
		VaultIndex:   vaultIndex,
	}

	spendScript, err := vaultscript.BuildSpendingLeaf(
		primaryXOnly, template.DelayBlocks,
	)
	if err != nil {
		return nil, err
	}

	metaScript, err := vaultscript.BuildMetadataLeaf(metadata)
	if err != nil {
		return nil, err
	}

	tree := taproot.BuildTree(taproot.Leaves{
		SpendingScript: spendScript,
		MetadataScript: metaScript,
	})

	salt := vaultscript.DeriveCommitmentSalt(
		primaryXOnly, vaultIndex, template.TemplateID,
		template.DelayBlocks, template.RecoveryType,
	)

	internalKey, _, err := taproot.InternalKey(nil, salt[:])
	if err != nil {
		return nil, err
	}

	outputKey := taproot.OutputKey(internalKey, tree.MerkleRoot)

	scriptPubKey, err := taproot.ScriptPubKey(outputKey)
	if err != nil {
		return nil, err
	}

	addr, err := taproot.Address(outputKey, network)
	if err != nil {
		return nil, err
	}

	return &vault.VaultConfig{
		Template:       template,
		PrimaryXpub:    primaryXpub,
		Network:        network,
		Descriptor:     taproot.Descriptor(internalKey, spendScript, metaScript),
		Address:        addr.EncodeAddress(),
		ScriptPubKey:   scriptPubKey,
		InternalKey:    keys.XOnlyBytes(internalKey),
		SpendingScript: spendScript,
		MetadataScript: metaScript,
		MerkleRoot:     tree.MerkleRoot,
		Metadata:       metadata,
	}, nil
}

// queryWithRetry calls GetUtxos, retrying transient adapter errors with
// exponential backoff up to policy.RecoveryMaxRetries times. A permanent
// error or exhausted retries is returned as-is.
func queryWithRetry(ctx context.Context, adap adapter.BlockchainAdapter,
	address string, policy *config.Policy) ([]vault.Utxo, error) {

	var lastErr error
	for attempt := 0; attempt <= policy.RecoveryMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDelay(attempt - 1)):
			}
		}

		utxos, err := adap.GetUtxos(ctx, address)
		if err == nil {
			return utxos, nil
		}

		lastErr = err
		typed, ok := vaulterr.As(err)
		if !ok || typed.Code != vaulterr.CodeAdapterTransient {
			return nil, err
		}
	}
	return nil, lastErr
}

// ScanWindow implements the C6 recovery scanner: for each index in
// [startIndex, startIndex+count) and every known VaultTemplate, derive the
// candidate address and query the adapter for funds, aggregating failures
// without aborting the sweep.
func ScanWindow(ctx context.Context, adap adapter.BlockchainAdapter,
	primaryXpub string, network keys.Network, startIndex, count uint32,
	policy *config.Policy) (*SweepResult, error) {

	result := &SweepResult{}
	templates := vault.KnownTemplates(
		policy.DefaultSavingsDelay, policy.DefaultSpendingDelay,
	)

	for offset := uint32(0); offset < count; offset++ {
		index := startIndex + offset

		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, nil
		default:
		}

		cr := scanIndex(ctx, adap, primaryXpub, network, templates, index, policy)
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}

		switch cr.Status {
		case StatusFound:
			result.Vaults = append(result.Vaults, cr.Config)
		case StatusEmpty:
			// No action: an empty index is not a failure worth reporting.
		default:
			result.Failures = append(result.Failures, cr)
		}
	}

	return result, nil
}

// scanIndex runs the per-template probe for a single candidate index and
// returns its terminal CandidateResult.
func scanIndex(ctx context.Context, adap adapter.BlockchainAdapter,
	primaryXpub string, network keys.Network, templates []vault.VaultTemplate,
	index uint32, policy *config.Policy) CandidateResult {

	for _, template := range templates {
		candidate, err := DeriveCandidate(primaryXpub, network, template, index)
		if err != nil {
			return CandidateResult{
				VaultIndex: index,
				Status:     StatusPermanentError,
				Err:        err,
			}
		}

		utxos, err := queryWithRetry(ctx, adap, candidate.Address, policy)
		if err != nil {
			if ctx.Err() != nil {
				return CandidateResult{VaultIndex: index}
			}

			typed, ok := vaulterr.As(err)
			status := StatusPermanentError
			if ok && typed.Code == vaulterr.CodeAdapterTransient {
				status = StatusTransientError
			}
			return CandidateResult{
				VaultIndex: index,
				Status:     status,
				Err:        err,
			}
		}

		if len(utxos) > 0 {
			return CandidateResult{
				VaultIndex: index,
				Status:     StatusFound,
				Config:     candidate,
			}
		}
	}

	return CandidateResult{VaultIndex: index, Status: StatusEmpty}
}

// ReconstructVault implements reconstruct_vault: given an address already
// known to hold funds (e.g. found by a prior ScanWindow, or supplied
// directly by a caller who tracked it out of band), confirm the address
// belongs to one of the known templates derivable from
// xpub and, if so, return its VaultConfig. Returns nil, nil if no known
// template at any index in the scanned range reproduces address.
func ReconstructVault(xpub string, network keys.Network, address string,
	startIndex, count uint32, policy *config.Policy) (*vault.VaultConfig, error) {

	templates := vault.KnownTemplates(
		policy.DefaultSavingsDelay, policy.DefaultSpendingDelay,
	)

	for offset := uint32(0); offset < count; offset++ {
		index := startIndex + offset
		for _, template := range templates {
			candidate, err := DeriveCandidate(xpub, network, template, index)
			if err != nil {
				return nil, err
			}
			if candidate.Address == address {
				return candidate, nil
			}
		}
	}

	return nil, nil
}
