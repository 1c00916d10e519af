package recovery

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/adapter"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// testXpub derives a fresh regtest-network extended public key from a fixed
// seed, so tests are deterministic without depending on any real key
// material.
func testXpub(t *testing.T) string {
	t.Helper()

	seed := make([]byte, hdkeychain.RecommendedSeedLen)
	for i := range seed {
		seed[i] = byte(i)
	}

	master, err := hdkeychain.NewMaster(seed, keys.Regtest.Params())
	require.NoError(t, err)

	account, err := master.DeriveNonStandard(
		hdkeychain.HardenedKeyStart + 86,
	)
	require.NoError(t, err)
	account, err = account.DeriveNonStandard(hdkeychain.HardenedKeyStart)
	require.NoError(t, err)
	account, err = account.DeriveNonStandard(hdkeychain.HardenedKeyStart)
	require.NoError(t, err)

	neutered, err := account.Neuter()
	require.NoError(t, err)

	return neutered.String()
}

func TestDeriveCandidateDeterministic(t *testing.T) {
	xpub := testXpub(t)
	template := vault.SavingsTemplate(1008)

	a, err := DeriveCandidate(xpub, keys.Regtest, template, 5)
	require.NoError(t, err)

	b, err := DeriveCandidate(xpub, keys.Regtest, template, 5)
	require.NoError(t, err)

	require.Equal(t, a.Address, b.Address)
	require.Equal(t, a.ScriptPubKey, b.ScriptPubKey)

	c, err := DeriveCandidate(xpub, keys.Regtest, template, 6)
	require.NoError(t, err)
	require.NotEqual(t, a.Address, c.Address)
}

func TestScanWindowFindsFundedIndex(t *testing.T) {
	ctx := context.Background()
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	candidate, err := DeriveCandidate(
		xpub, keys.Regtest, vault.SavingsTemplate(policy.DefaultSavingsDelay), 3,
	)
	require.NoError(t, err)

	mock := adapter.NewMockAdapter(800_000)
	mock.SetUtxos(candidate.Address, []vault.Utxo{
		{Txid: "aa", Vout: 0, ValueSats: 50_000},
	})

	result, err := ScanWindow(ctx, mock, xpub, keys.Regtest, 0, 10, policy)
	require.NoError(t, err)
	require.False(t, result.Cancelled)
	require.Empty(t, result.Failures)
	require.Len(t, result.Vaults, 1)
	require.Equal(t, uint32(3), result.Vaults[0].Metadata.VaultIndex)
	require.Equal(t, candidate.Address, result.Vaults[0].Address)
}

func TestScanWindowNoMatchesIsEmptyNotFailure(t *testing.T) {
	ctx := context.Background()
	xpub := testXpub(t)
	policy := config.DefaultPolicy()
	mock := adapter.NewMockAdapter(800_000)

	result, err := ScanWindow(ctx, mock, xpub, keys.Regtest, 0, 5, policy)
	require.NoError(t, err)
	require.Empty(t, result.Vaults)
	require.Empty(t, result.Failures)
}

func TestScanWindowAggregatesPermanentFailureWithoutAborting(t *testing.T) {
	ctx := context.Background()
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	candidate, err := DeriveCandidate(
		xpub, keys.Regtest, vault.SavingsTemplate(policy.DefaultSavingsDelay), 1,
	)
	require.NoError(t, err)
	found, err := DeriveCandidate(
		xpub, keys.Regtest, vault.SavingsTemplate(policy.DefaultSavingsDelay), 4,
	)
	require.NoError(t, err)

	mock := adapter.NewMockAdapter(800_000)
	mock.FailAddress(candidate.Address, vaulterr.AdapterPermanent(
		"indexer rejected the query", nil))
	mock.SetUtxos(found.Address, []vault.Utxo{{Txid: "bb", ValueSats: 1_000}})

	result, err := ScanWindow(ctx, mock, xpub, keys.Regtest, 0, 6, policy)
	require.NoError(t, err)
	require.Len(t, result.Vaults, 1)
	require.Len(t, result.Failures, 1)
	require.Equal(t, StatusPermanentError, result.Failures[0].Status)
	require.Equal(t, uint32(1), result.Failures[0].VaultIndex)
}

func TestScanWindowCancellation(t *testing.T) {
	policy := config.DefaultPolicy()
	xpub := testXpub(t)
	mock := adapter.NewMockAdapter(800_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ScanWindow(ctx, mock, xpub, keys.Regtest, 0, 10, policy)
	require.NoError(t, err)
	require.True(t, result.Cancelled)
	require.Empty(t, result.Vaults)
}

func TestReconstructVaultFindsKnownAddress(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	candidate, err := DeriveCandidate(
		xpub, keys.Regtest, vault.SpendingTemplate(policy.DefaultSpendingDelay), 7,
	)
	require.NoError(t, err)

	cfg, err := ReconstructVault(
		xpub, keys.Regtest, candidate.Address, 0, 20, policy,
	)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, uint32(7), cfg.Metadata.VaultIndex)
}

func TestReconstructVaultUnknownAddress(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	cfg, err := ReconstructVault(
		xpub, keys.Regtest, "bcrt1pdoesnotexist", 0, 5, policy,
	)
	require.NoError(t, err)
	require.Nil(t, cfg)
}

