package gateway

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// testXpub derives a fresh regtest-network extended public key from a
// fixed seed, so tests are deterministic without any real key material.
func testXpub(t *testing.T) string {
	t.Helper()

	seed := make([]byte, hdkeychain.RecommendedSeedLen)
	for i := range seed {
		seed[i] = byte(i)
	}

	master, err := hdkeychain.NewMaster(seed, keys.Regtest.Params())
	require.NoError(t, err)

	account, err := master.DeriveNonStandard(hdkeychain.HardenedKeyStart + 86)
	require.NoError(t, err)
	account, err = account.DeriveNonStandard(hdkeychain.HardenedKeyStart)
	require.NoError(t, err)
	account, err = account.DeriveNonStandard(hdkeychain.HardenedKeyStart)
	require.NoError(t, err)

	neutered, err := account.Neuter()
	require.NoError(t, err)

	return neutered.String()
}

func TestGetVersion(t *testing.T) {
	require.NotEmpty(t, GetVersion())
}

func TestInit(t *testing.T) {
	network, err := Init("regtest")
	require.NoError(t, err)
	require.Equal(t, keys.Regtest, network)

	_, err = Init("not-a-network")
	require.Error(t, err)
	typed, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, vaulterr.CodeInvalidInput, typed.Code)
}

func TestGenerateVaultAddressDeterministic(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	req := GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SavingsTemplate(policy.DefaultSavingsDelay),
		VaultIndex:  0,
		Network:     keys.Regtest,
	}

	a, err := GenerateVaultAddress(req, policy)
	require.NoError(t, err)
	require.NotEmpty(t, a.Address)
	require.Equal(t, uint8(1), a.Metadata.Version)
	require.Equal(t, policy.DefaultSavingsDelay, a.Metadata.DelayBlocks)

	b, err := GenerateVaultAddress(req, policy)
	require.NoError(t, err)
	require.Equal(t, a.Address, b.Address)

	req.VaultIndex = 1
	c, err := GenerateVaultAddress(req, policy)
	require.NoError(t, err)
	require.NotEqual(t, a.Address, c.Address)
}

func TestGenerateVaultAddressRejectsOutOfRangeDelay(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	req := GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SavingsTemplate(policy.MaxDelayBlocks + 1),
		VaultIndex:  0,
		Network:     keys.Regtest,
	}

	_, err := GenerateVaultAddress(req, policy)
	require.Error(t, err)
	typed, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, vaulterr.CodePolicyViolation, typed.Code)
}

func TestGenerateVaultAddressCanonicalTemplateIgnoresFreeformFields(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	plain := GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SavingsTemplate(policy.DefaultSavingsDelay),
		VaultIndex:  2,
		Network:     keys.Regtest,
	}
	withExtras := plain
	withExtras.DestinationIndices = []uint8{1, 2, 3}
	withExtras.CreatedAtBlock = 830000

	a, err := GenerateVaultAddress(plain, policy)
	require.NoError(t, err)
	b, err := GenerateVaultAddress(withExtras, policy)
	require.NoError(t, err)

	require.Equal(t, a.Address, b.Address)
	require.Empty(t, b.Metadata.DestinationIndices)
	require.Zero(t, b.Metadata.CreatedAtBlock)
}

func TestDecodeMetadataLeafRoundtrip(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	resp, err := GenerateVaultAddress(GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SpendingTemplate(policy.DefaultSpendingDelay),
		VaultIndex:  4,
		Network:     keys.Regtest,
	}, policy)
	require.NoError(t, err)

	decoded, err := DecodeMetadataLeaf(resp.MetadataScriptHex)
	require.NoError(t, err)
	require.Equal(t, resp.Metadata.TemplateID, decoded.TemplateID)
	require.Equal(t, resp.Metadata.DelayBlocks, decoded.DelayBlocks)
	require.Equal(t, resp.Metadata.RecoveryType, decoded.RecoveryType)
	require.Equal(t, resp.Metadata.VaultIndex, decoded.VaultIndex)
	require.Empty(t, decoded.DestinationIndices)
}

func TestValidateAddress(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	resp, err := GenerateVaultAddress(GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SavingsTemplate(policy.DefaultSavingsDelay),
		VaultIndex:  0,
		Network:     keys.Regtest,
	}, policy)
	require.NoError(t, err)

	valid := ValidateAddress(resp.Address, keys.Regtest)
	require.True(t, valid.Valid)
	require.Equal(t, "p2tr", valid.Type)

	invalid := ValidateAddress("not-an-address", keys.Regtest)
	require.False(t, invalid.Valid)
}

func TestValidateXpub(t *testing.T) {
	xpub := testXpub(t)

	valid := ValidateXpub(xpub, keys.Regtest)
	require.True(t, valid.Valid)

	invalid := ValidateXpub(xpub, keys.Mainnet)
	require.False(t, invalid.Valid)
}

func TestBlocksToTimeEstimate(t *testing.T) {
	require.Equal(t, "~7 days", BlocksToTimeEstimate(1008))
	require.Equal(t, "~1 day", BlocksToTimeEstimate(144))
	require.Equal(t, "~1 hour", BlocksToTimeEstimate(6))
}

func TestDeriveScanAddresses(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	entries, err := DeriveScanAddresses(DeriveScanAddressesRequest{
		Xpub:       xpub,
		StartIndex: 0,
		Count:      3,
		Network:    keys.Regtest,
	}, policy)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	require.Equal(t, uint32(0), entries[0].Index)
}

func TestReconstructVaultRejectsEmptyUtxos(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	_, err := ReconstructVault(ReconstructVaultRequest{
		Address: "bcrt1pdoesnotmatter",
		Xpub:    xpub,
		Network: keys.Regtest,
	}, policy)
	require.Error(t, err)
	typed, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, vaulterr.CodeInvalidInput, typed.Code)
}

func TestReconstructVaultFindsDerivedAddress(t *testing.T) {
	xpub := testXpub(t)
	policy := config.DefaultPolicy()

	resp, err := GenerateVaultAddress(GenerateVaultAddressRequest{
		PrimaryXpub: xpub,
		Template:    vault.SpendingTemplate(policy.DefaultSpendingDelay),
		VaultIndex:  9,
		Network:     keys.Regtest,
	}, policy)
	require.NoError(t, err)

	cfg, err := ReconstructVault(ReconstructVaultRequest{
		Address: resp.Address,
		Utxos:   []vault.Utxo{{Txid: "aa", ValueSats: 1000}},
		Xpub:    xpub,
		Network: keys.Regtest,
	}, policy)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, uint32(9), cfg.Metadata.VaultIndex)
	require.Equal(t, resp.Address, cfg.Address)
}
