package psbtbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/taproot"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaultscript"
)

// testVaultConfig builds a self-consistent VaultConfig the way
// generate_vault_address would, without going through the gateway layer.
func testVaultConfig(t *testing.T, delayBlocks uint32) *vault.VaultConfig {
	t.Helper()

	var primaryXOnly [32]byte
	for i := range primaryXOnly {
		primaryXOnly[i] = byte(i + 1)
	}

	metadata := &codec.VaultMetadata{
		Version:      codec.MetadataSchemaVersion,
		TemplateID:   "savings_v1",
		DelayBlocks:  delayBlocks,
		RecoveryType: codec.RecoveryTimelockOnly,
		VaultIndex:   7,
	}

	spendScript, err := vaultscript.BuildSpendingLeaf(primaryXOnly, delayBlocks)
	require.NoError(t, err)

	metaScript, err := vaultscript.BuildMetadataLeaf(metadata)
	require.NoError(t, err)

	tree := taproot.BuildTree(taproot.Leaves{
		SpendingScript: spendScript,
		MetadataScript: metaScript,
	})

	salt := []byte("test-salt-bound-to-metadata-0001")
	internalKey, _, err := taproot.InternalKey(nil, salt)
	require.NoError(t, err)

	outputKey := taproot.OutputKey(internalKey, tree.MerkleRoot)
	scriptPubKey, err := taproot.ScriptPubKey(outputKey)
	require.NoError(t, err)

	addr, err := taproot.Address(outputKey, keys.Regtest)
	require.NoError(t, err)

	var internalKeyXOnly [32]byte
	copy(internalKeyXOnly[:], schnorr.SerializePubKey(internalKey))

	return &vault.VaultConfig{
		ID:             "test-vault",
		Template:       vault.SavingsTemplate(delayBlocks),
		Network:        keys.Regtest,
		Descriptor:     taproot.Descriptor(internalKey, spendScript, metaScript),
		Address:        addr.EncodeAddress(),
		ScriptPubKey:   scriptPubKey,
		InternalKey:    internalKeyXOnly,
		SpendingScript: spendScript,
		MetadataScript: metaScript,
		MerkleRoot:     tree.MerkleRoot,
		Metadata:       metadata,
	}
}

func testUtxo(t *testing.T, cfg *vault.VaultConfig, vout uint32, value int64,
	blockHeight uint32) vault.Utxo {

	t.Helper()
	return vault.Utxo{
		Txid: fakeTxid(vout),
		Vout: vout,
		ValueSats: value,
		ScriptPubKey: cfg.ScriptPubKey,
		BlockHeight: blockHeight,
	}
}

func fakeTxid(seed uint32) string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 64)
	for i := range b {
		b[i] = hexDigits[(seed+uint32(i))%16]
	}
	return string(b)
}

func TestBuildDelayedSpendPSBTSweepAll(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{
		testUtxo(t, cfg, 0, 100_000, 800_000),
		testUtxo(t, cfg, 1, 50_000, 800_001),
	}

	intent := vault.SpendIntent{
		VaultID:     cfg.ID,
		Destination: cfg.Address,
		FeeRate:     5,
		PathType:    vault.PathDelayed,
	}

	result, err := BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, keys.Regtest, 800_100,
	)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.PsbtBase64)
	require.Equal(t, "Delayed", result.Summary.Path)
	require.Equal(t, uint32(1008), result.Summary.DelayBlocks)
	require.Equal(t, uint32(800_100+1008), result.Summary.EstimatedUnlockHeight)
	require.Greater(t, result.Summary.FeeSats, int64(0))
	require.Equal(t, int64(150_000)-result.Summary.FeeSats, result.Summary.AmountSats)
}

func TestBuildEmergencyPSBT(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 100_000, 800_000)}

	result, err := BuildEmergencyPSBT(
		cfg, cfg.Address, 10, utxos, policy, keys.Regtest,
	)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Equal(t, "Emergency", result.Summary.Path)
}

func TestDustOutputRejected(t *testing.T) {
	cfg := testVaultConfig(t, 144)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 400, 800_000)}

	intent := vault.SpendIntent{
		Destination: cfg.Address,
		FeeRate:     50,
		PathType:    vault.PathDelayed,
	}

	_, err := BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, keys.Regtest, 0,
	)
	require.Error(t, err)
}

func TestInsufficientFunds(t *testing.T) {
	cfg := testVaultConfig(t, 144)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 1_000, 800_000)}

	amount := int64(10_000)
	intent := vault.SpendIntent{
		Destination: cfg.Address,
		AmountSats:  &amount,
		FeeRate:     5,
		PathType:    vault.PathDelayed,
	}

	_, err := BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, keys.Regtest, 0,
	)
	require.Error(t, err)
}

func TestVerifyPSBTPolicyValidDelayed(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 100_000, 800_000)}

	intent := vault.SpendIntent{
		Destination: cfg.Address,
		FeeRate:     5,
		PathType:    vault.PathDelayed,
	}

	built, err := BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, keys.Regtest, 0,
	)
	require.NoError(t, err)

	result, err := VerifyPSBTPolicy(built.PsbtBase64, cfg, policy)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.True(t, result.Valid)
}

func TestBuildCancelPSBTRequiresHigherFee(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 100_000, 800_000)}

	_, err := BuildCancelPSBT(
		cfg, fakeTxid(9), 10, 10, cfg.Address, utxos, policy,
		keys.Regtest,
	)
	require.Error(t, err)

	result, err := BuildCancelPSBT(
		cfg, fakeTxid(9), 10, 20, cfg.Address, utxos, policy,
		keys.Regtest,
	)
	require.NoError(t, err)
	require.True(t, result.IsValid)
}

func TestFinalizePSBTRejectsMissingWitness(t *testing.T) {
	cfg := testVaultConfig(t, 1008)
	policy := config.DefaultPolicy()
	utxos := []vault.Utxo{testUtxo(t, cfg, 0, 100_000, 800_000)}

	intent := vault.SpendIntent{
		Destination: cfg.Address,
		FeeRate:     5,
		PathType:    vault.PathDelayed,
	}

	built, err := BuildDelayedSpendPSBT(
		cfg, intent, utxos, policy, keys.Regtest, 0,
	)
	require.NoError(t, err)

	_, err = FinalizePSBT(built.PsbtBase64)
	require.Error(t, err)
}
