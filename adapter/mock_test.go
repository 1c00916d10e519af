package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

func TestMockAdapterGetUtxos(t *testing.T) {
	ctx := context.Background()
	m := NewMockAdapter(800_000)
	addr := "bcrt1pexampleaddress"
	utxos := []vault.Utxo{{Txid: "aa", Vout: 0, ValueSats: 1000}}
	m.SetUtxos(addr, utxos)

	got, err := m.GetUtxos(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, utxos, got)

	got, err = m.GetUtxos(ctx, "unknown-address")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMockAdapterFailAddress(t *testing.T) {
	ctx := context.Background()
	m := NewMockAdapter(800_000)
	addr := "bcrt1pexampleaddress"
	m.FailAddress(addr, AlwaysTransient(addr))

	_, err := m.GetUtxos(ctx, addr)
	require.Error(t, err)

	typed, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, vaulterr.CodeAdapterTransient, typed.Code)
}

func TestMockAdapterTipHeight(t *testing.T) {
	ctx := context.Background()
	m := NewMockAdapter(800_000)
	height, err := m.GetTipHeight(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(800_000), height)

	m.SetTipHeight(810_000)
	height, err = m.GetTipHeight(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(810_000), height)
}

func TestMockAdapterGetTxWitness(t *testing.T) {
	ctx := context.Background()
	m := NewMockAdapter(800_000)

	_, found, err := m.GetTxWitness(ctx, "aa", 0)
	require.NoError(t, err)
	require.False(t, found)

	witness := [][]byte{{0x01, 0x02}, {0x03}}
	m.SetWitness("aa", 0, witness)

	got, found, err := m.GetTxWitness(ctx, "aa", 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, witness, got)
}
