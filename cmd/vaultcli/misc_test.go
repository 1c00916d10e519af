package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/gateway"
)

func TestValidateAddressCommand(t *testing.T) {
	newHarness(t)

	cmd := newValidateAddressCommand()
	require.NoError(t, cmd.Flags().Set("address", "not-an-address"))
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestValidateXpubCommand(t *testing.T) {
	newHarness(t)

	cmd := newValidateXpubCommand()
	require.NoError(t, cmd.Flags().Set("xpub", testVectorXpub))
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestBlocksToTimeCommand(t *testing.T) {
	h := newHarness(t)

	cmd := newBlocksToTimeCommand()
	require.NoError(t, cmd.Flags().Set("blocks", "1008"))
	require.NoError(t, cmd.RunE(cmd, nil))

	h.assertLogContains(gateway.BlocksToTimeEstimate(1008))
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	cmd := newVersionCommand()
	require.NoError(t, cmd.RunE(cmd, nil))

	h.assertLogContains("vaultcore v")
}
