package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// testVectorXpub is BIP32 test vector 1's master extended public key.
const testVectorXpub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8Nqtw" +
	"ybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"

func TestParseXpubValid(t *testing.T) {
	extKey, err := ParseXpub(testVectorXpub, Mainnet)
	require.NoError(t, err)
	require.False(t, extKey.IsPrivate())
}

func TestParseXpubNetworkMismatch(t *testing.T) {
	_, err := ParseXpub(testVectorXpub, Testnet)
	require.Error(t, err)

	vErr, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, "NetworkMismatch", vErr.Kind)
}

func TestParseXpubGarbage(t *testing.T) {
	_, err := ParseXpub("not-an-xpub", Mainnet)
	require.Error(t, err)

	vErr, ok := vaulterr.As(err)
	require.True(t, ok)
	require.Equal(t, "InvalidXpub", vErr.Kind)
}

func TestParseXpubEmpty(t *testing.T) {
	_, err := ParseXpub("", Mainnet)
	require.Error(t, err)
}

func TestDeriveChildDeterministic(t *testing.T) {
	extKey, err := ParseXpub(testVectorXpub, Mainnet)
	require.NoError(t, err)

	child1, err := DeriveChild(extKey, 7)
	require.NoError(t, err)
	child2, err := DeriveChild(extKey, 7)
	require.NoError(t, err)

	require.Equal(t, child1.String(), child2.String())
}

func TestDeriveChildDistinctIndices(t *testing.T) {
	extKey, err := ParseXpub(testVectorXpub, Mainnet)
	require.NoError(t, err)

	child0, err := DeriveChild(extKey, 0)
	require.NoError(t, err)
	child1, err := DeriveChild(extKey, 1)
	require.NoError(t, err)

	require.NotEqual(t, child0.String(), child1.String())
}

func TestXOnlyBytesLength(t *testing.T) {
	pubKey, err := DeriveXOnly(testVectorXpub, 0, Mainnet)
	require.NoError(t, err)

	xo := XOnlyBytes(pubKey)
	require.Len(t, xo, 32)
}
