package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataRoundtripEmergencyKeyVault(t *testing.T) {
	m := &VaultMetadata{
		Version:            MetadataSchemaVersion,
		TemplateID:         "savings_v1",
		DelayBlocks:        1008,
		DestinationIndices: []uint8{0, 1},
		RecoveryType:       RecoveryEmergencyKey,
		CreatedAtBlock:     830000,
		VaultIndex:         42,
	}

	encoded, err := m.Encode()
	require.NoError(t, err)
	require.Less(t, len(encoded), MaxEncodedLen)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, m, decoded)
}

func TestMetadataRoundtripMultiSig(t *testing.T) {
	m := &VaultMetadata{
		Version:            MetadataSchemaVersion,
		TemplateID:         "custom_v1",
		DelayBlocks:        2016,
		DestinationIndices: []uint8{3, 4, 5},
		RecoveryType:       RecoveryMultiSig,
		MultiSigThreshold:  2,
		MultiSigTotal:      3,
		CreatedAtBlock:     831000,
		VaultIndex:         5,
	}

	encoded, err := m.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, m, decoded)
}

func TestMetadataEncodeTooLongTemplateID(t *testing.T) {
	longID := make([]byte, 300)
	for i := range longID {
		longID[i] = 'a'
	}

	m := &VaultMetadata{
		Version:    MetadataSchemaVersion,
		TemplateID: string(longID),
	}

	_, err := m.Encode()
	require.Error(t, err)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 5, 'a', 'b'})
	require.Error(t, err)
}

func TestDecodeTrailingBytes(t *testing.T) {
	m := &VaultMetadata{
		Version:      MetadataSchemaVersion,
		TemplateID:   "spending_v1",
		DelayBlocks:  144,
		RecoveryType: RecoveryTimelockOnly,
	}
	encoded, err := m.Encode()
	require.NoError(t, err)

	_, err = Decode(append(encoded, 0xff))
	require.Error(t, err)
}
