// Package codec implements C1: the fixed little-endian binary codec for
// VaultMetadata, plus the hex/base64 helpers used at the request gateway
// boundary. The encoding style (explicit byte-oriented Encode/Decode pairs
// over a bytes.Buffer, wrapped errors with %w) follows the wire-level
// helpers scattered through chantools' dataformat and lnd packages, which
// lean on wire.Read*/Write* rather than reflection-based codecs.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/taproot-vault/vaultcore/vaulterr"
)

// RecoveryType is the 1-byte discriminant stored in VaultMetadata.
type RecoveryType uint8

const (
	RecoveryEmergencyKey RecoveryType = 0
	RecoveryTimelockOnly RecoveryType = 1
	RecoveryMultiSig     RecoveryType = 2
)

func (r RecoveryType) String() string {
	switch r {
	case RecoveryEmergencyKey:
		return "EmergencyKey"
	case RecoveryTimelockOnly:
		return "TimelockOnly"
	case RecoveryMultiSig:
		return "MultiSig"
	default:
		return "Unknown"
	}
}

// MetadataSchemaVersion is the current codec schema version.
const MetadataSchemaVersion uint8 = 1

// MaxEncodedLen is the Bitcoin script push-data limit VaultMetadata must
// stay under once encoded into the OP_RETURN metadata leaf.
const MaxEncodedLen = 520

// MaxElementLen is the largest count a single u8 length prefix can carry.
const MaxElementLen = 255

// VaultMetadata is the self-describing recovery payload committed to the
// Taproot tree's metadata leaf.
type VaultMetadata struct {
	Version            uint8
	TemplateID         string
	DelayBlocks        uint32
	DestinationIndices []uint8
	RecoveryType       RecoveryType
	// MultiSigThreshold/MultiSigTotal are only meaningful when
	// RecoveryType == RecoveryMultiSig. This is the v1 stopgap layout for
	// that variant, not a v2 schema.
	MultiSigThreshold uint8
	MultiSigTotal     uint8
	CreatedAtBlock    uint32
	VaultIndex        uint32
}

// Encode serializes m into its fixed little-endian layout. It fails with
// MetadataEncodeTooLong if any length-prefixed field overflows its u8
// count or if the total encoding would exceed the 520-byte script
// push-data limit.
func (m *VaultMetadata) Encode() ([]byte, error) {
	if len(m.TemplateID) > MaxElementLen {
		return nil, vaulterr.MetadataEncodeTooLong(fmt.Sprintf(
			"template_id length %d exceeds %d bytes",
			len(m.TemplateID), MaxElementLen))
	}
	if len(m.DestinationIndices) > MaxElementLen {
		return nil, vaulterr.MetadataEncodeTooLong(fmt.Sprintf(
			"destination_indices length %d exceeds %d elements",
			len(m.DestinationIndices), MaxElementLen))
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(m.Version)

	buf.WriteByte(byte(len(m.TemplateID)))
	buf.WriteString(m.TemplateID)

	if err := binary.Write(buf, binary.LittleEndian, m.DelayBlocks); err != nil {
		return nil, vaulterr.SerializationError(
			"failed writing delay_blocks", err)
	}

	buf.WriteByte(byte(len(m.DestinationIndices)))
	buf.Write(m.DestinationIndices)

	buf.WriteByte(byte(m.RecoveryType))
	if m.RecoveryType == RecoveryMultiSig {
		buf.WriteByte(m.MultiSigThreshold)
		buf.WriteByte(m.MultiSigTotal)
	}

	if err := binary.Write(buf, binary.LittleEndian, m.CreatedAtBlock); err != nil {
		return nil, vaulterr.SerializationError(
			"failed writing created_at_block", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, m.VaultIndex); err != nil {
		return nil, vaulterr.SerializationError(
			"failed writing vault_index", err)
	}

	encoded := buf.Bytes()
	if len(encoded) >= MaxEncodedLen {
		return nil, vaulterr.MetadataEncodeTooLong(fmt.Sprintf(
			"encoded metadata is %d bytes, must be < %d",
			len(encoded), MaxEncodedLen))
	}

	return encoded, nil
}

// Decode parses the byte layout written by Encode. It is the exact inverse
// of Encode: decode(encode(m)) == m for all valid m.
func Decode(data []byte) (*VaultMetadata, error) {
	r := bytes.NewReader(data)
	m := &VaultMetadata{}

	version, err := r.ReadByte()
	if err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing version", err)
	}
	m.Version = version

	templateLen, err := r.ReadByte()
	if err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing template_id length", err)
	}
	templateBytes := make([]byte, templateLen)
	if _, err := readFull(r, templateBytes); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: short template_id", err)
	}
	m.TemplateID = string(templateBytes)

	if err := binary.Read(r, binary.LittleEndian, &m.DelayBlocks); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing delay_blocks", err)
	}

	indicesLen, err := r.ReadByte()
	if err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing destination_indices length",
			err)
	}
	m.DestinationIndices = make([]uint8, indicesLen)
	if _, err := readFull(r, m.DestinationIndices); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: short destination_indices", err)
	}

	recoveryByte, err := r.ReadByte()
	if err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing recovery_type", err)
	}
	m.RecoveryType = RecoveryType(recoveryByte)
	if m.RecoveryType == RecoveryMultiSig {
		threshold, err := r.ReadByte()
		if err != nil {
			return nil, vaulterr.MetadataDecodeFailed(
				"truncated metadata: missing multisig threshold",
				err)
		}
		total, err := r.ReadByte()
		if err != nil {
			return nil, vaulterr.MetadataDecodeFailed(
				"truncated metadata: missing multisig total",
				err)
		}
		m.MultiSigThreshold = threshold
		m.MultiSigTotal = total
	}

	if err := binary.Read(r, binary.LittleEndian, &m.CreatedAtBlock); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing created_at_block", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.VaultIndex); err != nil {
		return nil, vaulterr.MetadataDecodeFailed(
			"truncated metadata: missing vault_index", err)
	}

	if r.Len() != 0 {
		return nil, vaulterr.MetadataDecodeFailed(fmt.Sprintf(
			"%d trailing bytes after decoding metadata", r.Len()),
			nil)
	}

	return m, nil
}

func readFull(r *bytes.Reader, dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	n, err := r.Read(dst)
	if err != nil {
		return n, err
	}
	if n != len(dst) {
		return n, fmt.Errorf("short read: got %d wanted %d", n, len(dst))
	}
	return n, nil
}
