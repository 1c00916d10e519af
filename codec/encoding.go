package codec

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/taproot-vault/vaultcore/vaulterr"
)

// HexEncode/HexDecode use the standard lowercase hex alphabet throughout the
// core, matching every %x/hex.DecodeString call site in chantools.
func HexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func HexDecode(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, vaulterr.SerializationError(
			"invalid hex encoding", err)
	}
	return b, nil
}

// Base64Encode/Base64Decode use the standard padded alphabet, matching the
// psbt_base64 wire format.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func Base64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, vaulterr.SerializationError(
			"invalid base64 encoding", err)
	}
	return b, nil
}

// WriteVarInt and ReadVarInt implement Bitcoin's CompactSize varint, for
// length-prefixing arbitrary byte blobs the same way the wire protocol
// does.
func WriteVarInt(w io.Writer, val uint64) error {
	switch {
	case val < 0xfd:
		_, err := w.Write([]byte{byte(val)})
		return err

	case val <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf)
		return err

	case val <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf)
		return err

	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], val)
		_, err := w.Write(buf)
		return err
	}
}

func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil

	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil

	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil

	default:
		return uint64(prefix[0]), nil
	}
}
