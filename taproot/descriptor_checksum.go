package taproot

import (
	"strings"
)

// This file implements the BIP-380 output descriptor checksum, adapted
// directly from chantools' btc/descriptors.go (itself a Go port of
// Bitcoin Core's GetDescriptorChecksum).
var (
	descriptorInputCharset = "0123456789()[],'/*abcdefgh@:$%{}IJKLMNOPQRSTUVWXYZ" +
		"&+-.;<=>?!^_|~ijklmnopqrstuvwxyzABCDEFGH`#\\\"\\\\ "
	descriptorChecksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	descriptorGenerator       = []uint64{
		0xf5dee51989, 0xa9fdca3312, 0x1bab10e32d, 0x3706b1677a,
		0x644d626ffd,
	}
)

func descriptorSumPolymod(symbols []uint64) uint64 {
	chk := uint64(1)
	for _, value := range symbols {
		top := chk >> 35
		chk = (chk&0x7ffffffff)<<5 ^ value
		for i := 0; i < 5; i++ {
			if (top>>i)&1 != 0 {
				chk ^= descriptorGenerator[i]
			}
		}
	}
	return chk
}

func descriptorSumExpand(s string) []uint64 {
	groups := []uint64{}
	symbols := []uint64{}
	for _, c := range s {
		v := strings.IndexRune(descriptorInputCharset, c)
		if v < 0 {
			return nil
		}
		symbols = append(symbols, uint64(v&31))
		groups = append(groups, uint64(v>>5))
		if len(groups) == 3 {
			symbols = append(
				symbols, groups[0]*9+groups[1]*3+groups[2],
			)
			groups = []uint64{}
		}
	}
	if len(groups) == 1 {
		symbols = append(symbols, groups[0])
	} else if len(groups) == 2 {
		symbols = append(symbols, groups[0]*3+groups[1])
	}
	return symbols
}

// DescriptorSumCreate appends an 8-character Bech32 checksum to descriptor
// string s, in the "s#checksum" form BIP-380 specifies.
func DescriptorSumCreate(s string) string {
	symbols := append(descriptorSumExpand(s), 0, 0, 0, 0, 0, 0, 0, 0)
	checksum := descriptorSumPolymod(symbols) ^ 1
	builder := strings.Builder{}
	for i := 0; i < 8; i++ {
		builder.WriteByte(descriptorChecksumCharset[(checksum>>(5*(7-i)))&31])
	}
	return s + "#" + builder.String()
}

// DescriptorSumCheck validates the checksum suffix of a descriptor string
// produced by DescriptorSumCreate. If require is false, a descriptor with
// no checksum at all is considered valid (matching Bitcoin Core's
// behavior when parsing descriptors from trusted sources).
func DescriptorSumCheck(s string, require bool) bool {
	if !strings.Contains(s, "#") {
		return !require
	}
	if len(s) < 9 || s[len(s)-9] != '#' {
		return false
	}
	for _, c := range s[len(s)-8:] {
		if !strings.ContainsRune(descriptorChecksumCharset, c) {
			return false
		}
	}
	symbols := descriptorSumExpand(s[:len(s)-9])
	for _, c := range s[len(s)-8:] {
		symbols = append(symbols, uint64(
			strings.IndexRune(descriptorChecksumCharset, c),
		))
	}
	return descriptorSumPolymod(symbols) == 1
}

// ParseDescriptor validates and strips the checksum from a vault
// descriptor, returning the internal key hex and the two raw_script hex
// leaves it commits to. It is the inverse of Descriptor: parsing the
// output of Descriptor must reproduce the same internal key and leaves.
func ParseDescriptor(descriptor string) (internalKeyHex, spendingScriptHex,
	metadataScriptHex string, err error) {

	if !DescriptorSumCheck(descriptor, true) {
		return "", "", "", errDescriptorChecksum
	}

	body := descriptor[:len(descriptor)-9]
	const prefix = "tr("
	if !strings.HasPrefix(body, prefix) || !strings.HasSuffix(body, ")") {
		return "", "", "", errDescriptorFormat
	}
	inner := body[len(prefix) : len(body)-1]

	commaIdx := strings.Index(inner, ",{")
	if commaIdx < 0 || !strings.HasSuffix(inner, "}") {
		return "", "", "", errDescriptorFormat
	}
	internalKeyHex = inner[:commaIdx]
	leavesPart := inner[commaIdx+2 : len(inner)-1]

	leaves := strings.Split(leavesPart, "),raw_script(")
	if len(leaves) != 2 {
		return "", "", "", errDescriptorFormat
	}
	spendingScriptHex = strings.TrimPrefix(leaves[0], "raw_script(")
	metadataScriptHex = strings.TrimSuffix(leaves[1], ")")

	return internalKeyHex, spendingScriptHex, metadataScriptHex, nil
}
