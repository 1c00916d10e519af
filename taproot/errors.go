package taproot

import "github.com/taproot-vault/vaultcore/vaulterr"

var (
	errDescriptorChecksum = vaulterr.InvalidInput(
		"descriptor checksum mismatch")
	errDescriptorFormat = vaulterr.InvalidInput("descriptor is not a " +
		"well-formed tr(...) vault descriptor")
)
