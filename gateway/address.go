package gateway

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/taproot-vault/vaultcore/codec"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
	"github.com/taproot-vault/vaultcore/taproot"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaultscript"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// GetVersion implements the version operation.
func GetVersion() string {
	return Version
}

// Init implements the init operation: validate a network name without any
// other side effect, since this core carries no process-global state to
// initialize, following the single-immutable-context design used
// elsewhere in this core.
func Init(networkName string) (keys.Network, error) {
	network, ok := keys.ParseNetwork(networkName)
	if !ok {
		return 0, vaulterr.InvalidInput(fmt.Sprintf(
			"unrecognized network %q", networkName))
	}
	return network, nil
}

// GenerateVaultAddress implements generate_vault_address: derive the
// primary (and optional emergency) child key, build both tapscript leaves,
// assemble the Taproot tree, and encode the resulting address.
//
// Only a Custom template may set DestinationIndices/CreatedAtBlock/the
// MultiSig fields to anything other than their zero value. A canonical
// Savings or Spending template always commits the zero value for those
// fields regardless of what the request carries, because the recovery
// scanner (recovery.DeriveCandidate) can only reproduce a canonical
// template's address by assuming those fields are zero; see DESIGN.md's
// open questions (d) and (e). A Custom vault that needs real values for
// them is reachable only by whoever records its address out of band, not
// by blind scanning.
func GenerateVaultAddress(req GenerateVaultAddressRequest, policy *config.Policy) (
	*GenerateVaultAddressResponse, error) {

	if req.Template.DelayBlocks < policy.MinDelayBlocks ||
		req.Template.DelayBlocks > policy.MaxDelayBlocks {

		return nil, vaulterr.PolicyViolation(fmt.Sprintf(
			"delay_blocks %d outside policy bounds [%d, %d]",
			req.Template.DelayBlocks, policy.MinDelayBlocks,
			policy.MaxDelayBlocks))
	}

	destinationIndices := req.DestinationIndices
	createdAtBlock := req.CreatedAtBlock
	multiSigThreshold := req.MultiSigThreshold
	multiSigTotal := req.MultiSigTotal
	if req.Template.Kind != vault.TemplateCustom {
		destinationIndices = nil
		createdAtBlock = 0
		multiSigThreshold = 0
		multiSigTotal = 0
	}

	primaryPub, err := keys.DeriveXOnly(req.PrimaryXpub, req.VaultIndex, req.Network)
	if err != nil {
		return nil, err
	}
	primaryXOnly := keys.XOnlyBytes(primaryPub)

	var emergencyPub = (*btcec.PublicKey)(nil)
	if req.EmergencyXpub != "" {
		emergencyPub, err = keys.DeriveXOnly(
			req.EmergencyXpub, req.VaultIndex, req.Network,
		)
		if err != nil {
			return nil, err
		}
	}

	metadata := &codec.VaultMetadata{
		Version:             codec.MetadataSchemaVersion,
		TemplateID:          req.Template.TemplateID,
		DelayBlocks:         req.Template.DelayBlocks,
		DestinationIndices:  destinationIndices,
		RecoveryType:        req.Template.RecoveryType,
		MultiSigThreshold:   multiSigThreshold,
		MultiSigTotal:       multiSigTotal,
		CreatedAtBlock:      createdAtBlock,
		VaultIndex:          req.VaultIndex,
	}

	spendScript, err := vaultscript.BuildSpendingLeaf(
		primaryXOnly, req.Template.DelayBlocks,
	)
	if err != nil {
		return nil, err
	}

	metaScript, err := vaultscript.BuildMetadataLeaf(metadata)
	if err != nil {
		return nil, err
	}

	tree := taproot.BuildTree(taproot.Leaves{
		SpendingScript: spendScript,
		MetadataScript: metaScript,
	})

	salt := vaultscript.DeriveCommitmentSalt(
		primaryXOnly, req.VaultIndex, req.Template.TemplateID,
		req.Template.DelayBlocks, req.Template.RecoveryType,
	)

	internalKey, _, err := taproot.InternalKey(emergencyPub, salt[:])
	if err != nil {
		return nil, err
	}

	outputKey := taproot.OutputKey(internalKey, tree.MerkleRoot)

	addr, err := taproot.Address(outputKey, req.Network)
	if err != nil {
		return nil, err
	}

	return &GenerateVaultAddressResponse{
		Address:           addr.EncodeAddress(),
		Descriptor:        taproot.Descriptor(internalKey, spendScript, metaScript),
		InternalKey:       keys.XOnlyBytes(internalKey),
		SpendingScriptHex: codec.HexEncode(spendScript),
		MetadataScriptHex: codec.HexEncode(metaScript),
		Metadata:          metadata,
	}, nil
}

// DecodeMetadataLeaf implements decode_metadata_leaf.
func DecodeMetadataLeaf(scriptHex string) (*codec.VaultMetadata, error) {
	script, err := codec.HexDecode(scriptHex)
	if err != nil {
		return nil, vaulterr.InvalidInput(
			"metadata leaf script is not valid hex")
	}
	return vaultscript.DecodeMetadataLeaf(script)
}

// ValidateAddress implements validate_address. It never returns an error:
// an unparseable or wrong-network address is reported as Valid: false
// rather than surfaced as a failure, since validation is itself the
// requested operation.
func ValidateAddress(address string, network keys.Network) *ValidateAddressResponse {
	addr, err := btcutil.DecodeAddress(address, network.Params())
	if err != nil || !addr.IsForNet(network.Params()) {
		return &ValidateAddressResponse{Valid: false, Network: network}
	}

	if _, ok := addr.(*btcutil.AddressTaproot); ok {
		return &ValidateAddressResponse{
			Valid: true, Type: "p2tr", Network: network,
		}
	}

	return &ValidateAddressResponse{
		Valid: true, Type: "other", Network: network,
	}
}

// ValidateXpub implements validate_xpub. Like ValidateAddress, an invalid
// or wrong-network xpub is reported as Valid: false, not an error.
func ValidateXpub(xpub string, network keys.Network) *ValidateXpubResponse {
	_, err := keys.ParseXpub(xpub, network)
	return &ValidateXpubResponse{Valid: err == nil, Network: network}
}

// secondsPerBlock is Bitcoin's target block interval.
const secondsPerBlock = 10 * 60

// BlocksToTimeEstimate implements blocks_to_time_estimate: render a
// BIP68 block count as an approximate human-readable duration, picking
// the coarsest unit (days, then hours, then minutes) that doesn't round
// to zero.
func BlocksToTimeEstimate(blocks uint32) string {
	totalSeconds := int64(blocks) * secondsPerBlock
	totalMinutes := totalSeconds / 60

	if days := totalMinutes / (24 * 60); days >= 1 {
		return fmt.Sprintf("~%d day%s", days, plural(days))
	}
	if hours := totalMinutes / 60; hours >= 1 {
		return fmt.Sprintf("~%d hour%s", hours, plural(hours))
	}
	return fmt.Sprintf("~%d minute%s", totalMinutes, plural(totalMinutes))
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
