package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/gateway"
)

func newValidateAddressCommand() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "validate-address",
		Short: "Check whether a string is a valid address for the current network",
		RunE: func(_ *cobra.Command, _ []string) error {
			resp := gateway.ValidateAddress(address, network)
			out := fmt.Sprintf("Valid: %v\nType: %s\nNetwork: %s",
				resp.Valid, resp.Type, resp.Network)
			fmt.Println(out)
			log.Tracef(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "address to validate")
	return cmd
}

func newValidateXpubCommand() *cobra.Command {
	var xpub string
	cmd := &cobra.Command{
		Use:   "validate-xpub",
		Short: "Check whether a string is a valid xpub for the current network",
		RunE: func(_ *cobra.Command, _ []string) error {
			resp := gateway.ValidateXpub(xpub, network)
			out := fmt.Sprintf("Valid: %v\nNetwork: %s", resp.Valid,
				resp.Network)
			fmt.Println(out)
			log.Tracef(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&xpub, "xpub", "", "xpub to validate")
	return cmd
}

func newDecodeMetadataCommand() *cobra.Command {
	var scriptHex string
	cmd := &cobra.Command{
		Use:   "decode-metadata",
		Short: "Decode a metadata leaf script into its committed fields",
		RunE: func(_ *cobra.Command, _ []string) error {
			metadata, err := gateway.DecodeMetadataLeaf(scriptHex)
			if err != nil {
				return fmt.Errorf(
					"error decoding metadata leaf: %w", err)
			}

			out := fmt.Sprintf(
				"Version: %d\nTemplateID: %s\nDelayBlocks: %d\n"+
					"RecoveryType: %s\nDestinationIndices: %v\n"+
					"MultiSigThreshold: %d\nMultiSigTotal: %d\n"+
					"CreatedAtBlock: %d\nVaultIndex: %d",
				metadata.Version, metadata.TemplateID,
				metadata.DelayBlocks, metadata.RecoveryType,
				metadata.DestinationIndices,
				metadata.MultiSigThreshold, metadata.MultiSigTotal,
				metadata.CreatedAtBlock, metadata.VaultIndex,
			)
			fmt.Println(out)
			log.Tracef(out)

			return nil
		},
	}
	cmd.Flags().StringVar(
		&scriptHex, "script-hex", "", "hex-encoded metadata leaf script",
	)
	return cmd
}

func newBlocksToTimeCommand() *cobra.Command {
	var blocks uint32
	cmd := &cobra.Command{
		Use:   "blocks-to-time",
		Short: "Render a block count as an approximate human-readable duration",
		RunE: func(_ *cobra.Command, _ []string) error {
			out := gateway.BlocksToTimeEstimate(blocks)
			fmt.Println(out)
			log.Tracef(out)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&blocks, "blocks", 0, "block count to convert")
	return cmd
}
