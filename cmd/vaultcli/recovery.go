package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/gateway"
	"github.com/taproot-vault/vaultcore/vault"
)

type deriveScanAddressesCommand struct {
	Xpub       string
	StartIndex uint32
	Count      uint32
}

func newDeriveScanAddressesCommand() *cobra.Command {
	c := &deriveScanAddressesCommand{}
	cmd := &cobra.Command{
		Use:   "derive-scan-addresses",
		Short: "List the candidate vault addresses derivable from an xpub",
		Long: `This command restates the candidate address universe a
recovery sweep would probe, one row per known template at every index in
[start-index, start-index+count), without touching any chain data.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			req := gateway.DeriveScanAddressesRequest{
				Xpub:       c.Xpub,
				StartIndex: c.StartIndex,
				Count:      c.Count,
				Network:    network,
			}

			entries, err := gateway.DeriveScanAddresses(req, policy)
			if err != nil {
				return fmt.Errorf(
					"error deriving scan addresses: %w", err)
			}

			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("error encoding result: %w", err)
			}

			fmt.Println(string(out))
			log.Tracef(string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&c.Xpub, "xpub", "", "account-level xpub to scan")
	cmd.Flags().Uint32Var(
		&c.StartIndex, "start-index", 0, "first candidate index to derive",
	)
	cmd.Flags().Uint32Var(&c.Count, "count", 20, "number of indices to derive")

	return cmd
}

type reconstructVaultCommand struct {
	Address   string
	UtxosFile string
	Xpub      string
}

func newReconstructVaultCommand() *cobra.Command {
	c := &reconstructVaultCommand{}
	cmd := &cobra.Command{
		Use:   "reconstruct-vault",
		Short: "Reconstruct a VaultConfig for an address already known to hold funds",
		Long: `This command brute-forces the known templates derivable
from an xpub over the policy's default scan window and returns the full
VaultConfig matching address.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			var utxos []vault.Utxo
			if err := readJSONFile(c.UtxosFile, &utxos); err != nil {
				return err
			}

			req := gateway.ReconstructVaultRequest{
				Address: c.Address,
				Utxos:   utxos,
				Xpub:    c.Xpub,
				Network: network,
			}

			cfg, err := gateway.ReconstructVault(req, policy)
			if err != nil {
				return fmt.Errorf(
					"error reconstructing vault: %w", err)
			}
			if cfg == nil {
				out := "no known template reproduces this address"
				fmt.Println(out)
				log.Tracef(out)
				return nil
			}

			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("error encoding result: %w", err)
			}

			fmt.Println(string(out))
			log.Tracef(string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&c.Address, "address", "", "address known to hold funds")
	cmd.Flags().StringVar(
		&c.UtxosFile, "utxos", "", "path to a JSON array of UTXOs "+
			"held at address, or - to read from stdin",
	)
	cmd.Flags().StringVar(&c.Xpub, "xpub", "", "account-level xpub to scan")

	return cmd
}
