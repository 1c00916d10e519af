package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/gateway"
	"github.com/taproot-vault/vaultcore/vault"
)

type delayedSpendPsbtCommand struct {
	VaultConfigFile string
	UtxosFile       string
	Destination     string
	AmountSats      int64
	SweepAll        bool
	FeeRate         int64
	TipHeight       uint32
}

func newBuildDelayedSpendPsbtCommand() *cobra.Command {
	c := &delayedSpendPsbtCommand{}
	cmd := &cobra.Command{
		Use:   "build-delayed-spend-psbt",
		Short: "Build a script-path delayed spend PSBT",
		Long: `This command builds a PSBT revealing a vault's spending
leaf, to be broadcast once its CSV delay has matured.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			var cfg vault.VaultConfig
			if err := readJSONFile(c.VaultConfigFile, &cfg); err != nil {
				return err
			}
			var utxos []vault.Utxo
			if err := readJSONFile(c.UtxosFile, &utxos); err != nil {
				return err
			}

			var amount *int64
			if !c.SweepAll {
				amount = &c.AmountSats
			}

			intent := vault.SpendIntent{
				VaultID:     cfg.ID,
				Destination: c.Destination,
				AmountSats:  amount,
				FeeRate:     c.FeeRate,
				PathType:    vault.PathDelayed,
			}

			data, err := gateway.BuildDelayedSpendPSBT(
				&cfg, intent, utxos, policy, network, c.TipHeight,
			)
			if err != nil {
				return fmt.Errorf(
					"error building delayed spend PSBT: %w", err)
			}
			printPsbtData(data)
			return nil
		},
	}

	cmd.Flags().StringVar(
		&c.VaultConfigFile, "vault-config", "", "path to a JSON "+
			"VaultConfig file, or - to read from stdin",
	)
	cmd.Flags().StringVar(
		&c.UtxosFile, "utxos", "", "path to a JSON array of UTXOs to "+
			"spend, or - to read from stdin",
	)
	cmd.Flags().StringVar(
		&c.Destination, "destination", "", "destination address",
	)
	cmd.Flags().Int64Var(
		&c.AmountSats, "amount-sats", 0, "amount to send, in "+
			"satoshis; ignored when --sweep-all is set",
	)
	cmd.Flags().BoolVar(
		&c.SweepAll, "sweep-all", false, "sweep every selected UTXO's "+
			"value, minus fee, to destination",
	)
	cmd.Flags().Int64Var(
		&c.FeeRate, "fee-rate", 0, "fee rate in sat/vByte",
	)
	cmd.Flags().Uint32Var(
		&c.TipHeight, "tip-height", 0, "current chain tip height, "+
			"used to estimate the unlock height in the PSBT summary",
	)

	return cmd
}
