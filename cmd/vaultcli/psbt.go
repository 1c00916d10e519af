package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/gateway"
	"github.com/taproot-vault/vaultcore/vault"
)

const psbtSummaryFormat = `
PSBT (base64):        %s
From:                 %s
To:                   %s
Amount (sats):        %d
Fee (sats):           %d
Path:                 %s
`

func printPsbtData(data *vault.PsbtData) {
	result := fmt.Sprintf(
		psbtSummaryFormat, data.PsbtBase64, data.Summary.From,
		data.Summary.To, data.Summary.AmountSats, data.Summary.FeeSats,
		data.Summary.Path,
	)
	fmt.Println(result)
	log.Tracef(result)
}

type emergencyPsbtCommand struct {
	VaultConfigFile string
	UtxosFile       string
	Destination     string
	FeeRate         int64
}

func newBuildEmergencyPsbtCommand() *cobra.Command {
	c := &emergencyPsbtCommand{}
	cmd := &cobra.Command{
		Use:   "build-emergency-psbt",
		Short: "Build a key-path emergency spend PSBT",
		Long: `This command builds a PSBT spending a vault's emergency
path, available immediately regardless of the delay_blocks timelock.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			var cfg vault.VaultConfig
			if err := readJSONFile(c.VaultConfigFile, &cfg); err != nil {
				return err
			}
			var utxos []vault.Utxo
			if err := readJSONFile(c.UtxosFile, &utxos); err != nil {
				return err
			}

			req := gateway.EmergencyPsbtRequest{
				Config:      &cfg,
				Destination: c.Destination,
				FeeRate:     c.FeeRate,
				Utxos:       utxos,
			}

			data, err := gateway.BuildEmergencyPSBT(req, policy, network)
			if err != nil {
				return fmt.Errorf(
					"error building emergency PSBT: %w", err)
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
		&c.FeeRate, "fee-rate", 0, "fee rate in sat/vByte",
	)

	return cmd
}

type cancelPsbtCommand struct {
	VaultConfigFile    string
	UtxosFile          string
	OriginalTxid       string
	Destination        string
	PreviousFeeRate    int64
	ReplacementFeeRate int64
}

func newBuildCancelPsbtCommand() *cobra.Command {
	c := &cancelPsbtCommand{}
	cmd := &cobra.Command{
		Use:   "build-cancel-psbt",
		Short: "Build a replacement PSBT cancelling an in-flight spend",
		Long: `This command builds an emergency-path PSBT that replaces
an already-broadcast spend with a strictly higher fee rate, spending the
same vault to a destination controlled by its owner.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			var cfg vault.VaultConfig
			if err := readJSONFile(c.VaultConfigFile, &cfg); err != nil {
				return err
			}
			var utxos []vault.Utxo
			if err := readJSONFile(c.UtxosFile, &utxos); err != nil {
				return err
			}

			req := gateway.CancelPsbtRequest{
				OriginalTxid:       c.OriginalTxid,
				Config:             &cfg,
				Destination:        c.Destination,
				PreviousFeeRate:    c.PreviousFeeRate,
				ReplacementFeeRate: c.ReplacementFeeRate,
				Utxos:              utxos,
			}

			data, err := gateway.BuildCancelPSBT(req, policy, network)
			if err != nil {
				return fmt.Errorf(
					"error building cancel PSBT: %w", err)
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
		&c.OriginalTxid, "original-txid", "", "txid of the spend "+
			"being cancelled",
	)
	cmd.Flags().StringVar(
		&c.Destination, "destination", "", "destination address",
	)
	cmd.Flags().Int64Var(
		&c.PreviousFeeRate, "previous-fee-rate", 0, "fee rate in "+
			"sat/vByte of the spend being cancelled",
	)
	cmd.Flags().Int64Var(
		&c.ReplacementFeeRate, "fee-rate", 0, "replacement fee rate "+
			"in sat/vByte; must exceed previous-fee-rate",
	)

	return cmd
}

type verifyPsbtCommand struct {
	VaultConfigFile string
	PsbtBase64      string
}

func newVerifyPsbtPolicyCommand() *cobra.Command {
	c := &verifyPsbtCommand{}
	cmd := &cobra.Command{
		Use:   "verify-psbt-policy",
		Short: "Verify a PSBT against a vault's policy without network access",
		RunE: func(_ *cobra.Command, _ []string) error {
			var cfg vault.VaultConfig
			if err := readJSONFile(c.VaultConfigFile, &cfg); err != nil {
				return err
			}

			result, err := gateway.VerifyPsbtPolicy(
				c.PsbtBase64, &cfg, policy,
			)
			if err != nil {
				return fmt.Errorf(
					"error verifying PSBT policy: %w", err)
			}

			out := fmt.Sprintf("Valid: %v\nWarnings: %v\nErrors: %v",
				result.Valid, result.Warnings, result.Errors)
			fmt.Println(out)
			log.Tracef(out)

			return nil
		},
	}

	cmd.Flags().StringVar(
		&c.VaultConfigFile, "vault-config", "", "path to a JSON "+
			"VaultConfig file, or - to read from stdin",
	)
	cmd.Flags().StringVar(
		&c.PsbtBase64, "psbt", "", "base64-encoded PSBT to verify",
	)

	return cmd
}

type finalizePsbtCommand struct {
	PsbtBase64 string
}

func newFinalizePsbtCommand() *cobra.Command {
	c := &finalizePsbtCommand{}
	cmd := &cobra.Command{
		Use:   "finalize-psbt",
		Short: "Finalize a fully-signed PSBT into a raw transaction",
		RunE: func(_ *cobra.Command, _ []string) error {
			tx, err := gateway.FinalizePsbt(c.PsbtBase64)
			if err != nil {
				return fmt.Errorf("error finalizing PSBT: %w", err)
			}

			out := fmt.Sprintf("Txid: %s\nVsize: %d\nRaw tx: %s",
				tx.Txid, tx.Vsize, tx.TxHex)
			fmt.Println(out)
			log.Tracef(out)

			return nil
		},
	}

	cmd.Flags().StringVar(
		&c.PsbtBase64, "psbt", "", "base64-encoded fully-signed PSBT",
	)

	return cmd
}
