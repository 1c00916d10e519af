package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/build"
	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/gateway"
	"github.com/taproot-vault/vaultcore/keys"
)

const (
	Commit = ""
)

var (
	networkName string
	policyFile  string

	network keys.Network
	policy  *config.Policy

	logWriter = build.NewRotatingLogWriter()
	log       = build.NewSubLogger("VLT", genSubLogger(logWriter))
)

var rootCmd = &cobra.Command{
	Use:   "vaultcli",
	Short: "vaultcli drives the taproot vault core's request/response gateway",
	Long: `This tool is a thin command-line surface over the taproot vault
core: it builds vault addresses, assembles spend/emergency/cancel PSBTs,
verifies a PSBT against policy, and recovers a vault from its xpub alone.`,
	Version:           fmt.Sprintf("v%s, commit %s", gateway.GetVersion(), Commit),
	PersistentPreRunE: rootPreRun,
	DisableAutoGenTag: true,
}

func rootPreRun(cmd *cobra.Command, args []string) error {
	resolved, ok := keys.ParseNetwork(networkName)
	if !ok {
		return fmt.Errorf("unrecognized --network %q", networkName)
	}
	network = resolved

	setupLogging()

	if policyFile != "" {
		loaded, err := config.LoadPolicy(policyFile)
		if err != nil {
			return fmt.Errorf("error loading --policy file: %w", err)
		}
		policy = loaded
	} else {
		policy = config.DefaultPolicy()
	}

	log.Infof("vaultcli version v%s, network %s", gateway.GetVersion(),
		network)

	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&networkName, "network", "mainnet", "bitcoin network to "+
			"operate on: mainnet, testnet, signet or regtest",
	)
	rootCmd.PersistentFlags().StringVar(
		&policyFile, "policy", "", "path to a JSON policy file "+
			"overriding the default policy bounds; leave empty "+
			"to use built-in defaults",
	)

	rootCmd.AddCommand(
		newVersionCommand(),
		newGenerateAddressCommand(),
		newBuildDelayedSpendPsbtCommand(),
		newBuildEmergencyPsbtCommand(),
		newBuildCancelPsbtCommand(),
		newVerifyPsbtPolicyCommand(),
		newFinalizePsbtCommand(),
		newDeriveScanAddressesCommand(),
		newReconstructVaultCommand(),
		newValidateAddressCommand(),
		newValidateXpubCommand(),
		newDecodeMetadataCommand(),
		newBlocksToTimeCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	logWriter.RegisterSubLogger("VLT", log)
	err := logWriter.InitLogRotator("./results/vaultcli.log", 10, 3)
	if err != nil {
		panic(err)
	}
	err = build.ParseAndSetDebugLevels("debug", logWriter)
	if err != nil {
		panic(err)
	}
}

func genSubLogger(logWriter *build.RotatingLogWriter) func(string) btclog.Logger {
	return func(s string) btclog.Logger {
		return logWriter.GenSubLogger(s, func() {})
	}
}
