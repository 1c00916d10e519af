package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproot-vault/vaultcore/gateway"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vault core version",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := fmt.Sprintf("vaultcore v%s", gateway.GetVersion())
			fmt.Println(result)
			log.Tracef(result)
			return nil
		},
	}
}
