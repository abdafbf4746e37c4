package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "lease-ccr",
		Short: "Solve for the cap cost reduction that matches a cash-down target",
		Long: `lease-ccr finds the capitalized cost reduction (CCR) for which the
due-at-signing total of a lease (CCR, tax on the CCR and the first payment)
equals the cash the customer brings.

Examples:
  lease-ccr solve
  lease-ccr solve --target-cash 2500 --strategy hybrid --history
  lease-ccr solve --config config.yaml --output-format json
  lease-ccr serve --address :9090`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newSolveCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "lease-ccr version %s\n", version)
			return err
		},
	}
}
