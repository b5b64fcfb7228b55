// Package cli wires the dealhound commands.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	LogFile string

	closeLog func() error
}

// NewRootCommand creates the dealhound root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dealhound",
		Short: "Compare food delivery offers and commit the best one",
		Long: `dealhound searches the supported delivery platforms concurrently,
picks the cheapest offer that matches your criteria, and adds it to that
platform's cart with verification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := setupLogger(opts.Verbose, opts.LogFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "logging setup failed", err)
			}
			opts.closeLog = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write JSON logs to this file")

	cmd.AddCommand(NewHuntCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
