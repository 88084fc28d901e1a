// Package cli holds the santa command tree.
package cli

import (
	"io"

	"github.com/google/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool

	// EnvFile replaces ./.env as the source of extra environment variables
	EnvFile string
}

// envFiles returns the files config.Load should merge in
func (o *RootOptions) envFiles() []string {
	if o.EnvFile == "" {
		return nil
	}
	return []string{o.EnvFile}
}

// NewRootCommand creates the root command for the santa CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	var log *logger.Logger

	cmd := &cobra.Command{
		Use:   "santa",
		Short: "Secret Santa draw coordinator",
		Long: `Runs a Secret Santa exchange on a shared realtime document.

The first process to find the document missing draws the ring; everyone
else just follows along and reveals their own recipient exactly once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// the server always logs, one-shot commands only with --verbose
			log = logger.Init("santa", opts.Verbose || cmd.Name() == "serve", false, io.Discard)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Close()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file instead of ./.env")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewDrawCommand(opts))

	return cmd
}
