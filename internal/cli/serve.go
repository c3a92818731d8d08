package cli

import (
	"github.com/spf13/cobra"

	"github.com/bookbrief/bookbrief/internal/entrypoint"
)

func newServeCommand(opts *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.cfg, version)
		},
	}
}
