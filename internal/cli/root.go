// Package cli defines the bookbrief command line: the server itself plus
// maintenance and client commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/log"
)

// options are the flags shared by every command.
type options struct {
	databasePath string
	logLevel     string

	cfg *config.Config
}

// NewRootCommand builds the command tree. Running the root command without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "bookbrief",
		Short:         "BookBrief serves book summaries and reading lists",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.NewConfig()
			if opts.databasePath != "" {
				opts.cfg.Database.Path = opts.databasePath
			}
			if opts.logLevel != "" {
				opts.cfg.Log.Level = opts.logLevel
			}
			log.Init(opts.cfg.Log)
		},
	}

	root.PersistentFlags().StringVar(&opts.databasePath, "db", "", "database file (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	serve := newServeCommand(opts, version)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newCreateAdminCommand(opts),
		newImportBooksCommand(opts),
		newReadCommand(),
		newSearchCommand(),
	)
	return root
}
