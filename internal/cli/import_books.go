package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookbrief/bookbrief/internal/entrypoint"
	"github.com/bookbrief/bookbrief/internal/importers"
)

func newImportBooksCommand(opts *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-books <catalogue.yaml>",
		Short: "Import categories, books and chapters from a YAML catalogue",
		Long: "Import categories, books and chapters from a YAML catalogue.\n\n" +
			"Entries whose ID or name already exists are skipped, so the same\n" +
			"catalogue can be imported again after it grows.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			cat, err := importers.ParseCatalogue(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "Catalogue is valid: %d categories, %d books\n", len(cat.Categories), len(cat.Books))
				return nil
			}

			app, err := entrypoint.Open(opts.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := importers.NewPipeline(app.Books, app.Categories).Import(cmd.Context(), cat)
			fmt.Fprintf(out, "Categories: %d created, %d skipped\n", result.CategoriesCreated, result.CategoriesSkipped)
			fmt.Fprintf(out, "Books: %d created, %d skipped (%d chapters)\n", result.BooksCreated, result.BooksSkipped, result.ChaptersCreated)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the catalogue without writing to the database")
	return cmd
}
