package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookbrief/bookbrief/internal/search"
)

const searchTimeout = 30 * time.Second

func newSearchCommand() *cobra.Command {
	var (
		api      apiFlags
		category string
		limit    int
		pages    int
	)

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search published books on a running server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
			defer cancel()

			c, err := api.connect(ctx)
			if err != nil {
				return err
			}

			changed := make(chan struct{}, 1)
			session := search.NewSession(c,
				search.WithDelay(time.Millisecond),
				search.WithLimit(limit),
				search.OnChange(func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				}),
			)
			defer session.Close()

			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			if category != "" {
				session.SetCategory(ctx, category)
			}
			session.SetKeyword(ctx, keyword)

			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := session.Err(); err != nil {
				return err
			}

			for i := 1; i < pages && session.HasMore(); i++ {
				if err := session.LoadMore(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			items := session.Items()
			for _, b := range items {
				fmt.Fprintf(out, "%-24s %s", b.ID, b.Title)
				if b.Author != "" {
					fmt.Fprintf(out, " (%s)", b.Author)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%d books", len(items))
			if session.HasMore() {
				fmt.Fprint(out, ", more available")
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	api.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "only books in this category")
	cmd.Flags().IntVar(&limit, "limit", 10, "results per page")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}
