package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/reader"
)

// routePrinter shows route changes on the terminal.
type routePrinter struct {
	out io.Writer
}

func (p routePrinter) Push(route string) {
	fmt.Fprintf(p.out, "-> %s\n", route)
}

// logSpeaker stands in for a speech engine by logging what it would say.
type logSpeaker struct{}

func (logSpeaker) Speak(_ context.Context, text string) error {
	log.Info("Reading aloud", zap.Int("chars", len(text)))
	return nil
}

func (logSpeaker) Cancel() {
	log.Debug("Playback cancelled")
}

func newReadCommand() *cobra.Command {
	var (
		api   apiFlags
		next  int
		play  bool
		count bool
	)

	cmd := &cobra.Command{
		Use:   "read <book-id> [chapter]",
		Short: "Print a chapter of a book from a running server",
		Long: "Print a chapter of a book from a running server.\n\n" +
			"The chapter is \"introduction\" (the default) or a chapter number starting at 1.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token := chapters.Token(0)
			if len(args) == 2 {
				token = args[1]
			}

			c, err := api.connect(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			nav, err := reader.Open(ctx, c, args[0], token, routePrinter{out: out}, logSpeaker{})
			if err != nil {
				return err
			}
			defer nav.Stop()

			for i := 0; i < next; i++ {
				if !nav.Next() {
					break
				}
			}

			if count {
				if err := c.AddReadCount(ctx, args[0]); err != nil {
					log.Warn("Could not record the read", zap.Error(err))
				}
			}

			printView(out, nav)

			if play {
				return nav.Play(ctx)
			}
			return nil
		},
	}

	api.register(cmd)
	cmd.Flags().IntVar(&next, "next", 0, "move forward this many chapters before printing")
	cmd.Flags().BoolVar(&play, "play", false, "read the chapter aloud")
	cmd.Flags().BoolVar(&count, "count", true, "record the read on the server")
	return cmd
}

func printView(out io.Writer, nav *reader.Navigator) {
	book := nav.Book()
	view := nav.View()

	fmt.Fprintf(out, "%s", book.Title)
	if book.Author != "" {
		fmt.Fprintf(out, " by %s", book.Author)
	}
	fmt.Fprintf(out, "\n[%d/%d] %s\n\n", view.Current.Ordinal+1, view.Total, view.Current.Title)
	fmt.Fprintln(out, chapters.PlainText(view.Current.Text))
	fmt.Fprintln(out)

	if view.Previous != nil {
		fmt.Fprintf(out, "previous: %s (%s)\n", view.Previous.Route, view.Previous.Title)
	}
	if view.Next != nil {
		fmt.Fprintf(out, "next: %s (%s)\n", view.Next.Route, view.Next.Title)
	}
}
