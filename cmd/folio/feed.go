package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/folio/internal/browse"
	"github.com/gauthierbraillon/folio/internal/display"
	"github.com/gauthierbraillon/folio/internal/feed"
	"github.com/gauthierbraillon/folio/internal/portfolio"
)

// newFeedCmd creates the feed subcommand.
func newFeedCmd(a *app) *cobra.Command {
	var category string
	var filter string
	var pages int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Display the portfolio feed",
		Long:  "Display the newest portfolios of a category, optionally narrowed by a filter, one or more pages at a time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("invalid --pages %d: must be at least 1", pages)
			}
			cat, err := portfolio.ParseCategory(category)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			loader := feed.NewLoader(a.portfolioClient(),
				feed.WithPageSize(a.cfg.PageSize),
				feed.WithLogger(a.logger))

			if err := loader.Select(ctx, cat, filter); err != nil {
				return err
			}
			for i := 1; i < pages && !loader.Snapshot().Exhausted; i++ {
				if _, err := loader.LoadMore(ctx); err != nil {
					return err
				}
			}

			s := loader.Snapshot()
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatFeed(s.Items))
			if len(s.Items) > 0 && !s.Exhausted {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nmore available: run again with --pages %d\n", pages+1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(portfolio.CategoryAll), "Category (All, Develop, Design, Photographer)")
	cmd.Flags().StringVarP(&filter, "filter", "f", portfolio.FilterAll, "Filter within the category (e.g. Backend, Branding, Portrait)")
	cmd.Flags().IntVarP(&pages, "pages", "n", 1, "Number of pages to load")

	return cmd
}

// newBrowseCmd creates the browse subcommand.
func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the feed interactively",
		Long:  "Open an interactive browser that loads more portfolios as you scroll.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := feed.NewLoader(a.portfolioClient(),
				feed.WithPageSize(a.cfg.PageSize),
				feed.WithLogger(a.logger))
			return browse.Run(cmd.Context(), loader, browse.WithWebURL(a.cfg.WebURL))
		},
	}
}
