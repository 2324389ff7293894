package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/folio/internal/display"
	"github.com/gauthierbraillon/folio/pkg/browser"
)

// newSearchCmd creates the search subcommand.
func newSearchCmd(a *app) *cobra.Command {
	var page int
	var size int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search portfolios by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := strings.TrimSpace(strings.Join(args, " "))
			if keyword == "" {
				return errors.New("keyword must not be empty")
			}
			if page < 1 {
				return fmt.Errorf("invalid --page %d: pages start at 1", page)
			}
			if size <= 0 {
				size = a.cfg.SearchPageSize
			}

			result, err := a.portfolioClient().Search(cmd.Context(), keyword, page-1, size)
			if err != nil {
				return err
			}
			return display.NewTerminalFormatter().FormatSearchTable(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page, starting at 1")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "Results per page (default from search_page_size)")

	return cmd
}

// newShowCmd creates the show subcommand.
func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.portfolioClient().FetchDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatDetail(*d))
			return nil
		},
	}
}

// newOpenCmd creates the open subcommand.
func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a portfolio in the web browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			url := browser.PortfolioURL(a.cfg.WebURL, id)
			if err := browser.Open(url); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Please visit:\n%s\n", url)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", url)
			return nil
		},
	}
}
