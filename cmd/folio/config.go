package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/folio/internal/config"
)

// newConfigCmd creates the config subcommand.
func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long:  "Show the effective folio configuration after files, .env and FOLIO_* variables are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c := a.cfg
			fmt.Fprintf(out, "Config directory: %s\n", config.Dir())
			fmt.Fprintf(out, "api_url:          %s\n", c.APIURL)
			fmt.Fprintf(out, "web_url:          %s\n", c.WebURL)
			fmt.Fprintf(out, "access_token:     %s\n", c.RedactedToken())
			fmt.Fprintf(out, "page_size:        %d\n", c.PageSize)
			fmt.Fprintf(out, "search_page_size: %d\n", c.SearchPageSize)
			fmt.Fprintf(out, "timeout:          %s\n", c.Timeout)
			fmt.Fprintf(out, "rate_limit:       %g\n", c.RateLimit)
			fmt.Fprintf(out, "log_level:        %s\n", c.LogLevel)
			return nil
		},
	}
}
