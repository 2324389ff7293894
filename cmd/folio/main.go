// Package main provides the folio CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/folio/internal/config"
	"github.com/gauthierbraillon/folio/internal/logging"
	"github.com/gauthierbraillon/folio/internal/portfolio"
	"github.com/gauthierbraillon/folio/internal/users"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version, then the module version
// recorded by go install.
func resolveVersion(version string, info *debug.BuildInfo) string {
	if version != "dev" {
		return version
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

// app carries what every command needs once the root command has loaded
// the configuration.
type app struct {
	cfgFile string
	verbose bool

	cfg     *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}

	a.cfg, a.logger = cfg, logger
	if cfg.RateLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("api_url", cfg.APIURL),
		zap.Int("page_size", cfg.PageSize))
	return nil
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.Timeout}
}

func (a *app) portfolioClient() *portfolio.Client {
	opts := []portfolio.ClientOption{
		portfolio.WithBaseURL(a.cfg.APIURL),
		portfolio.WithHTTPClient(a.httpClient()),
		portfolio.WithPageSize(a.cfg.PageSize),
		portfolio.WithLogger(a.logger),
	}
	if a.limiter != nil {
		opts = append(opts, portfolio.WithRateLimiter(a.limiter))
	}
	return portfolio.NewClient(opts...)
}

func (a *app) usersClient() *users.Client {
	opts := []users.ClientOption{
		users.WithBaseURL(a.cfg.APIURL),
		users.WithHTTPClient(a.httpClient()),
		users.WithAccessToken(a.cfg.AccessToken),
		users.WithLogger(a.logger),
	}
	if a.limiter != nil {
		opts = append(opts, users.WithRateLimiter(a.limiter))
	}
	return users.NewClient(opts...)
}

// newRootCmd creates the root command for folio CLI.
func newRootCmd() *cobra.Command {
	a := &app{}
	info, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:               "folio",
		Short:             "Browse portfolios from the terminal",
		Long:              "Folio pages through the portfolio feed by category and filter, searches portfolios and manages your account.",
		Version:           resolveVersion(version, info),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.SetVersionTemplate("folio version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $FOLIO_CONFIG_DIR/folio.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log requests to stderr")

	rootCmd.AddCommand(newFeedCmd(a))
	rootCmd.AddCommand(newBrowseCmd(a))
	rootCmd.AddCommand(newSearchCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newOpenCmd(a))
	rootCmd.AddCommand(newSignupCmd(a))
	rootCmd.AddCommand(newUserCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive number", arg)
	}
	return id, nil
}
