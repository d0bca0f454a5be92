// Package commands implements the geomap CLI: the pipeline commands
// (build, publish, watch, status), the worksheet transfer commands (get,
// put), and the supporting ones (serve, authorise, init, version).
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

// set at build time via ldflags, injected from cmd/geomap
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// persistent flags, inherited by every subcommand
var (
	configFile string
	debug      bool
)

// ErrStale marks the published site as behind the source. status exits
// with code 3 so cron jobs can trigger a publish.
var ErrStale = errors.New("published site is stale")

// NewRootCommand builds the geomap command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "geomap",
		Short: "Renders and publishes the alcohol origins map",
		Long: `geomap reads a spreadsheet of historical fermented-beverage origin sites,
renders an interactive map of origins and lineages, and publishes the
rendered site to a static-hosting git branch. Runs are idempotent: when
neither the spreadsheet nor the rendered content changed, nothing is
committed.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetDebug(debug)
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "geomap.yaml file (default: search ., user config dir, /etc/geomap)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(NewBuildCommand())
	root.AddCommand(NewPublishCommand())
	root.AddCommand(NewWatchCommand())
	root.AddCommand(NewStatusCommand())
	root.AddCommand(NewGetCommand())
	root.AddCommand(NewPutCommand())
	root.AddCommand(NewServeCommand())
	root.AddCommand(NewAuthoriseCommand())
	root.AddCommand(NewInitCommand())
	root.AddCommand(NewVersionCommand())

	return root
}

// Execute runs the command tree with a context cancelled on
// SIGINT/SIGTERM and maps errors onto exit codes.
func Execute(root *cobra.Command) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ErrStale) {
			logging.Warnf("%v", err)
			os.Exit(3)
		}

		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
