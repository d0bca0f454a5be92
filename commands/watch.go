package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

// NewWatchCommand runs the publish pipeline on an interval until
// interrupted. Each tick is an independent run; a failed tick is logged
// and the next tick proceeds.
func NewWatchCommand() *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Publish on an interval",
		Long: `Runs the publish pipeline immediately and then every interval until
interrupted. A failed run is logged and does not stop the watch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, flags)
		},
	}

	addPublishFlags(cmd, flags)
	cmd.Flags().Duration("every", config.Default().Watch.Every, "interval between runs")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, flags *publishFlags) error {
	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	if cfg.Watch.Every <= 0 {
		return fmt.Errorf("invalid watch interval %v", cfg.Watch.Every)
	}

	logging.Infof("Publishing every %v", cfg.Watch.Every)

	ticker := time.NewTicker(cfg.Watch.Every)
	defer ticker.Stop()

	for {
		if err := runPublish(ctx, cmd, flags); err != nil {
			logging.Errorf("%v", err)
		}

		select {
		case <-ctx.Done():
			logging.Infof("Watch interrupted")
			return nil

		case <-ticker.C:
		}
	}
}
