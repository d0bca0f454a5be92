package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

// NewServeCommand previews the rendered output directory on a local
// HTTP server.
func NewServeCommand() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the rendered site locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("out", defaults.Site.Out, "output directory")
	cmd.Flags().String("addr", defaults.Serve.Addr, "listen address")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	if info, err := os.Stat(cfg.Site.Out); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory - run 'geomap build' first", cfg.Site.Out)
	}

	server := &http.Server{
		Addr:    cfg.Serve.Addr,
		Handler: http.FileServer(http.Dir(cfg.Site.Out)),
	}

	go func() {
		<-ctx.Done()

		timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		server.Shutdown(timeout)
	}()

	logging.Infof("Serving %v on http://%v", cfg.Site.Out, cfg.Serve.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
