package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modelwire/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		loc, err := time.LoadLocation(cfg.Schedule.Timezone)
		if err != nil {
			return fmt.Errorf("schedule.timezone: %w", err)
		}
		p, closeFn, err := newPipeline(cfg, true)
		if err != nil {
			return err
		}
		defer closeFn()

		runner := &worker.PipelineRunner{
			Pipeline:   p,
			Schedule:   cfg.Schedule.Cron,
			Location:   loc,
			Window:     cfg.Window(),
			RunOnStart: cfg.Schedule.RunOnStart,
		}
		mgr := worker.NewManager(runner)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
