package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"modelwire/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, filter, classify and archive one day of news",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		date, _ := cmd.Flags().GetString("date")
		window := windowFromFlags(cmd, cfg.Window())

		p, closeFn, err := newPipeline(cfg, true)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		slog.Info("run: starting", "run_id", runID, "window", window.String())
		res, err := p.Run(ctx, date, window)
		if err != nil {
			return err
		}
		if err := storage.WriteNewsPayload(cfg.Output.NewsFile, res.Items, res.GeneratedAt); err != nil {
			return err
		}
		if err := storage.WriteNotablePayload(cfg.Output.NotableFile, res.Notable); err != nil {
			return err
		}
		if res.Fallback != nil {
			slog.Info("run: heuristic tier used", "run_id", runID, "reason", res.Fallback)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items (%d candidates, %d feeds skipped), %d notable via %s\n",
			res.Date, len(res.Items), res.Candidates, res.Skipped, len(res.Notable), res.Method)
		return nil
	},
}

func init() {
	runCmd.Flags().String("date", "", "history date YYYY-MM-DD (default: today UTC)")
	addWindowFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
