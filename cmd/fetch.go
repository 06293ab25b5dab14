package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"modelwire/internal/storage"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, filter and categorize feeds into a news payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Output.NewsFile
		}

		p, closeFn, err := newPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		col, err := p.Collect(ctx, windowFromFlags(cmd, cfg.Window()))
		if err != nil {
			return err
		}
		if err := storage.WriteNewsPayload(out, col.Items, col.GeneratedAt); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d items to %s\n", len(col.Items), out)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("out", "", "news payload path (default: output.news_file)")
	addWindowFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}
