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

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Select notable items from a news payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		if in == "" {
			in = cfg.Output.NewsFile
		}
		if out == "" {
			out = cfg.Output.NotableFile
		}

		news, err := storage.ReadNewsPayload(in)
		if err != nil {
			return err
		}
		p, closeFn, err := newPipeline(cfg, false)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res := p.Classify(ctx, news.Items)
		if err := storage.WriteNotablePayload(out, res.Notable); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d notable of %d items to %s (%s)\n", len(res.Notable), len(news.Items), out, res.Method)
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("in", "", "news payload path (default: output.news_file)")
	classifyCmd.Flags().String("out", "", "notable payload path (default: output.notable_file)")
	rootCmd.AddCommand(classifyCmd)
}
