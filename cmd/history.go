package cmd

import (
	"context"
	"fmt"
	"time"

	"modelwire/internal/model"
	"modelwire/internal/storage"

	"github.com/spf13/cobra"
)

// historyCmd groups history subcommands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Daily history records",
}

var historyUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Write the history record for a date from the news and notable payloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		newsPath, _ := cmd.Flags().GetString("news")
		notablePath, _ := cmd.Flags().GetString("notable")
		date, _ := cmd.Flags().GetString("date")
		if newsPath == "" {
			newsPath = cfg.Output.NewsFile
		}
		if notablePath == "" {
			notablePath = cfg.Output.NotableFile
		}
		if date == "" {
			date = model.DayKey(time.Now())
		}

		news, err := storage.ReadNewsPayload(newsPath)
		if err != nil {
			return err
		}
		notable, err := storage.ReadNotablePayload(notablePath)
		if err != nil {
			return err
		}
		hist, closeFn, err := newHistoryStore(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rec, err := hist.Write(ctx, date, news.Items, notable.Items)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated history %s (items=%d, notable=%d)\n", rec.Date, len(rec.Items), len(rec.Notable))
		return nil
	},
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent history records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		n, _ := cmd.Flags().GetInt("n")
		hist, closeFn, err := newHistoryStore(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		recs, err := hist.ReadRecent(ctx, n)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\titems=%d\tnotable=%d\tgenerated_at=%s\n",
				r.Date, len(r.Items), len(r.Notable), r.GeneratedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	historyUpdateCmd.Flags().String("news", "", "news payload path (default: output.news_file)")
	historyUpdateCmd.Flags().String("notable", "", "notable payload path (default: output.notable_file)")
	historyUpdateCmd.Flags().String("date", "", "date YYYY-MM-DD (default: today UTC)")
	historyRecentCmd.Flags().IntP("n", "n", 7, "number of records")

	historyCmd.AddCommand(historyUpdateCmd, historyRecentCmd)
	rootCmd.AddCommand(historyCmd)
}
