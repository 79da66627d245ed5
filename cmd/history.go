/*
Copyright © 2026 The seoforge authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/chunker"
	"github.com/seoforge/seoforge/internal/history"
)

var (
	historyDBPath string
	historyTool   string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the generation history",
	Long:  `List and clear the SQLite archive of past generations.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past generations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openHistory()
		if err != nil {
			return err
		}
		defer archive.Close()

		records, err := archive.List(context.Background(), historyTool, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No entries in history.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tTYPE\tKEYWORD\tSTATUS\tSCORE\tCREATED\tPREVIEW")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				r.ID, r.Tool, r.ContentType, r.Keyword, r.Status, r.Score,
				r.CreatedAt.Format("2006-01-02 15:04"),
				chunker.Preview(r.Content, 10))
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openHistory()
		if err != nil {
			return err
		}
		defer archive.Close()

		n, err := archive.Clear(context.Background(), historyTool)
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d entries from history.\n", n)
		return nil
	},
}

func openHistory() (*history.Store, error) {
	path := historyDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.History.Path
	}
	archive, err := history.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return archive, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Database path (default from config)")
	historyCmd.PersistentFlags().StringVar(&historyTool, "tool", "", "Filter by tool name")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
