package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit the transfer history",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryAddCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var tmdbID int64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfer history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(_ *config.Config, store *history.Store) error {
				records, err := store.List(cmd.Context(), tmdbID)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if asJSON {
					return printJSON(stdout, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(stdout, "No history records")
					return nil
				}
				fmt.Fprintln(stdout, renderHistoryTable(records))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&tmdbID, "tmdb", 0, "Only show records for this TMDB id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func renderHistoryTable(records []*history.Record) string {
	columns := []tableColumn{
		{header: "ID", align: alignRight},
		{header: "Type"},
		{header: "Title", maxWidth: 40},
		{header: "TMDB", align: alignRight},
		{header: "Season", align: alignRight},
		{header: "Episode", align: alignRight},
		{header: "Source", maxWidth: 60},
		{header: "Added"},
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		season, episode := "-", "-"
		if record.MediaType == history.MediaTV {
			season = strconv.Itoa(record.Season)
			episode = strconv.Itoa(record.Episode)
		}
		source := record.SourcePath
		if source == "" {
			source = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			string(record.MediaType),
			record.Title,
			strconv.FormatInt(record.TMDBID, 10),
			season,
			episode,
			source,
			record.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(columns, rows)
}

func newHistoryAddCommand(ctx *commandContext) *cobra.Command {
	var record history.Record
	var mediaType string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transferred file",
		RunE: func(cmd *cobra.Command, args []string) error {
			record.MediaType = history.MediaType(strings.ToLower(strings.TrimSpace(mediaType)))
			return ctx.withHistory(func(_ *config.Config, store *history.Store) error {
				added, err := store.Add(cmd.Context(), record)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added history record %d\n", added.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", string(history.MediaMovie), "Media type (movie or tv)")
	cmd.Flags().StringVar(&record.Title, "title", "", "Title")
	cmd.Flags().Int64Var(&record.TMDBID, "tmdb", 0, "TMDB id")
	cmd.Flags().IntVar(&record.Season, "season", 0, "Season number (tv only)")
	cmd.Flags().IntVar(&record.Episode, "episode", 0, "Episode number (tv only)")
	cmd.Flags().StringVar(&record.SourcePath, "source", "", "Source file path")
	cmd.Flags().StringVar(&record.DestPath, "dest", "", "Destination file path")
	_ = cmd.MarkFlagRequired("tmdb")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove history records by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid record id %q", arg)
				}
				ids = append(ids, id)
			}
			return ctx.withHistory(func(_ *config.Config, store *history.Store) error {
				removed, err := store.Delete(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				if removed == 0 {
					return errors.New("no matching history records")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history record(s)\n", removed)
				return nil
			})
		},
	}
}
