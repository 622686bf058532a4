package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/kai-insight/internal/domain/history"
)

func newHistoryCmd(open opener, opts *sessionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage saved analyses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				items, err := s.history.List(cmd.Context(), localOwner)
				if err != nil {
					return err
				}
				return printItems(cmd, items)
			})
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved analyses by input text, category or summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				items, err := s.history.Search(cmd.Context(), localOwner, args[0])
				if err != nil {
					return err
				}
				return printItems(cmd, items)
			})
		},
	}

	var (
		format string
		render bool
	)
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				item, err := s.history.Get(cmd.Context(), localOwner, args[0])
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), item.Result, format, render, time.UnixMilli(item.Timestamp))
			})
		},
	}
	show.Flags().StringVar(&format, "format", "text", "output format: text, json, markdown, csv, html")
	show.Flags().BoolVar(&render, "render", false, "render the report as styled markdown")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				if err := s.history.Remove(cmd.Context(), localOwner, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "removed %s\n", args[0])
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				if err := s.history.Clear(cmd.Context(), localOwner); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "history cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(list, search, show, rm, clearCmd)
	return cmd
}

func printItems(cmd *cobra.Command, items []history.Item) error {
	if len(items) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No saved analyses.")
		return nil
	}
	return formatItems(cmd.OutOrStdout(), items)
}

// formatItems writes a tabular list of history items to out.
func formatItems(out io.Writer, items []history.Item) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tCATEGORY\tSCORE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			it.ID,
			time.UnixMilli(it.Timestamp).Local().Format("2006-01-02 15:04"),
			truncate(it.Result.ProductIdentity.Category, 40),
			it.Result.Score.Value,
		)
	}
	return w.Flush()
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
