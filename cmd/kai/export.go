package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/kai-insight/internal/domain/export"
)

func newExportCmd(open opener, opts *sessionOptions) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved analysis to a file",
		Long: `Export renders a saved analysis as json, text, csv, markdown, html or xlsx.
Without --out the document goes to stdout; xlsx always needs a file and
defaults to the generated file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withSession(cmd, open, *opts, func(s *session) error {
				item, err := s.history.Get(cmd.Context(), localOwner, args[0])
				if err != nil {
					return err
				}
				doc, err := export.Render(f, item.Result, time.UnixMilli(item.Timestamp))
				if err != nil {
					return err
				}
				target := out
				if target == "" && f == export.FormatXLSX {
					target = doc.Filename
				}
				if target == "" {
					_, err = cmd.OutOrStdout().Write(doc.Body)
					return err
				}
				if err := os.WriteFile(target, doc.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "export format: json, text, csv, markdown, html, xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
