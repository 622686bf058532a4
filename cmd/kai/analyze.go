package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

func newAnalyzeCmd(open opener, opts *sessionOptions) *cobra.Command {
	var (
		file   string
		format string
		render bool
		save   bool
		images bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [label text...]",
		Short: "Analyse a product label",
		Long: `Analyse the label text given as arguments, read from --file, or from
stdin with --file -. The scored assessment is printed in --format; --render
shows it as styled markdown instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readLabel(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			sessOpts := *opts
			sessOpts.withLLM, sessOpts.images = true, images
			return withSession(cmd, open, sessOpts, func(s *session) error {
				resp, err := s.analysis.Analyze(cmd.Context(), analysis.Request{Text: text})
				if err != nil {
					return errors.New(analysis.UserMessage(err))
				}
				if save {
					item, err := s.history.Add(cmd.Context(), localOwner, strings.TrimSpace(text), resp.Result)
					if err != nil {
						return fmt.Errorf("save to history: %w", err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "saved as %s\n", item.ID)
				}
				return writeResult(cmd.OutOrStdout(), resp.Result, format, render, s.clock.Now())
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the label from a file, - for stdin")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, markdown, csv, html")
	cmd.Flags().BoolVar(&render, "render", false, "render the report as styled markdown")
	cmd.Flags().BoolVar(&save, "save", false, "record the result in local history")
	cmd.Flags().BoolVar(&images, "images", false, "also generate a product image")
	return cmd
}

func readLabel(stdin io.Reader, file string, args []string) (string, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case file == "-":
		raw, err = io.ReadAll(stdin)
	case file != "":
		raw, err = os.ReadFile(file)
	default:
		raw = []byte(strings.Join(args, " "))
	}
	if err != nil {
		return "", fmt.Errorf("read label: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", errors.New("provide label text as arguments or with --file")
	}
	return string(raw), nil
}

func withSession(cmd *cobra.Command, open opener, opts sessionOptions, fn func(*session) error) error {
	s, err := open(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close() //nolint:errcheck
	return fn(s)
}
