package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRootCmd(open opener) *cobra.Command {
	opts := &sessionOptions{}
	root := &cobra.Command{
		Use:   "kai",
		Short: "Product label intelligence from the terminal",
		Long: `kai sends ingredient lists and product labels to the configured model,
prints a scored assessment and keeps every result in a local history that
can be searched, exported and compared.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDBPath(), "path of the local history database")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	root.AddCommand(
		newAnalyzeCmd(open, opts),
		newHistoryCmd(open, opts),
		newExportCmd(open, opts),
		newCompareCmd(open, opts),
	)
	return root
}

func defaultDBPath() string {
	if path := os.Getenv("KAI_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".kai", "kai.db")
	}
	return filepath.Join(home, ".kai", "kai.db")
}
