package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

func newCompareCmd(open opener, opts *sessionOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <id> [id...]",
		Short: "Compare two to four saved analyses side by side",
		Args:  cobra.RangeArgs(analysis.MinCompareProducts, analysis.MaxCompareProducts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, *opts, func(s *session) error {
				products := make([]analysis.ComparedProduct, 0, len(args))
				for _, id := range args {
					item, err := s.history.Get(cmd.Context(), localOwner, id)
					if err != nil {
						return err
					}
					label := item.Result.ProductIdentity.Category
					if label == "" {
						label = item.ID
					}
					products = append(products, analysis.ComparedProduct{Label: label, Result: item.Result})
				}
				return formatComparison(cmd.OutOrStdout(), analysis.NewComparison(products))
			})
		},
	}
}

// formatComparison prints one row per product; "*" marks the winner of a column.
func formatComparison(out io.Writer, cmp analysis.Comparison) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tSCORE\tHEALTH RISK\tENVIRONMENT")
	for i, p := range cmp.Products {
		r := p.Result
		health, env := "-", "-"
		if r.HealthRisk != nil {
			health = strconv.Itoa(r.HealthRisk.Score)
		}
		if r.EnvironmentalImpact != nil {
			env = strconv.Itoa(r.EnvironmentalImpact.Score)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncate(p.Label, 40),
			mark(strconv.Itoa(r.Score.Value), i == cmp.Winners.Score),
			mark(health, i == cmp.Winners.Health),
			mark(env, i == cmp.Winners.Environment),
		)
	}
	return w.Flush()
}

func mark(v string, winner bool) string {
	if winner {
		return v + " *"
	}
	return v
}
