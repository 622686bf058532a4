package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

const listSep = "; "

// fieldRows flattens a result into Field/Value pairs for tabular formats.
func fieldRows(r analysis.Result) [][2]string {
	rows := [][2]string{
		{"Category", r.ProductIdentity.Category},
		{"Confidence", string(r.ProductIdentity.Confidence)},
		{"Elements", strings.Join(r.ProductIdentity.Elements, listSep)},
		{"Score", strconv.Itoa(r.Score.Value)},
		{"Rating", analysis.Rating(r.Score.Value)},
		{"Interpretation", r.Score.Interpretation},
		{"Executive Summary", r.ExecutiveSummary},
		{"Positive Attributes", strings.Join(r.PositiveAttributes, listSep)},
		{"Tradeoffs", strings.Join(r.Tradeoffs, listSep)},
		{"Functional Ingredients", joinIngredients(r.FunctionalIngredients)},
		{"Quality Signals", r.QualitySignals},
		{"Awareness Flags", strings.Join(r.AwarenessFlags, listSep)},
		{"Smart Usage", r.SmartUsage},
		{"Proactive Suggestion", r.ProactiveSuggestion},
	}

	if len(r.Allergens) > 0 {
		parts := make([]string, 0, len(r.Allergens))
		for _, a := range r.Allergens {
			parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Name, a.Severity, a.Details))
		}
		rows = append(rows, [2]string{"Allergens", strings.Join(parts, listSep)})
	}
	if len(r.DietaryCompatibility) > 0 {
		parts := make([]string, 0, len(r.DietaryCompatibility))
		for _, d := range r.DietaryCompatibility {
			verdict := "No"
			if d.Compatible {
				verdict = "Yes"
			}
			parts = append(parts, fmt.Sprintf("%s: %s - %s", d.Diet, verdict, d.Reason))
		}
		rows = append(rows, [2]string{"Dietary Compatibility", strings.Join(parts, listSep)})
	}
	if r.Nutrition != nil {
		for _, f := range nutritionFields(r.Nutrition) {
			rows = append(rows, [2]string{f.Label, f.Value})
		}
	}
	if h := r.HealthRisk; h != nil {
		rows = append(rows,
			[2]string{"Health Risk Score", strconv.Itoa(h.Score)},
			[2]string{"Health Risk Level", string(h.Level)},
			[2]string{"Health Risk Factors", strings.Join(h.Factors, listSep)},
		)
	}
	if e := r.EnvironmentalImpact; e != nil {
		rows = append(rows,
			[2]string{"Environmental Score", strconv.Itoa(e.Score)},
			[2]string{"Environmental Level", string(e.Level)},
			[2]string{"Environmental Factors", strings.Join(e.Factors, listSep)},
		)
	}
	if len(r.Alternatives) > 0 {
		rows = append(rows, [2]string{"Alternatives", strings.Join(r.Alternatives, listSep)})
	}
	if c := r.ComparisonData; c != nil {
		rows = append(rows,
			[2]string{"Comparison Category", c.Category},
			[2]string{"Benchmark", c.Benchmark},
			[2]string{"vs Average", c.VsAverage},
		)
	}
	return rows
}

func joinIngredients(items []analysis.FunctionalIngredient) string {
	parts := make([]string, 0, len(items))
	for _, fi := range items {
		parts = append(parts, fi.Ingredient+": "+fi.Purpose)
	}
	return strings.Join(parts, listSep)
}
