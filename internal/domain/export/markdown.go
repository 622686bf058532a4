package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

// Markdown renders one heading per section.
func Markdown(r analysis.Result, at time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	heading := func(title string) {
		line("")
		line("## %s", title)
		line("")
	}
	list := func(items []string) {
		for _, item := range items {
			line("- %s", item)
		}
	}

	line("# kai Product Intelligence Report")
	line("")
	line("**%s** · Score **%d/100** (%s)", r.ProductIdentity.Category, r.Score.Value, analysis.Rating(r.Score.Value))

	heading("Product Identity")
	line("- **Category:** %s", r.ProductIdentity.Category)
	line("- **Confidence:** %s", r.ProductIdentity.Confidence)
	line("- **Elements:** %s", strings.Join(r.ProductIdentity.Elements, ", "))

	heading("Intelligence Score")
	line("**Score: %d/100**", r.Score.Value)
	line("")
	line("%s", r.Score.Interpretation)

	heading("Executive Summary")
	line("%s", r.ExecutiveSummary)

	heading("Positive Attributes")
	list(r.PositiveAttributes)

	heading("Tradeoffs & Limitations")
	list(r.Tradeoffs)

	if len(r.Allergens) > 0 {
		heading("Allergen Information")
		line("| Allergen | Severity | Details |")
		line("|---|---|---|")
		for _, a := range r.Allergens {
			line("| %s | %s | %s |", cell(a.Name), a.Severity, cell(a.Details))
		}
	}
	if len(r.DietaryCompatibility) > 0 {
		heading("Dietary Compatibility")
		for _, d := range r.DietaryCompatibility {
			line("- %s **%s**: %s", checkMark(d.Compatible), d.Diet, d.Reason)
		}
	}
	if r.Nutrition != nil {
		heading("Nutritional Information")
		line("| Nutrient | Amount |")
		line("|---|---|")
		for _, f := range nutritionFields(r.Nutrition) {
			line("| %s | %s |", f.Label, cell(f.Value))
		}
	}
	if h := r.HealthRisk; h != nil {
		heading("Health Risk Assessment")
		line("**Risk Score:** %d/100 (%s)", h.Score, h.Level)
		line("")
		list(h.Factors)
	}
	if e := r.EnvironmentalImpact; e != nil {
		heading("Environmental Impact")
		line("**Impact Score:** %d/100 (%s)", e.Score, e.Level)
		line("")
		list(e.Factors)
	}

	heading("Functional Ingredients")
	for _, fi := range r.FunctionalIngredients {
		line("- **%s**: %s", fi.Ingredient, fi.Purpose)
	}

	heading("Quality Signals")
	line("%s", r.QualitySignals)

	heading("Awareness Flags")
	if len(r.AwarenessFlags) == 0 {
		line("No significant flags detected.")
	}
	for _, flag := range r.AwarenessFlags {
		line("- ⚠ %s", flag)
	}

	heading("Smart Usage Perspective")
	line("%s", r.SmartUsage)

	heading("Proactive Suggestion")
	line("> %s", r.ProactiveSuggestion)

	if len(r.Alternatives) > 0 {
		heading("Alternative Products")
		for i, alt := range r.Alternatives {
			line("%d. %s", i+1, alt)
		}
	}
	if c := r.ComparisonData; c != nil {
		heading("Category Comparison")
		line("- **Category:** %s", c.Category)
		line("- **Benchmark:** %s", c.Benchmark)
		line("- **vs Average:** %s", c.VsAverage)
	}

	line("")
	line("---")
	line("")
	line("_%s · %s_", reportFooter, at.Format(dateLayout))
	return b.String()
}

// cell keeps table rows intact when a value contains a pipe.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
