package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

const (
	reportTitle  = "kai PRODUCT INTELLIGENCE REPORT"
	reportFooter = "Generated by kai - Cognitive Product Intelligence"
	dateLayout   = "2006-01-02 15:04:05 MST"
)

var (
	doubleRule = strings.Repeat("═", 55)
	singleRule = strings.Repeat("─", 53)
)

type textReport struct {
	lines []string
}

func (t *textReport) add(lines ...string) {
	t.lines = append(t.lines, lines...)
}

func (t *textReport) section(title string, body ...string) {
	t.add(title, singleRule)
	t.add(body...)
	t.add("")
}

// Text renders the plain-text report. Optional sections appear only when present.
func Text(r analysis.Result, at time.Time) string {
	var t textReport
	t.add(doubleRule, "          "+reportTitle, doubleRule, "")

	t.section("PRODUCT IDENTITY",
		"Category: "+r.ProductIdentity.Category,
		"Confidence: "+string(r.ProductIdentity.Confidence),
		"Elements: "+strings.Join(r.ProductIdentity.Elements, ", "),
	)
	t.section("INTELLIGENCE SCORE",
		fmt.Sprintf("Score: %d/100", r.Score.Value),
		"Rating: "+r.Score.Interpretation,
	)
	t.section("EXECUTIVE SUMMARY", r.ExecutiveSummary)
	t.section("POSITIVE ATTRIBUTES", numbered(r.PositiveAttributes)...)
	t.section("TRADEOFFS & LIMITATIONS", numbered(r.Tradeoffs)...)

	if len(r.Allergens) > 0 {
		body := make([]string, 0, len(r.Allergens))
		for _, a := range r.Allergens {
			body = append(body, fmt.Sprintf("• %s (%s): %s", a.Name, a.Severity, a.Details))
		}
		t.section("ALLERGEN INFORMATION", body...)
	}
	if len(r.DietaryCompatibility) > 0 {
		body := make([]string, 0, len(r.DietaryCompatibility))
		for _, d := range r.DietaryCompatibility {
			body = append(body, fmt.Sprintf("%s %s: %s", checkMark(d.Compatible), d.Diet, d.Reason))
		}
		t.section("DIETARY COMPATIBILITY", body...)
	}
	if r.Nutrition != nil {
		body := make([]string, 0, 7)
		for _, f := range nutritionFields(r.Nutrition) {
			body = append(body, f.Label+": "+f.Value)
		}
		t.section("NUTRITIONAL INFORMATION", body...)
	}
	if r.HealthRisk != nil {
		body := []string{
			fmt.Sprintf("Risk Score: %d/100", r.HealthRisk.Score),
			"Risk Level: " + string(r.HealthRisk.Level),
			"Risk Factors:",
		}
		t.section("HEALTH RISK ASSESSMENT", append(body, bulleted(r.HealthRisk.Factors, "  • ")...)...)
	}
	if r.EnvironmentalImpact != nil {
		body := []string{
			fmt.Sprintf("Impact Score: %d/100", r.EnvironmentalImpact.Score),
			"Impact Level: " + string(r.EnvironmentalImpact.Level),
			"Factors:",
		}
		t.section("ENVIRONMENTAL IMPACT", append(body, bulleted(r.EnvironmentalImpact.Factors, "  • ")...)...)
	}

	ingredients := make([]string, 0, len(r.FunctionalIngredients))
	for _, fi := range r.FunctionalIngredients {
		ingredients = append(ingredients, fmt.Sprintf("• %s: %s", fi.Ingredient, fi.Purpose))
	}
	t.section("FUNCTIONAL INGREDIENTS", ingredients...)
	t.section("QUALITY SIGNALS", r.QualitySignals)
	if len(r.AwarenessFlags) > 0 {
		t.section("AWARENESS FLAGS", bulleted(r.AwarenessFlags, "⚠ ")...)
	} else {
		t.section("AWARENESS FLAGS", "No significant flags detected.")
	}
	t.section("SMART USAGE PERSPECTIVE", r.SmartUsage)
	t.section("PROACTIVE SUGGESTION", r.ProactiveSuggestion)

	if len(r.Alternatives) > 0 {
		t.section("ALTERNATIVE PRODUCTS", numbered(r.Alternatives)...)
	}
	if c := r.ComparisonData; c != nil {
		t.section("CATEGORY COMPARISON",
			"Category: "+c.Category,
			"Benchmark: "+c.Benchmark,
			"vs Average: "+c.VsAverage,
		)
	}

	t.add(doubleRule, reportFooter, "Report Date: "+at.Format(dateLayout), doubleRule)
	return strings.Join(t.lines, "\n")
}

func numbered(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return out
}

func bulleted(items []string, bullet string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = bullet + item
	}
	return out
}

func checkMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

type labelled struct {
	Label string
	Value string
}

// nutritionFields lists the populated nutrition facts in label order.
func nutritionFields(n *analysis.Nutrition) []labelled {
	all := []labelled{
		{"Calories", n.Calories},
		{"Protein", n.Protein},
		{"Carbohydrates", n.Carbs},
		{"Fat", n.Fat},
		{"Fiber", n.Fiber},
		{"Sugar", n.Sugar},
		{"Sodium", n.Sodium},
	}
	out := all[:0]
	for _, f := range all {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}
