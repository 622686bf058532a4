package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

var reportTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func coreResult() analysis.Result {
	return analysis.Result{
		ProductIdentity: analysis.ProductIdentity{
			Category:   "Soft Drink",
			Confidence: analysis.ConfidenceMedium,
			Elements:   []string{"Water", "Sugar", "Citric Acid"},
		},
		PositiveAttributes:    []string{"Short ingredient list"},
		Tradeoffs:             []string{"High added sugar"},
		FunctionalIngredients: []analysis.FunctionalIngredient{{Ingredient: "Citric Acid", Purpose: "Acidity regulator"}},
		QualitySignals:        "Simple formulation.",
		AwarenessFlags:        []string{},
		SmartUsage:            "Treat as an occasional drink.",
		ExecutiveSummary:      `A basic "sweetened" drink.`,
		Score:                 analysis.Score{Value: 72, Interpretation: "Decent but sugary."},
		ProactiveSuggestion:   "Try the zero sugar variant.",
	}
}

func enrichedResult() analysis.Result {
	r := coreResult()
	r.VisualPrompt = "A lemon soda bottle"
	r.GeneratedImageURL = "data:image/png;base64,cG5n"
	r.AwarenessFlags = []string{"Contains added sugar"}
	r.Allergens = []analysis.Allergen{{Name: "Sulphites", Severity: analysis.SeverityTrace, Details: "Possible from flavouring"}}
	r.DietaryCompatibility = []analysis.DietaryCompat{
		{Diet: "Vegan", Compatible: true, Reason: "No animal products"},
		{Diet: "Keto", Compatible: false, Reason: "High sugar"},
	}
	r.Nutrition = &analysis.Nutrition{Calories: "140 kcal", Sugar: "35 g"}
	r.HealthRisk = &analysis.HealthRisk{Score: 35, Level: analysis.RiskModerate, Factors: []string{"Sugar"}}
	r.EnvironmentalImpact = &analysis.EnvironmentalImpact{Score: 60, Level: analysis.ImpactGood, Factors: []string{"Recyclable bottle"}}
	r.Alternatives = []string{"Sparkling water with lemon"}
	r.ComparisonData = &analysis.ComparisonData{Category: "Sodas", Benchmark: "39 g sugar", VsAverage: "10% less sugar"}
	return r
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	for name, r := range map[string]analysis.Result{"core": coreResult(), "enriched": enrichedResult()} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := JSON(r)
			require.NoError(t, err)
			require.Contains(t, out, "\n  \"productIdentity\"")

			var back analysis.Result
			require.NoError(t, json.Unmarshal([]byte(out), &back))
			require.Equal(t, r, back)
		})
	}
}

func TestJSONOmitsAbsentEnrichments(t *testing.T) {
	t.Parallel()

	out, err := JSON(coreResult())
	require.NoError(t, err)
	for _, key := range []string{"allergens", "nutrition", "healthRisk", "environmentalImpact", "alternatives", "comparisonData", "generatedImageUrl"} {
		require.NotContains(t, out, `"`+key+`"`)
	}
}

func TestTextReport(t *testing.T) {
	t.Parallel()

	out := Text(coreResult(), reportTime)
	require.Contains(t, out, "kai PRODUCT INTELLIGENCE REPORT")
	require.Contains(t, out, "Score: 72/100")
	require.Contains(t, out, "Confidence: Medium")
	require.Contains(t, out, "Elements: Water, Sugar, Citric Acid")
	require.Contains(t, out, "1. Short ingredient list")
	require.Contains(t, out, "• Citric Acid: Acidity regulator")
	require.Contains(t, out, "No significant flags detected.")
	require.Contains(t, out, "Report Date: 2026-03-14 09:30:00 UTC")
	for _, section := range []string{"ALLERGEN INFORMATION", "DIETARY COMPATIBILITY", "NUTRITIONAL INFORMATION", "HEALTH RISK ASSESSMENT", "ENVIRONMENTAL IMPACT", "ALTERNATIVE PRODUCTS", "CATEGORY COMPARISON"} {
		require.NotContains(t, out, section)
	}

	sections := []string{"PRODUCT IDENTITY", "INTELLIGENCE SCORE", "EXECUTIVE SUMMARY", "POSITIVE ATTRIBUTES", "TRADEOFFS & LIMITATIONS", "FUNCTIONAL INGREDIENTS", "QUALITY SIGNALS", "AWARENESS FLAGS", "SMART USAGE PERSPECTIVE", "PROACTIVE SUGGESTION"}
	last := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		require.Greater(t, idx, last, section)
		last = idx
	}
}

func TestTextReportEnriched(t *testing.T) {
	t.Parallel()

	out := Text(enrichedResult(), reportTime)
	require.Contains(t, out, "• Sulphites (Trace): Possible from flavouring")
	require.Contains(t, out, "✓ Vegan: No animal products")
	require.Contains(t, out, "✗ Keto: High sugar")
	require.Contains(t, out, "Calories: 140 kcal")
	require.NotContains(t, out, "Protein:")
	require.Contains(t, out, "Risk Score: 35/100")
	require.Contains(t, out, "Risk Level: Moderate")
	require.Contains(t, out, "Impact Level: Good")
	require.Contains(t, out, "⚠ Contains added sugar")
	require.Contains(t, out, "vs Average: 10% less sugar")
	require.Less(t, strings.Index(out, "TRADEOFFS & LIMITATIONS"), strings.Index(out, "ALLERGEN INFORMATION"))
	require.Less(t, strings.Index(out, "ENVIRONMENTAL IMPACT"), strings.Index(out, "FUNCTIONAL INGREDIENTS"))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	out := CSV(coreResult())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Equal(t, "Field,Value", lines[0])
	require.Contains(t, lines, `"Score","72"`)
	require.Contains(t, lines, `"Confidence","Medium"`)
	require.Contains(t, lines, `"Executive Summary","A basic ""sweetened"" drink."`)
	require.NotContains(t, out, "Health Risk")

	enriched := CSV(enrichedResult())
	require.Contains(t, enriched, `"Health Risk Level","Moderate"`)
	require.Contains(t, enriched, `"Dietary Compatibility","Vegan: Yes - No animal products; Keto: No - High sugar"`)
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	out := Markdown(enrichedResult(), reportTime)
	require.True(t, strings.HasPrefix(out, "# kai Product Intelligence Report"))
	require.Contains(t, out, "## Executive Summary")
	require.Contains(t, out, "**Score: 72/100**")
	require.Contains(t, out, "| Sulphites | Trace | Possible from flavouring |")
	require.Contains(t, out, "## Category Comparison")

	core := Markdown(coreResult(), reportTime)
	require.NotContains(t, core, "## Allergen Information")
	require.NotContains(t, core, "## Nutritional Information")
	require.Contains(t, core, "No significant flags detected.")
}

func TestHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	r := enrichedResult()
	r.ExecutiveSummary = `<script>alert("x")</script>`
	out, err := HTML(r, reportTime)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	require.Contains(t, out, "<style>")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.Contains(t, out, `src="data:image/png;base64,cG5n"`)
	require.Contains(t, out, "Score: 72/100")
	require.Contains(t, out, "Allergen Information")

	core, err := HTML(coreResult(), reportTime)
	require.NoError(t, err)
	require.NotContains(t, core, "Allergen Information")
	require.NotContains(t, core, "<img")
}

func TestXLSX(t *testing.T) {
	t.Parallel()

	body, err := XLSX(enrichedResult())
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(body)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	require.Equal(t, "Analysis", sheet.Name)
	require.Equal(t, "Field", sheet.Rows[0].Cells[0].String())
	require.Equal(t, "Category", sheet.Rows[1].Cells[0].String())
	require.Equal(t, "Soft Drink", sheet.Rows[1].Cells[1].String())
}

func TestRender(t *testing.T) {
	t.Parallel()

	cases := map[Format]string{
		FormatJSON:     "application/json",
		FormatText:     "text/plain",
		FormatCSV:      "text/csv",
		FormatMarkdown: "text/markdown",
		FormatHTML:     "text/html",
		FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	for format, mime := range cases {
		doc, err := Render(format, coreResult(), reportTime)
		require.NoError(t, err, format)
		require.Equal(t, mime, doc.MIMEType)
		require.Equal(t, mime, format.MIMEType())
		require.True(t, strings.HasPrefix(doc.Filename, "kai-analysis-2026-03-14."), doc.Filename)
		require.NotEmpty(t, doc.Body)
	}

	_, err := Render("pdf", coreResult(), reportTime)
	require.True(t, apperrors.IsCode(err, CodeInvalidFormat))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Format{"": FormatJSON, "TXT": FormatText, "md": FormatMarkdown, " csv ": FormatCSV, "xlsx": FormatXLSX} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	require.True(t, apperrors.IsCode(err, CodeInvalidFormat))
}

func TestShareHelpers(t *testing.T) {
	t.Parallel()

	r := coreResult()
	require.Equal(t, "Soft Drink - Score: 72/100\n\nA basic \"sweetened\" drink.", Summary(r))

	share := Share(r)
	require.Equal(t, "kai Analysis: Soft Drink", share.Title)
	require.True(t, strings.HasPrefix(share.Text, "Intelligence Score: 72/100\n\n"))

	mailto := Mailto(r, reportTime)
	require.True(t, strings.HasPrefix(mailto, "mailto:?subject=kai%20Analysis%3A%20Soft%20Drink&body="))
	require.Contains(t, mailto, "Score%3A%2072%2F100")
	require.Contains(t, mailto, "TRADEOFFS%20%26%20LIMITATIONS")
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	mime, data, err := DecodeImage("data:image/png;base64,cG5n")
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)
	require.Equal(t, []byte("png"), data)

	for _, bad := range []string{"", "https://example.com/a.png", "data:text/plain;base64,cG5n", "data:image/png,raw"} {
		_, _, err := DecodeImage(bad)
		require.Error(t, err, bad)
	}
	_, _, err = DecodeImage("data:image/png;base64,***")
	require.Error(t, err)
}
