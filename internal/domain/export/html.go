package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"rating":    analysis.Rating,
	"mark":      checkMark,
	"nutrition": nutritionFields,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>kai Analysis: {{.R.ProductIdentity.Category}}</title>
<style>
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;max-width:800px;margin:0 auto;padding:32px;color:#1f2937;line-height:1.6;background:#f9fafb}
h1{font-size:24px;margin:0 0 4px}
h2{font-size:16px;text-transform:uppercase;letter-spacing:.05em;color:#4b5563;border-bottom:1px solid #e5e7eb;padding-bottom:4px;margin-top:28px}
.card{background:#fff;border-radius:12px;padding:24px;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.score{font-size:40px;font-weight:700}
.Excellent{color:#059669}.Good{color:#2563eb}.Moderate{color:#d97706}.Poor{color:#dc2626}
.muted{color:#6b7280;font-size:13px}
table{border-collapse:collapse;width:100%}td,th{text-align:left;padding:6px 8px;border-bottom:1px solid #f3f4f6}
.flag{color:#b45309}
img{max-width:100%;border-radius:12px}
</style>
</head>
<body>
<div class="card">
<h1>{{.R.ProductIdentity.Category}}</h1>
<p class="muted">Confidence: {{.R.ProductIdentity.Confidence}}</p>
{{with .Image}}<img src="{{.}}" alt="Generated product image">{{end}}

<h2>Intelligence Score</h2>
<p><span class="score {{rating .R.Score.Value}}">Score: {{.R.Score.Value}}/100</span></p>
<p>{{.R.Score.Interpretation}}</p>

<h2>Product Identity</h2>
<p>Elements: {{range $i, $e := .R.ProductIdentity.Elements}}{{if $i}}, {{end}}{{$e}}{{end}}</p>

<h2>Executive Summary</h2>
<p>{{.R.ExecutiveSummary}}</p>

<h2>Positive Attributes</h2>
<ul>{{range .R.PositiveAttributes}}<li>{{.}}</li>{{end}}</ul>

<h2>Tradeoffs &amp; Limitations</h2>
<ul>{{range .R.Tradeoffs}}<li>{{.}}</li>{{end}}</ul>
{{if .R.Allergens}}
<h2>Allergen Information</h2>
<table><tr><th>Allergen</th><th>Severity</th><th>Details</th></tr>
{{range .R.Allergens}}<tr><td>{{.Name}}</td><td>{{.Severity}}</td><td>{{.Details}}</td></tr>{{end}}
</table>{{end}}
{{if .R.DietaryCompatibility}}
<h2>Dietary Compatibility</h2>
<ul>{{range .R.DietaryCompatibility}}<li>{{mark .Compatible}} <strong>{{.Diet}}</strong>: {{.Reason}}</li>{{end}}</ul>{{end}}
{{with .R.Nutrition}}
<h2>Nutritional Information</h2>
<table>{{range nutrition .}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</table>{{end}}
{{with .R.HealthRisk}}
<h2>Health Risk Assessment</h2>
<p>Risk Score: {{.Score}}/100 ({{.Level}})</p>
<ul>{{range .Factors}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{with .R.EnvironmentalImpact}}
<h2>Environmental Impact</h2>
<p>Impact Score: {{.Score}}/100 ({{.Level}})</p>
<ul>{{range .Factors}}<li>{{.}}</li>{{end}}</ul>{{end}}

<h2>Functional Ingredients</h2>
<ul>{{range .R.FunctionalIngredients}}<li><strong>{{.Ingredient}}</strong>: {{.Purpose}}</li>{{end}}</ul>

<h2>Quality Signals</h2>
<p>{{.R.QualitySignals}}</p>

<h2>Awareness Flags</h2>
{{if .R.AwarenessFlags}}<ul>{{range .R.AwarenessFlags}}<li class="flag">⚠ {{.}}</li>{{end}}</ul>{{else}}<p>No significant flags detected.</p>{{end}}

<h2>Smart Usage Perspective</h2>
<p>{{.R.SmartUsage}}</p>

<h2>Proactive Suggestion</h2>
<p>{{.R.ProactiveSuggestion}}</p>
{{if .R.Alternatives}}
<h2>Alternative Products</h2>
<ol>{{range .R.Alternatives}}<li>{{.}}</li>{{end}}</ol>{{end}}
{{with .R.ComparisonData}}
<h2>Category Comparison</h2>
<p>Category: {{.Category}}<br>Benchmark: {{.Benchmark}}<br>vs Average: {{.VsAverage}}</p>{{end}}
</div>
<p class="muted">Generated by kai - Cognitive Product Intelligence · {{.Date}}</p>
</body>
</html>
`))

type htmlData struct {
	R     analysis.Result
	Image template.URL
	Date  string
}

// HTML renders a self-contained page with inline styling. Content is escaped by html/template.
func HTML(r analysis.Result, at time.Time) (string, error) {
	data := htmlData{R: r, Date: at.Format(dateLayout)}
	if isImageDataURL(r.GeneratedImageURL) {
		data.Image = template.URL(r.GeneratedImageURL)
	}
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
