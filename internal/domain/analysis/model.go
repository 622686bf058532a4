package analysis

import (
	"time"

	"github.com/yanqian/kai-insight/pkg/metrics"
)

// Config configures the analysis pipeline.
type Config struct {
	Model            string
	ImageModel       string
	Temperature      float32
	MinInputLen      int
	MaxInputLen      int
	ImagesEnabled    bool
	ImageStyleSuffix string
	ImageAspectRatio string
	Retry            RetryConfig
}

// RetryConfig bounds the backoff around the text-generation call.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Confidence is the closed set of identity confidence labels.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Severity is the closed set of allergen severities.
type Severity string

const (
	SeverityConfirmed Severity = "Confirmed"
	SeverityPossible  Severity = "Possible"
	SeverityTrace     Severity = "Trace"
)

// RiskLevel grades a health risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ImpactLevel grades an environmental impact score.
type ImpactLevel string

const (
	ImpactExcellent ImpactLevel = "Excellent"
	ImpactGood      ImpactLevel = "Good"
	ImpactModerate  ImpactLevel = "Moderate"
	ImpactPoor      ImpactLevel = "Poor"
)

// Result is the structured assessment of one product label.
// Optional enrichments stay nil when the model omits them.
type Result struct {
	ProductIdentity       ProductIdentity        `json:"productIdentity"`
	PositiveAttributes    []string               `json:"positiveAttributes"`
	Tradeoffs             []string               `json:"tradeoffs"`
	FunctionalIngredients []FunctionalIngredient `json:"functionalIngredients"`
	QualitySignals        string                 `json:"qualitySignals"`
	AwarenessFlags        []string               `json:"awarenessFlags"`
	SmartUsage            string                 `json:"smartUsage"`
	ExecutiveSummary      string                 `json:"executiveSummary"`
	Score                 Score                  `json:"score"`
	ProactiveSuggestion   string                 `json:"proactiveSuggestion"`
	VisualPrompt          string                 `json:"visualPrompt,omitempty"`
	GeneratedImageURL     string                 `json:"generatedImageUrl,omitempty"`

	Allergens            []Allergen           `json:"allergens,omitempty"`
	DietaryCompatibility []DietaryCompat      `json:"dietaryCompatibility,omitempty"`
	Nutrition            *Nutrition           `json:"nutrition,omitempty"`
	HealthRisk           *HealthRisk          `json:"healthRisk,omitempty"`
	EnvironmentalImpact  *EnvironmentalImpact `json:"environmentalImpact,omitempty"`
	Alternatives         []string             `json:"alternatives,omitempty"`
	ComparisonData       *ComparisonData      `json:"comparisonData,omitempty"`
}

type ProductIdentity struct {
	Category   string     `json:"category"`
	Confidence Confidence `json:"confidence"`
	Elements   []string   `json:"elements"`
}

type Score struct {
	Value          int    `json:"value"`
	Interpretation string `json:"interpretation"`
}

type FunctionalIngredient struct {
	Ingredient string `json:"ingredient"`
	Purpose    string `json:"purpose"`
}

type Allergen struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

type DietaryCompat struct {
	Diet       string `json:"diet"`
	Compatible bool   `json:"compatible"`
	Reason     string `json:"reason"`
}

type Nutrition struct {
	Calories string `json:"calories,omitempty"`
	Protein  string `json:"protein,omitempty"`
	Carbs    string `json:"carbs,omitempty"`
	Fat      string `json:"fat,omitempty"`
	Fiber    string `json:"fiber,omitempty"`
	Sugar    string `json:"sugar,omitempty"`
	Sodium   string `json:"sodium,omitempty"`
}

type HealthRisk struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

type EnvironmentalImpact struct {
	Score   int         `json:"score"`
	Level   ImpactLevel `json:"level"`
	Factors []string    `json:"factors"`
}

type ComparisonData struct {
	Category  string `json:"category"`
	Benchmark string `json:"benchmark"`
	VsAverage string `json:"vsAverage"`
}

// Request is the analyze payload.
type Request struct {
	Text string `json:"text"`
}

// Response wraps a result with call metadata.
type Response struct {
	Result     Result              `json:"result"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// CompareRequest lists the label texts to analyse side by side.
type CompareRequest struct {
	Texts []string `json:"texts"`
}

// ComparedProduct is one column of a comparison.
type ComparedProduct struct {
	Label  string `json:"label"`
	Result Result `json:"result"`
}

// Winners holds indexes into Comparison.Products; -1 means no product reported the metric.
type Winners struct {
	Score       int `json:"score"`
	Health      int `json:"health"`
	Environment int `json:"environment"`
}

// Comparison is the outcome of comparing two to four products.
type Comparison struct {
	Products   []ComparedProduct   `json:"products"`
	Winners    Winners             `json:"winners"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Rating maps a 0-100 score onto the label used in reports.
func Rating(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Moderate"
	default:
		return "Poor"
	}
}
