package analysis

// Type names a JSON value type in a Schema.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema describes the structured output requested from a provider. Adapters translate it
// into their own dialect; conform checks responses against the same value.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// PropertyOrder keeps a stable field order for providers that honour it.
	PropertyOrder []string
	Required      []string
	Items         *Schema
	Enum          []string
	Minimum       *float64
	Maximum       *float64
}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

func strList(desc string) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: &Schema{Type: TypeString}}
}

func percent(desc string) *Schema {
	lo, hi := 0.0, 100.0
	return &Schema{Type: TypeInteger, Description: desc, Minimum: &lo, Maximum: &hi}
}

func object(props map[string]*Schema, order []string, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, PropertyOrder: order, Required: required}
}

// coreFields are required in every response; the remaining properties are enrichments.
var coreFields = []string{
	"productIdentity",
	"positiveAttributes",
	"tradeoffs",
	"functionalIngredients",
	"qualitySignals",
	"awarenessFlags",
	"smartUsage",
	"executiveSummary",
	"score",
	"proactiveSuggestion",
}

var enrichmentFields = []string{
	"visualPrompt",
	"allergens",
	"dietaryCompatibility",
	"nutrition",
	"healthRisk",
	"environmentalImpact",
	"alternatives",
	"comparisonData",
}

// ResultSchema builds the structured-output schema for Result.
func ResultSchema() *Schema {
	props := map[string]*Schema{
		"productIdentity": object(map[string]*Schema{
			"category":   str("Broad product category, e.g. Snack Food, Skincare, Household Cleaner."),
			"confidence": enum("Confidence in the identification.", string(ConfidenceHigh), string(ConfidenceMedium), string(ConfidenceLow)),
			"elements":   strList("Key identifying elements found on the label."),
		}, []string{"category", "confidence", "elements"}, "category", "confidence", "elements"),
		"positiveAttributes": strList("Genuine strengths of the product."),
		"tradeoffs":          strList("Limitations or compromises a buyer should weigh."),
		"functionalIngredients": {
			Type:        TypeArray,
			Description: "Notable ingredients and the job each one does.",
			Items: object(map[string]*Schema{
				"ingredient": str("Ingredient name as printed."),
				"purpose":    str("What the ingredient does in the product."),
			}, []string{"ingredient", "purpose"}, "ingredient", "purpose"),
		},
		"qualitySignals":   str("Overall read on formulation quality."),
		"awarenessFlags":   strList("Items worth attention without being alarmist."),
		"smartUsage":       str("Practical guidance on how to use the product well."),
		"executiveSummary": str("Two or three sentence verdict."),
		"score": object(map[string]*Schema{
			"value":          percent("Intelligence score from 0 to 100."),
			"interpretation": str("One sentence explaining the score."),
		}, []string{"value", "interpretation"}, "value", "interpretation"),
		"proactiveSuggestion": str("One concrete next step for the buyer."),
		"visualPrompt":        str("Short photographic description of the product for image generation."),
		"allergens": {
			Type: TypeArray,
			Items: object(map[string]*Schema{
				"name":     str("Allergen name."),
				"severity": enum("How certain the presence is.", string(SeverityConfirmed), string(SeverityPossible), string(SeverityTrace)),
				"details":  str("Where on the label it appears."),
			}, []string{"name", "severity", "details"}, "name", "severity", "details"),
		},
		"dietaryCompatibility": {
			Type: TypeArray,
			Items: object(map[string]*Schema{
				"diet":       str("Diet name, e.g. Vegan, Keto, Gluten-Free."),
				"compatible": {Type: TypeBoolean},
				"reason":     str("Why it is or is not compatible."),
			}, []string{"diet", "compatible", "reason"}, "diet", "compatible", "reason"),
		},
		"nutrition": object(map[string]*Schema{
			"calories": str(""), "protein": str(""), "carbs": str(""), "fat": str(""),
			"fiber": str(""), "sugar": str(""), "sodium": str(""),
		}, []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium"}),
		"healthRisk": object(map[string]*Schema{
			"score":   percent("Health risk from 0 (none) to 100 (severe)."),
			"level":   enum("Risk band.", string(RiskLow), string(RiskModerate), string(RiskHigh), string(RiskCritical)),
			"factors": strList("Contributing factors."),
		}, []string{"score", "level", "factors"}, "score", "level", "factors"),
		"environmentalImpact": object(map[string]*Schema{
			"score":   percent("Environmental score from 0 (poor) to 100 (excellent)."),
			"level":   enum("Impact band.", string(ImpactExcellent), string(ImpactGood), string(ImpactModerate), string(ImpactPoor)),
			"factors": strList("Contributing factors."),
		}, []string{"score", "level", "factors"}, "score", "level", "factors"),
		"alternatives": strList("Better or comparable alternative products."),
		"comparisonData": object(map[string]*Schema{
			"category":  str("Category used for the benchmark."),
			"benchmark": str("What a typical product in the category looks like."),
			"vsAverage": str("How this product compares with the average."),
		}, []string{"category", "benchmark", "vsAverage"}, "category", "benchmark", "vsAverage"),
	}

	order := append(append([]string{}, coreFields...), enrichmentFields...)
	return object(props, order, coreFields...)
}
