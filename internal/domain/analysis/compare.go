package analysis

import (
	"context"
	"fmt"

	"github.com/yanqian/kai-insight/pkg/metrics"
)

// Bounds on the number of products in one comparison.
const (
	MinCompareProducts = 2
	MaxCompareProducts = 4
)

// CheckCompareCount enforces the two-to-four product bound.
func CheckCompareCount(n int) error {
	if n < MinCompareProducts || n > MaxCompareProducts {
		return ValidationError(fmt.Sprintf("Compare between %d and %d products", MinCompareProducts, MaxCompareProducts))
	}
	return nil
}

// Compare analyses each text in turn, then picks the winners.
func (s *service) Compare(ctx context.Context, req CompareRequest) (Comparison, error) {
	if err := CheckCompareCount(len(req.Texts)); err != nil {
		return Comparison{}, err
	}

	var usage metrics.TokenUsage
	products := make([]ComparedProduct, 0, len(req.Texts))
	for i, text := range req.Texts {
		resp, err := s.Analyze(ctx, Request{Text: text})
		if err != nil {
			s.logger.Error("comparison product failed", "index", i, "kind", Classify(err))
			return Comparison{}, err
		}
		if resp.TokenUsage != nil {
			usage = usage.Add(*resp.TokenUsage)
		}
		products = append(products, ComparedProduct{
			Label:  fmt.Sprintf("Product %d", i+1),
			Result: resp.Result,
		})
	}

	cmp := NewComparison(products)
	if !usage.IsZero() {
		cmp.TokenUsage = &usage
	}
	return cmp, nil
}

// NewComparison builds a comparison over already analysed products.
func NewComparison(products []ComparedProduct) Comparison {
	results := make([]Result, len(products))
	for i, p := range products {
		results[i] = p.Result
	}
	return Comparison{Products: products, Winners: PickWinners(results)}
}

// PickWinners returns, per metric, the index of the best result. Ties keep the earliest.
func PickWinners(results []Result) Winners {
	return Winners{
		Score: argMax(results, func(r Result) (int, bool) {
			return r.Score.Value, true
		}),
		Health: argMax(results, func(r Result) (int, bool) {
			if r.HealthRisk == nil {
				return 0, false
			}
			return 100 - r.HealthRisk.Score, true
		}),
		Environment: argMax(results, func(r Result) (int, bool) {
			if r.EnvironmentalImpact == nil {
				return 0, false
			}
			return r.EnvironmentalImpact.Score, true
		}),
	}
}

func argMax(results []Result, metric func(Result) (int, bool)) int {
	best, bestVal := -1, 0
	for i, r := range results {
		val, ok := metric(r)
		if !ok {
			continue
		}
		if best == -1 || val > bestVal {
			best, bestVal = i, val
		}
	}
	return best
}
