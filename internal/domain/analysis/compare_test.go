package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickWinners(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Score: Score{Value: 60}, HealthRisk: &HealthRisk{Score: 20}},
		{Score: Score{Value: 85}, HealthRisk: &HealthRisk{Score: 55}, EnvironmentalImpact: &EnvironmentalImpact{Score: 40}},
		{Score: Score{Value: 85}, EnvironmentalImpact: &EnvironmentalImpact{Score: 90}},
	}
	require.Equal(t, Winners{Score: 1, Health: 0, Environment: 2}, PickWinners(results))
}

func TestPickWinnersWithoutEnrichments(t *testing.T) {
	t.Parallel()

	results := []Result{{Score: Score{Value: 10}}, {Score: Score{Value: 20}}}
	require.Equal(t, Winners{Score: 1, Health: -1, Environment: -1}, PickWinners(results))
}

func TestCompareBounds(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{Text: samplePayload}}}
	svc, _ := newTestService(text, nil)

	for _, n := range []int{0, 1, 5} {
		texts := make([]string, n)
		for i := range texts {
			texts[i] = "Water, Sugar, Citric Acid"
		}
		_, err := svc.Compare(context.Background(), CompareRequest{Texts: texts})
		require.Error(t, err)
		require.Equal(t, KindValidation, Classify(err))
	}
	require.Zero(t, text.calls)
}

func TestCompareAnalysesEachProduct(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{Text: samplePayload}, {Text: payloadWithoutVisual}}}
	svc, _ := newTestService(text, nil)

	cmp, err := svc.Compare(context.Background(), CompareRequest{Texts: []string{
		"Water, Sugar, Citric Acid",
		"Water, Sweetener, Flavouring",
	}})
	require.NoError(t, err)
	require.Equal(t, 2, text.calls)
	require.Len(t, cmp.Products, 2)
	require.Equal(t, "Product 1", cmp.Products[0].Label)
	require.Equal(t, 0, cmp.Winners.Score)
	require.Equal(t, 0, cmp.Winners.Health)
	require.Equal(t, -1, cmp.Winners.Environment)
}
