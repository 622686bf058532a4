package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "trims", input: "  Water, Sugar, Citric Acid \n", want: "Water, Sugar, Citric Acid"},
		{name: "empty", input: " \t ", wantErr: "Please enter some text to analyze"},
		{name: "short", input: "Sugar", wantErr: "Text is too short. Please provide at least 10 characters"},
		{name: "exactly min", input: "0123456789", want: "0123456789"},
		{name: "runes not bytes", input: "糖水柠檬酸香料色素防腐剂", want: "糖水柠檬酸香料色素防腐剂"},
		{name: "long", input: strings.Repeat("a", 10001), wantErr: "Text is too long. Please limit to 10,000 characters"},
		{name: "exactly max", input: strings.Repeat("a", 10000), want: strings.Repeat("a", 10000)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeInput(tc.input, 0, 0)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				require.Equal(t, KindValidation, Classify(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
