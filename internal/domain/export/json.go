package export

import (
	"encoding/json"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

// JSON pretty-prints the result with two-space indentation.
func JSON(r analysis.Result) (string, error) {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
