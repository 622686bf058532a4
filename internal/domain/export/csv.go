package export

import (
	"strings"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

// CSV renders Field,Value rows. Every cell is quoted and embedded quotes are doubled.
func CSV(r analysis.Result) string {
	var b strings.Builder
	b.WriteString("Field,Value\n")
	for _, row := range fieldRows(r) {
		b.WriteString(quote(row[0]))
		b.WriteByte(',')
		b.WriteString(quote(row[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
