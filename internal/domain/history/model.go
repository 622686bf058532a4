package history

import "github.com/yanqian/kai-insight/internal/domain/analysis"

// Config bounds the retained history.
type Config struct {
	MaxItems int
}

// Item is one saved analysis.
type Item struct {
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	InputText string          `json:"inputText"`
	Result    analysis.Result `json:"result"`
}
