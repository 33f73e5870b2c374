package ingredient

import "fmt"

// Ingredient 結構化食材
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   string  `json:"amount"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	// Category 上游資料附帶的分類，可為空
	Category string `json:"category,omitempty"`
}

// DiagnosticKind 診斷類型
type DiagnosticKind string

const (
	DiagNoIngredients DiagnosticKind = "no_ingredients"
	DiagInvalidJSON   DiagnosticKind = "invalid_json"
	DiagNotArray      DiagnosticKind = "not_array"
	DiagInvalidItem   DiagnosticKind = "invalid_item"
	DiagUnparsable    DiagnosticKind = "unparsable_item"
)

// Diagnostic 正規化過程中的單筆診斷，Index 為 -1 表示整體問題
type Diagnostic struct {
	Context string         `json:"context"`
	Kind    DiagnosticKind `json:"kind"`
	Index   int            `json:"index"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Index >= 0 {
		return fmt.Sprintf("%s: item %d: %s", d.Context, d.Index, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Context, d.Message)
}

// Result 正規化結果
type Result struct {
	Ingredients  []Ingredient `json:"ingredients"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
	InvalidCount int          `json:"invalid_count"`
}

// Empty 是否沒有任何可用食材
func (r Result) Empty() bool {
	return len(r.Ingredients) == 0
}
