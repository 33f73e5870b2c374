package ingredient

import (
	"encoding/json"
	"fmt"
	"strings"

	"recipe-planner/internal/pkg/common"
)

var (
	nameKeys   = []string{"name", "ingredient", "item"}
	amountKeys = []string{"amount", "quantity", "measure"}
)

// unitPlaceholder 從 amount 解析單位時使用的佔位名稱
const unitPlaceholder = "x"

// Normalize 將任意格式的食材資料（JSON 字串、字串陣列、物件陣列）轉為驗證後的食材列表。
// 不會 panic；所有失敗都以省略加上診斷的方式處理，並保留輸入順序。
func Normalize(raw any, contextLabel string) Result {
	n := normalizer{label: contextLabel}
	n.run(raw)
	return n.result
}

type normalizer struct {
	label  string
	result Result
}

func (n *normalizer) diag(kind DiagnosticKind, index int, format string, args ...any) {
	n.result.Diagnostics = append(n.result.Diagnostics, Diagnostic{
		Context: n.label,
		Kind:    kind,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	})
}

func (n *normalizer) run(raw any) {
	if isNil(raw) {
		n.diag(DiagNoIngredients, -1, "recipe has no ingredients")
		return
	}

	value, ok := n.decode(raw)
	if !ok {
		return
	}

	switch items := value.(type) {
	case []any:
		for i, item := range items {
			n.element(i, item)
		}
	case []string:
		for i, item := range items {
			n.element(i, item)
		}
	case []Ingredient:
		for i, item := range items {
			n.element(i, item)
		}
	case []map[string]any:
		for i, item := range items {
			n.element(i, item)
		}
	default:
		n.diag(DiagNotArray, -1, "ingredients are not a list (got %T)", value)
	}
}

// decode 處理 JSON 字串型態的舊資料
func (n *normalizer) decode(raw any) (any, bool) {
	var data string
	switch v := raw.(type) {
	case string:
		data = v
	case json.RawMessage:
		data = string(v)
	case []byte:
		data = string(v)
	default:
		return raw, true
	}

	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		n.diag(DiagNoIngredients, -1, "recipe has no ingredients")
		return nil, false
	}

	var parsed any
	if err := common.ParseJSON(trimmed, &parsed); err != nil {
		n.diag(DiagInvalidJSON, -1, "ingredients are not valid JSON: %v", err)
		return nil, false
	}
	if parsed == nil {
		n.diag(DiagNoIngredients, -1, "recipe has no ingredients")
		return nil, false
	}

	// 雙重編碼：JSON 值本身又是一段 JSON 字串
	if s, ok := parsed.(string); ok {
		var inner any
		if err := common.ParseJSON(s, &inner); err != nil {
			n.diag(DiagNotArray, -1, "ingredients are not a list (got string)")
			return nil, false
		}
		parsed = inner
	}
	return parsed, true
}

func (n *normalizer) element(index int, item any) {
	switch v := item.(type) {
	case string:
		ing, ok := ParseText(v)
		if !ok {
			n.result.InvalidCount++
			n.diag(DiagUnparsable, index, "empty ingredient text")
			return
		}
		n.result.Ingredients = append(n.result.Ingredients, ing)
	case map[string]any:
		n.validated(index, v)
	case Ingredient:
		obj := map[string]any{
			"name":     v.Name,
			"amount":   v.Amount,
			"unit":     v.Unit,
			"category": v.Category,
		}
		if v.Quantity != 0 {
			obj["quantity"] = v.Quantity
		}
		n.validated(index, obj)
	case *Ingredient:
		if v == nil {
			n.result.InvalidCount++
			return
		}
		n.element(index, *v)
	default:
		n.result.InvalidCount++
	}
}

func (n *normalizer) validated(index int, obj map[string]any) {
	ing, err := Validate(obj)
	if err != nil {
		n.result.InvalidCount++
		n.diag(DiagInvalidItem, index, "%v", err)
		return
	}
	n.result.Ingredients = append(n.result.Ingredients, ing)
}

// Validate 驗證部分結構化的食材物件：名稱取自 name|ingredient|item，
// 數量取自 amount|quantity|measure，兩者都必須非空。
func Validate(obj map[string]any) (Ingredient, error) {
	name := firstValue(obj, nameKeys)
	amount := firstValue(obj, amountKeys)

	switch {
	case name == "" && amount == "":
		return Ingredient{}, fmt.Errorf("missing name and amount")
	case name == "":
		return Ingredient{}, fmt.Errorf("missing name")
	case amount == "":
		return Ingredient{}, fmt.Errorf("missing amount for %q", name)
	}

	unit := strings.ToLower(common.StringValue(obj["unit"]))
	quantity := ParseQuantity(amount)
	if unit == "" {
		// "2 cups" 之類的數量字串，順便取出單位；單位必須出現在 amount 本身
		if parsed, ok := ParseText(amount + " " + unitPlaceholder); ok && parsed.Unit != "" && parsed.Name == unitPlaceholder {
			unit = parsed.Unit
			quantity = parsed.Quantity
		}
	} else if !strings.Contains(strings.ToLower(amount), unit) {
		amount = amount + " " + unit
	}

	return Ingredient{
		Name:     name,
		Amount:   amount,
		Unit:     unit,
		Quantity: quantity,
		Category: common.StringValue(obj["category"]),
	}, nil
}

func firstValue(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if v := common.StringValue(obj[k]); v != "" {
			return v
		}
	}
	return ""
}

func isNil(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []any:
		return val == nil
	case json.RawMessage:
		return val == nil || string(val) == "null"
	}
	return false
}
