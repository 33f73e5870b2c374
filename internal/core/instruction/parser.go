// Package instruction 將自由文字的料理步驟轉為結構化步驟。
package instruction

import (
	"encoding/json"
	"regexp"
	"strings"

	"recipe-planner/internal/pkg/common"
)

// Instruction 結構化步驟，ID 每次解析都重新產生
type Instruction struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

var (
	stepMarkerPattern = regexp.MustCompile(`(?i)^(?:step\s*)?\d+[.):\-]+\s*`)
	bulletPattern     = regexp.MustCompile(`^[-•*]+\s*`)

	textKeys = []string{"text", "step", "instruction", "description"}
)

// ParseText 去除開頭的編號與項目符號並合併空白；剩餘內容為空時回傳 false
func ParseText(raw string) (Instruction, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Instruction{}, false
	}

	// 項目符號可出現在編號前後（"- 1. Mix"、"1. - Mix"），編號只去除一次
	text = bulletPattern.ReplaceAllString(text, "")
	text = stepMarkerPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Instruction{}, false
	}

	return Instruction{
		ID:   common.GenerateUUID(),
		Text: text,
	}, true
}

// Normalize 接受換行分隔字串、JSON 陣列字串、字串陣列或物件陣列，無效項目直接略過
func Normalize(raw any) []Instruction {
	var out []Instruction
	add := func(s string) {
		if ins, ok := ParseText(s); ok {
			out = append(out, ins)
		}
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var parsed any
			if err := common.ParseJSON(trimmed, &parsed); err == nil {
				return Normalize(parsed)
			}
		}
		for _, line := range strings.Split(v, "\n") {
			add(line)
		}
	case json.RawMessage:
		var parsed any
		if err := common.ParseJSONBytes(v, &parsed); err != nil {
			return nil
		}
		if _, isString := parsed.(string); isString {
			return Normalize(parsed)
		}
		if _, isList := parsed.([]any); isList {
			return Normalize(parsed)
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, item := range v {
			switch el := item.(type) {
			case string:
				add(el)
			case map[string]any:
				for _, k := range textKeys {
					if s := common.StringValue(el[k]); s != "" {
						add(s)
						break
					}
				}
			}
		}
	}
	return out
}
