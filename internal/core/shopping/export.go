package shopping

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExportFormat 分享輸出格式
type ExportFormat string

const (
	FormatPlain ExportFormat = "text"
	FormatMD    ExportFormat = "markdown"
	FormatWeb   ExportFormat = "html"
)

// ParseExportFormat 解析輸出格式，空字串為 text
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPlain, "txt":
		return FormatPlain, true
	case FormatMD, "md":
		return FormatMD, true
	case FormatWeb:
		return FormatWeb, true
	}
	return "", false
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

// Export 依格式輸出清單
func Export(list *ShoppingList, format ExportFormat) (string, error) {
	switch format {
	case FormatPlain:
		return FormatText(list), nil
	case FormatMD:
		return FormatMarkdown(list), nil
	case FormatWeb:
		return FormatHTML(list)
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// FormatText 純文字，適合貼到訊息或備忘錄
func FormatText(list *ShoppingList) string {
	var b strings.Builder
	b.WriteString("Shopping List\n")
	for _, g := range Group(listItems(list)) {
		fmt.Fprintf(&b, "\n%s\n", g.Category)
		for _, item := range g.Items {
			mark := "[ ]"
			if item.Checked {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "%s %s", mark, itemLine(item.Name, item.Amount))
			if item.Notes != "" {
				fmt.Fprintf(&b, " (%s)", item.Notes)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatMarkdown GFM 任務清單
func FormatMarkdown(list *ShoppingList) string {
	var b strings.Builder
	b.WriteString("# Shopping List\n")
	for _, g := range Group(listItems(list)) {
		fmt.Fprintf(&b, "\n## %s\n\n", markdownEscaper.Replace(string(g.Category)))
		for _, item := range g.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			line := itemLine(markdownEscaper.Replace(item.Name), markdownEscaper.Replace(item.Amount))
			fmt.Fprintf(&b, "- [%s] %s", mark, line)
			if item.Notes != "" {
				fmt.Fprintf(&b, " _(%s)_", markdownEscaper.Replace(item.Notes))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatHTML 將 markdown 輸出轉為 HTML 片段
func FormatHTML(list *ShoppingList) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(FormatMarkdown(list)), &buf); err != nil {
		return "", fmt.Errorf("failed to render shopping list: %w", err)
	}
	return buf.String(), nil
}

func listItems(list *ShoppingList) []ShoppingListItem {
	if list == nil {
		return nil
	}
	return list.Items
}

func itemLine(name, amount string) string {
	if amount == "" {
		return name
	}
	return name + " - " + amount
}
