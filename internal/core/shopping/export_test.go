package shopping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportList() *ShoppingList {
	return &ShoppingList{
		ID: "l1",
		Items: []ShoppingListItem{
			{ID: "1", Name: "Coffee", Amount: "1 bag"},
			{ID: "2", Name: "Carrots", Amount: "2", Checked: true},
			{ID: "3", Name: "Salt", Amount: "1 tsp + 1 tbsp (multiple recipes)", Notes: "sea salt"},
		},
	}
}

func TestFormatText(t *testing.T) {
	out := FormatText(exportList())

	assert.True(t, strings.HasPrefix(out, "Shopping List\n"))
	assert.Contains(t, out, "[x] Carrots - 2\n")
	assert.Contains(t, out, "[ ] Salt - 1 tsp + 1 tbsp (multiple recipes) (sea salt)\n")
	assert.Less(t, strings.Index(out, "Produce"), strings.Index(out, "Spices & Seasonings"))
	assert.Less(t, strings.Index(out, "Spices & Seasonings"), strings.Index(out, "Beverages"))
}

func TestFormatMarkdown(t *testing.T) {
	out := FormatMarkdown(exportList())

	assert.Contains(t, out, "# Shopping List\n")
	assert.Contains(t, out, "## Produce\n")
	assert.Contains(t, out, "- [x] Carrots - 2\n")
	assert.Contains(t, out, "- [ ] Coffee - 1 bag\n")
	assert.Contains(t, out, "_(sea salt)_")
}

func TestFormatMarkdownEscapes(t *testing.T) {
	list := &ShoppingList{Items: []ShoppingListItem{{ID: "1", Name: "*bold* milk", Amount: "1"}}}
	assert.Contains(t, FormatMarkdown(list), `\*bold\* milk`)
}

func TestFormatHTML(t *testing.T) {
	out, err := FormatHTML(exportList())
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Shopping List</h1>")
	assert.Contains(t, out, "<h2>Produce</h2>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "Coffee - 1 bag")
}

func TestExportFormats(t *testing.T) {
	for _, in := range []string{"", "text", "TXT", "md", "markdown", "html"} {
		format, ok := ParseExportFormat(in)
		require.True(t, ok, in)
		_, err := Export(exportList(), format)
		assert.NoError(t, err, in)
	}

	_, ok := ParseExportFormat("pdf")
	assert.False(t, ok)

	_, err := Export(exportList(), "pdf")
	assert.Error(t, err)
}

func TestFormatEmptyList(t *testing.T) {
	assert.Equal(t, "Shopping List\n", FormatText(nil))
	assert.Equal(t, "# Shopping List\n", FormatMarkdown(&ShoppingList{}))
}
