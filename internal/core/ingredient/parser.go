package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// unitWords 可辨識的單位（含複數與縮寫），比對不分大小寫
var unitWords = []string{
	"cups", "cup",
	"tablespoons", "tablespoon", "tbsps", "tbsp", "tbs",
	"teaspoons", "teaspoon", "tsps", "tsp",
	"ounces", "ounce", "oz",
	"pounds", "pound", "lbs", "lb",
	"kilograms", "kilogram", "kgs", "kg",
	"grams", "gram", "g",
	"milliliters", "millilitres", "milliliter", "millilitre", "ml",
	"liters", "litres", "liter", "litre", "l",
	"gallons", "gallon", "gal",
	"quarts", "quart", "qt",
	"pints", "pint", "pt",
	"inches", "inch",
	"cloves", "clove",
	"pieces", "piece", "pcs",
	"slices", "slice",
	"whole",
	"large", "medium", "small",
	"pinches", "pinch",
	"dashes", "dash",
	"handfuls", "handful",
	"cans", "can",
	"bunches", "bunch",
	"sticks", "stick",
}

const (
	numberExpr   = `\d+(?:\.\d+)?(?:\s+\d+/\d+)?`
	fractionExpr = `\d+/\d+`
)

var (
	unitExpr = `(` + strings.Join(unitWords, "|") + `)`

	// 依序嘗試，第一個成功者勝出
	numberUnitPattern   = regexp.MustCompile(`(?i)^(` + numberExpr + `)\s*` + unitExpr + `\.?\s+(.+)$`)
	numberNamePattern   = regexp.MustCompile(`^(` + numberExpr + `)\s+(.+)$`)
	fractionUnitPattern = regexp.MustCompile(`(?i)^(` + fractionExpr + `)\s*` + unitExpr + `\.?\s+(.+)$`)
	fractionNamePattern = regexp.MustCompile(`^(` + fractionExpr + `)\s+(.+)$`)
	phrasePattern       = regexp.MustCompile(`(?i)^(to taste|as needed)\s+(.+)$`)
)

// ParseText 將自由文字食材（如 "2 cups flour"）轉為結構化資料。
// 空字串或純空白回傳 false；無法比對任何格式時整段視為名稱，數量為 1。
func ParseText(raw string) (Ingredient, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Ingredient{}, false
	}

	if m := numberUnitPattern.FindStringSubmatch(text); m != nil {
		return withUnit(m[1], m[2], m[3]), true
	}
	if m := numberNamePattern.FindStringSubmatch(text); m != nil {
		return withoutUnit(m[1], m[2]), true
	}
	if m := fractionUnitPattern.FindStringSubmatch(text); m != nil {
		return withUnit(m[1], m[2], m[3]), true
	}
	if m := fractionNamePattern.FindStringSubmatch(text); m != nil {
		return withoutUnit(m[1], m[2]), true
	}
	if m := phrasePattern.FindStringSubmatch(text); m != nil {
		return Ingredient{
			Name:   strings.TrimSpace(m[2]),
			Amount: m[1],
		}, true
	}

	return Ingredient{
		Name:     text,
		Amount:   "1",
		Quantity: 1,
	}, true
}

func withUnit(number, unit, name string) Ingredient {
	number = collapseSpaces(number)
	unit = strings.ToLower(unit)
	return Ingredient{
		Name:     strings.TrimSpace(name),
		Amount:   number + " " + unit,
		Unit:     unit,
		Quantity: ParseQuantity(number),
	}
}

func withoutUnit(number, name string) Ingredient {
	number = collapseSpaces(number)
	return Ingredient{
		Name:     strings.TrimSpace(name),
		Amount:   number,
		Quantity: ParseQuantity(number),
	}
}

// ParseQuantity 解析開頭的數量：整數、小數、分數 "1/2" 與帶分數 "1 1/2"。
// 帶分數會加總成小數；無法解析時回傳 0。
func ParseQuantity(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}

	total := 0.0
	for i, f := range fields {
		// 只接受「整數/小數」後接一個分數
		if i > 1 {
			break
		}
		if strings.Contains(f, "/") {
			v, ok := parseFraction(f)
			if !ok {
				return total
			}
			total += v
			break
		}
		if i == 1 {
			break
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0
		}
		total = v
	}
	return total
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
