package shopping

import "strings"

// Category 購物分類
type Category string

const (
	CategoryProduce Category = "Produce"
	CategoryDairy   Category = "Dairy"
	CategoryMeat    Category = "Meat & Seafood"
	CategoryPantry  Category = "Pantry"
	CategorySpices  Category = "Spices & Seasonings"
	CategoryDrinks  Category = "Beverages"
	CategoryOther   Category = "Other"
)

// Categories 固定的分類順序，也是比對的優先順序
var Categories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryMeat,
	CategoryPantry,
	CategorySpices,
	CategoryDrinks,
	CategoryOther,
}

// categoryKeywords 各分類的關鍵字（子字串，不分大小寫）。
// 注意避免過短的關鍵字，例如 "pea" 會誤中 "peanut"、"nut" 會誤中 "nutmeg"。
var categoryKeywords = map[Category][]string{
	CategoryProduce: {
		"apple", "banana", "lettuce", "tomato", "onion", "garlic", "potato", "carrot",
		"celery", "spinach", "kale", "arugula", "broccoli", "cauliflower", "cabbage",
		"cucumber", "zucchini", "eggplant", "mushroom", "avocado", "lemon", "lime",
		"orange", "berry", "berries", "grape", "pear", "peach", "mango", "pineapple",
		"melon", "bell pepper", "jalapeno", "cilantro", "parsley", "basil", "mint",
		"ginger", "scallion", "shallot", "leek", "squash", "pumpkin", "peas", "radish", "corn",
		"beet", "asparagus", "green bean", "sprout", "chive", "dill",
	},
	CategoryDairy: {
		"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "egg", "cheddar",
		"mozzarella", "parmesan", "ricotta", "feta", "ghee", "custard",
	},
	CategoryMeat: {
		"chicken", "beef", "pork", "bacon", "sausage", "turkey", "lamb", "steak",
		"fish", "salmon", "tuna", "shrimp", "prawn", "crab", "lobster", "cod",
		"tilapia", "scallop", "mussel", "clam", "anchov", "prosciutto", "salami",
		"pepperoni", "chorizo", "veal", "duck", "mince", "ham",
	},
	CategoryPantry: {
		"flour", "sugar", "rice", "pasta", "spaghetti", "noodle", "bread", "oil",
		"vinegar", "honey", "syrup", "sauce", "broth", "stock", "bean", "lentil",
		"chickpea", "oat", "cereal", "cracker", "nuts", "almond", "walnut", "peanut",
		"cashew", "pecan", "chocolate", "baking soda", "baking powder", "yeast",
		"cornstarch", "cornmeal", "tortilla", "quinoa", "mayonnaise", "mustard", "ketchup", "jam",
	},
	CategorySpices: {
		"salt", "pepper", "cinnamon", "cumin", "paprika", "oregano", "thyme",
		"rosemary", "nutmeg", "clove", "chili powder", "curry", "turmeric", "vanilla",
		"bay leaf", "bay leaves", "cayenne", "coriander", "sage", "seasoning", "spice",
		"cardamom", "peppercorn",
	},
	CategoryDrinks: {
		"water", "juice", "coffee", "tea", "soda", "wine", "beer", "sparkling",
		"lemonade", "kombucha", "champagne",
	},
}

// keywordExclusions 關鍵字出現在這些較長的名稱中時不算命中，例如 "chickpeas" 不是 "peas"
var keywordExclusions = map[string][]string{
	"peas":  {"chickpea"},
	"grape": {"grapeseed"},
	"corn":  {"cornstarch", "cornmeal", "peppercorn", "corned"},
	"ham":   {"champagne", "chamomile", "graham"},
}

func matches(lower, kw string) bool {
	if !strings.Contains(lower, kw) {
		return false
	}
	for _, ex := range keywordExclusions[kw] {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return true
}

// Classify 依固定順序比對關鍵字，第一個命中的分類勝出，完全沒有命中時為 Other
func Classify(name string) Category {
	lower := strings.ToLower(name)
	for _, cat := range Categories {
		for _, kw := range categoryKeywords[cat] {
			if matches(lower, kw) {
				return cat
			}
		}
	}
	return CategoryOther
}

// ParseCategory 將字串轉為已知分類（不分大小寫）
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, cat := range Categories {
		if strings.EqualFold(s, string(cat)) {
			return cat, true
		}
	}
	return "", false
}

// CategoryOf 明確指定且非 Other 的分類優先，否則依名稱判斷
func CategoryOf(item ShoppingListItem) Category {
	if cat, ok := ParseCategory(string(item.Category)); ok && cat != CategoryOther {
		return cat
	}
	return Classify(item.Name)
}

// Categorize 將項目分組，每個項目只會出現在一個分類中
func Categorize(items []ShoppingListItem) map[Category][]ShoppingListItem {
	groups := make(map[Category][]ShoppingListItem)
	for _, item := range items {
		cat := CategoryOf(item)
		groups[cat] = append(groups[cat], item)
	}
	return groups
}

// CategoryGroup 已排序的分類群組
type CategoryGroup struct {
	Category Category           `json:"category"`
	Items    []ShoppingListItem `json:"items"`
}

// Group 依固定分類順序回傳非空群組
func Group(items []ShoppingListItem) []CategoryGroup {
	byCat := Categorize(items)
	groups := make([]CategoryGroup, 0, len(byCat))
	for _, cat := range Categories {
		if list, ok := byCat[cat]; ok {
			groups = append(groups, CategoryGroup{Category: cat, Items: list})
		}
	}
	return groups
}
