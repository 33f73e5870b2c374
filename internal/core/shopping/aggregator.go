package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-planner/internal/core/ingredient"
	"recipe-planner/internal/pkg/common"
	"recipe-planner/internal/pkg/metrics"

	"go.uber.org/zap"
)

const multipleRecipesNote = "(multiple recipes)"

// Generator 從餐點安排產生購物清單
type Generator struct {
	meals MealPlanReader
	now   func() time.Time
	newID func() string
}

// NewGenerator 創建新的購物清單產生器
func NewGenerator(meals MealPlanReader) *Generator {
	return &Generator{
		meals: meals,
		now:   time.Now,
		newID: common.GenerateUUID,
	}
}

// ValidateDateRange 檢查 YYYY-MM-DD 日期區間
func ValidateDateRange(start, end string) error {
	s, err := common.ParseDate(start)
	if err != nil {
		return fmt.Errorf("%w: start date %q: %v", ErrInvalidDateRange, start, err)
	}
	e, err := common.ParseDate(end)
	if err != nil {
		return fmt.Errorf("%w: end date %q: %v", ErrInvalidDateRange, end, err)
	}
	if e.Before(s) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDateRange, end, start)
	}
	return nil
}

// mergedItem 合併中的項目，保留各來源數量以便組合顯示文字
type mergedItem struct {
	item    ShoppingListItem
	amounts []string
	titles  map[string]bool
}

// Generate 讀取區間內的餐點，正規化各食譜食材，依小寫名稱合併並分類。
// 格式錯誤的食材只會被略過並記錄診斷；只有完全沒有可用食材或儲存連線失敗才會回傳錯誤。
func (g *Generator) Generate(ctx context.Context, userID, start, end string) (*GenerateResult, error) {
	if err := ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	began := time.Now()
	meals, err := g.meals.GetPlannedMeals(ctx, userID, start, end)
	common.LogStoreCall("get_planned_meals", userID, time.Since(began), err)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.ResultStoreError).Inc()
		return nil, storeError("get planned meals", err)
	}
	if len(meals) == 0 {
		metrics.GenerationsTotal.WithLabelValues(metrics.ResultNoMeals).Inc()
		return nil, ErrNoPlannedMeals
	}

	var (
		order       []string
		merged      = make(map[string]*mergedItem)
		diagnostics []ingredient.Diagnostic
		noIngreds   []string
		invalid     []InvalidRecipe
		seenEmpty   = make(map[string]bool)
		seenInvalid = make(map[string]bool)
		addedAt     = g.now().UTC()
	)

	for _, meal := range meals {
		title := recipeTitle(meal.Recipe)
		servings := meal.Servings
		if servings < 1 {
			servings = 1
		}

		res := ingredient.Normalize(meal.Recipe.Ingredients, title)
		diagnostics = append(diagnostics, res.Diagnostics...)
		metrics.IngredientsDropped.Add(float64(res.InvalidCount))

		invalidCount := res.InvalidCount
		if invalidCount == 0 && corruptField(res) {
			// 整個欄位無法解讀，視為一筆損壞資料
			invalidCount = 1
		}
		if invalidCount > 0 && !seenInvalid[title] {
			seenInvalid[title] = true
			invalid = append(invalid, InvalidRecipe{
				Title:        title,
				ValidCount:   len(res.Ingredients),
				InvalidCount: invalidCount,
			})
		}
		if res.Empty() {
			if invalidCount == 0 && !seenEmpty[title] {
				seenEmpty[title] = true
				noIngreds = append(noIngreds, title)
			}
			continue
		}

		for _, ing := range res.Ingredients {
			key := strings.ToLower(ing.Name)
			amount := annotateServings(ing.Amount, servings)

			existing, ok := merged[key]
			if !ok {
				merged[key] = &mergedItem{
					item: ShoppingListItem{
						ID:          g.newID(),
						Name:        ing.Name,
						Amount:      amount,
						Category:    upstreamCategory(ing.Category),
						RecipeTitle: title,
						Servings:    servings,
						AddedAt:     addedAt,
					},
					amounts: []string{amount},
					titles:  map[string]bool{title: true},
				}
				order = append(order, key)
				continue
			}

			existing.amounts = append(existing.amounts, amount)
			existing.item.Amount = strings.Join(existing.amounts, " + ") + " " + multipleRecipesNote
			existing.item.Servings += servings
			if !existing.titles[title] {
				existing.titles[title] = true
				existing.item.RecipeTitle += ", " + title
			}
			if existing.item.Category == CategoryOther {
				existing.item.Category = upstreamCategory(ing.Category)
			}
		}
	}

	if len(order) == 0 {
		metrics.GenerationsTotal.WithLabelValues(metrics.ResultNoIngredients).Inc()
		common.LogWarn("No usable ingredients in planned meals",
			zap.String("user_id", userID),
			zap.Int("meal_count", len(meals)),
			zap.Strings("recipes_without_ingredients", noIngreds),
			zap.Int("recipes_with_invalid_ingredients", len(invalid)),
		)
		return nil, &NoUsableIngredientsError{
			RecipesWithoutIngredients:     noIngreds,
			RecipesWithInvalidIngredients: invalid,
		}
	}

	items := make([]ShoppingListItem, 0, len(order))
	for _, key := range order {
		item := merged[key].item
		item.Category = CategoryOf(item)
		items = append(items, item)
	}

	var warnings []string
	if n := len(noIngreds); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d %s no ingredients defined: %s",
			n, pluralRecipes(n), strings.Join(noIngreds, ", ")))
	}
	if n := len(invalid); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d %s invalid ingredient entries that were skipped",
			n, pluralRecipes(n)))
	}

	for _, d := range diagnostics {
		common.LogDebug("Ingredient diagnostic",
			zap.String("user_id", userID),
			zap.String("recipe", d.Context),
			zap.String("kind", string(d.Kind)),
			zap.Int("index", d.Index),
			zap.String("message", d.Message),
		)
	}
	metrics.GenerationsTotal.WithLabelValues(metrics.ResultOK).Inc()

	return &GenerateResult{
		Items:       items,
		Warnings:    warnings,
		Diagnostics: diagnostics,
		MealCount:   len(meals),
	}, nil
}

func recipeTitle(r Recipe) string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if r.ID != "" {
		return "Recipe " + r.ID
	}
	return "Untitled recipe"
}

func corruptField(res ingredient.Result) bool {
	for _, d := range res.Diagnostics {
		if d.Kind == ingredient.DiagInvalidJSON || d.Kind == ingredient.DiagNotArray {
			return true
		}
	}
	return false
}

func annotateServings(amount string, servings int) string {
	if servings > 1 {
		return fmt.Sprintf("%s (%d servings)", amount, servings)
	}
	return amount
}

func upstreamCategory(s string) Category {
	if cat, ok := ParseCategory(s); ok {
		return cat
	}
	return CategoryOther
}

func pluralRecipes(n int) string {
	if n == 1 {
		return "recipe has"
	}
	return "recipes have"
}
