package shopping

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable 無法連線到外部儲存
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoPlannedMeals 日期區間內沒有任何餐點安排
	ErrNoPlannedMeals = errors.New("no meals planned in the selected date range; plan some meals first, then generate your shopping list")

	// ErrInvalidDateRange 日期格式錯誤或起日晚於迄日
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrItemNotFound 清單中找不到指定項目
	ErrItemNotFound = errors.New("shopping list item not found")

	// ErrInvalidItem 自訂項目缺少名稱
	ErrInvalidItem = errors.New("item name is required")
)

// NoUsableIngredientsError 有餐點但所有食譜都沒有可用食材
type NoUsableIngredientsError struct {
	RecipesWithoutIngredients     []string        `json:"recipes_without_ingredients"`
	RecipesWithInvalidIngredients []InvalidRecipe `json:"recipes_with_invalid_ingredients"`
}

func (e *NoUsableIngredientsError) Error() string {
	var parts []string
	if len(e.RecipesWithoutIngredients) > 0 {
		parts = append(parts, fmt.Sprintf("recipes with no ingredients: %s",
			strings.Join(e.RecipesWithoutIngredients, ", ")))
	}
	if len(e.RecipesWithInvalidIngredients) > 0 {
		titles := make([]string, 0, len(e.RecipesWithInvalidIngredients))
		for _, r := range e.RecipesWithInvalidIngredients {
			titles = append(titles, fmt.Sprintf("%s (%d invalid)", r.Title, r.InvalidCount))
		}
		parts = append(parts, fmt.Sprintf("recipes with corrupted ingredient entries: %s",
			strings.Join(titles, ", ")))
	}
	msg := "no usable ingredients found in planned meals"
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg + ". Edit these recipes to add or fix their ingredients, then try again"
}

// storeError 將儲存層的錯誤統一包裝為連線錯誤，已知的領域錯誤保持原樣
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrItemNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
