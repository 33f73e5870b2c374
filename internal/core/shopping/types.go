package shopping

import (
	"time"

	"recipe-planner/internal/core/ingredient"
)

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Valid 是否為已知餐別
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Recipe 外部食譜記錄（唯讀）。Ingredients 保留原始格式，交由 ingredient.Normalize 處理
type Recipe struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	Title       string `json:"title"`
	Ingredients any    `json:"ingredients"`
	Servings    int    `json:"servings"`
}

// PlannedMeal 某日某餐安排的食譜
type PlannedMeal struct {
	ID          string   `json:"id"`
	Recipe      Recipe   `json:"recipe"`
	PlannedDate string   `json:"planned_date"`
	MealType    MealType `json:"meal_type"`
	Servings    int      `json:"servings"`
}

// ShoppingListItem 購物清單的一行
type ShoppingListItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Amount      string    `json:"amount"`
	Checked     bool      `json:"checked"`
	Category    Category  `json:"category"`
	RecipeTitle string    `json:"recipe_title"`
	Servings    int       `json:"servings"`
	Notes       string    `json:"notes"`
	CustomItem  bool      `json:"custom_item"`
	AddedAt     time.Time `json:"added_at"`
}

// ShoppingList 使用者的購物清單
type ShoppingList struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Items       []ShoppingListItem `json:"items"`
	IsCompleted bool               `json:"is_completed"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// InvalidRecipe 含有損壞食材項目的食譜
type InvalidRecipe struct {
	Title        string `json:"title"`
	ValidCount   int    `json:"valid_count"`
	InvalidCount int    `json:"invalid_count"`
}

// GenerateResult 產生購物清單的結果
type GenerateResult struct {
	Items       []ShoppingListItem      `json:"items"`
	Warnings    []string                `json:"warnings,omitempty"`
	Diagnostics []ingredient.Diagnostic `json:"diagnostics,omitempty"`
	MealCount   int                     `json:"meal_count"`
}
