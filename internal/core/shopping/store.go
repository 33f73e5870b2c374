package shopping

import "context"

// MealPlanReader 讀取日期區間內（含兩端）的餐點安排，日期格式 YYYY-MM-DD
type MealPlanReader interface {
	GetPlannedMeals(ctx context.Context, userID, startDate, endDate string) ([]PlannedMeal, error)
}

// ListStore 購物清單持久化。GetActiveShoppingList 在沒有未完成清單時會建立一份
type ListStore interface {
	GetActiveShoppingList(ctx context.Context, userID string) (*ShoppingList, error)
	ReplaceShoppingListItems(ctx context.Context, userID string, items []ShoppingListItem) error
	MarkShoppingListCompleted(ctx context.Context, userID string) error
}

// Store 外部儲存
type Store interface {
	MealPlanReader
	ListStore
}

// Seeder 由應用自行管理資料的儲存（memory、SQL、Redis）額外提供的寫入能力
type Seeder interface {
	SaveRecipe(ctx context.Context, recipe Recipe) error
	SavePlannedMeal(ctx context.Context, userID string, meal PlannedMeal) error
}

// Pinger 可檢查連線狀態的儲存
type Pinger interface {
	Ping(ctx context.Context) error
}
