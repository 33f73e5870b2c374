// Package memory 提供程序內的儲存實作，用於本地開發與測試
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"
)

// ErrMissingRecipeID 新增食譜時缺少 id
var ErrMissingRecipeID = errors.New("recipe id is required")

// Store 以 map 保存食譜、餐點與購物清單
type Store struct {
	mu      sync.RWMutex
	recipes map[string]shopping.Recipe
	meals   map[string][]shopping.PlannedMeal
	lists   map[string][]*shopping.ShoppingList
	now     func() time.Time
}

// New 創建空的記憶體儲存
func New() *Store {
	return &Store{
		recipes: make(map[string]shopping.Recipe),
		meals:   make(map[string][]shopping.PlannedMeal),
		lists:   make(map[string][]*shopping.ShoppingList),
		now:     time.Now,
	}
}

// Ping 記憶體儲存永遠可用
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// SaveRecipe 新增或覆蓋食譜
func (s *Store) SaveRecipe(ctx context.Context, recipe shopping.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recipe.ID == "" {
		return ErrMissingRecipeID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[recipe.ID] = recipe
	return nil
}

// SavePlannedMeal 新增餐點安排。meal.Recipe 只有 id 時，讀取時會從已儲存的食譜補齊
func (s *Store) SavePlannedMeal(ctx context.Context, userID string, meal shopping.PlannedMeal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meal.ID == "" {
		meal.ID = common.GenerateUUID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meals[userID] = append(s.meals[userID], meal)
	return nil
}

// GetPlannedMeals 依日期（含兩端）篩選，依日期排序
func (s *Store) GetPlannedMeals(ctx context.Context, userID, startDate, endDate string) ([]shopping.PlannedMeal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []shopping.PlannedMeal
	for _, meal := range s.meals[userID] {
		if meal.PlannedDate < startDate || meal.PlannedDate > endDate {
			continue
		}
		if r, ok := s.recipes[meal.Recipe.ID]; ok {
			meal.Recipe = r
		}
		out = append(out, meal)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlannedDate < out[j].PlannedDate
	})
	return out, nil
}

// GetActiveShoppingList 回傳最新的未完成清單，沒有時建立一份
func (s *Store) GetActiveShoppingList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.activeLocked(userID)), nil
}

// ReplaceShoppingListItems 覆蓋目前清單的項目
func (s *Store) ReplaceShoppingListItems(ctx context.Context, userID string, items []shopping.ShoppingListItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.activeLocked(userID)
	list.Items = cloneItems(items)
	list.UpdatedAt = s.now().UTC()
	return nil
}

// MarkShoppingListCompleted 將目前清單標記為完成，沒有清單時不做任何事
func (s *Store) MarkShoppingListCompleted(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lists := s.lists[userID]
	for i := len(lists) - 1; i >= 0; i-- {
		if !lists[i].IsCompleted {
			lists[i].IsCompleted = true
			lists[i].UpdatedAt = s.now().UTC()
			return nil
		}
	}
	return nil
}

// activeLocked 呼叫端需持有寫鎖
func (s *Store) activeLocked(userID string) *shopping.ShoppingList {
	lists := s.lists[userID]
	for i := len(lists) - 1; i >= 0; i-- {
		if !lists[i].IsCompleted {
			return lists[i]
		}
	}
	now := s.now().UTC()
	list := &shopping.ShoppingList{
		ID:        common.GenerateUUID(),
		UserID:    userID,
		Items:     []shopping.ShoppingListItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.lists[userID] = append(lists, list)
	return list
}

func cloneList(l *shopping.ShoppingList) *shopping.ShoppingList {
	out := *l
	out.Items = cloneItems(l.Items)
	return &out
}

func cloneItems(items []shopping.ShoppingListItem) []shopping.ShoppingListItem {
	out := make([]shopping.ShoppingListItem, len(items))
	copy(out, items)
	return out
}
