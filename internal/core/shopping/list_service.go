package shopping

import (
	"context"
	"strings"
	"time"

	"recipe-planner/internal/pkg/common"
	"recipe-planner/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ListService 操作使用者目前的購物清單。每個操作都經由 store 讀取一次、寫入一次，本身不保存狀態
type ListService struct {
	store     Store
	generator *Generator
	now       func() time.Time
	newID     func() string
}

// NewListService 創建新的清單服務
func NewListService(store Store) *ListService {
	return &ListService{
		store:     store,
		generator: NewGenerator(store),
		now:       time.Now,
		newID:     common.GenerateUUID,
	}
}

// CustomItemInput 自訂項目的輸入
type CustomItemInput struct {
	Name     string
	Amount   string
	Notes    string
	Category string
}

// Active 取得目前的清單，不存在時由 store 建立
func (s *ListService) Active(ctx context.Context, userID string) (*ShoppingList, error) {
	began := time.Now()
	list, err := s.store.GetActiveShoppingList(ctx, userID)
	common.LogStoreCall("get_active_shopping_list", userID, time.Since(began), err)
	if err != nil {
		return nil, storeError("get active shopping list", err)
	}
	if list.Items == nil {
		list.Items = []ShoppingListItem{}
	}
	return list, nil
}

// Check 切換單一項目的勾選狀態，找不到 id 時不做任何事
func (s *ListService) Check(ctx context.Context, userID, itemID string) (*ShoppingList, error) {
	return s.mutate(ctx, userID, "check", func(items []ShoppingListItem) ([]ShoppingListItem, bool, error) {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Checked = !items[i].Checked
				return items, true, nil
			}
		}
		return items, false, nil
	})
}

// AddCustomItem 新增使用者自訂的項目
func (s *ListService) AddCustomItem(ctx context.Context, userID string, in CustomItemInput) (*ShoppingList, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidItem
	}
	amount := strings.TrimSpace(in.Amount)
	if amount == "" {
		amount = "1"
	}

	item := ShoppingListItem{
		ID:         s.newID(),
		Name:       name,
		Amount:     amount,
		Notes:      strings.TrimSpace(in.Notes),
		CustomItem: true,
		Servings:   1,
		AddedAt:    s.now().UTC(),
	}
	if cat, ok := ParseCategory(in.Category); ok {
		item.Category = cat
	}
	item.Category = CategoryOf(item)

	return s.mutate(ctx, userID, "add", func(items []ShoppingListItem) ([]ShoppingListItem, bool, error) {
		return append(items, item), true, nil
	})
}

// UpdateNotes 只取代 notes 欄位
func (s *ListService) UpdateNotes(ctx context.Context, userID, itemID, notes string) (*ShoppingList, error) {
	return s.mutate(ctx, userID, "update_notes", func(items []ShoppingListItem) ([]ShoppingListItem, bool, error) {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Notes = notes
				return items, true, nil
			}
		}
		return nil, false, ErrItemNotFound
	})
}

// DeleteItem 刪除單一項目，重複刪除不存在的 id 不做任何事
func (s *ListService) DeleteItem(ctx context.Context, userID, itemID string) (*ShoppingList, error) {
	return s.mutate(ctx, userID, "delete", func(items []ShoppingListItem) ([]ShoppingListItem, bool, error) {
		for i := range items {
			if items[i].ID == itemID {
				return append(items[:i], items[i+1:]...), true, nil
			}
		}
		return items, false, nil
	})
}

// DeleteAll 清空項目，清單本身保留
func (s *ListService) DeleteAll(ctx context.Context, userID string) (*ShoppingList, error) {
	return s.mutate(ctx, userID, "delete_all", func([]ShoppingListItem) ([]ShoppingListItem, bool, error) {
		return []ShoppingListItem{}, true, nil
	})
}

// Regenerate 依日期區間重新產生，並覆蓋目前清單的所有項目
func (s *ListService) Regenerate(ctx context.Context, userID, start, end string) (*ShoppingList, *GenerateResult, error) {
	result, err := s.generator.Generate(ctx, userID, start, end)
	if err != nil {
		return nil, nil, err
	}

	list, err := s.mutate(ctx, userID, "regenerate", func([]ShoppingListItem) ([]ShoppingListItem, bool, error) {
		return result.Items, true, nil
	})
	if err != nil {
		return nil, nil, err
	}

	common.LogInfo("購物清單已重新產生",
		zap.String("user_id", userID),
		zap.String("start_date", start),
		zap.String("end_date", end),
		zap.Int("meal_count", result.MealCount),
		zap.Int("item_count", len(result.Items)),
		zap.Int("warning_count", len(result.Warnings)),
	)
	return list, result, nil
}

// Complete 將目前清單標記為完成，下次讀取時會建立新的清單
func (s *ListService) Complete(ctx context.Context, userID string) error {
	began := time.Now()
	err := s.store.MarkShoppingListCompleted(ctx, userID)
	common.LogStoreCall("mark_shopping_list_completed", userID, time.Since(began), err)
	if err != nil {
		return storeError("mark shopping list completed", err)
	}
	metrics.ListMutations.WithLabelValues("complete").Inc()
	return nil
}

// mutate 讀取目前清單、套用修改並寫回。fn 回傳 changed=false 時不寫入
func (s *ListService) mutate(
	ctx context.Context,
	userID, op string,
	fn func([]ShoppingListItem) ([]ShoppingListItem, bool, error),
) (*ShoppingList, error) {
	list, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]ShoppingListItem, len(list.Items))
	copy(items, list.Items)

	next, changed, err := fn(items)
	if err != nil {
		return nil, err
	}
	if !changed {
		return list, nil
	}
	if next == nil {
		next = []ShoppingListItem{}
	}

	began := time.Now()
	err = s.store.ReplaceShoppingListItems(ctx, userID, next)
	common.LogStoreCall("replace_shopping_list_items", userID, time.Since(began), err)
	if err != nil {
		return nil, storeError("replace shopping list items", err)
	}
	metrics.ListMutations.WithLabelValues(op).Inc()

	list.Items = next
	list.UpdatedAt = s.now().UTC()
	return list, nil
}
