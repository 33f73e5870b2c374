// Package redisstore 以 Redis 保存食譜、餐點與購物清單
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Options 連線設定
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store Redis 儲存
type Store struct {
	client *redis.Client
	now    func() time.Time
}

type storedMeal struct {
	ID          string            `json:"id"`
	RecipeID    string            `json:"recipe_id"`
	PlannedDate string            `json:"planned_date"`
	MealType    shopping.MealType `json:"meal_type"`
	Servings    int               `json:"servings"`
}

// Connect 建立連線並測試
func Connect(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return New(client), nil
}

// New 使用既有的 client
func New(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Close 關閉連線
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping 檢查連線
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func recipeKey(id string) string      { return "recipe:" + id }
func mealsKey(userID string) string   { return "meals:" + userID }
func listKey(userID string) string    { return "shopping:list:" + userID }
func historyKey(userID string) string { return "shopping:history:" + userID }

// dateScore 將 YYYY-MM-DD 轉為可排序的分數 yyyymmdd
func dateScore(date string) (float64, error) {
	t, err := common.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(t.Format("20060102"), 64)
}

// SaveRecipe 新增或覆蓋食譜
func (s *Store) SaveRecipe(ctx context.Context, recipe shopping.Recipe) error {
	if recipe.ID == "" {
		return errors.New("recipe id is required")
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := s.client.Set(ctx, recipeKey(recipe.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// SavePlannedMeal 以日期為分數加入使用者的餐點集合
func (s *Store) SavePlannedMeal(ctx context.Context, userID string, meal shopping.PlannedMeal) error {
	score, err := dateScore(meal.PlannedDate)
	if err != nil {
		return fmt.Errorf("invalid planned date %q: %w", meal.PlannedDate, err)
	}
	if meal.ID == "" {
		meal.ID = common.GenerateUUID()
	}
	data, err := json.Marshal(storedMeal{
		ID:          meal.ID,
		RecipeID:    meal.Recipe.ID,
		PlannedDate: meal.PlannedDate,
		MealType:    meal.MealType,
		Servings:    meal.Servings,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal planned meal: %w", err)
	}
	if err := s.client.ZAdd(ctx, mealsKey(userID), &redis.Z{Score: score, Member: string(data)}).Err(); err != nil {
		return fmt.Errorf("failed to save planned meal: %w", err)
	}
	return nil
}

// GetPlannedMeals 依日期分數範圍讀取，再批次取回食譜
func (s *Store) GetPlannedMeals(ctx context.Context, userID, startDate, endDate string) ([]shopping.PlannedMeal, error) {
	minScore, err := dateScore(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	maxScore, err := dateScore(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	members, err := s.client.ZRangeByScore(ctx, mealsKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatFloat(minScore, 'f', 0, 64),
		Max: strconv.FormatFloat(maxScore, 'f', 0, 64),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query planned meals: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	stored := make([]storedMeal, 0, len(members))
	keys := make([]string, 0, len(members))
	for _, m := range members {
		var sm storedMeal
		if err := json.Unmarshal([]byte(m), &sm); err != nil {
			common.LogWarn("Skipping unreadable planned meal", zap.Error(err))
			continue
		}
		stored = append(stored, sm)
		keys = append(keys, recipeKey(sm.RecipeID))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	meals := make([]shopping.PlannedMeal, 0, len(stored))
	for i, sm := range stored {
		recipe := shopping.Recipe{ID: sm.RecipeID}
		if raw, ok := values[i].(string); ok {
			if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
				common.LogWarn("Unreadable recipe record", zap.Error(err))
			}
		}
		meals = append(meals, shopping.PlannedMeal{
			ID:          sm.ID,
			Recipe:      recipe,
			PlannedDate: sm.PlannedDate,
			MealType:    sm.MealType,
			Servings:    sm.Servings,
		})
	}
	return meals, nil
}

// GetActiveShoppingList 讀取目前清單，不存在時以 SETNX 建立
func (s *Store) GetActiveShoppingList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	list, err := s.loadList(ctx, userID)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	now := s.now().UTC()
	fresh := &shopping.ShoppingList{
		ID:        common.GenerateUUID(),
		UserID:    userID,
		Items:     []shopping.ShoppingListItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	created, err := s.client.SetNX(ctx, listKey(userID), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	if created {
		return fresh, nil
	}
	// 其他請求已先建立
	return s.loadList(ctx, userID)
}

// ReplaceShoppingListItems 覆蓋目前清單的項目
func (s *Store) ReplaceShoppingListItems(ctx context.Context, userID string, items []shopping.ShoppingListItem) error {
	list, err := s.GetActiveShoppingList(ctx, userID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []shopping.ShoppingListItem{}
	}
	list.Items = items
	list.UpdatedAt = s.now().UTC()
	return s.saveList(ctx, listKey(userID), list)
}

// MarkShoppingListCompleted 將目前清單移到歷史紀錄
func (s *Store) MarkShoppingListCompleted(ctx context.Context, userID string) error {
	list, err := s.loadList(ctx, userID)
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	list.IsCompleted = true
	list.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, historyKey(userID), data)
		pipe.Del(ctx, listKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete shopping list: %w", err)
	}
	return nil
}

func (s *Store) loadList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	data, err := s.client.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	var list shopping.ShoppingList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list: %w", err)
	}
	if list.Items == nil {
		list.Items = []shopping.ShoppingListItem{}
	}
	return &list, nil
}

func (s *Store) saveList(ctx context.Context, key string, list *shopping.ShoppingList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}
