// Package supabase 透過 PostgREST（Supabase REST API）存取託管後端的餐點與購物清單
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipe-planner/internal/core/shopping"

	"github.com/go-resty/resty/v2"
)

// Config 連線設定
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store Supabase 儲存
type Store struct {
	client *resty.Client
	now    func() time.Time
}

type mealRow struct {
	ID          string            `json:"id"`
	PlannedDate string            `json:"planned_date"`
	MealType    shopping.MealType `json:"meal_type"`
	Servings    int               `json:"servings"`
	Recipe      *struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		Title       string          `json:"title"`
		Ingredients json.RawMessage `json:"ingredients"`
		Servings    int             `json:"servings"`
	} `json:"recipe"`
}

// New 創建 Supabase 儲存
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("supabase url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase api key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Store{client: client, now: time.Now}, nil
}

// Ping 以最小查詢檢查連線
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"select": "id", "limit": "1"}).
		Get("/shopping_lists")
	return checkResponse("ping", resp, err)
}

// GetPlannedMeals 以內嵌資源一次取回餐點與食譜
func (s *Store) GetPlannedMeals(ctx context.Context, userID, startDate, endDate string) ([]shopping.PlannedMeal, error) {
	params := url.Values{}
	params.Set("select", "id,planned_date,meal_type,servings,recipe:recipes(id,user_id,title,ingredients,servings)")
	params.Set("user_id", "eq."+userID)
	params.Add("planned_date", "gte."+startDate)
	params.Add("planned_date", "lte."+endDate)
	params.Set("order", "planned_date.asc")

	var rows []mealRow
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&rows).
		Get("/meal_plans")
	if err := checkResponse("get planned meals", resp, err); err != nil {
		return nil, err
	}

	meals := make([]shopping.PlannedMeal, 0, len(rows))
	for _, row := range rows {
		meal := shopping.PlannedMeal{
			ID:          row.ID,
			PlannedDate: row.PlannedDate,
			MealType:    row.MealType,
			Servings:    row.Servings,
		}
		if row.Recipe != nil {
			meal.Recipe = shopping.Recipe{
				ID:       row.Recipe.ID,
				UserID:   row.Recipe.UserID,
				Title:    row.Recipe.Title,
				Servings: row.Recipe.Servings,
			}
			if len(row.Recipe.Ingredients) > 0 && string(row.Recipe.Ingredients) != "null" {
				meal.Recipe.Ingredients = row.Recipe.Ingredients
			}
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// GetActiveShoppingList 讀取最新的未完成清單，沒有時建立一份
func (s *Store) GetActiveShoppingList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	var lists []shopping.ShoppingList
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":       "*",
			"user_id":      "eq." + userID,
			"is_completed": "eq.false",
			"order":        "created_at.desc",
			"limit":        "1",
		}).
		SetResult(&lists).
		Get("/shopping_lists")
	if err := checkResponse("get active shopping list", resp, err); err != nil {
		return nil, err
	}
	if len(lists) > 0 {
		return withItems(&lists[0]), nil
	}

	var created []shopping.ShoppingList
	resp, err = s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]interface{}{
			"user_id":      userID,
			"items":        []shopping.ShoppingListItem{},
			"is_completed": false,
		}).
		SetResult(&created).
		Post("/shopping_lists")
	if err := checkResponse("create shopping list", resp, err); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errors.New("create shopping list: empty response")
	}
	return withItems(&created[0]), nil
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

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+list.ID).
		SetBody(map[string]interface{}{
			"items":      items,
			"updated_at": s.now().UTC(),
		}).
		Patch("/shopping_lists")
	return checkResponse("replace shopping list items", resp, err)
}

// MarkShoppingListCompleted 將使用者未完成的清單標記為完成
func (s *Store) MarkShoppingListCompleted(ctx context.Context, userID string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":      "eq." + userID,
			"is_completed": "eq.false",
		}).
		SetBody(map[string]interface{}{
			"is_completed": true,
			"updated_at":   s.now().UTC(),
		}).
		Patch("/shopping_lists")
	return checkResponse("mark shopping list completed", resp, err)
}

func withItems(list *shopping.ShoppingList) *shopping.ShoppingList {
	if list.Items == nil {
		list.Items = []shopping.ShoppingListItem{}
	}
	return list
}

// checkResponse 網路錯誤與 5xx 視為儲存不可用
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, shopping.ErrStoreUnavailable, err)
	}
	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: status %d: %s", op, shopping.ErrStoreUnavailable, status, resp.String())
	case status >= http.StatusBadRequest:
		return fmt.Errorf("%s: backend returned status %d: %s", op, status, resp.String())
	}
	return nil
}
