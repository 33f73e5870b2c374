// Package sqlstore 以 sqlx 實作儲存，支援 SQLite（modernc.org/sqlite）與 PostgreSQL（lib/pq）
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// 固定寬度，讓字串排序等同時間排序
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		ingredients TEXT,
		servings INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		planned_date TEXT NOT NULL,
		meal_type TEXT NOT NULL DEFAULT '',
		servings INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meal_plans_user_date ON meal_plans (user_id, planned_date)`,
	`CREATE TABLE IF NOT EXISTS shopping_lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		items TEXT NOT NULL DEFAULT '[]',
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shopping_lists_user ON shopping_lists (user_id, is_completed)`,
}

// Store SQL 儲存
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

type mealRow struct {
	ID             string         `db:"id"`
	PlannedDate    string         `db:"planned_date"`
	MealType       string         `db:"meal_type"`
	Servings       int            `db:"servings"`
	RecipeID       string         `db:"recipe_id"`
	RecipeUserID   string         `db:"recipe_user_id"`
	Title          string         `db:"title"`
	Ingredients    sql.NullString `db:"ingredients"`
	RecipeServings int            `db:"recipe_servings"`
}

type listRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	Items       string `db:"items"`
	IsCompleted int    `db:"is_completed"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

// Open 連線並建立資料表。SQLite 的 dsn 為檔案路徑
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite 同時只允許一個寫入者
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close 關閉連線
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 檢查連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveRecipe 新增或更新食譜
func (s *Store) SaveRecipe(ctx context.Context, recipe shopping.Recipe) error {
	if recipe.ID == "" {
		return errors.New("recipe id is required")
	}
	ingredients, err := encodeIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`INSERT INTO recipes (id, user_id, title, ingredients, servings)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			ingredients = excluded.ingredients,
			servings = excluded.servings`)
	if _, err := s.db.ExecContext(ctx, query,
		recipe.ID, recipe.UserID, recipe.Title, ingredients, recipe.Servings,
	); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// SavePlannedMeal 新增餐點安排，meal.Recipe.ID 必須是已存在的食譜
func (s *Store) SavePlannedMeal(ctx context.Context, userID string, meal shopping.PlannedMeal) error {
	if meal.ID == "" {
		meal.ID = common.GenerateUUID()
	}
	query := s.db.Rebind(`INSERT INTO meal_plans (id, user_id, recipe_id, planned_date, meal_type, servings)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		meal.ID, userID, meal.Recipe.ID, meal.PlannedDate, string(meal.MealType), meal.Servings,
	); err != nil {
		return fmt.Errorf("failed to save planned meal: %w", err)
	}
	return nil
}

// GetPlannedMeals 回傳日期區間（含兩端）內的餐點與食譜
func (s *Store) GetPlannedMeals(ctx context.Context, userID, startDate, endDate string) ([]shopping.PlannedMeal, error) {
	query := s.db.Rebind(`SELECT
			m.id, m.planned_date, m.meal_type, m.servings,
			r.id AS recipe_id, r.user_id AS recipe_user_id, r.title, r.ingredients,
			r.servings AS recipe_servings
		FROM meal_plans m
		JOIN recipes r ON r.id = m.recipe_id
		WHERE m.user_id = ? AND m.planned_date >= ? AND m.planned_date <= ?
		ORDER BY m.planned_date, m.id`)

	var rows []mealRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to query planned meals: %w", err)
	}

	meals := make([]shopping.PlannedMeal, 0, len(rows))
	for _, row := range rows {
		var ingredients any
		if row.Ingredients.Valid {
			ingredients = row.Ingredients.String
		}
		meals = append(meals, shopping.PlannedMeal{
			ID:          row.ID,
			PlannedDate: row.PlannedDate,
			MealType:    shopping.MealType(row.MealType),
			Servings:    row.Servings,
			Recipe: shopping.Recipe{
				ID:          row.RecipeID,
				UserID:      row.RecipeUserID,
				Title:       row.Title,
				Ingredients: ingredients,
				Servings:    row.RecipeServings,
			},
		})
	}
	return meals, nil
}

// GetActiveShoppingList 回傳最新的未完成清單，沒有時建立一份
func (s *Store) GetActiveShoppingList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	row, err := s.activeRow(ctx, userID)
	if err != nil {
		return nil, err
	}
	return row.toList()
}

// ReplaceShoppingListItems 覆蓋目前清單的項目
func (s *Store) ReplaceShoppingListItems(ctx context.Context, userID string, items []shopping.ShoppingListItem) error {
	row, err := s.activeRow(ctx, userID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []shopping.ShoppingListItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := s.db.Rebind(`UPDATE shopping_lists SET items = ?, updated_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, string(data), s.timestamp(), row.ID); err != nil {
		return fmt.Errorf("failed to update shopping list: %w", err)
	}
	return nil
}

// MarkShoppingListCompleted 將使用者所有未完成清單標記為完成
func (s *Store) MarkShoppingListCompleted(ctx context.Context, userID string) error {
	query := s.db.Rebind(`UPDATE shopping_lists SET is_completed = 1, updated_at = ?
		WHERE user_id = ? AND is_completed = 0`)
	if _, err := s.db.ExecContext(ctx, query, s.timestamp(), userID); err != nil {
		return fmt.Errorf("failed to complete shopping list: %w", err)
	}
	return nil
}

func (s *Store) activeRow(ctx context.Context, userID string) (*listRow, error) {
	query := s.db.Rebind(`SELECT id, user_id, items, is_completed, created_at, updated_at
		FROM shopping_lists
		WHERE user_id = ? AND is_completed = 0
		ORDER BY created_at DESC
		LIMIT 1`)

	var row listRow
	err := s.db.GetContext(ctx, &row, query, userID)
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get active shopping list: %w", err)
	}

	now := s.timestamp()
	row = listRow{
		ID:        common.GenerateUUID(),
		UserID:    userID,
		Items:     "[]",
		CreatedAt: now,
		UpdatedAt: now,
	}
	insert := s.db.Rebind(`INSERT INTO shopping_lists (id, user_id, items, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, row.ID, row.UserID, row.Items, row.CreatedAt, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return &row, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func (r *listRow) toList() (*shopping.ShoppingList, error) {
	items := []shopping.ShoppingListItem{}
	if strings.TrimSpace(r.Items) != "" {
		if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}
	created, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of list %s: %w", r.ID, err)
	}
	updated, err := time.Parse(timeLayout, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of list %s: %w", r.ID, err)
	}
	return &shopping.ShoppingList{
		ID:          r.ID,
		UserID:      r.UserID,
		Items:       items,
		IsCompleted: r.IsCompleted != 0,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// encodeIngredients 字串原樣保存（可能是舊資料的 JSON 字串），其他型別轉為 JSON
func encodeIngredients(v any) (sql.NullString, error) {
	switch val := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: val, Valid: true}, nil
	case json.RawMessage:
		return sql.NullString{String: string(val), Valid: true}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
