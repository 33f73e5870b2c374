package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipe-planner/internal/api/middleware"
	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/store/memory"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	store := memory.New()
	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth(middleware.AuthOptions{AllowHeader: true}))
	NewHandler(shoppingService.NewListService(store)).Register(api)
	return r, store
}

func plan(t *testing.T, store *memory.Store, userID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveRecipe(ctx, shoppingService.Recipe{
		ID:    "r1",
		Title: "Pancakes",
		Ingredients: []any{
			map[string]any{"name": "Flour", "amount": "2 cups"},
			"1 tsp salt",
		},
		Servings: 2,
	}))
	require.NoError(t, store.SavePlannedMeal(ctx, userID, shoppingService.PlannedMeal{
		Recipe:      shoppingService.Recipe{ID: "r1"},
		PlannedDate: "2024-03-02",
		MealType:    shoppingService.MealBreakfast,
		Servings:    1,
	}))
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) ListResponse {
	t.Helper()
	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.List)
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetEmptyList(t *testing.T) {
	r, _ := setup(t)

	w := call(r, http.MethodGet, "/api/v1/shopping-list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
	assert.Empty(t, decodeList(t, w).Groups)
}

func TestGenerate(t *testing.T) {
	r, store := setup(t)
	plan(t, store, "u1")

	w := call(r, http.MethodPost, "/api/v1/shopping-list/generate", `{"start_date":"2024-03-01","end_date":"2024-03-07"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.MealCount)
	require.Len(t, resp.List.Items, 2)
	assert.Equal(t, "Flour", resp.List.Items[0].Name)
	assert.Equal(t, "2 cups", resp.List.Items[0].Amount)
	assert.Equal(t, "Pancakes", resp.List.Items[0].RecipeTitle)
	assert.NotEmpty(t, resp.Groups)
}

func TestGenerateErrors(t *testing.T) {
	r, store := setup(t)
	plan(t, store, "u1")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing field", `{"start_date":"2024-03-01"}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"bad date", `{"start_date":"03/01/2024","end_date":"2024-03-07"}`, http.StatusBadRequest, common.ErrCodeInvalidDateRange},
		{"reversed range", `{"start_date":"2024-03-07","end_date":"2024-03-01"}`, http.StatusBadRequest, common.ErrCodeInvalidDateRange},
		{"nothing planned", `{"start_date":"2025-01-01","end_date":"2025-01-07"}`, http.StatusNotFound, common.ErrCodeNoPlannedMeals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/api/v1/shopping-list/generate", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestGenerateNoUsableIngredients(t *testing.T) {
	r, store := setup(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRecipe(ctx, shoppingService.Recipe{ID: "r2", Title: "Mystery", Ingredients: "{not json"}))
	require.NoError(t, store.SavePlannedMeal(ctx, "u1", shoppingService.PlannedMeal{
		Recipe: shoppingService.Recipe{ID: "r2"}, PlannedDate: "2024-03-02", MealType: shoppingService.MealDinner,
	}))

	w := call(r, http.MethodPost, "/api/v1/shopping-list/generate", `{"start_date":"2024-03-01","end_date":"2024-03-07"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, common.ErrCodeNoUsableIngredients, resp.Code)
	assert.Contains(t, resp.Message, "Mystery")
}

func TestItemLifecycle(t *testing.T) {
	r, _ := setup(t)

	w := call(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":"Paper towels","notes":"big pack"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	list := decodeList(t, w).List
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, "1", item.Amount)
	assert.True(t, item.CustomItem)
	assert.Equal(t, shoppingService.CategoryOther, item.Category)

	w = call(r, http.MethodPatch, "/api/v1/shopping-list/items/"+item.ID+"/check", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeList(t, w).List.Items[0].Checked)

	w = call(r, http.MethodPut, "/api/v1/shopping-list/items/"+item.ID+"/notes", `{"notes":"two packs"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "two packs", decodeList(t, w).List.Items[0].Notes)

	w = call(r, http.MethodPut, "/api/v1/shopping-list/items/missing/notes", `{"notes":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeItemNotFound, decodeError(t, w).Code)

	w = call(r, http.MethodDelete, "/api/v1/shopping-list/items/"+item.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w).List.Items)

	// 重複刪除不會失敗
	w = call(r, http.MethodDelete, "/api/v1/shopping-list/items/"+item.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddItemRequiresName(t *testing.T) {
	r, _ := setup(t)

	w := call(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAllAndComplete(t *testing.T) {
	r, _ := setup(t)

	w := call(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":"Milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := decodeList(t, w).List.ID

	w = call(r, http.MethodDelete, "/api/v1/shopping-list/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w).List
	assert.Empty(t, list.Items)
	assert.Equal(t, firstID, list.ID)

	w = call(r, http.MethodPost, "/api/v1/shopping-list/complete", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/v1/shopping-list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, firstID, decodeList(t, w).List.ID)
}

func TestExport(t *testing.T) {
	r, _ := setup(t)
	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":"Milk","amount":"1 gallon"}`).Code)

	w := call(r, http.MethodGet, "/api/v1/shopping-list/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "[ ] Milk - 1 gallon")

	w = call(r, http.MethodGet, "/api/v1/shopping-list/export?format=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "# Shopping List")

	w = call(r, http.MethodGet, "/api/v1/shopping-list/export?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Shopping List</h1>")

	w = call(r, http.MethodGet, "/api/v1/shopping-list/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticated(t *testing.T) {
	r, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shopping-list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{shoppingService.ErrInvalidDateRange, http.StatusBadRequest},
		{shoppingService.ErrNoPlannedMeals, http.StatusNotFound},
		{shoppingService.ErrItemNotFound, http.StatusNotFound},
		{shoppingService.ErrInvalidItem, http.StatusBadRequest},
		{shoppingService.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{&shoppingService.NoUsableIngredientsError{}, http.StatusUnprocessableEntity},
		{common.ErrNotImplemented, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, toAPIError(tt.err).Status, tt.err.Error())
	}
}
