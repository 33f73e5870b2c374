package memory

import (
	"context"
	"testing"

	"recipe-planner/internal/core/shopping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlannedMealsInclusiveRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveRecipe(ctx, shopping.Recipe{ID: "r1", Title: "Pancakes", Ingredients: []string{"1 cup flour"}}))

	for _, date := range []string{"2024-01-01", "2024-01-03", "2024-01-07", "2024-01-08"} {
		require.NoError(t, s.SavePlannedMeal(ctx, "u1", shopping.PlannedMeal{
			Recipe:      shopping.Recipe{ID: "r1"},
			PlannedDate: date,
			Servings:    1,
		}))
	}
	require.NoError(t, s.SavePlannedMeal(ctx, "u2", shopping.PlannedMeal{
		Recipe: shopping.Recipe{ID: "r1"}, PlannedDate: "2024-01-03",
	}))

	meals, err := s.GetPlannedMeals(ctx, "u1", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, "2024-01-01", meals[0].PlannedDate)
	assert.Equal(t, "2024-01-07", meals[2].PlannedDate)
	assert.Equal(t, "Pancakes", meals[0].Recipe.Title)
	assert.NotEmpty(t, meals[0].ID)
}

func TestSaveRecipeRequiresID(t *testing.T) {
	err := New().SaveRecipe(context.Background(), shopping.Recipe{Title: "No ID"})
	assert.ErrorIs(t, err, ErrMissingRecipeID)
}

func TestActiveListLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.GetActiveShoppingList(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Empty(t, first.Items)

	again, err := s.GetActiveShoppingList(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.NoError(t, s.ReplaceShoppingListItems(ctx, "u1", []shopping.ShoppingListItem{{ID: "i1", Name: "milk"}}))
	got, err := s.GetActiveShoppingList(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	// 回傳的是副本
	got.Items[0].Name = "changed"
	got2, _ := s.GetActiveShoppingList(ctx, "u1")
	assert.Equal(t, "milk", got2.Items[0].Name)

	require.NoError(t, s.MarkShoppingListCompleted(ctx, "u1"))
	next, err := s.GetActiveShoppingList(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Empty(t, next.Items)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().GetPlannedMeals(ctx, "u1", "2024-01-01", "2024-01-02")
	assert.ErrorIs(t, err, context.Canceled)
}
