package shopping_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) GetPlannedMeals(context.Context, string, string, string) ([]shopping.PlannedMeal, error) {
	return nil, f.err
}

func (f failingStore) ReplaceShoppingListItems(context.Context, string, []shopping.ShoppingListItem) error {
	return f.err
}

func seed(t *testing.T, s *memory.Store, userID string, meals ...shopping.PlannedMeal) {
	t.Helper()
	ctx := context.Background()
	for _, m := range meals {
		require.NoError(t, s.SaveRecipe(ctx, m.Recipe))
		require.NoError(t, s.SavePlannedMeal(ctx, userID, shopping.PlannedMeal{
			Recipe:      shopping.Recipe{ID: m.Recipe.ID},
			PlannedDate: m.PlannedDate,
			MealType:    m.MealType,
			Servings:    m.Servings,
		}))
	}
}

func meal(id, title, date string, servings int, ingredients any) shopping.PlannedMeal {
	return shopping.PlannedMeal{
		Recipe:      shopping.Recipe{ID: id, Title: title, Ingredients: ingredients, Servings: 2},
		PlannedDate: date,
		MealType:    shopping.MealDinner,
		Servings:    servings,
	}
}

func findItem(items []shopping.ShoppingListItem, name string) (shopping.ShoppingListItem, bool) {
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return shopping.ShoppingListItem{}, false
}

func TestGenerateMergesSameIngredientAcrossRecipes(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1",
		meal("r1", "Tomato Soup", "2024-03-04", 1, []string{"1 tsp Salt", "2 tomatoes"}),
		meal("r2", "Roast Chicken", "2024-03-05", 1, `["1 tbsp salt", "1 whole chicken"]`),
	)

	res, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2, res.MealCount)
	assert.Empty(t, res.Warnings)

	var salts int
	for _, item := range res.Items {
		if strings.ToLower(item.Name) == "salt" {
			salts++
		}
	}
	assert.Equal(t, 1, salts)

	salt, ok := findItem(res.Items, "salt")
	require.True(t, ok)
	assert.Equal(t, "1 tsp + 1 tbsp (multiple recipes)", salt.Amount)
	assert.Contains(t, salt.RecipeTitle, "Tomato Soup")
	assert.Contains(t, salt.RecipeTitle, "Roast Chicken")
	assert.Equal(t, shopping.CategorySpices, salt.Category)
	assert.Equal(t, 2, salt.Servings)

	chicken, ok := findItem(res.Items, "chicken")
	require.True(t, ok)
	assert.Equal(t, shopping.CategoryMeat, chicken.Category)
	assert.Equal(t, "Roast Chicken", chicken.RecipeTitle)
	assert.Len(t, res.Items, 3)
}

func TestGenerateSameRecipeTwiceKeepsSingleTitle(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1",
		meal("r1", "Oatmeal", "2024-03-04", 1, []string{"1 cup oats"}),
		meal("r1", "Oatmeal", "2024-03-05", 1, []string{"1 cup oats"}),
	)

	res, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-05")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Oatmeal", res.Items[0].RecipeTitle)
	assert.Equal(t, "1 cup + 1 cup (multiple recipes)", res.Items[0].Amount)
}

func TestGenerateAnnotatesServings(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1", meal("r1", "Pasta", "2024-03-04", 3, []string{"200 g spaghetti"}))

	res, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-04")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "200 g (3 servings)", res.Items[0].Amount)
	assert.Equal(t, 3, res.Items[0].Servings)
	assert.Equal(t, shopping.CategoryPantry, res.Items[0].Category)
	assert.NotEmpty(t, res.Items[0].ID)
	assert.False(t, res.Items[0].AddedAt.IsZero())
}

func TestGenerateKeepsKnownUpstreamCategory(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1", meal("r1", "Salad", "2024-03-04", 1, []map[string]any{
		{"name": "Croutons", "amount": "1 cup", "category": "pantry"},
		{"name": "Mystery dressing", "amount": "2 tbsp", "category": "Condiments"},
	}))

	res, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-04")
	require.NoError(t, err)

	croutons, ok := findItem(res.Items, "croutons")
	require.True(t, ok)
	assert.Equal(t, shopping.CategoryPantry, croutons.Category)

	dressing, ok := findItem(res.Items, "mystery dressing")
	require.True(t, ok)
	assert.Equal(t, shopping.CategoryOther, dressing.Category)
}

func TestGenerateNoMeals(t *testing.T) {
	_, err := shopping.NewGenerator(memory.New()).Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	assert.ErrorIs(t, err, shopping.ErrNoPlannedMeals)

	var nue *shopping.NoUsableIngredientsError
	assert.False(t, errors.As(err, &nue))
}

func TestGenerateNoUsableIngredients(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1",
		meal("r1", "Empty Bowl", "2024-03-04", 1, []string{}),
		meal("r2", "Air Sandwich", "2024-03-05", 1, "[]"),
	)

	_, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shopping.ErrNoPlannedMeals)

	var nue *shopping.NoUsableIngredientsError
	require.True(t, errors.As(err, &nue))
	assert.ElementsMatch(t, []string{"Empty Bowl", "Air Sandwich"}, nue.RecipesWithoutIngredients)
	assert.Empty(t, nue.RecipesWithInvalidIngredients)
	assert.Contains(t, err.Error(), "recipes with no ingredients")
}

func TestGenerateCorruptedIngredientsOnly(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1",
		meal("r1", "Broken", "2024-03-04", 1, []any{map[string]any{"name": "flour"}, 42}),
		meal("r2", "Garbage", "2024-03-05", 1, "not json"),
	)

	_, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	var nue *shopping.NoUsableIngredientsError
	require.True(t, errors.As(err, &nue))
	assert.Empty(t, nue.RecipesWithoutIngredients)
	require.Len(t, nue.RecipesWithInvalidIngredients, 2)
	assert.Equal(t, shopping.InvalidRecipe{Title: "Broken", ValidCount: 0, InvalidCount: 2}, nue.RecipesWithInvalidIngredients[0])
	assert.Contains(t, err.Error(), "corrupted ingredient entries")
}

func TestGeneratePartialProblemsBecomeWarnings(t *testing.T) {
	store := memory.New()
	seed(t, store, "u1",
		meal("r1", "Good", "2024-03-04", 1, []any{"2 eggs", map[string]any{"amount": "1 cup"}}),
		meal("r2", "Empty", "2024-03-05", 1, nil),
	)

	res, err := shopping.NewGenerator(store).Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, shopping.CategoryDairy, res.Items[0].Category)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "1 recipe has no ingredients defined: Empty", res.Warnings[0])
	assert.Contains(t, res.Warnings[1], "invalid ingredient entries")
	assert.NotEmpty(t, res.Diagnostics)
}

func TestGenerateInvalidDateRange(t *testing.T) {
	gen := shopping.NewGenerator(memory.New())
	cases := []struct{ start, end string }{
		{"2024-03-10", "2024-03-04"},
		{"03/04/2024", "2024-03-10"},
		{"2024-03-04", ""},
	}
	for _, tc := range cases {
		_, err := gen.Generate(context.Background(), "u1", tc.start, tc.end)
		assert.ErrorIs(t, err, shopping.ErrInvalidDateRange, "%s..%s", tc.start, tc.end)
	}
}

func TestGenerateStoreUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	gen := shopping.NewGenerator(failingStore{Store: memory.New(), err: cause})

	_, err := gen.Generate(context.Background(), "u1", "2024-03-04", "2024-03-10")
	assert.ErrorIs(t, err, shopping.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}
