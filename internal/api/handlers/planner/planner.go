// Package planner 提供食譜與餐點安排的資料端點。
// 只有由應用自行管理資料的儲存（memory、SQL、Redis）支援寫入。
package planner

import (
	"encoding/json"
	"net/http"
	"strings"

	"recipe-planner/internal/api/middleware"
	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeRequest 新增或覆寫食譜
type RecipeRequest struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title" binding:"required"`
	Ingredients json.RawMessage `json:"ingredients"`
	Servings    int             `json:"servings"`
}

// MealPlanRequest 安排某日某餐
type MealPlanRequest struct {
	RecipeID    string `json:"recipe_id" binding:"required"`
	PlannedDate string `json:"planned_date" binding:"required"`
	MealType    string `json:"meal_type" binding:"required"`
	Servings    int    `json:"servings"`
}

// Handler 餐點安排處理程序
type Handler struct {
	reader shoppingService.MealPlanReader
	seeder shoppingService.Seeder
}

// NewHandler 創建處理程序，seeder 為 nil 時寫入端點回傳 501
func NewHandler(reader shoppingService.MealPlanReader, seeder shoppingService.Seeder) *Handler {
	return &Handler{reader: reader, seeder: seeder}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/recipes", h.HandleSaveRecipe)
	rg.GET("/meal-plans", h.HandleListMeals)
	rg.POST("/meal-plans", h.HandlePlanMeal)
}

// HandleSaveRecipe 儲存食譜，未提供 id 時自動產生
func (h *Handler) HandleSaveRecipe(c *gin.Context) {
	if h.seeder == nil {
		common.WriteError(c, common.ErrNotImplemented)
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}

	recipe := shoppingService.Recipe{
		ID:       strings.TrimSpace(req.ID),
		UserID:   middleware.UserID(c),
		Title:    strings.TrimSpace(req.Title),
		Servings: req.Servings,
	}
	if recipe.ID == "" {
		recipe.ID = common.GenerateUUID()
	}
	// 原樣保存，解析失敗留待產生清單時以診斷回報
	if len(req.Ingredients) > 0 && string(req.Ingredients) != "null" {
		recipe.Ingredients = req.Ingredients
	}

	if err := h.seeder.SaveRecipe(c.Request.Context(), recipe); err != nil {
		common.LogError("Failed to save recipe",
			zap.String("recipe_id", recipe.ID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrStoreUnavailable.WithErr(err))
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// HandlePlanMeal 新增餐點安排
func (h *Handler) HandlePlanMeal(c *gin.Context) {
	if h.seeder == nil {
		common.WriteError(c, common.ErrNotImplemented)
		return
	}

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}
	if _, err := common.ParseDate(req.PlannedDate); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails("planned_date must be YYYY-MM-DD"))
		return
	}
	mealType := shoppingService.MealType(strings.ToLower(req.MealType))
	if !mealType.Valid() {
		common.WriteError(c, common.ErrInvalidRequest.WithDetails("meal_type must be breakfast, lunch, dinner or snack"))
		return
	}
	if req.Servings < 1 {
		req.Servings = 1
	}

	meal := shoppingService.PlannedMeal{
		Recipe:      shoppingService.Recipe{ID: req.RecipeID},
		PlannedDate: req.PlannedDate,
		MealType:    mealType,
		Servings:    req.Servings,
	}
	userID := middleware.UserID(c)
	if err := h.seeder.SavePlannedMeal(c.Request.Context(), userID, meal); err != nil {
		common.LogError("Failed to save planned meal",
			zap.String("user_id", userID),
			zap.String("recipe_id", req.RecipeID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrStoreUnavailable.WithErr(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "planned"})
}

// HandleListMeals 列出日期區間內的餐點安排
func (h *Handler) HandleListMeals(c *gin.Context) {
	start, end := c.Query("start_date"), c.Query("end_date")
	if err := shoppingService.ValidateDateRange(start, end); err != nil {
		common.WriteError(c, common.ErrInvalidDateRange.WithErr(err))
		return
	}

	userID := middleware.UserID(c)
	meals, err := h.reader.GetPlannedMeals(c.Request.Context(), userID, start, end)
	if err != nil {
		common.LogError("Failed to read planned meals",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrStoreUnavailable.WithErr(err))
		return
	}
	if meals == nil {
		meals = []shoppingService.PlannedMeal{}
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}
