// Package parse 提供食材與步驟文字的解析端點，方便前端在儲存食譜前預覽結果。
package parse

import (
	"net/http"

	"recipe-planner/internal/core/ingredient"
	"recipe-planner/internal/core/instruction"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultLabel = "Recipe"

// IngredientsRequest 食材解析請求。lines 為逐行自由文字；
// ingredients 為原始欄位值（JSON 陣列字串或陣列），兩者擇一，lines 優先
type IngredientsRequest struct {
	Lines       []string `json:"lines,omitempty"`
	Ingredients any      `json:"ingredients"`
	Label       string   `json:"label,omitempty"`
}

// InstructionsRequest 步驟解析請求
type InstructionsRequest struct {
	Instructions any `json:"instructions"`
}

// InstructionsResponse 步驟解析響應
type InstructionsResponse struct {
	Instructions []instruction.Instruction `json:"instructions"`
}

// Register 註冊路由
func Register(rg *gin.RouterGroup) {
	group := rg.Group("/parse")
	{
		group.POST("/ingredients", HandleIngredients)
		group.POST("/instructions", HandleInstructions)
	}
}

// HandleIngredients 正規化食材資料並回傳診斷
func HandleIngredients(c *gin.Context) {
	var req IngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid request format", zap.Error(err))
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}
	if req.Label == "" {
		req.Label = defaultLabel
	}

	var raw any = req.Ingredients
	if len(req.Lines) > 0 {
		raw = req.Lines
	}
	result := ingredient.Normalize(raw, req.Label)
	if result.Ingredients == nil {
		result.Ingredients = []ingredient.Ingredient{}
	}

	common.LogDebug("Ingredients parsed",
		zap.String("label", req.Label),
		zap.Int("valid", len(result.Ingredients)),
		zap.Int("invalid", result.InvalidCount),
	)
	c.JSON(http.StatusOK, result)
}

// HandleInstructions 解析料理步驟
func HandleInstructions(c *gin.Context) {
	var req InstructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid request format", zap.Error(err))
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}

	steps := instruction.Normalize(req.Instructions)
	if steps == nil {
		steps = []instruction.Instruction{}
	}
	c.JSON(http.StatusOK, InstructionsResponse{Instructions: steps})
}
