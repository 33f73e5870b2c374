package shopping

import (
	"net/http"

	"recipe-planner/internal/api/middleware"
	"recipe-planner/internal/core/ingredient"
	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 依日期區間產生購物清單
type GenerateRequest struct {
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD（含）
}

// AddItemRequest 新增自訂項目
type AddItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Amount   string `json:"amount,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
}

// UpdateNotesRequest 更新備註
type UpdateNotesRequest struct {
	Notes *string `json:"notes" binding:"required"`
}

// ListResponse 購物清單與分類結果
type ListResponse struct {
	List   *shoppingService.ShoppingList   `json:"list"`
	Groups []shoppingService.CategoryGroup `json:"groups"`
}

// GenerateResponse 產生結果，包含非致命的警告
type GenerateResponse struct {
	ListResponse
	MealCount   int                     `json:"meal_count"`
	Warnings    []string                `json:"warnings,omitempty"`
	Diagnostics []ingredient.Diagnostic `json:"diagnostics,omitempty"`
}

// Handler 購物清單處理程序
type Handler struct {
	service *shoppingService.ListService
}

// NewHandler 創建新的購物清單處理程序
func NewHandler(service *shoppingService.ListService) *Handler {
	return &Handler{service: service}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	group := rg.Group("/shopping-list")
	{
		group.GET("", h.HandleGet)
		group.POST("/generate", h.HandleGenerate)
		group.POST("/items", h.HandleAddItem)
		group.DELETE("/items", h.HandleDeleteAll)
		group.PATCH("/items/:id/check", h.HandleCheck)
		group.PUT("/items/:id/notes", h.HandleUpdateNotes)
		group.DELETE("/items/:id", h.HandleDeleteItem)
		group.POST("/complete", h.HandleComplete)
		group.GET("/export", h.HandleExport)
	}
}

func newListResponse(list *shoppingService.ShoppingList) ListResponse {
	return ListResponse{List: list, Groups: shoppingService.Group(list.Items)}
}

// HandleGet 取得目前的購物清單
func (h *Handler) HandleGet(c *gin.Context) {
	list, err := h.service.Active(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// HandleGenerate 依餐點安排重新產生購物清單
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err))
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}

	userID := middleware.UserID(c)
	common.LogInfo("開始產生購物清單",
		zap.String("user_id", userID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	list, result, err := h.service.Regenerate(c.Request.Context(), userID, req.StartDate, req.EndDate)
	if err != nil {
		respondError(c, "generate", err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		ListResponse: newListResponse(list),
		MealCount:    result.MealCount,
		Warnings:     result.Warnings,
		Diagnostics:  result.Diagnostics,
	})
}

// HandleAddItem 新增自訂項目
func (h *Handler) HandleAddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}

	list, err := h.service.AddCustomItem(c.Request.Context(), middleware.UserID(c), shoppingService.CustomItemInput{
		Name:     req.Name,
		Amount:   req.Amount,
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, "add", err)
		return
	}
	c.JSON(http.StatusCreated, newListResponse(list))
}

// HandleCheck 切換勾選狀態
func (h *Handler) HandleCheck(c *gin.Context) {
	list, err := h.service.Check(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, "check", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// HandleUpdateNotes 更新項目備註
func (h *Handler) HandleUpdateNotes(c *gin.Context) {
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error()))
		return
	}

	list, err := h.service.UpdateNotes(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.Notes)
	if err != nil {
		respondError(c, "update_notes", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// HandleDeleteItem 刪除單一項目
func (h *Handler) HandleDeleteItem(c *gin.Context) {
	list, err := h.service.DeleteItem(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// HandleDeleteAll 清空清單
func (h *Handler) HandleDeleteAll(c *gin.Context) {
	list, err := h.service.DeleteAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, "delete_all", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// HandleComplete 完成目前清單
func (h *Handler) HandleComplete(c *gin.Context) {
	if err := h.service.Complete(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, "complete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// HandleExport 輸出可分享的清單文字
func (h *Handler) HandleExport(c *gin.Context) {
	format, ok := shoppingService.ParseExportFormat(c.Query("format"))
	if !ok {
		common.WriteError(c, common.ErrInvalidRequest.WithDetails("format must be text, markdown or html"))
		return
	}

	list, err := h.service.Active(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, "export", err)
		return
	}

	out, err := shoppingService.Export(list, format)
	if err != nil {
		respondError(c, "export", err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case shoppingService.FormatMD:
		contentType = "text/markdown; charset=utf-8"
	case shoppingService.FormatWeb:
		contentType = "text/html; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}
