package shopping

import (
	"errors"

	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toAPIError 將領域錯誤轉為 API 錯誤
func toAPIError(err error) *common.CustomError {
	var nue *shoppingService.NoUsableIngredientsError
	switch {
	case errors.As(err, &nue):
		ce := common.ErrNoUsableIngredients.WithErr(err).WithDetails(nue)
		ce.Message = nue.Error()
		return ce
	case errors.Is(err, shoppingService.ErrInvalidDateRange):
		return common.ErrInvalidDateRange.WithErr(err)
	case errors.Is(err, shoppingService.ErrNoPlannedMeals):
		return common.ErrNoPlannedMeals.WithErr(err)
	case errors.Is(err, shoppingService.ErrItemNotFound):
		return common.ErrItemNotFound.WithErr(err)
	case errors.Is(err, shoppingService.ErrInvalidItem):
		return common.ErrInvalidRequest.WithErr(err).WithDetails(err.Error())
	case errors.Is(err, shoppingService.ErrStoreUnavailable):
		return common.ErrStoreUnavailable.WithErr(err)
	}
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return common.ErrInternalError.WithErr(err)
}

// respondError 記錄並回傳錯誤
func respondError(c *gin.Context, op string, err error) {
	ce := toAPIError(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= 500 {
		common.LogError("購物清單操作失敗", fields...)
	} else {
		common.LogWarn("購物清單操作被拒絕", fields...)
	}
	_ = c.Error(err)
	common.WriteError(c, ce)
}
