package common

import "net/http"

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
	Details interface{}
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithErr 複製預定義錯誤並附上原始錯誤
func (e *CustomError) WithErr(err error) *CustomError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithDetails 複製預定義錯誤並附上詳細資訊
func (e *CustomError) WithDetails(details interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// Response 轉換為 API 響應
func (e *CustomError) Response() ErrorResponse {
	return ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeTooLarge         = "REQUEST_TOO_LARGE"  // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429
	ErrCodeInvalidDateRange = "INVALID_DATE_RANGE" // 400
	ErrCodeItemNotFound     = "ITEM_NOT_FOUND"     // 404

	// 業務錯誤
	ErrCodeNoPlannedMeals      = "NO_PLANNED_MEALS"      // 404
	ErrCodeNoUsableIngredients = "NO_USABLE_INGREDIENTS" // 422

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeNotImplemented     = "NOT_IMPLEMENTED"     // 501
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"   // 503
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
)

// 預定義錯誤
var (
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest, nil)
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "Missing or invalid user identity", http.StatusUnauthorized, nil)
	ErrRequestTooLarge  = NewError(ErrCodeTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrInvalidDateRange = NewError(ErrCodeInvalidDateRange, "Dates must be YYYY-MM-DD and start must not be after end", http.StatusBadRequest, nil)
	ErrItemNotFound     = NewError(ErrCodeItemNotFound, "Shopping list item not found", http.StatusNotFound, nil)

	ErrNoPlannedMeals      = NewError(ErrCodeNoPlannedMeals, "No meals are planned in this date range. Plan some meals first, then generate your shopping list.", http.StatusNotFound, nil)
	ErrNoUsableIngredients = NewError(ErrCodeNoUsableIngredients, "Your planned recipes have no usable ingredients", http.StatusUnprocessableEntity, nil)

	ErrInternalError    = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrNotImplemented   = NewError(ErrCodeNotImplemented, "Not supported by the configured store", http.StatusNotImplemented, nil)
	ErrStoreUnavailable = NewError(ErrCodeStoreUnavailable, "Cannot connect to the data store. Please try again later.", http.StatusServiceUnavailable, nil)
	ErrNotReady         = NewError(ErrCodeServiceUnavailable, "Service is not ready", http.StatusServiceUnavailable, nil)
)
