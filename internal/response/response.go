package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseWithMessage sends an error response with a custom message
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    status,
	})
}

// BadRequestError sends a 400
func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

// NotFoundError sends a 404
func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusNotFound, message)
}

// InternalServerError sends a 500
func InternalServerError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusInternalServerError, message)
}

// UnauthorizedError sends a 401
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusUnauthorized, message)
}

// ForbiddenError sends a 403
func ForbiddenError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusForbidden, message)
}

// ConflictError sends a 409
func ConflictError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusConflict, message)
}

// TooManyRequestsError sends a 429
func TooManyRequestsError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusTooManyRequests, message)
}

// ServiceUnavailableError sends a 503
func ServiceUnavailableError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusServiceUnavailable, message)
}
