package common

import (
	"net/http"

	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta list metadata
type Meta struct {
	Total int64  `json:"total"`
	Sort  string `json:"sort,omitempty"`
	Query string `json:"query,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// CreatedResponse returns a 201 response
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Data: data})
}

// AcceptedResponse returns a 202 response for changes queued for review
func AcceptedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Data: data})
}

// MessageResponse returns a 200 response carrying only a message
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse{Data: gin.H{"message": message}})
}

// ErrorResponse returns an error JSON response. err is logged, never sent to the client.
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	if err != nil {
		event := logger.GetLogger().Warn()
		if status >= http.StatusInternalServerError {
			event = logger.GetLogger().Error()
		}
		event.Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Int("status", status).
			Msg(message)
	}

	c.JSON(status, gin.H{
		"error": &ErrorInfo{
			Code:    getErrorCode(status),
			Message: message,
		},
	})
}

// HandleServiceError maps a service error onto its status and client message
func HandleServiceError(c *gin.Context, err error) {
	status := StatusFromError(err)
	var logged error
	if status >= http.StatusInternalServerError {
		logged = err
	}
	ErrorResponse(c, status, ClientMessage(err), logged)
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
