package api

import (
	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Error codes.
const (
	CodeUnknownTable    = "UNKNOWN_TABLE"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidDecision = "INVALID_DECISION"
	CodeFileRejected    = "FILE_REJECTED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, APIError{Error: message, Code: code, Details: details})
}
