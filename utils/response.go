package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the wire shape shared by the participant app and the review
// console. Code 0 means success; non-zero codes identify the exact failure
// so clients can branch without parsing messages.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes an envelope with the given HTTP status.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, Envelope{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success wraps data in a code-0 envelope with HTTP 200.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error writes a failure envelope without a payload.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
