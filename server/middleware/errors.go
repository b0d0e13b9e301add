package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "farmalytics/server/errors"
)

// ErrorResponse is the JSON body every failed request gets.
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// AbortWithError logs err, maps it to an HTTP status and writes the JSON
// error body. AppError values keep their status and user message; anything
// else answers 500 with a generic message.
func AbortWithError(c *gin.Context, err error) {
	reqID := GetRequestID(c)

	statusCode := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.UserMessage()
		slog.Error("request failed",
			"error", appErr.Unwrap(),
			"user_message", message,
			"context", appErr.Context,
			"status_code", statusCode,
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	} else {
		slog.Error("request failed",
			"error", err,
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
