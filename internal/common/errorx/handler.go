package errorx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorHandler turns handler errors into JSON responses
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError converts any error to APIError and writes it as the response
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := ConvertToAPIError(err).clone()
	apiErr.TraceID = uuid.NewString()
	apiErr.Timestamp = time.Now().UTC().Format(time.RFC3339)

	h.logError(c, apiErr, err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
}

// ConvertToAPIError converts any error to APIError
func ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternalServer.WithDetail("original_error", err.Error())
}

func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("trace_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("category", string(apiErr.Category)),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}

	if originalErr != nil && originalErr.Error() != apiErr.Error() {
		fields = append(fields, zap.Error(originalErr))
	}

	if len(apiErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(apiErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	if apiErr.Severity == SeverityCritical {
		buf := make([]byte, 1024*4)
		n := runtime.Stack(buf, false)
		fields = append(fields, zap.String("stack_trace", string(buf[:n])))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// ErrorMiddleware renders the last error attached with c.Error
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			h.HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware returns a gin middleware for panic recovery
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		h.HandleError(c, &APIError{
			Code:       "E5000",
			Message:    "Server panic occurred",
			Category:   CategoryInternal,
			Severity:   SeverityCritical,
			HTTPStatus: http.StatusInternalServerError,
			Details: map[string]any{
				"panic": fmt.Sprintf("%v", err),
			},
		})
	})
}

// NoRoute answers unknown paths with ErrEndpointNotFound
func (h *ErrorHandler) NoRoute(c *gin.Context) {
	h.HandleError(c, ErrEndpointNotFound.WithDetail("path", c.Request.URL.Path))
}
