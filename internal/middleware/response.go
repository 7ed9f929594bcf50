package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// BaseResponse is the envelope every endpoint answers with.
type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Object  interface{} `json:"object"`
	Errors  []string    `json:"errors"`
}

// PaginatedResponse is the envelope for list endpoints.
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Object     interface{} `json:"object"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	TotalSize  int         `json:"totalSize"`
	TotalPages int         `json:"totalPages"`
	Errors     []string    `json:"errors"`
}

// RespondWithSuccess sends a success envelope
func RespondWithSuccess(w http.ResponseWriter, statusCode int, message string, object interface{}) {
	writeJSON(w, statusCode, BaseResponse{
		Success: true,
		Message: message,
		Object:  object,
		Errors:  nil,
	})
}

// RespondWithError sends an error envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string, errs ...string) {
	writeJSON(w, statusCode, BaseResponse{
		Success: false,
		Message: message,
		Object:  nil,
		Errors:  errs,
	})
}

// RespondWithPage sends a paginated success envelope
func RespondWithPage(w http.ResponseWriter, statusCode int, message string, object interface{}, pageNumber, pageSize, totalSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalSize + pageSize - 1) / pageSize
	}

	writeJSON(w, statusCode, PaginatedResponse{
		Success:    true,
		Message:    message,
		Object:     object,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalSize:  totalSize,
		TotalPages: totalPages,
		Errors:     nil,
	})
}

// RespondWithValidationErrors sends a 422 envelope listing every failed
// field
func RespondWithValidationErrors(w http.ResponseWriter, errs []string) {
	RespondWithError(w, http.StatusUnprocessableEntity, "validation failed", errs...)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// ErrorHandlingMiddleware catches panics, logs the detail server-side,
// and answers with a generic 500 envelope
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
