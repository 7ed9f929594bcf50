package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRespondWithSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithSuccess(rec, http.StatusCreated, "created", map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope BaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "created", envelope.Message)
	assert.Empty(t, envelope.Errors)
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusBadRequest, "conflict", "email address is already registered")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope BaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Object)
	assert.Equal(t, []string{"email address is already registered"}, envelope.Errors)
}

func TestProperty_PaginationMath(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("totalPages covers totalSize without overshooting", prop.ForAll(
		func(pageSize int, totalSize int) bool {
			rec := httptest.NewRecorder()
			RespondWithPage(rec, http.StatusOK, "ok", nil, 1, pageSize, totalSize)

			var envelope PaginatedResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				return false
			}

			if envelope.TotalPages*pageSize < totalSize {
				return false
			}
			if totalSize > 0 && (envelope.TotalPages-1)*pageSize >= totalSize {
				return false
			}
			return envelope.TotalSize == totalSize && envelope.PageSize == pageSize
		},
		gen.IntRange(1, 100),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := ErrorHandlingMiddleware(zap.NewNop())(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope BaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	// The panic detail never reaches the client
	assert.NotContains(t, rec.Body.String(), "boom")
}
