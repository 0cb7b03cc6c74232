package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrNotFound.WithDetails("user 42")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "user 42", withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrNotFound))
	assert.False(t, errors.Is(withDetails, ErrForbidden))
}

func TestIsAPIError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrForbidden)

	apiErr, ok := IsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("api error keeps its status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		RespondWithError(c, ErrServiceUnavailable.WithDetails(map[string]string{"database": "DOWN"}))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"code":"SERVICE_UNAVAILABLE","message":"The server is currently unable to handle the request.","details":{"database":"DOWN"}}`, rec.Body.String())
	})

	t.Run("plain error becomes an opaque 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		RespondWithError(c, errors.New("dial tcp 10.0.0.1:8080: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondOK(c, "Ready.", map[string]string{"database": "UP"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","message":"Ready.","data":{"database":"UP"}}`, rec.Body.String())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)

	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 0, Offset(0, 20))
}
