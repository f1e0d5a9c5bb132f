package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gaming-cafe-booking/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAppError_UsesKindStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("create: %w", apperror.Conflict("this slot just became unavailable"))

	AppError(rec, err, "Failed to create booking")

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "this slot just became unavailable", body.Message)
	assert.Equal(t, "conflict", body.Error)
}

func TestAppError_HidesUntaggedErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	AppError(rec, errors.New("pq: connection refused"), "Failed to create booking")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create booking", decode(t, rec).Message)
}

func TestSuccess_WritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusCreated, "Booking created successfully", map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, body.Data)
}
