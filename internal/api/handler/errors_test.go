package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("%w: topic is required", domain.ErrInvalidRequest), http.StatusBadRequest, "invalid request: topic is required"},
		{fmt.Errorf("%w: token expired", domain.ErrInvalidCredentials), http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()},
		{domain.ErrQuotaExceeded, http.StatusPaymentRequired, domain.ErrQuotaExceeded.Error()},
		{domain.ErrNotFound, http.StatusNotFound, domain.ErrNotFound.Error()},
		{domain.ErrEmailTaken, http.StatusConflict, domain.ErrEmailTaken.Error()},
		{domain.ErrUploadFailure, http.StatusUnprocessableEntity, domain.ErrUploadFailure.Error()},
		{domain.ErrInferenceFailure, http.StatusBadGateway, domain.ErrInferenceFailure.Error()},
		{fmt.Errorf("%w: dial tcp 10.0.0.3:5432", domain.ErrPersistenceFailure), http.StatusServiceUnavailable, domain.ErrPersistenceFailure.Error()},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var env response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func TestBind(t *testing.T) {
	type input struct {
		Credits int `json:"credits" validate:"required,min=1"`
	}

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

		var in input
		assert.False(t, bind(rec, req, &in))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("field errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))

		var in input
		assert.False(t, bind(rec, req, &in))

		var env struct {
			Error map[string]string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "field is required", env.Error["Credits"])
	})

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"credits":10}`))

		var in input
		assert.True(t, bind(rec, req, &in))
		assert.Equal(t, 10, in.Credits)
	})
}
