package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"app error", ErrInsufficientTokens, http.StatusConflict, `"error":"insufficient writing tokens"`},
		{"wrapped app error", fmt.Errorf("submitting: %w", ErrNoGoldenKeys), http.StatusConflict, `"error":"no golden keys available"`},
		{"validation", NewValidationError("text is empty"), http.StatusBadRequest, `"error":"text is empty"`},
		{"not found", NewNotFoundError("profile not found"), http.StatusNotFound, `"error":"profile not found"`},
		{"plain error hides text", errors.New("pq: connection reset"), http.StatusInternalServerError, `"error":"internal server error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "pq:")
		})
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Mode string `json:"mode"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode":"mode_300"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "mode_300", dst.Mode)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode":"mode_300","tokens":99}`))
	assert.Error(t, DecodeJSON(req, &dst))
}

func TestJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"tokens_short": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"tokens_short":1}}`, rec.Body.String())
}
