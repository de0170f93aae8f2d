package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogd/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorStatus(t *testing.T) {
	tests := []struct {
		kind    error
		status  int
		message string
	}{
		{services.ErrValidation, http.StatusBadRequest, "bad"},
		{services.ErrConflict, http.StatusBadRequest, "bad"},
		{services.ErrInvalidID, http.StatusBadRequest, "bad"},
		{services.ErrUpdateFailed, http.StatusBadRequest, "bad"},
		{services.ErrAuth, http.StatusUnauthorized, "bad"},
		{services.ErrNotFound, http.StatusNotFound, "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, "Test", &services.Error{Kind: tt.kind, Message: tt.message})

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestRespondErrorHidesUnexpectedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, "Test", fmt.Errorf("wrapped: %w", errors.New("connection reset")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}
