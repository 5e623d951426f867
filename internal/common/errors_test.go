package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrPageFieldsMissing, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrLastAdmin, http.StatusForbidden},
		{ErrSelfRoleChange, http.StatusForbidden},
		{ErrPageNotFound, http.StatusNotFound},
		{ErrInvitationInvalid, http.StatusNotFound},
		{ErrSlugExists, http.StatusConflict},
		{fmt.Errorf("approve edit 3: %w", ErrEditNotPending), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

func TestClientMessage_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "page not found", ClientMessage(fmt.Errorf("lookup: %w", ErrPageNotFound)))
	assert.Equal(t, "Internal server error", ClientMessage(errors.New("pq: relation does not exist")))
}

func TestHandleServiceError_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	HandleServiceError(c, ErrSettingNotPublic)

	require.Equal(t, http.StatusForbidden, w.Code)
	var body struct {
		Error ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "setting is not public", body.Error.Message)
}
