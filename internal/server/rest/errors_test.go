package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate", fmt.Errorf("insert: %w", common.ErrDuplicateKey), http.StatusConflict, codeUniqueViolation},
		{"not found", common.ErrorNotFound, http.StatusNotFound, codeNoRows},
		{"bad key", fmt.Errorf("%w: expired", common.ErrInvalidToken), http.StatusUnauthorized, codeBadJWT},
		{"validation", fmt.Errorf("%w: email is required", common.ErrorValidation), http.StatusBadRequest, codeBadBody},
		{"echo error", echo.NewHTTPError(http.StatusUnsupportedMediaType, "nope"), http.StatusUnsupportedMediaType, codeBadBody},
		{"api error", badRequest(codeBadFilter, "x"), http.StatusBadRequest, codeBadFilter},
		{"other", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestToAPIError_HidesInternalDetails(t *testing.T) {
	got := toAPIError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", got.Message)
}
