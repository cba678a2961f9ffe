package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
)

// Error codes reported in the body, following PostgREST where it has one.
const (
	codeUniqueViolation = dbx.UniqueViolationCode
	codeBadFilter       = "PGRST100"
	codeBadBody         = "PGRST102"
	codeNoRows          = "PGRST116"
	codeBadJWT          = "PGRST301"
	codeNoPrivilege     = "42501"
	codeInternal        = "XX000"
)

// apiError is the PostgREST error body.
type apiError struct {
	Status  int     `json:"-"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details string  `json:"details,omitempty"`
	Hint    *string `json:"hint"`
}

func (e *apiError) Error() string { return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message) }

func badRequest(code, msg string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Message: msg}
}

// toAPIError maps service errors onto status and code.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return &apiError{Status: he.Code, Code: codeBadBody, Message: fmt.Sprint(he.Message)}
	}

	switch {
	case errors.Is(err, common.ErrDuplicateKey):
		return &apiError{
			Status:  http.StatusConflict,
			Code:    codeUniqueViolation,
			Message: "duplicate key value violates unique constraint",
		}
	case errors.Is(err, common.ErrorNotFound):
		return &apiError{Status: http.StatusNotFound, Code: codeNoRows, Message: "not found"}
	case errors.Is(err, common.ErrInvalidToken):
		return &apiError{Status: http.StatusUnauthorized, Code: codeBadJWT, Message: "Invalid API key"}
	case errors.Is(err, common.ErrorValidation):
		return &apiError{Status: http.StatusBadRequest, Code: codeBadBody, Message: err.Error()}
	default:
		return &apiError{Status: http.StatusInternalServerError, Code: codeInternal, Message: "internal error"}
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(ae.Status)
	} else {
		err = c.JSON(ae.Status, ae)
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", err)
	}
}
