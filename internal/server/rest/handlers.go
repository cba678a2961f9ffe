package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

type insertUserRequest struct {
	Email         string `json:"email" validate:"required,email,max=320"`
	PasswordHash  string `json:"password_hash" validate:"required"`
	FirstName     string `json:"first_name" validate:"max=100"`
	LastName      string `json:"last_name" validate:"max=100"`
	EmailVerified bool   `json:"email_verified"`
}

type insertSessionRequest struct {
	Token        string    `json:"token" validate:"required,max=128"`
	UserID       string    `json:"user_id" validate:"required"`
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	LastActivity time.Time `json:"last_activity"`
}

type updateSessionRequest struct {
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	LastActivity time.Time `json:"last_activity" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type sendEmailRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"max=100"`
}

// bindValid decodes the body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// rows renders zero or one row as a PostgREST array.
func rows[T any](c echo.Context, row *T, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return c.JSON(http.StatusOK, []T{})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, []T{*row})
}

func (s *Server) root(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, map[string]string{"role": callerRole(c)})
}

func (s *Server) getUsers(c echo.Context) error {
	ctx := c.Request().Context()

	email, ok, err := eqFilter(c, "email")
	if err != nil {
		return err
	}
	if ok {
		u, err := s.tables.GetUserByEmail(ctx, email)
		return rows(c, u, err)
	}

	id, err := requireEq(c, "id")
	if err != nil {
		return err
	}
	u, err := s.tables.GetUserByID(ctx, id)
	return rows(c, u, err)
}

func (s *Server) insertUser(c echo.Context) error {
	var req insertUserRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	// Only trusted callers may create accounts that skip verification.
	if req.EmailVerified && callerRole(c) != auth.RoleService {
		return &apiError{
			Status:  http.StatusForbidden,
			Code:    codeNoPrivilege,
			Message: "permission denied to set email_verified",
		}
	}

	u, err := s.tables.InsertUser(c.Request().Context(), services.NewUser{
		Email:         req.Email,
		PasswordHash:  req.PasswordHash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		EmailVerified: req.EmailVerified,
	})
	if err != nil {
		return err
	}

	if !wantsRepresentation(c) {
		return c.NoContent(http.StatusCreated)
	}
	return c.JSON(http.StatusCreated, []*models.User{u})
}

func (s *Server) getSessions(c echo.Context) error {
	token, err := requireEq(c, "token")
	if err != nil {
		return err
	}
	sess, err := s.tables.GetSession(c.Request().Context(), token)
	return rows(c, sess, err)
}

func (s *Server) insertSession(c echo.Context) error {
	var req insertSessionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess := &models.Session{
		Token:        req.Token,
		UserID:       req.UserID,
		ExpiresAt:    req.ExpiresAt.UTC(),
		LastActivity: req.LastActivity.UTC(),
	}
	if err := s.tables.CreateSession(c.Request().Context(), sess); err != nil {
		return err
	}

	if !wantsRepresentation(c) {
		return c.NoContent(http.StatusCreated)
	}
	return c.JSON(http.StatusCreated, []*models.Session{sess})
}

// updateSession answers 204 even when no row matches the filter.
func (s *Server) updateSession(c echo.Context) error {
	token, err := requireEq(c, "token")
	if err != nil {
		return err
	}
	var req updateSessionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	err = s.tables.ExtendSession(c.Request().Context(), token, req.ExpiresAt.UTC(), req.LastActivity.UTC())
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteSession(c echo.Context) error {
	token, err := requireEq(c, "token")
	if err != nil {
		return err
	}
	if err := s.tables.DeleteSession(c.Request().Context(), token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) verifyUserEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ok, err := s.verifier.VerifyUserEmail(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok)
}

func (s *Server) sendVerificationEmail(c echo.Context) error {
	var req sendEmailRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := s.verifier.SendVerificationEmail(c.Request().Context(), req.Email, req.FirstName); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
