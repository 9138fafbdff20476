package handler

import (
	"log/slog"
	"net/http"

	"conectar/internal/delivery/http/middleware"
	"conectar/internal/delivery/http/response"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	uc     usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: logger,
	}
}

// Create handles the user registration request.
func (h *UserHandler) Create(c echo.Context) error {
	var input usecase.CreateUserInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.Create(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "User registered successfully")
}

// FindAll lists users with pagination, filtering and sorting. Admin only.
func (h *UserHandler) FindAll(c echo.Context) error {
	query, err := h.bindListQuery(c)
	if err != nil {
		return err
	}

	output, err := h.uc.FindAll(c.Request().Context(), query)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// FindAllInactive lists users that never logged in or have been idle past
// the inactivity window. Admin only.
func (h *UserHandler) FindAllInactive(c echo.Context) error {
	query, err := h.bindListQuery(c)
	if err != nil {
		return err
	}

	output, err := h.uc.FindAllInactive(c.Request().Context(), query)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// FindOne retrieves a single user by id. Admin only.
func (h *UserHandler) FindOne(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}

	output, err := h.uc.FindOne(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Update modifies a user's name, email or role. Admin only.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}

	var input usecase.UpdateUserInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid update input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.Update(c.Request().Context(), id, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "User updated successfully")
}

// ResetPassword overwrites a user's password without verification. Admin only.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}

	var input usecase.ResetPasswordInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	if err := h.uc.ResetPassword(c.Request().Context(), id, &input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// Remove deletes a user. Admin only.
func (h *UserHandler) Remove(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Remove(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// GetProfile returns the caller's own account.
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	output, err := h.uc.FindOne(c.Request().Context(), identity.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// UpdateProfile modifies the caller's own name or email.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	var input usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.UpdateProfile(c.Request().Context(), identity.ID, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Profile updated successfully")
}

// ChangePassword verifies the caller's current password and stores the new one.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	var input usecase.ChangePasswordInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	if err := h.uc.ChangePassword(c.Request().Context(), identity.ID, &input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed successfully")
}

// bindListQuery binds and validates the listing query parameters. Errors are
// rendered by the central error handler.
func (h *UserHandler) bindListQuery(c echo.Context) (*usecase.FindAllUsersQuery, error) {
	var query usecase.FindAllUsersQuery
	if err := c.Bind(&query); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("invalid list query")
	}
	if err := c.Validate(&query); err != nil {
		return nil, err
	}

	return &query, nil
}

func (h *UserHandler) pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails("invalid user id")
	}

	return id, nil
}
