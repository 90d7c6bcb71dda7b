package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	svc *service.AuthService
	log *logrus.Logger
}

func NewAccountHandler(svc *service.AuthService, log *logrus.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: log}
}

// Register godoc
// @Summary Register a new user
// @Tags account
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration payload"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/account/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "User registered successfully"})
}

// Login godoc
// @Summary Login with username and password
// @Tags account
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/account/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Unreadable body and bad credentials look identical on purpose.
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Username or password is incorrect."})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message:    "Login successful",
		Token:      result.Token,
		Expiration: result.ExpiresAt,
		User:       result.User.Summary(),
	})
}

// ListUsers godoc
// @Summary List all users
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UsersResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/account/users [get]
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("listing users failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "An error occurred while retrieving users"})
		return
	}

	items := make([]model.UserListItem, 0, len(users))
	for _, user := range users {
		items = append(items, user.ListItem())
	}

	c.JSON(http.StatusOK, model.UsersResponse{
		Message: "Users retrieved successfully",
		Count:   len(items),
		Users:   items,
	})
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/account/change-password [put]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), claims.Subject, req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Password changed successfully"})
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateProfileRequest true "Fields to update; blank fields are ignored"
// @Success 200 {object} model.ProfileResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/account/update-profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid token"})
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), claims.Subject, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ProfileResponse{
		Message: "Profile updated successfully.",
		User:    user.Profile(),
	})
}

// Logout godoc
// @Summary Logout
// @Description Tokens are stateless; this clears nothing server-side
// @Description and exists for clients to hook local cleanup on.
// @Tags account
// @Produce json
// @Success 200 {object} model.MessageResponse
// @Router /api/account/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	_ = h.svc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
}

// writeError maps service failures onto the HTTP taxonomy. Anything
// unrecognized is a 500 with detail withheld from the client.
func (h *AccountHandler) writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var conflictErr *service.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Message: "Validation failed",
			Errors:  validationErr.Fields,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: conflictMessage(conflictErr.Field)})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Username or password is incorrect."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "User not found"})
	default:
		h.log.WithError(err).Error("account operation failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "An unexpected error occurred"})
	}
}

func conflictMessage(field string) string {
	if field == "email" {
		return "User with this email already exists"
	}
	return "Username is already taken"
}
