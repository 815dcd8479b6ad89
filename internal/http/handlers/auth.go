package handlers

import (
	"net/http"
	"strings"

	"schoolcampus/internal/auth"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users  *services.UserService
	Tokens *auth.Manager
}

func NewAuthHandler(users *services.UserService, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

func (h *AuthHandler) tokenPair(id, role string) (gin.H, error) {
	access, err := h.Tokens.SignAccess(id, role)
	if err != nil {
		return nil, err
	}
	refresh, err := h.Tokens.SignRefresh(id, role)
	if err != nil {
		return nil, err
	}
	return gin.H{"accessToken": access, "refreshToken": refresh}, nil
}

// Register creates an account and signs it in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	user, err := h.Users.Register(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Registration failed")
		return
	}

	tokens, err := h.tokenPair(user.ID.Hex(), user.Role)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}
	Success(c, http.StatusCreated, "Registered successfully", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	body := bodyMap(c)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		Fail(c, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}
	if user == nil {
		Fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if user.IsActive != nil && !*user.IsActive {
		Fail(c, http.StatusForbidden, "Account is deactivated", nil)
		return
	}

	tokens, err := h.tokenPair(user.ID.Hex(), user.Role)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}
	user.Password = ""
	Success(c, http.StatusOK, "Logged in successfully", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Refresh trades a valid refresh token for a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := bodyMap(c)["refreshToken"].(string)
	if token == "" {
		Fail(c, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}

	claims, err := h.Tokens.VerifyRefresh(token)
	if err != nil {
		Fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), claims.ID, services.UserHideKeys)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Token refresh failed", err)
		return
	}
	if user == nil || (user.IsActive != nil && !*user.IsActive) {
		Fail(c, http.StatusUnauthorized, "Account no longer available", nil)
		return
	}

	tokens, err := h.tokenPair(user.ID.Hex(), user.Role)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Token refresh failed", err)
		return
	}
	Success(c, http.StatusOK, "Token refreshed successfully", gin.H{"tokens": tokens})
}

// CheckEmail lets the signup form ask whether an address is taken.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		email, _ = bodyMap(c)["email"].(string)
	}
	if email == "" {
		Fail(c, http.StatusBadRequest, "Email is required", nil)
		return
	}

	taken, err := h.Users.ExistsByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Email check failed", err)
		return
	}
	Success(c, http.StatusOK, "Email check completed", gin.H{"exists": taken})
}

// ChangePassword re-verifies the current password before setting the new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal := middleware.GetAuthUser(c)
	if principal == nil {
		Fail(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	body := bodyMap(c)
	current, _ := body["currentPassword"].(string)
	next, _ := body["newPassword"].(string)
	if current == "" || next == "" {
		Fail(c, http.StatusBadRequest, "Current and new password are required", nil)
		return
	}

	account, err := h.Users.FindByID(c.Request.Context(), principal.ID, nil)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Password change failed", err)
		return
	}
	if account == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}

	verified, err := h.Users.Authenticate(c.Request.Context(), account.Email, current)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Password change failed", err)
		return
	}
	if verified == nil {
		Fail(c, http.StatusUnauthorized, "Current password is incorrect", nil)
		return
	}

	if _, err := h.Users.UpdatePassword(c.Request.Context(), principal.ID, next, principal); err != nil {
		failWrite(c, err, "Password change failed")
		return
	}
	Success(c, http.StatusOK, "Password changed successfully", nil)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.GetAuthUser(c)
	if principal == nil {
		Fail(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), principal.ID, services.UserHideKeys)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to retrieve data", err)
		return
	}
	if user == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Data retrieved successfully", user)
}
