package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/log"
)

// EventRecorder receives authentication events for the audit trail.
type EventRecorder interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// AuthController handles the account endpoints and the admin session login.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	events         EventRecorder
}

// NewAuthController creates a new authentication controller. events may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, events EventRecorder, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		events:         events,
	}
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type signupRequest struct {
	Name            string `json:"name" binding:"required,min=1"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type updateProfileRequest struct {
	Name   string  `json:"name" binding:"required,min=1"`
	Age    *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required,min=6"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,min=6"`
}

type passwordResetRequest struct {
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,min=6"`
	OOBCode         string `json:"oobCode" binding:"required"`
	APIKey          string `json:"apiKey"`
}

// UserView is the public shape of an account.
type UserView struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Avatar     string            `json:"avatar"`
	Providers  string            `json:"providers"`
	IsVerified bool              `json:"isVerified"`
	Age        *int              `json:"age,omitempty"`
	Role       entities.UserRole `json:"role,omitempty"`
}

func newUserView(u *entities.User) UserView {
	return UserView{
		ID:         strconv.FormatUint(uint64(u.ID), 10),
		Name:       u.Name,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Providers:  u.Providers,
		IsVerified: u.IsVerified,
		Age:        u.Age,
	}
}

func authError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// POST /api/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	_, err := ac.service.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.PasswordConfirm)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		authError(c, http.StatusBadRequest, "Passwords do not match")
		return
	case errors.Is(err, ErrUserExists):
		authError(c, http.StatusBadRequest, "Email already exists")
		return
	case errors.Is(err, ErrEmailInvalid), errors.Is(err, ErrNameRequired), errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		authError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error("Signup failed", zap.Error(err))
		authError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Sign up successful!"})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	ac.login(c, false)
}

// POST /api/auth/admin-login
func (ac *AuthController) AdminLogin(c *gin.Context) {
	ac.login(c, true)
}

func (ac *AuthController) login(c *gin.Context, admin bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	badCredentials := "Incorrect email or password"
	action := "login"
	if admin {
		badCredentials = "Invalid admin credentials"
		action = "admin_login"
	}

	clientIP := c.ClientIP()
	email := users.NormalizeEmail(req.Email)
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
		authError(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var (
		result *LoginResult
		err    error
	)
	if admin {
		result, err = ac.service.AdminLogin(c.Request.Context(), email, req.Password)
	} else {
		result, err = ac.service.Login(c.Request.Context(), email, req.Password)
	}

	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, email)
		ac.record(c, 0, action, false)

		switch {
		case errors.Is(err, ErrAccountLocked):
			authError(c, http.StatusUnauthorized, "Account is locked. Please try again later.")
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotAdmin):
			authError(c, http.StatusUnauthorized, badCredentials)
		default:
			log.Error("Login failed", zap.Error(err))
			authError(c, http.StatusUnauthorized, badCredentials)
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, email)
	ac.record(c, result.User.ID, action, true)

	view := newUserView(result.User)
	view.Age = nil
	if admin {
		view.Role = result.User.Role
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token": gin.H{
			"access_token": result.Token,
			"expires_at":   result.ExpiresAt,
		},
		"user": view,
	})
}

// POST /api/auth/profile
func (ac *AuthController) Profile(c *gin.Context) {
	user, err := ac.service.GetUserByID(c.Request.Context(), GetUserID(c))
	if errors.Is(err, ErrUserNotFound) {
		authError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Error("Profile lookup failed", zap.Error(err))
		authError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, newUserView(user))
}

// POST /api/auth/update_profile
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	_, err := ac.service.UpdateProfile(c.Request.Context(), GetUserID(c), users.ProfileUpdate{
		Name:   &req.Name,
		Age:    req.Age,
		Avatar: req.Avatar,
	})
	switch {
	case errors.Is(err, ErrUserNotFound):
		authError(c, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, ErrNameRequired):
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	case err != nil:
		log.Error("Profile update failed", zap.Error(err))
		authError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully"})
}

// POST /api/auth/change_password
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	userID := GetUserID(c)
	err := ac.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		authError(c, http.StatusBadRequest, "New passwords do not match")
		return
	case errors.Is(err, ErrCurrentPasswordWrong):
		ac.record(c, userID, "change_password", false)
		authError(c, http.StatusBadRequest, "Current password is incorrect")
		return
	case errors.Is(err, ErrPasswordTooLong):
		authError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrUserNotFound):
		authError(c, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Error("Password change failed", zap.Error(err))
		authError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ac.record(c, userID, "change_password", true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}

// POST /api/auth/password_reset
//
// Acknowledges a reset confirmation. Reset codes are issued out of band;
// no email is sent from here.
func (ac *AuthController) PasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Password != req.PasswordConfirm {
		authError(c, http.StatusBadRequest, "Passwords do not match")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

// POST /admin/login
//
// Form login for the back-office. Starts a cookie session for admins.
func (ac *AuthController) AdminSessionLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		authError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	clientIP := c.ClientIP()
	email := users.NormalizeEmail(req.Email)
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
		authError(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), email, req.Password)
	if err == nil && !user.IsAdmin() {
		err = ErrNotAdmin
	}
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, email)
		ac.record(c, 0, "admin_session_login", false)
		authError(c, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, email)

	if err := ac.sessionManager.Login(c.Request.Context(), user); err != nil {
		log.Error("Failed to create session", zap.Error(err))
		authError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	ac.record(c, user.ID, "admin_session_login", true)

	view := newUserView(user)
	view.Role = user.Role
	c.JSON(http.StatusOK, gin.H{"success": true, "user": view})
}

// GET /admin/login
//
// Hands out the CSRF token the login form must echo back.
func (ac *AuthController) AdminSessionToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "csrfToken": GetCSRFToken(c)})
}

// POST /admin/logout
func (ac *AuthController) AdminSessionLogout(c *gin.Context) {
	userID, err := ac.sessionManager.Logout(c.Request.Context())
	if err != nil {
		log.Error("Failed to destroy session", zap.Error(err))
	}
	if userID != 0 {
		ac.record(c, userID, "admin_logout", true)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (ac *AuthController) record(c *gin.Context, userID uint, action string, success bool) {
	if ac.events == nil {
		return
	}
	ac.events.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}
