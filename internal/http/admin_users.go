package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/entities"
)

type AdminUsersController struct {
	store    AdminUserStore
	accounts AccountService
	audit    AuditRecorder
}

func NewAdminUsersController(store AdminUserStore, accounts AccountService, audit AuditRecorder) *AdminUsersController {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AdminUsersController{store: store, accounts: accounts, audit: audit}
}

type createUserRequest struct {
	Name     string            `json:"name" binding:"required"`
	Email    string            `json:"email" binding:"required"`
	Password string            `json:"password" binding:"required"`
	Role     entities.UserRole `json:"role"`
	Age      *int              `json:"age" binding:"omitempty,min=1,max=150"`
}

type updateUserRequest struct {
	Name       *string            `json:"name"`
	Email      *string            `json:"email"`
	Password   *string            `json:"password"`
	Role       *entities.UserRole `json:"role"`
	Age        *int               `json:"age" binding:"omitempty,min=1,max=150"`
	IsVerified *bool              `json:"isVerified"`
}

// GET /api/admin/users?page=&limit=&search=&role=
func (ac *AdminUsersController) List(c *gin.Context) {
	q := parseAdminQuery(c)
	filter := users.ListFilter{Search: q.Search, Role: entities.UserRole(c.Query("role"))}

	page, err := ac.store.List(c.Request.Context(), filter, q.request())
	if err != nil {
		respondInternalError(c, err, "admin list users")
		return
	}
	respondPage(c, page, "Users fetched successfully")
}

// POST /api/admin/users
func (ac *AdminUsersController) Create(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = entities.UserRoleUser
	}

	user, err := ac.accounts.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondConflict(c, "User with this email already exists")
		return
	case isValidationError(err):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "create user")
		return
	}

	if req.Age != nil {
		if user, err = ac.store.Update(c.Request.Context(), user.ID, users.AdminUpdate{Age: req.Age}); err != nil {
			respondInternalError(c, err, "set user age")
			return
		}
	}

	ac.audit.LogUser(GetUserID(c), "user_create", user.ID, "created "+user.Email)
	respondCreated(c, user, "User created successfully")
}

// PUT /api/admin/users/:userId
func (ac *AdminUsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role != nil && !req.Role.IsValid() {
		respondBadRequest(c, auth.ErrInvalidRole.Error())
		return
	}
	if req.Email != nil {
		if err := auth.ValidateEmail(users.NormalizeEmail(*req.Email)); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}

	update := users.AdminUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Age:        req.Age,
		IsVerified: req.IsVerified,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := ac.accounts.HashPassword(*req.Password)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		update.PasswordHash = &hash
	}

	user, err := ac.store.Update(c.Request.Context(), id, update)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		respondNotFound(c, "User")
		return
	case errors.Is(err, users.ErrEmailInUse):
		respondConflict(c, "Email already in use")
		return
	case err != nil:
		respondInternalError(c, err, "update user")
		return
	}

	ac.audit.LogUser(GetUserID(c), "user_update", id, "updated "+user.Email)
	respondData(c, user, "User updated successfully")
}

// DELETE /api/admin/users/:userId
func (ac *AdminUsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	err := ac.store.SoftDelete(c.Request.Context(), id, GetUserID(c))
	switch {
	case errors.Is(err, users.ErrCannotDeleteSelf):
		respondBadRequest(c, "Cannot delete your own account")
		return
	case errors.Is(err, users.ErrUserNotFound):
		respondNotFound(c, "User")
		return
	case err != nil:
		respondInternalError(c, err, "delete user")
		return
	}

	ac.audit.LogUser(GetUserID(c), "user_delete", id, "soft deleted")
	respondSuccess(c, "User deleted successfully")
}

// isValidationError reports whether err is an input problem the caller can
// fix, as opposed to a storage failure.
func isValidationError(err error) bool {
	for _, target := range []error{
		auth.ErrNameRequired,
		auth.ErrEmailRequired,
		auth.ErrPasswordRequired,
		auth.ErrEmailInvalid,
		auth.ErrInvalidRole,
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
