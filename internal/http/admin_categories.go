package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/entities"
)

type AdminCategoriesController struct {
	store AdminCategoryStore
	audit AuditRecorder
}

func NewAdminCategoriesController(store AdminCategoryStore, audit AuditRecorder) *AdminCategoriesController {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AdminCategoriesController{store: store, audit: audit}
}

type createCategoryRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=1024"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"isActive"`
}

// GET /api/admin/categories?page=&limit=&search=&active=
func (ac *AdminCategoriesController) List(c *gin.Context) {
	q := parseAdminQuery(c)
	filter := categories.ListFilter{Search: q.Search}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.Active = &active
	}

	page, err := ac.store.List(c.Request.Context(), filter, q.request())
	if err != nil {
		respondInternalError(c, err, "admin list categories")
		return
	}
	respondPage(c, page, "Categories fetched successfully")
}

// POST /api/admin/categories
// New categories are active unless the request says otherwise.
func (ac *AdminCategoriesController) Create(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category := &entities.Category{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Image:       req.Image,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	err := ac.store.Create(c.Request.Context(), category)
	if errors.Is(err, categories.ErrCategoryExists) {
		respondConflict(c, "Category with this ID or name already exists")
		return
	}
	if err != nil {
		respondInternalError(c, err, "create category")
		return
	}

	ac.audit.LogContent(GetUserID(c), "category_create", "category", category.ID, category.Name, nil)
	respondCreated(c, category, "Category created successfully")
}

// PUT /api/admin/categories/:categoryId
func (ac *AdminCategoriesController) Update(c *gin.Context) {
	var update categories.CategoryUpdate
	if !bindJSON(c, &update) {
		return
	}
	if update.Name != nil && *update.Name == "" {
		respondBadRequest(c, "name cannot be empty")
		return
	}

	id := c.Param("categoryId")
	category, err := ac.store.Update(c.Request.Context(), id, update)
	switch {
	case errors.Is(err, categories.ErrCategoryNotFound):
		respondNotFound(c, "Category")
		return
	case errors.Is(err, categories.ErrNameInUse):
		respondConflict(c, "Category name already in use")
		return
	case err != nil:
		respondInternalError(c, err, "update category")
		return
	}

	ac.audit.LogContent(GetUserID(c), "category_update", "category", id, category.Name, nil)
	respondData(c, category, "Category updated successfully")
}

// DELETE /api/admin/categories/:categoryId
func (ac *AdminCategoriesController) Delete(c *gin.Context) {
	id := c.Param("categoryId")
	err := ac.store.Delete(c.Request.Context(), id)
	if errors.Is(err, categories.ErrCategoryNotFound) {
		respondNotFound(c, "Category")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete category")
		return
	}

	ac.audit.LogDelete(GetUserID(c), "category", id, id, true)
	respondSuccess(c, "Category deleted successfully")
}
