package http

import (
	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/entities"
)

// CategoriesController serves the public category browser.
type CategoriesController struct {
	categories CategoryReader
	books      CategoryBookLister
}

func NewCategoriesController(categories CategoryReader, books CategoryBookLister) *CategoriesController {
	return &CategoriesController{categories: categories, books: books}
}

// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	list, err := cc.categories.ListActiveWithCounts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	if list == nil {
		list = []entities.CategoryWithCount{}
	}
	respondData(c, list, "Categories fetched successfully")
}

// GET /api/categories/:categoryName
// gin has already unescaped the name, so "Self%20Help" matches "Self Help".
func (cc *CategoriesController) Books(c *gin.Context) {
	list, err := cc.books.ListByCategory(c.Request.Context(), c.Param("categoryName"))
	if err != nil {
		respondInternalError(c, err, "list books by category")
		return
	}
	if list == nil {
		list = []entities.Book{}
	}
	respondData(c, list, "Books fetched successfully")
}
