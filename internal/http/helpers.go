package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// Response is the envelope of every consumer API response. Error may be set
// on a successful response to carry a soft warning.
type Response struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data"`
	Message    string           `json:"message,omitempty"`
	Error      any              `json:"error"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Count      *int64           `json:"count,omitempty"`
}

// --- Error Response Helpers ---

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, resource+" not found")
}

func respondForbidden(c *gin.Context, message string) {
	respondError(c, http.StatusForbidden, message)
}

func respondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, message)
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error("Internal error",
		zap.String("context", context),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// --- Success Response Helpers ---

// respondData sends a 200 OK response with data.
func respondData(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// respondSuccess sends a 200 OK response with a message only.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

// respondPage sends one page of a listing with its pagination block.
func respondPage[T any](c *gin.Context, page *pagination.Page[T], message string) {
	meta := page.Meta()
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Message: message, Pagination: &meta})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// pageRequest reads the consumer API's zero-based offset and limit.
func pageRequest(c *gin.Context) pagination.Request {
	return pagination.Parse(c.Query("offset"), c.Query("limit"))
}

// adminQuery holds the back-office listing controls: a 1-based page, a
// limit and a free-text search.
type adminQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

func parseAdminQuery(c *gin.Context) adminQuery {
	q := adminQuery{Page: 1, Limit: 10}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	q.Search = c.Query("search")
	return q
}

func (q adminQuery) request() pagination.Request {
	return pagination.FromPage(q.Page, q.Limit)
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "Invalid input: "+err.Error())
		return false
	}
	return true
}
