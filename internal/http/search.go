package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/metrics"
)

type SearchController struct {
	store BookSearcher
}

func NewSearchController(store BookSearcher) *SearchController {
	return &SearchController{store: store}
}

type searchRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// POST /api/search?offset=&limit=
// An empty keyword matches every published book.
func (sc *SearchController) Search(c *gin.Context) {
	var req searchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchFailed).Inc()
			respondBadRequest(c, "Invalid input: "+err.Error())
			return
		}
	}

	query := books.SearchQuery{Keyword: req.Keyword, Category: req.Category}
	page, err := sc.store.Search(c.Request.Context(), query, pageRequest(c))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchFailed).Inc()
		respondInternalError(c, err, "search books")
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOK).Inc()

	items := page.Items
	if items == nil {
		items = []entities.Book{}
	}
	meta := page.Meta()
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       items,
		Message:    "Books fetched successfully",
		Pagination: &meta,
		Count:      &page.TotalCount,
	})
}

// searchLimited counts throttled searches. It runs after the throttle
// middleware has answered 429.
func searchLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() == http.StatusTooManyRequests {
			metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchLimited).Inc()
		}
	}
}
