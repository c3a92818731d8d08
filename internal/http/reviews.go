package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/reviews"
	"github.com/bookbrief/bookbrief/internal/entities"
)

type ReviewsController struct {
	store ReviewStore
}

func NewReviewsController(store ReviewStore) *ReviewsController {
	return &ReviewsController{store: store}
}

type reviewRequest struct {
	BookID   string `json:"bookId" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"max=5000"`
	IsPublic bool   `json:"isPublic"`
}

// POST /api/reviews
// A second review of the same book by the same user replaces the first.
func (rc *ReviewsController) Upsert(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, created, err := rc.store.Upsert(c.Request.Context(), &entities.Review{
		UserID:   GetUserID(c),
		BookID:   req.BookID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		IsPublic: req.IsPublic,
	})
	if errors.Is(err, reviews.ErrInvalidRating) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "save review")
		return
	}

	if created {
		c.JSON(http.StatusCreated, Response{Success: true, Data: review, Message: "Review created successfully"})
		return
	}
	respondData(c, review, "Review updated successfully")
}

// DELETE /api/reviews/:reviewId
func (rc *ReviewsController) Delete(c *gin.Context) {
	err := rc.store.Delete(c.Request.Context(), c.Param("reviewId"), GetUserID(c))
	switch {
	case errors.Is(err, reviews.ErrReviewNotFound):
		respondNotFound(c, "Review")
	case errors.Is(err, reviews.ErrNotOwner):
		respondForbidden(c, "Review belongs to another user")
	case err != nil:
		respondInternalError(c, err, "delete review")
	default:
		respondSuccess(c, "Review deleted successfully")
	}
}

// GET /api/reviews/book/:bookId
func (rc *ReviewsController) ListByBook(c *gin.Context) {
	list, err := rc.store.ListPublicByBook(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		respondInternalError(c, err, "list book reviews")
		return
	}
	respondData(c, nonNil(list), "Reviews fetched successfully")
}

// GET /api/reviews/user/:userId
// Private reviews are included only for the user themself.
func (rc *ReviewsController) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	list, err := rc.store.ListByUser(c.Request.Context(), userID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list user reviews")
		return
	}
	respondData(c, nonNil(list), "Reviews fetched successfully")
}

// GET /api/reviews/user/:userId/book/:bookId
func (rc *ReviewsController) GetForUserBook(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	review, err := rc.store.GetForUserBook(c.Request.Context(), userID, c.Param("bookId"))
	if errors.Is(err, reviews.ErrReviewNotFound) {
		respondNotFound(c, "Review")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get review")
		return
	}
	if !review.IsPublic && review.UserID != GetUserID(c) {
		respondNotFound(c, "Review")
		return
	}
	respondData(c, review, "Review retrieved successfully")
}
