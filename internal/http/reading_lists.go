package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/readinglists"
	"github.com/bookbrief/bookbrief/internal/entities"
)

// ReadingListsController manages user reading lists. Lists are owned by the
// authenticated caller; only the owner may change one.
type ReadingListsController struct {
	store ReadingListStore
}

func NewReadingListsController(store ReadingListStore) *ReadingListsController {
	return &ReadingListsController{store: store}
}

type createListRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" binding:"required,min=1,max=256"`
	Description string   `json:"description" binding:"max=1024"`
	BookIDs     []string `json:"bookIds"`
	IsPublic    bool     `json:"isPublic"`
}

// GET /api/reading-lists
func (rc *ReadingListsController) ListPublic(c *gin.Context) {
	lists, err := rc.store.ListPublic(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list public reading lists")
		return
	}
	respondData(c, nonNil(lists), "Public reading lists fetched successfully")
}

// POST /api/reading-lists
func (rc *ReadingListsController) Create(c *gin.Context) {
	var req createListRequest
	if !bindJSON(c, &req) {
		return
	}

	list := &entities.ReadingList{
		ID:          req.ID,
		UserID:      GetUserID(c),
		Name:        req.Name,
		Description: req.Description,
		BookIDs:     req.BookIDs,
		IsPublic:    req.IsPublic,
	}
	if rc.respondStoreError(c, rc.store.Create(c.Request.Context(), list), "create reading list") {
		return
	}
	respondCreated(c, list, "Reading list created successfully")
}

// GET /api/reading-lists/user/:userId
func (rc *ReadingListsController) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	lists, err := rc.store.ListByUser(c.Request.Context(), userID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list user reading lists")
		return
	}
	respondData(c, nonNil(lists), "Reading lists fetched successfully")
}

// GET /api/reading-lists/:listId
func (rc *ReadingListsController) Get(c *gin.Context) {
	list, err := rc.store.Get(c.Request.Context(), c.Param("listId"), GetUserID(c))
	if rc.respondStoreError(c, err, "get reading list") {
		return
	}
	respondData(c, list, "Reading list retrieved successfully")
}

// PUT /api/reading-lists/:listId
func (rc *ReadingListsController) Update(c *gin.Context) {
	var update readinglists.ListUpdate
	if !bindJSON(c, &update) {
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		respondBadRequest(c, "Invalid input: name must not be empty")
		return
	}

	list, err := rc.store.Update(c.Request.Context(), c.Param("listId"), GetUserID(c), update)
	if rc.respondStoreError(c, err, "update reading list") {
		return
	}
	respondData(c, list, "Reading list updated successfully")
}

// DELETE /api/reading-lists/:listId
func (rc *ReadingListsController) Delete(c *gin.Context) {
	err := rc.store.Delete(c.Request.Context(), c.Param("listId"), GetUserID(c))
	if rc.respondStoreError(c, err, "delete reading list") {
		return
	}
	respondSuccess(c, "Reading list deleted successfully")
}

type addBookRequest struct {
	BookID string `json:"bookId" binding:"required"`
}

// POST /api/reading-lists/:listId/books
// Adding a book that is already on the list succeeds without a duplicate.
func (rc *ReadingListsController) AddBook(c *gin.Context) {
	var req addBookRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := rc.store.AddBook(c.Request.Context(), c.Param("listId"), GetUserID(c), req.BookID)
	if rc.respondStoreError(c, err, "add book to reading list") {
		return
	}
	respondData(c, list, "Book added to reading list successfully")
}

// DELETE /api/reading-lists/:listId/books/:bookId
// Removing a book that is not on the list succeeds and changes nothing.
func (rc *ReadingListsController) RemoveBook(c *gin.Context) {
	list, err := rc.store.RemoveBook(c.Request.Context(), c.Param("listId"), GetUserID(c), c.Param("bookId"))
	if rc.respondStoreError(c, err, "remove book from reading list") {
		return
	}
	respondData(c, list, "Book removed from reading list successfully")
}

// respondStoreError answers for a non-nil err and reports whether it did.
func (rc *ReadingListsController) respondStoreError(c *gin.Context, err error, context string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, readinglists.ErrListNotFound):
		respondNotFound(c, "Reading list")
	case errors.Is(err, readinglists.ErrUnknownBook):
		respondNotFound(c, "Book")
	case errors.Is(err, readinglists.ErrNotOwner):
		respondForbidden(c, "Reading list belongs to another user")
	case errors.Is(err, readinglists.ErrListExists):
		respondConflict(c, "Reading list already exists")
	default:
		respondInternalError(c, err, context)
	}
	return true
}

// nonNil keeps empty listings serialised as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
