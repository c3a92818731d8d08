package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/metrics"
)

// NotFreeMessage is the soft warning attached to a non-free book.
const NotFreeMessage = "Book is not available for free"

type BooksController struct {
	store BookReader
}

func NewBooksController(store BookReader) *BooksController {
	return &BooksController{store: store}
}

// GET /api/books/free?offset=&limit=
func (bc *BooksController) Free(c *gin.Context) {
	page, err := bc.store.ListFree(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondInternalError(c, err, "list free books")
		return
	}
	respondPage(c, page, "Books fetched successfully")
}

// GET /api/books/daily-reads?offset=&limit=
func (bc *BooksController) DailyReads(c *gin.Context) {
	page, err := bc.store.ListDaily(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondInternalError(c, err, "list daily reads")
		return
	}
	respondPage(c, page, "Books fetched successfully")
}

// GET /api/books/id/:bookId
// A book that is not free comes back without its chapters and with a soft
// error in the envelope.
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.store.GetPublishedBook(c.Request.Context(), c.Param("bookId"))
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}

	resp := Response{Success: true, Data: book, Message: "Book retrieved successfully"}
	if !book.IsFree {
		book.Chapters = []entities.Chapter{}
		resp.Error = NotFreeMessage
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/books/id/:bookId/chapters/:chapter
// :chapter is a route token: "introduction" or a 1-based chapter number.
func (bc *BooksController) GetChapter(c *gin.Context) {
	ordinal, err := chapters.ParseToken(c.Param("chapter"))
	if err != nil {
		respondBadRequest(c, "invalid chapter")
		return
	}

	book, err := bc.store.GetPublishedBook(c.Request.Context(), c.Param("bookId"))
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get chapter")
		return
	}
	if !book.IsFree && ordinal > 0 {
		respondForbidden(c, NotFreeMessage)
		return
	}

	view, ok := chapters.Assemble(book.AboutTheBook, book.Chapters).ViewAt(book.ID, ordinal)
	if !ok {
		respondNotFound(c, "Chapter")
		return
	}
	respondData(c, view, "Chapter retrieved successfully")
}

type readCountRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

// PUT /api/books/add-read-counts
func (bc *BooksController) AddReadCount(c *gin.Context) {
	var req readCountRequest
	if !bindJSON(c, &req) {
		return
	}

	err := bc.store.IncrementReads(c.Request.Context(), req.BookID)
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "add read count")
		return
	}

	metrics.BookReadsTotal.Inc()
	respondSuccess(c, "Count added successfully")
}
