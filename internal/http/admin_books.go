package http

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/entities"
)

// AdminBooksController is the back-office catalogue editor.
type AdminBooksController struct {
	store AdminBookStore
	audit AuditRecorder
}

func NewAdminBooksController(store AdminBookStore, audit AuditRecorder) *AdminBooksController {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AdminBooksController{store: store, audit: audit}
}

type createBookRequest struct {
	ID            string               `json:"id"`
	Title         string               `json:"title" binding:"required,min=1,max=512"`
	Slug          string               `json:"slug"`
	Subtitle      string               `json:"subtitle"`
	ImageURL      string               `json:"imageUrl"`
	AboutTheBook  string               `json:"aboutTheBook"`
	Author        string               `json:"author"`
	Category      string               `json:"category"`
	Language      string               `json:"language"`
	ReadingTime   int                  `json:"readingTime" binding:"min=0"`
	Rating        float64              `json:"rating" binding:"min=0,max=5"`
	IsPublished   bool                 `json:"isPublished"`
	IsFree        bool                 `json:"isFree"`
	IsDaily       bool                 `json:"isDaily"`
	PublishedDate *time.Time           `json:"publishedDate"`
	Chapters      []books.ChapterInput `json:"chapter" binding:"dive"`
}

func (r createBookRequest) book() *entities.Book {
	book := &entities.Book{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Subtitle:      r.Subtitle,
		ImageURL:      r.ImageURL,
		AboutTheBook:  r.AboutTheBook,
		Author:        r.Author,
		Category:      r.Category,
		Language:      r.Language,
		ReadingTime:   r.ReadingTime,
		Rating:        r.Rating,
		IsPublished:   r.IsPublished,
		IsFree:        r.IsFree,
		IsDaily:       r.IsDaily,
		PublishedDate: r.PublishedDate,
	}
	if book.IsPublished && book.PublishedDate == nil {
		now := time.Now()
		book.PublishedDate = &now
	}
	for _, ch := range r.Chapters {
		book.Chapters = append(book.Chapters, entities.Chapter{ID: ch.ID, Title: ch.Title, Text: ch.Text})
	}
	return book
}

// GET /api/admin/books?page=&limit=&search=
func (ac *AdminBooksController) List(c *gin.Context) {
	q := parseAdminQuery(c)
	page, err := ac.store.AdminList(c.Request.Context(), q.Search, q.request())
	if err != nil {
		respondInternalError(c, err, "admin list books")
		return
	}
	respondPage(c, page, "Books fetched successfully")
}

// POST /api/admin/books
func (ac *AdminBooksController) Create(c *gin.Context) {
	var req createBookRequest
	if !bindJSON(c, &req) {
		return
	}

	book := req.book()
	err := ac.store.Create(c.Request.Context(), book)
	if errors.Is(err, books.ErrBookExists) {
		respondConflict(c, "Book with this ID already exists")
		return
	}
	if err != nil {
		ac.audit.LogContent(GetUserID(c), "book_create", "book", req.ID, req.Title, err)
		respondInternalError(c, err, "create book")
		return
	}

	ac.audit.LogContent(GetUserID(c), "book_create", "book", book.ID, book.Title, nil)
	respondCreated(c, book, "Book created successfully")
}

// PUT /api/admin/books/:bookId
func (ac *AdminBooksController) Update(c *gin.Context) {
	var update books.BookUpdate
	if !bindJSON(c, &update) {
		return
	}

	id := c.Param("bookId")
	book, err := ac.store.Update(c.Request.Context(), id, update)
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	ac.audit.LogContent(GetUserID(c), "book_update", "book", id, book.Title, nil)
	respondData(c, book, "Book updated successfully")
}

// DELETE /api/admin/books/:bookId
// The book is only flagged; the purge task removes it later.
func (ac *AdminBooksController) Delete(c *gin.Context) {
	id := c.Param("bookId")
	err := ac.store.SoftDelete(c.Request.Context(), id)
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	ac.audit.LogDelete(GetUserID(c), "book", id, id, false)
	respondSuccess(c, "Book deleted successfully")
}

// --- Chapters ---

type chapterList struct {
	Chapters  []entities.Chapter `json:"chapters"`
	BookTitle string             `json:"bookTitle"`
}

type chapterResult struct {
	Chapter       *entities.Chapter `json:"chapter,omitempty"`
	TotalChapters int               `json:"totalChapters"`
}

// GET /api/admin/books/:bookId/chapters
func (ac *AdminBooksController) ListChapters(c *gin.Context) {
	list, title, err := ac.store.ListChapters(c.Request.Context(), c.Param("bookId"))
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "list chapters")
		return
	}
	respondData(c, chapterList{Chapters: list, BookTitle: title}, "Chapters fetched successfully")
}

// POST /api/admin/books/:bookId/chapters
func (ac *AdminBooksController) AddChapter(c *gin.Context) {
	var in books.ChapterInput
	if !bindJSON(c, &in) {
		return
	}

	bookID := c.Param("bookId")
	chapter, total, err := ac.store.AddChapter(c.Request.Context(), bookID, in)
	if ac.respondChapterError(c, err, "add chapter") {
		return
	}

	ac.audit.LogContent(GetUserID(c), "chapter_create", "chapter", chapter.ID, chapter.Title, nil)
	respondCreated(c, chapterResult{Chapter: chapter, TotalChapters: total}, "Chapter added successfully")
}

// PUT /api/admin/books/:bookId/chapters/:chapterId
func (ac *AdminBooksController) UpdateChapter(c *gin.Context) {
	var in books.ChapterInput
	if !bindJSON(c, &in) {
		return
	}

	chapter, err := ac.store.UpdateChapter(c.Request.Context(), c.Param("bookId"), c.Param("chapterId"), in)
	if ac.respondChapterError(c, err, "update chapter") {
		return
	}

	ac.audit.LogContent(GetUserID(c), "chapter_update", "chapter", chapter.ID, chapter.Title, nil)
	respondData(c, chapter, "Chapter updated successfully")
}

// DELETE /api/admin/books/:bookId/chapters/:chapterId
func (ac *AdminBooksController) DeleteChapter(c *gin.Context) {
	chapterID := c.Param("chapterId")
	total, err := ac.store.DeleteChapter(c.Request.Context(), c.Param("bookId"), chapterID)
	if ac.respondChapterError(c, err, "delete chapter") {
		return
	}

	ac.audit.LogDelete(GetUserID(c), "chapter", chapterID, chapterID, true)
	respondData(c, chapterResult{TotalChapters: total}, "Chapter deleted successfully")
}

func (ac *AdminBooksController) respondChapterError(c *gin.Context, err error, context string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, books.ErrBookNotFound):
		respondNotFound(c, "Book")
	case errors.Is(err, books.ErrChapterNotFound):
		respondNotFound(c, "Chapter")
	case errors.Is(err, books.ErrChapterExists):
		respondConflict(c, "Chapter with this ID already exists")
	default:
		respondInternalError(c, err, context)
	}
	return true
}
