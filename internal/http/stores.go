package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/bookbrief/bookbrief/internal/admin"
	"github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/database/readinglists"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends on the narrowest one; the repositories under
// internal/database satisfy them.

// BookReader is the reader-facing view of the book store.
type BookReader interface {
	GetPublishedBook(ctx context.Context, id string) (*entities.Book, error)
	ListFree(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error)
	ListDaily(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error)
	IncrementReads(ctx context.Context, id string) error
}

type BookSearcher interface {
	Search(ctx context.Context, q books.SearchQuery, req pagination.Request) (*pagination.Page[entities.Book], error)
}

type CategoryBookLister interface {
	ListByCategory(ctx context.Context, category string) ([]entities.Book, error)
}

type CategoryReader interface {
	ListActiveWithCounts(ctx context.Context) ([]entities.CategoryWithCount, error)
}

type ReadingListStore interface {
	Create(ctx context.Context, list *entities.ReadingList) error
	Get(ctx context.Context, id string, viewerID uint) (*entities.ReadingList, error)
	ListPublic(ctx context.Context) ([]entities.ReadingList, error)
	ListByUser(ctx context.Context, userID, viewerID uint) ([]entities.ReadingList, error)
	Update(ctx context.Context, id string, ownerID uint, update readinglists.ListUpdate) (*entities.ReadingList, error)
	Delete(ctx context.Context, id string, ownerID uint) error
	AddBook(ctx context.Context, id string, ownerID uint, bookID string) (*entities.ReadingList, error)
	RemoveBook(ctx context.Context, id string, ownerID uint, bookID string) (*entities.ReadingList, error)
}

type ReviewStore interface {
	Upsert(ctx context.Context, review *entities.Review) (*entities.Review, bool, error)
	Delete(ctx context.Context, id string, userID uint) error
	ListPublicByBook(ctx context.Context, bookID string) ([]entities.Review, error)
	ListByUser(ctx context.Context, userID, viewerID uint) ([]entities.Review, error)
	GetForUserBook(ctx context.Context, userID uint, bookID string) (*entities.Review, error)
}

// --- Admin ---

type AdminBookStore interface {
	AdminList(ctx context.Context, search string, req pagination.Request) (*pagination.Page[entities.Book], error)
	GetBook(ctx context.Context, id string) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	Update(ctx context.Context, id string, update books.BookUpdate) (*entities.Book, error)
	SoftDelete(ctx context.Context, id string) error
	ListChapters(ctx context.Context, bookID string) ([]entities.Chapter, string, error)
	AddChapter(ctx context.Context, bookID string, in books.ChapterInput) (*entities.Chapter, int, error)
	UpdateChapter(ctx context.Context, bookID, chapterID string, in books.ChapterInput) (*entities.Chapter, error)
	DeleteChapter(ctx context.Context, bookID, chapterID string) (int, error)
}

type AdminCategoryStore interface {
	List(ctx context.Context, filter categories.ListFilter, req pagination.Request) (*pagination.Page[entities.Category], error)
	Create(ctx context.Context, category *entities.Category) error
	Update(ctx context.Context, id string, update categories.CategoryUpdate) (*entities.Category, error)
	Delete(ctx context.Context, id string) error
}

type AdminUserStore interface {
	List(ctx context.Context, filter users.ListFilter, req pagination.Request) (*pagination.Page[entities.User], error)
	Update(ctx context.Context, id uint, update users.AdminUpdate) (*entities.User, error)
	SoftDelete(ctx context.Context, id, actorID uint) error
}

// AccountService creates accounts and hashes admin-supplied passwords with
// the same validation and bcrypt cost as signup.
type AccountService interface {
	CreateUser(ctx context.Context, name, email, password string, role entities.UserRole) (*entities.User, error)
	HashPassword(password string) (string, error)
}

type AuditLister interface {
	List(ctx context.Context, filter audit.Filter, req pagination.Request) (*pagination.Page[entities.AuditEvent], error)
}

// AuditRecorder receives admin content and account changes.
type AuditRecorder interface {
	LogContent(userID uint, action, entityType, entityID, description string, err error)
	LogDelete(userID uint, entityType, entityID, entityName string, permanent bool)
	LogUser(actorID uint, action string, targetID uint, description string)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

type DashboardLoader interface {
	Load(ctx context.Context, section admin.Section) (*admin.Panel, error)
}

// nopAudit drops every event. It stands in when no audit service is wired.
type nopAudit struct{}

func (nopAudit) LogContent(uint, string, string, string, string, error) {}
func (nopAudit) LogDelete(uint, string, string, string, bool)           {}
func (nopAudit) LogUser(uint, string, uint, string)                     {}
