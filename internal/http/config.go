package http

import (
	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/admin"
	"github.com/bookbrief/bookbrief/internal/audit"
	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/database/readinglists"
	"github.com/bookbrief/bookbrief/internal/database/reviews"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database     *gorm.DB
	Books        *books.Repository
	Categories   *categories.Repository
	ReadingLists *readinglists.Repository
	Reviews      *reviews.Repository
	Users        *users.Repository
	Audit        *audit.Service
	Dashboard    *admin.Dashboard

	// Authentication. SessionManager may be nil, which disables the
	// cookie back-office login; bearer tokens keep working.
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte

	Search config.Search

	// Task queue (optional)
	TaskQueue    TaskQueue
	TaskDefaults tasks.Defaults

	// Application info
	Version string
}
