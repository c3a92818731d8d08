package http

import (
	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/metrics"
)

// Router is the configured engine plus the resources its handlers own.
type Router struct {
	*gin.Engine

	authController *auth.AuthController
	searchThrottle *auth.Throttle
}

// Stop releases the background goroutines started by the handlers.
func (r *Router) Stop() {
	r.authController.Stop()
}

// SearchThrottle exposes the search limiter so the caller can sweep idle
// clients.
func (r *Router) SearchThrottle() *auth.Throttle {
	return r.searchThrottle
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *Router {
	router := gin.New()
	router.Use(Recovery())
	router.Use(RequestLogger())
	router.Use(metrics.Middleware())

	router.Use(auth.SecurityHeaders(cfg.AuthConfig.SecureCookies))

	// The session is loaded before authentication so the admin cookie can
	// authenticate /api/admin calls.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.SessionManager)
	router.Use(authMiddleware.Handler())

	var events auth.EventRecorder
	var recorder AuditRecorder
	var auditLister AuditLister
	if cfg.Audit != nil {
		events, recorder, auditLister = cfg.Audit, cfg.Audit, cfg.Audit
	}

	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, events, cfg.AuthConfig)
	searchThrottle := auth.NewThrottle(cfg.Search.RatePerSecond, cfg.Search.Burst)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Account endpoints
	authAPI := router.Group("/api/auth")
	{
		authAPI.POST("/signup", authController.Signup)
		authAPI.POST("/login", authController.Login)
		authAPI.POST("/admin-login", authController.AdminLogin)
		authAPI.POST("/password_reset", authController.PasswordReset)
		authAPI.POST("/profile", authController.Profile)
		authAPI.POST("/update_profile", authController.UpdateProfile)
		authAPI.POST("/change_password", authController.ChangePassword)
	}

	// Books
	booksController := NewBooksController(cfg.Books)
	router.GET("/api/books/free", booksController.Free)
	router.GET("/api/books/daily-reads", booksController.DailyReads)
	router.GET("/api/books/id/:bookId", booksController.GetBook)
	router.GET("/api/books/id/:bookId/chapters/:chapter", booksController.GetChapter)
	router.PUT("/api/books/add-read-counts", booksController.AddReadCount)

	searchController := NewSearchController(cfg.Books)
	router.POST("/api/search", searchLimited(), searchThrottle.Middleware(), searchController.Search)

	// Categories are public; a bearer token is still honoured when sent.
	categoriesController := NewCategoriesController(cfg.Categories, cfg.Books)
	router.GET("/api/categories", categoriesController.List)
	router.GET("/api/categories/:categoryName", categoriesController.Books)

	// Reading lists
	listsController := NewReadingListsController(cfg.ReadingLists)
	lists := router.Group("/api/reading-lists")
	{
		lists.GET("", listsController.ListPublic)
		lists.POST("", listsController.Create)
		lists.GET("/user/:userId", listsController.ListByUser)
		lists.GET("/:listId", listsController.Get)
		lists.PUT("/:listId", listsController.Update)
		lists.DELETE("/:listId", listsController.Delete)
		lists.POST("/:listId/books", listsController.AddBook)
		lists.DELETE("/:listId/books/:bookId", listsController.RemoveBook)
	}

	// Reviews
	reviewsController := NewReviewsController(cfg.Reviews)
	reviewsAPI := router.Group("/api/reviews")
	{
		reviewsAPI.POST("", reviewsController.Upsert)
		reviewsAPI.DELETE("/:reviewId", reviewsController.Delete)
		reviewsAPI.GET("/book/:bookId", reviewsController.ListByBook)
		reviewsAPI.GET("/user/:userId", reviewsController.ListByUser)
		reviewsAPI.GET("/user/:userId/book/:bookId", reviewsController.GetForUserBook)
	}

	// Back-office. Cookie sessions need CSRF; bearer callers are exempt.
	var csrf gin.HandlerFunc
	if len(cfg.CSRFSecret) > 0 {
		csrf = auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService)
	} else {
		csrf = func(c *gin.Context) { c.Next() }
	}

	if cfg.SessionManager != nil {
		session := router.Group("/admin", csrf)
		session.GET("/login", authController.AdminSessionToken)
		session.POST("/login", authController.AdminSessionLogin)
		session.POST("/logout", authController.AdminSessionLogout)
	}

	adminAPI := router.Group("/api/admin", csrf, authMiddleware.RequireRole(entities.UserRoleAdmin))
	{
		if cfg.Dashboard != nil {
			dashboard := NewDashboardController(cfg.Dashboard)
			adminAPI.GET("/dashboard", dashboard.Sections)
			adminAPI.GET("/dashboard/:section", dashboard.Show)
		}

		adminBooks := NewAdminBooksController(cfg.Books, recorder)
		adminAPI.GET("/books", adminBooks.List)
		adminAPI.POST("/books", adminBooks.Create)
		adminAPI.PUT("/books/:bookId", adminBooks.Update)
		adminAPI.DELETE("/books/:bookId", adminBooks.Delete)
		adminAPI.GET("/books/:bookId/chapters", adminBooks.ListChapters)
		adminAPI.POST("/books/:bookId/chapters", adminBooks.AddChapter)
		adminAPI.PUT("/books/:bookId/chapters/:chapterId", adminBooks.UpdateChapter)
		adminAPI.DELETE("/books/:bookId/chapters/:chapterId", adminBooks.DeleteChapter)

		adminCategories := NewAdminCategoriesController(cfg.Categories, recorder)
		adminAPI.GET("/categories", adminCategories.List)
		adminAPI.POST("/categories", adminCategories.Create)
		adminAPI.PUT("/categories/:categoryId", adminCategories.Update)
		adminAPI.DELETE("/categories/:categoryId", adminCategories.Delete)

		adminUsers := NewAdminUsersController(cfg.Users, cfg.AuthService, recorder)
		adminAPI.GET("/users", adminUsers.List)
		adminAPI.POST("/users", adminUsers.Create)
		adminAPI.PUT("/users/:userId", adminUsers.Update)
		adminAPI.DELETE("/users/:userId", adminUsers.Delete)

		if auditLister != nil {
			auditController := NewAuditController(auditLister)
			adminAPI.GET("/audit", auditController.List)
		}

		if cfg.TaskQueue != nil {
			tasksController := NewTasksController(cfg.TaskQueue, cfg.TaskDefaults)
			adminAPI.GET("/tasks/types", tasksController.ListTaskTypes)
			adminAPI.GET("/tasks/:id", tasksController.GetTaskStatus)
			adminAPI.POST("/tasks/:id/run", tasksController.RunTask)
		}
	}

	return &Router{Engine: router, authController: authController, searchThrottle: searchThrottle}
}
