// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Books, chapters, reader listings and admin CRUD
//	├── categories/      # Categories and per-category book counts
//	├── readinglists/    # Reading lists with set-semantics membership
//	├── reviews/         # Reviews, one per (user, book)
//	├── users/           # User accounts
//	├── audit/           # Audit trail
//	└── dbtest/          # Throwaway databases for tests
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookbrief.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	listsRepo := readinglists.NewRepository(db.DB)
//
//	page, err := booksRepo.ListFree(ctx, pagination.NewRequest(0, 20))
//	list, err := listsRepo.AddBook(ctx, listID, userID, "deep-work")
//
// # Listings
//
// Paginated listings go through pagination.Paginate, which runs the count
// and the page query concurrently. The main database is opened in WAL mode
// with a busy timeout so those reads do not block each other.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register its entities in Models()
package database
