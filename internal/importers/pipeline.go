package importers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/log"
)

// BookStore persists imported books. *books.Repository implements it.
type BookStore interface {
	Create(ctx context.Context, book *entities.Book) error
}

// CategoryStore persists imported categories. *categories.Repository
// implements it.
type CategoryStore interface {
	Create(ctx context.Context, category *entities.Category) error
}

// Result counts what an import did.
type Result struct {
	CategoriesCreated int `json:"categoriesCreated"`
	CategoriesSkipped int `json:"categoriesSkipped"`
	BooksCreated      int `json:"booksCreated"`
	BooksSkipped      int `json:"booksSkipped"`
	ChaptersCreated   int `json:"chaptersCreated"`
}

// Pipeline writes a catalogue into the stores: categories first, so books
// can reference them, then books with their chapters.
type Pipeline struct {
	books      BookStore
	categories CategoryStore
}

func NewPipeline(books BookStore, categories CategoryStore) *Pipeline {
	return &Pipeline{books: books, categories: categories}
}

// Import stores every entry of cat that does not exist yet. It stops at the
// first error other than a duplicate and returns the counts so far.
func (p *Pipeline) Import(ctx context.Context, cat *Catalogue) (Result, error) {
	var result Result
	if cat == nil {
		return result, nil
	}

	for _, rec := range cat.Categories {
		err := p.categories.Create(ctx, rec.entity())
		switch {
		case errors.Is(err, categories.ErrCategoryExists):
			log.Debug("Category already exists, skipping", zap.String("name", rec.Name))
			result.CategoriesSkipped++
		case err != nil:
			return result, fmt.Errorf("category %q: %w", rec.Name, err)
		default:
			result.CategoriesCreated++
		}
	}

	for _, rec := range cat.Books {
		book := rec.entity()
		err := p.books.Create(ctx, book)
		switch {
		case errors.Is(err, books.ErrBookExists):
			log.Debug("Book already exists, skipping", zap.String("id", rec.ID))
			result.BooksSkipped++
		case err != nil:
			return result, fmt.Errorf("book %q: %w", rec.Title, err)
		default:
			result.BooksCreated++
			result.ChaptersCreated += len(book.Chapters)
		}
	}

	log.Info("Catalogue imported",
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("categories_skipped", result.CategoriesSkipped),
		zap.Int("books_created", result.BooksCreated),
		zap.Int("books_skipped", result.BooksSkipped),
	)
	return result, nil
}
