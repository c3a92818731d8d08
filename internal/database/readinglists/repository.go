// Package readinglists provides database operations for user reading lists.
//
// List membership is a set. Adding a book that is already on the list and
// removing one that is not are both no-ops, enforced by the unique
// (list_id, book_id) index rather than by read-then-write checks.
//
// # Usage
//
//	repo := readinglists.NewRepository(db)
//	err := repo.AddBook(ctx, listID, userID, "deep-work")
package readinglists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookbrief/bookbrief/internal/entities"
)

var (
	ErrListNotFound = errors.New("reading list not found")
	ErrNotOwner     = errors.New("reading list belongs to another user")
	ErrUnknownBook  = errors.New("book not found")
	ErrListExists   = errors.New("reading list with this id already exists")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUpdate is a partial update. A non-nil BookIDs replaces the whole set.
type ListUpdate struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=256"`
	Description *string   `json:"description" binding:"omitempty,max=1024"`
	IsPublic    *bool     `json:"isPublic"`
	BookIDs     *[]string `json:"bookIds"`
}

// Create stores a list and its initial books. Duplicate book IDs collapse.
// A caller-supplied ID that is already taken yields ErrListExists.
func (r *Repository) Create(ctx context.Context, list *entities.ReadingList) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if list.ID != "" {
			var taken int64
			if err := tx.Model(&entities.ReadingList{}).Where("id = ?", list.ID).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrListExists
			}
		}
		if err := tx.Omit("Entries").Create(list).Error; err != nil {
			return fmt.Errorf("failed to create reading list: %w", err)
		}
		return insertBooks(tx, list.ID, list.BookIDs)
	})
	if err != nil {
		return err
	}
	return r.hydrate(ctx, list)
}

// Get returns a list visible to viewerID: public lists are visible to
// everyone, private ones only to their owner.
func (r *Repository) Get(ctx context.Context, id string, viewerID uint) (*entities.ReadingList, error) {
	list, err := r.find(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if !list.IsPublic && list.UserID != viewerID {
		return nil, ErrListNotFound
	}
	if err := r.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListPublic returns every public list, newest first.
func (r *Repository) ListPublic(ctx context.Context) ([]entities.ReadingList, error) {
	var lists []entities.ReadingList
	err := r.db.WithContext(ctx).Where("is_public = ?", true).
		Order("created_at DESC").Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, r.hydrateAll(ctx, lists)
}

// ListByUser returns the lists of userID. Private lists are included only
// when the viewer is that user.
func (r *Repository) ListByUser(ctx context.Context, userID, viewerID uint) ([]entities.ReadingList, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if userID != viewerID {
		q = q.Where("is_public = ?", true)
	}

	var lists []entities.ReadingList
	if err := q.Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, r.hydrateAll(ctx, lists)
}

// Update applies a partial update to a list owned by ownerID.
func (r *Repository) Update(ctx context.Context, id string, ownerID uint, update ListUpdate) (*entities.ReadingList, error) {
	var list *entities.ReadingList
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		list, err = r.owned(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		cols := map[string]any{"updated_at": time.Now()}
		if update.Name != nil {
			cols["name"] = *update.Name
		}
		if update.Description != nil {
			cols["description"] = *update.Description
		}
		if update.IsPublic != nil {
			cols["is_public"] = *update.IsPublic
		}
		if err := tx.Model(list).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update reading list: %w", err)
		}

		if update.BookIDs != nil {
			if err := tx.Where("list_id = ?", id).Delete(&entities.ReadingListBook{}).Error; err != nil {
				return err
			}
			if err := insertBooks(tx, id, *update.BookIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id, ownerID)
}

// Delete removes a list owned by ownerID together with its membership rows.
func (r *Repository) Delete(ctx context.Context, id string, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.owned(ctx, tx, id, ownerID); err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&entities.ReadingListBook{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.ReadingList{}).Error
	})
}

// AddBook puts bookID on the list. Adding a book twice stores it once.
func (r *Repository) AddBook(ctx context.Context, id string, ownerID uint, bookID string) (*entities.ReadingList, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.owned(ctx, tx, id, ownerID); err != nil {
			return err
		}

		var known int64
		if err := tx.Model(&entities.Book{}).
			Where("id = ? AND is_deleted = ?", bookID, false).
			Count(&known).Error; err != nil {
			return err
		}
		if known == 0 {
			return ErrUnknownBook
		}

		return insertBooks(tx, id, []string{bookID})
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id, ownerID)
}

// RemoveBook takes bookID off the list. Removing an absent book is not an
// error.
func (r *Repository) RemoveBook(ctx context.Context, id string, ownerID uint, bookID string) (*entities.ReadingList, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.owned(ctx, tx, id, ownerID); err != nil {
			return err
		}
		return tx.Where("list_id = ? AND book_id = ?", id, bookID).
			Delete(&entities.ReadingListBook{}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id, ownerID)
}

func insertBooks(tx *gorm.DB, listID string, bookIDs []string) error {
	if len(bookIDs) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]entities.ReadingListBook, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		rows = append(rows, entities.ReadingListBook{ListID: listID, BookID: bookID, AddedAt: now})
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "list_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to add books to list: %w", err)
	}
	return nil
}

func (r *Repository) find(ctx context.Context, db *gorm.DB, id string) (*entities.ReadingList, error) {
	var list entities.ReadingList
	err := db.WithContext(ctx).Where("id = ?", id).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *Repository) owned(ctx context.Context, tx *gorm.DB, id string, ownerID uint) (*entities.ReadingList, error) {
	list, err := r.find(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if list.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return list, nil
}

func (r *Repository) hydrate(ctx context.Context, list *entities.ReadingList) error {
	lists := []entities.ReadingList{*list}
	if err := r.hydrateAll(ctx, lists); err != nil {
		return err
	}
	list.BookIDs = lists[0].BookIDs
	return nil
}

// hydrateAll fills BookIDs in insertion order with a single query.
func (r *Repository) hydrateAll(ctx context.Context, lists []entities.ReadingList) error {
	if len(lists) == 0 {
		return nil
	}

	ids := make([]string, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}

	var entries []entities.ReadingListBook
	if err := r.db.WithContext(ctx).Where("list_id IN ?", ids).
		Order("id ASC").Find(&entries).Error; err != nil {
		return fmt.Errorf("failed to load list books: %w", err)
	}

	byList := make(map[string][]string, len(lists))
	for _, e := range entries {
		byList[e.ListID] = append(byList[e.ListID], e.BookID)
	}
	for i := range lists {
		lists[i].BookIDs = byList[lists[i].ID]
		if lists[i].BookIDs == nil {
			lists[i].BookIDs = []string{}
		}
	}
	return nil
}
