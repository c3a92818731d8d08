package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

type BookSource interface {
	AdminList(ctx context.Context, search string, req pagination.Request) (*pagination.Page[entities.Book], error)
	CountActive(ctx context.Context) (int64, error)
}

type UserSource interface {
	List(ctx context.Context, filter users.ListFilter, req pagination.Request) (*pagination.Page[entities.User], error)
	Count(ctx context.Context) (total, admins int64, err error)
}

type CategorySource interface {
	List(ctx context.Context, filter categories.ListFilter, req pagination.Request) (*pagination.Page[entities.Category], error)
	Count(ctx context.Context) (total, active int64, err error)
}

type AuditSource interface {
	List(ctx context.Context, filter audit.Filter, req pagination.Request) (*pagination.Page[entities.AuditEvent], error)
}

// Stats are the headline counters shown above every tab.
type Stats struct {
	Books            int64 `json:"books"`
	Users            int64 `json:"users"`
	Admins           int64 `json:"admins"`
	Categories       int64 `json:"categories"`
	ActiveCategories int64 `json:"activeCategories"`
}

// Panel is the payload of one rendered tab.
type Panel struct {
	Section    string          `json:"section"`
	Stats      Stats           `json:"stats"`
	Items      any             `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type Dashboard struct {
	books      BookSource
	users      UserSource
	categories CategorySource
	audit      AuditSource
}

func NewDashboard(books BookSource, users UserSource, categories CategorySource, audit AuditSource) *Dashboard {
	return &Dashboard{books: books, users: users, categories: categories, audit: audit}
}

// Load fetches the stats and the listing of one tab concurrently.
func (d *Dashboard) Load(ctx context.Context, section Section) (*Panel, error) {
	panel := &Panel{Section: section.Name()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := d.stats(gctx)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		panel.Stats = stats
		return nil
	})
	g.Go(func() error {
		items, meta, err := d.list(gctx, section)
		if err != nil {
			return fmt.Errorf("load %s: %w", section.Name(), err)
		}
		panel.Items = items
		panel.Pagination = meta
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return panel, nil
}

func (d *Dashboard) list(ctx context.Context, section Section) (any, pagination.Meta, error) {
	switch s := section.(type) {
	case BooksSection:
		page, err := d.books.AdminList(ctx, s.Search, s.request())
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		return page.Items, page.Meta(), nil
	case UsersSection:
		page, err := d.users.List(ctx, users.ListFilter{Search: s.Search, Role: s.Role}, s.request())
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		return page.Items, page.Meta(), nil
	case CategoriesSection:
		page, err := d.categories.List(ctx, categories.ListFilter{Search: s.Search, Active: s.Active}, s.request())
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		return page.Items, page.Meta(), nil
	case AuditSection:
		page, err := d.audit.List(ctx, audit.Filter{EventType: s.EventType, Search: s.Search}, s.request())
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		return page.Items, page.Meta(), nil
	default:
		return nil, pagination.Meta{}, fmt.Errorf("%w: %T", ErrUnknownSection, section)
	}
}

func (d *Dashboard) stats(ctx context.Context) (Stats, error) {
	var s Stats
	var err error
	if s.Books, err = d.books.CountActive(ctx); err != nil {
		return s, err
	}
	if s.Users, s.Admins, err = d.users.Count(ctx); err != nil {
		return s, err
	}
	if s.Categories, s.ActiveCategories, err = d.categories.Count(ctx); err != nil {
		return s, err
	}
	return s, nil
}
