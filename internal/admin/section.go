// Package admin models the back-office dashboard. Each tab is a Section;
// the set of sections is closed, so Load can switch over it exhaustively.
//
// # Usage
//
//	section, err := admin.ParseSection(c.Param("section"), admin.Query{Page: 1, Limit: 20})
//	panel, err := dashboard.Load(ctx, section)
package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

var ErrUnknownSection = errors.New("unknown dashboard section")

// Section is one dashboard tab. Only the types in this package implement it.
type Section interface {
	Name() string
	sealed()
}

// Query carries the shared listing controls of every tab. Page is 1-based.
type Query struct {
	Page   int
	Limit  int
	Search string
}

func (q Query) request() pagination.Request {
	return pagination.FromPage(q.Page, q.Limit)
}

type BooksSection struct {
	Query
}

type UsersSection struct {
	Query
	Role entities.UserRole
}

type CategoriesSection struct {
	Query
	Active *bool
}

type AuditSection struct {
	Query
	EventType entities.AuditEventType
}

func (BooksSection) Name() string      { return "books" }
func (UsersSection) Name() string      { return "users" }
func (CategoriesSection) Name() string { return "categories" }
func (AuditSection) Name() string      { return "audit" }

func (BooksSection) sealed()      {}
func (UsersSection) sealed()      {}
func (CategoriesSection) sealed() {}
func (AuditSection) sealed()      {}

// SectionNames lists the tabs in display order.
func SectionNames() []string {
	return []string{"books", "users", "categories", "audit"}
}

// ParseSection maps a tab name to its Section. Tab-specific filters are set
// by the caller on the returned value.
func ParseSection(name string, q Query) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "books":
		return BooksSection{Query: q}, nil
	case "users":
		return UsersSection{Query: q}, nil
	case "categories":
		return CategoriesSection{Query: q}, nil
	case "audit":
		return AuditSection{Query: q}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
}
