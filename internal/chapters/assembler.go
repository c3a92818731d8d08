// Package chapters turns a book's stored chapters into the navigable
// sequence readers move through.
//
// Ordinal 0 is always a synthesized introduction carrying the book's
// synopsis; stored chapters follow at ordinals 1..N in storage order. The
// ordinal is assigned here and never persisted.
//
// # Usage
//
//	set := chapters.Assemble(book.AboutTheBook, book.Chapters)
//	entry, ok := set.At(ordinal)
//	next, ok := set.Next(ordinal)
//	route := chapters.Route(book.ID, next.Ordinal)
package chapters

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bookbrief/bookbrief/internal/entities"
)

const IntroductionTitle = "Introduction"

// Entry is one navigable chapter.
type Entry struct {
	Ordinal int    `json:"ordinal"`
	ID      string `json:"id,omitempty"` // stored chapter id, empty for the introduction
	Title   string `json:"title"`
	Text    string `json:"text"`
}

// IsIntroduction reports whether e is the synthesized introduction.
func (e Entry) IsIntroduction() bool {
	return e.Ordinal == 0
}

// Set is an assembled, read-only chapter sequence. The zero value is empty;
// use Assemble.
type Set struct {
	entries []Entry
}

// Assemble builds the navigable set: the introduction followed by stored in
// slice order. Any position carried by the stored chapters is ignored. An
// empty synopsis yields an introduction with empty text.
func Assemble(synopsis string, stored []entities.Chapter) Set {
	entries := make([]Entry, 0, len(stored)+1)
	entries = append(entries, Entry{
		Ordinal: 0,
		Title:   IntroductionTitle,
		Text:    synopsis,
	})
	for i, ch := range stored {
		entries = append(entries, Entry{
			Ordinal: i + 1,
			ID:      ch.ID,
			Title:   ch.Title,
			Text:    ch.Text,
		})
	}
	return Set{entries: entries}
}

// Len is N+1 for a book with N stored chapters.
func (s Set) Len() int {
	return len(s.entries)
}

// Last is the highest valid ordinal, or -1 for an unassembled Set.
func (s Set) Last() int {
	return len(s.entries) - 1
}

// Entries returns a copy of the whole sequence.
func (s Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// At returns the entry at ordinal.
func (s Set) At(ordinal int) (Entry, bool) {
	if ordinal < 0 || ordinal >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[ordinal], true
}

// Previous returns the entry before ordinal; absent at the introduction.
func (s Set) Previous(ordinal int) (Entry, bool) {
	if ordinal <= 0 {
		return Entry{}, false
	}
	return s.At(ordinal - 1)
}

// Next returns the entry after ordinal; absent at the last chapter.
func (s Set) Next(ordinal int) (Entry, bool) {
	if ordinal < 0 || ordinal >= s.Last() {
		return Entry{}, false
	}
	return s.At(ordinal + 1)
}

// PlainText returns the chapter text stripped of markup, for read-aloud.
func (s Set) PlainText(ordinal int) (string, bool) {
	e, ok := s.At(ordinal)
	if !ok {
		return "", false
	}
	return PlainText(e.Text), true
}

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips all HTML from text and collapses whitespace.
func PlainText(text string) string {
	stripped := html.UnescapeString(strictPolicy.Sanitize(text))
	return strings.Join(strings.Fields(stripped), " ")
}

var contentPolicy = bluemonday.UGCPolicy()

// SanitizeHTML removes scripts, event handlers and other unsafe markup from
// chapter or synopsis HTML before it is stored.
func SanitizeHTML(text string) string {
	return contentPolicy.Sanitize(text)
}
