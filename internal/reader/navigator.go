// Package reader drives a reading session on the client side: it holds the
// assembled chapter set, moves between chapters, and controls read-aloud
// playback.
//
// Moving to another chapter always cancels playback first and never starts
// it again; only Play starts speech.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/entities"
)

var (
	ErrChapterOutOfRange = errors.New("chapter out of range")
	ErrNothingToSpeak    = errors.New("chapter has no text to read")
)

// Speaker is a text-to-speech engine. Speak starts playback and returns
// without waiting for it to finish. Cancel stops active or paused playback
// and is harmless when nothing is playing.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Router changes the visible route, e.g. a browser history push.
type Router interface {
	Push(route string)
}

// BookLoader fetches a book with its chapters in storage order.
type BookLoader interface {
	GetBook(ctx context.Context, bookID string) (*entities.Book, error)
}

type Navigator struct {
	mu      sync.Mutex
	book    *entities.Book
	set     chapters.Set
	current int
	playing bool

	router  Router
	speaker Speaker
}

// Open loads a book and positions the reader at the chapter named by token.
func Open(ctx context.Context, loader BookLoader, bookID, token string, router Router, speaker Speaker) (*Navigator, error) {
	ordinal, err := chapters.ParseToken(token)
	if err != nil {
		return nil, err
	}

	book, err := loader.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", bookID, err)
	}

	set := chapters.Assemble(book.AboutTheBook, book.Chapters)
	if _, ok := set.At(ordinal); !ok {
		return nil, fmt.Errorf("%w: %d of %d", ErrChapterOutOfRange, ordinal, set.Last())
	}

	return &Navigator{
		book:    book,
		set:     set,
		current: ordinal,
		router:  router,
		speaker: speaker,
	}, nil
}

func (n *Navigator) Book() *entities.Book {
	return n.book
}

func (n *Navigator) Chapters() chapters.Set {
	return n.set
}

// Current returns the chapter being read.
func (n *Navigator) Current() chapters.Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, _ := n.set.At(n.current)
	return e
}

// View returns the current chapter with its neighbour links.
func (n *Navigator) View() chapters.View {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, _ := n.set.ViewAt(n.book.ID, n.current)
	return v
}

// Previous moves one chapter back. It is a no-op at the introduction and
// reports whether the reader moved.
func (n *Navigator) Previous() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	target, ok := n.set.Previous(n.current)
	if !ok {
		return false
	}
	n.moveLocked(target.Ordinal)
	return true
}

// Next moves one chapter forward. It is a no-op at the last chapter.
func (n *Navigator) Next() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	target, ok := n.set.Next(n.current)
	if !ok {
		return false
	}
	n.moveLocked(target.Ordinal)
	return true
}

// GoTo jumps to ordinal. Out-of-range ordinals are ignored.
func (n *Navigator) GoTo(ordinal int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.set.At(ordinal); !ok {
		return false
	}
	n.moveLocked(ordinal)
	return true
}

func (n *Navigator) moveLocked(ordinal int) {
	if n.speaker != nil {
		n.speaker.Cancel()
	}
	n.playing = false
	n.current = ordinal
	if n.router != nil {
		n.router.Push(chapters.Route(n.book.ID, ordinal))
	}
}

// Play reads the current chapter aloud.
func (n *Navigator) Play(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.speaker == nil {
		return nil
	}
	text, _ := n.set.PlainText(n.current)
	if text == "" {
		return ErrNothingToSpeak
	}
	if err := n.speaker.Speak(ctx, text); err != nil {
		return err
	}
	n.playing = true
	return nil
}

// Stop cancels playback.
func (n *Navigator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.speaker != nil {
		n.speaker.Cancel()
	}
	n.playing = false
}

func (n *Navigator) IsPlaying() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}
