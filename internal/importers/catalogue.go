package importers

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/entities"
)

// Catalogue is the YAML import document.
type Catalogue struct {
	Categories []CategoryRecord `yaml:"categories"`
	Books      []BookRecord     `yaml:"books"`
}

type CategoryRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
	Image       string `yaml:"image"`
	Inactive    bool   `yaml:"inactive"`
}

type BookRecord struct {
	ID            string          `yaml:"id"`
	Title         string          `yaml:"title"`
	Subtitle      string          `yaml:"subtitle"`
	Author        string          `yaml:"author"`
	Category      string          `yaml:"category"`
	ImageURL      string          `yaml:"image_url"`
	AboutTheBook  string          `yaml:"about"`
	Language      string          `yaml:"language"`
	ReadingTime   int             `yaml:"reading_time"`
	Rating        float64         `yaml:"rating"`
	Free          bool            `yaml:"free"`
	Published     bool            `yaml:"published"`
	PublishedDate string          `yaml:"published_date"` // YYYY-MM-DD
	Chapters      []ChapterRecord `yaml:"chapters"`
}

type ChapterRecord struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

var ErrEmptyCatalogue = errors.New("catalogue has no categories and no books")

// ParseCatalogue decodes and validates a catalogue. Unknown keys are rejected
// so that typos do not silently drop data.
func ParseCatalogue(r io.Reader) (*Catalogue, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat Catalogue
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalogue
		}
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if len(cat.Categories) == 0 && len(cat.Books) == 0 {
		return nil, ErrEmptyCatalogue
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalogue) validate() error {
	for i, rec := range c.Categories {
		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("category %d: name is required", i+1)
		}
	}
	for i, rec := range c.Books {
		if strings.TrimSpace(rec.Title) == "" {
			return fmt.Errorf("book %d: title is required", i+1)
		}
		if rec.PublishedDate != "" {
			if _, err := time.Parse(time.DateOnly, rec.PublishedDate); err != nil {
				return fmt.Errorf("book %q: invalid published_date %q", rec.Title, rec.PublishedDate)
			}
		}
		for j, ch := range rec.Chapters {
			if strings.TrimSpace(ch.Title) == "" {
				return fmt.Errorf("book %q chapter %d: title is required", rec.Title, j+1)
			}
		}
	}
	return nil
}

func (rec CategoryRecord) entity() *entities.Category {
	return &entities.Category{
		ID:          rec.ID,
		Name:        strings.TrimSpace(rec.Name),
		Description: rec.Description,
		Color:       rec.Color,
		Icon:        rec.Icon,
		Image:       rec.Image,
		IsActive:    !rec.Inactive,
	}
}

func (rec BookRecord) entity() *entities.Book {
	book := &entities.Book{
		ID:           rec.ID,
		Title:        strings.TrimSpace(rec.Title),
		Subtitle:     rec.Subtitle,
		Author:       rec.Author,
		Category:     rec.Category,
		ImageURL:     rec.ImageURL,
		AboutTheBook: chapters.SanitizeHTML(rec.AboutTheBook),
		Language:     rec.Language,
		ReadingTime:  rec.ReadingTime,
		Rating:       rec.Rating,
		IsFree:       rec.Free,
		IsPublished:  rec.Published,
	}
	if rec.PublishedDate != "" {
		// validated by ParseCatalogue
		if t, err := time.Parse(time.DateOnly, rec.PublishedDate); err == nil {
			book.PublishedDate = &t
		}
	}
	for _, ch := range rec.Chapters {
		book.Chapters = append(book.Chapters, entities.Chapter{ID: ch.ID, Title: ch.Title, Text: chapters.SanitizeHTML(ch.Text)})
	}
	return book
}
