package chapters

// Target is a navigation link to a neighbouring chapter.
type Target struct {
	Ordinal int    `json:"ordinal"`
	Title   string `json:"title"`
	Route   string `json:"route"`
}

// View is what a reader sees on one chapter page.
type View struct {
	BookID   string  `json:"bookId"`
	Current  Entry   `json:"current"`
	Route    string  `json:"route"`
	Previous *Target `json:"previous"`
	Next     *Target `json:"next"`
	Total    int     `json:"total"`
}

// ViewAt builds the page for ordinal. It returns false when ordinal is out
// of range.
func (s Set) ViewAt(bookID string, ordinal int) (View, bool) {
	current, ok := s.At(ordinal)
	if !ok {
		return View{}, false
	}

	v := View{
		BookID:  bookID,
		Current: current,
		Route:   Route(bookID, ordinal),
		Total:   s.Len(),
	}
	if prev, ok := s.Previous(ordinal); ok {
		v.Previous = &Target{Ordinal: prev.Ordinal, Title: prev.Title, Route: Route(bookID, prev.Ordinal)}
	}
	if next, ok := s.Next(ordinal); ok {
		v.Next = &Target{Ordinal: next.Ordinal, Title: next.Title, Route: Route(bookID, next.Ordinal)}
	}
	return v, true
}
