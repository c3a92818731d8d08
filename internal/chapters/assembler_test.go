package chapters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/entities"
)

func TestAssemble(t *testing.T) {
	stored := []entities.Chapter{
		{ID: "c-a", Position: 7, Title: "Habits", Text: "<p>Small</p>"},
		{ID: "c-b", Position: 2, Title: "Systems", Text: "<p>Big</p>"},
		{ID: "c-c", Position: 0, Title: "Identity", Text: "<p>Who</p>"},
	}

	set := Assemble("A book about habits.", stored)

	want := []Entry{
		{Ordinal: 0, Title: "Introduction", Text: "A book about habits."},
		{Ordinal: 1, ID: "c-a", Title: "Habits", Text: "<p>Small</p>"},
		{Ordinal: 2, ID: "c-b", Title: "Systems", Text: "<p>Big</p>"},
		{Ordinal: 3, ID: "c-c", Title: "Identity", Text: "<p>Who</p>"},
	}
	if diff := cmp.Diff(want, set.Entries()); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, 3, set.Last())
}

func TestAssemble_OrdinalsAreContiguous(t *testing.T) {
	for n := 0; n < 12; n++ {
		stored := make([]entities.Chapter, n)
		for i := range stored {
			stored[i] = entities.Chapter{Title: "ch", Position: 100 - i}
		}

		set := Assemble("synopsis", stored)
		require.Equal(t, n+1, set.Len())
		for i, e := range set.Entries() {
			assert.Equal(t, i, e.Ordinal)
		}
	}
}

func TestAssemble_NoChapters(t *testing.T) {
	set := Assemble("Only a synopsis", nil)

	require.Equal(t, 1, set.Len())
	intro, ok := set.At(0)
	require.True(t, ok)
	assert.True(t, intro.IsIntroduction())

	_, ok = set.Next(0)
	assert.False(t, ok)
	_, ok = set.Previous(0)
	assert.False(t, ok)
}

func TestAssemble_EmptySynopsis(t *testing.T) {
	set := Assemble("", []entities.Chapter{{Title: "One", Text: "x"}})

	intro, ok := set.At(0)
	require.True(t, ok)
	assert.Equal(t, "Introduction", intro.Title)
	assert.Equal(t, "", intro.Text)
}

func TestSet_PreviousNext(t *testing.T) {
	set := Assemble("s", []entities.Chapter{{Title: "One"}, {Title: "Two"}})

	t.Run("introduction has no previous", func(t *testing.T) {
		_, ok := set.Previous(0)
		assert.False(t, ok)
	})

	t.Run("next from introduction is chapter one", func(t *testing.T) {
		next, ok := set.Next(0)
		require.True(t, ok)
		assert.Equal(t, 1, next.Ordinal)
		assert.Equal(t, "One", next.Title)
	})

	t.Run("previous from one is introduction", func(t *testing.T) {
		prev, ok := set.Previous(1)
		require.True(t, ok)
		assert.True(t, prev.IsIntroduction())
	})

	t.Run("last has no next", func(t *testing.T) {
		_, ok := set.Next(2)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok := set.At(3)
		assert.False(t, ok)
		_, ok = set.At(-1)
		assert.False(t, ok)
		_, ok = set.Next(9)
		assert.False(t, ok)
	})
}

func TestSet_PlainText(t *testing.T) {
	set := Assemble("<p>Intro &amp; more</p>", []entities.Chapter{
		{Title: "One", Text: "<h2>Title</h2>\n<p>First   <b>bold</b> line.</p><script>alert(1)</script>"},
	})

	text, ok := set.PlainText(0)
	require.True(t, ok)
	assert.Equal(t, "Intro & more", text)

	text, ok = set.PlainText(1)
	require.True(t, ok)
	assert.Equal(t, "Title First bold line.", text)

	_, ok = set.PlainText(5)
	assert.False(t, ok)
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="x()">Hello <a href="javascript:alert(1)">link</a></p><script>bad()</script>`)

	assert.Contains(t, out, "<p>Hello")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "javascript:")
}

func TestSet_ViewAt(t *testing.T) {
	set := Assemble("s", []entities.Chapter{{Title: "One"}, {Title: "Two"}})

	view, ok := set.ViewAt("book-1", 0)
	require.True(t, ok)
	assert.Equal(t, "/book/book-1/introduction", view.Route)
	assert.Nil(t, view.Previous)
	require.NotNil(t, view.Next)
	assert.Equal(t, "/book/book-1/1", view.Next.Route)

	view, ok = set.ViewAt("book-1", 2)
	require.True(t, ok)
	require.NotNil(t, view.Previous)
	assert.Equal(t, "/book/book-1/1", view.Previous.Route)
	assert.Nil(t, view.Next)
	assert.Equal(t, 3, view.Total)

	_, ok = set.ViewAt("book-1", 3)
	assert.False(t, ok)
}
