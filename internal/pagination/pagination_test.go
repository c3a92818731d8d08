package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sliceSource(rows []int) (CountFunc, FetchFunc[int]) {
	count := func(ctx context.Context) (int64, error) {
		return int64(len(rows)), nil
	}
	fetch := func(ctx context.Context, skip, limit int) ([]int, error) {
		if skip >= len(rows) {
			return nil, nil
		}
		end := skip + limit
		if end > len(rows) {
			end = len(rows)
		}
		return rows[skip:end], nil
	}
	return count, fetch
}

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		limit  int
		want   Request
	}{
		{"defaults limit", 0, 0, Request{Offset: 0, Limit: DefaultLimit}},
		{"negative offset", -3, 10, Request{Offset: 0, Limit: 10}},
		{"caps limit", 2, 500, Request{Offset: 2, Limit: MaxLimit}},
		{"keeps valid", 4, 25, Request{Offset: 4, Limit: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRequest(tt.offset, tt.limit))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Request{Offset: 0, Limit: 20}, Parse("", ""))
	assert.Equal(t, Request{Offset: 0, Limit: 20}, Parse("abc", "xyz"))
	assert.Equal(t, Request{Offset: 3, Limit: 5}, Parse("3", "5"))
}

func TestRequest_Skip(t *testing.T) {
	assert.Equal(t, 0, NewRequest(0, 20).Skip())
	assert.Equal(t, 40, NewRequest(2, 20).Skip())
	assert.Equal(t, 30, FromPage(4, 10).Skip())
}

func TestWindow_HasMore(t *testing.T) {
	tests := []struct {
		offset int
		total  int64
		want   bool
	}{
		{0, 45, true},
		{1, 45, true},
		{2, 45, false},
		{0, 20, false},
		{0, 21, true},
		{0, 0, false},
	}

	for _, tt := range tests {
		w := Window{Offset: tt.offset, Limit: 20, TotalCount: tt.total}
		assert.Equal(t, tt.want, w.HasMore(), "offset=%d total=%d", tt.offset, tt.total)
	}
}

func TestWindow_Meta(t *testing.T) {
	meta := Window{Offset: 1, Limit: 20, TotalCount: 45}.Meta()

	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(45), meta.TotalCount)
	assert.True(t, meta.HasMore)
	assert.Equal(t, 20, meta.Limit)
}

func TestPaginate_CoversAllRowsWithoutDuplicates(t *testing.T) {
	rows := make([]int, 45)
	for i := range rows {
		rows[i] = i
	}
	count, fetch := sliceSource(rows)

	var all []int
	expectMore := []bool{true, true, false}
	for offset := 0; offset < 3; offset++ {
		page, err := Paginate(context.Background(), NewRequest(offset, 20), count, fetch)
		require.NoError(t, err)
		assert.Equal(t, expectMore[offset], page.HasMore(), "page %d", offset)
		all = append(all, page.Items...)
	}

	assert.Equal(t, rows, all)
}

func TestPaginate_EmptyPageIsNotNil(t *testing.T) {
	count, fetch := sliceSource(nil)

	page, err := Paginate(context.Background(), NewRequest(0, 20), count, fetch)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestPaginate_PropagatesErrors(t *testing.T) {
	boom := errors.New("store unavailable")

	t.Run("count error", func(t *testing.T) {
		_, fetch := sliceSource([]int{1})
		count := func(ctx context.Context) (int64, error) { return 0, boom }

		_, err := Paginate(context.Background(), NewRequest(0, 20), count, fetch)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("fetch error", func(t *testing.T) {
		count, _ := sliceSource([]int{1})
		fetch := func(ctx context.Context, skip, limit int) ([]int, error) { return nil, boom }

		_, err := Paginate(context.Background(), NewRequest(0, 20), count, fetch)
		assert.ErrorIs(t, err, boom)
	})
}
