package pagination

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id string
	at time.Time
}

func rows(n int) []row {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]row, n)
	for i := range out {
		out[i] = row{id: strconv.Itoa(i), at: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func getID(r row) string         { return r.id }
func getCreated(r row) time.Time { return r.at }

func TestPaginationParamsValidate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	params := &CursorParams{Cursor: EncodeCursor("abc", at)}
	c, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "abc", c.ID)
	assert.True(t, at.Equal(c.CreatedAt))

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)
}

func TestNewCursorPagination(t *testing.T) {
	t.Run("first page forward", func(t *testing.T) {
		params := &CursorParams{Limit: 3}
		params.Validate()
		meta, items := NewCursorPagination(rows(4), params, getID, getCreated)
		assert.Len(t, items, 3)
		assert.True(t, meta.HasNext)
		assert.False(t, meta.HasPrev)
		require.NotNil(t, meta.NextCursor)
	})

	t.Run("backwards page is returned ascending", func(t *testing.T) {
		desc := rows(3)
		desc[0], desc[2] = desc[2], desc[0]
		params := &CursorParams{Limit: 2, Cursor: "x", Direction: CursorDirectionPrev}
		meta, items := NewCursorPagination(desc, params, getID, getCreated)
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].id)
		assert.Equal(t, "2", items[1].id)
		assert.True(t, meta.HasPrev)
		assert.True(t, meta.HasNext)
	})
}

func TestUnifiedParams(t *testing.T) {
	u := &UnifiedPaginationParams{PerPage: 20}
	assert.False(t, u.IsCursorBased())
	assert.Equal(t, 20, u.ToPaginationParams().PerPage)

	u = &UnifiedPaginationParams{Limit: 5}
	assert.True(t, u.IsCursorBased())
	assert.Equal(t, CursorDirectionNext, u.ToCursorParams().Direction)
}
