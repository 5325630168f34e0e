package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 123, time.UTC)
	id := uuid.New()

	parsed, err := ParseCursor(EncodeCursor(Cursor{At: at, ID: id}))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.True(t, parsed.At.Equal(at))
	require.Equal(t, id, parsed.ID)
}

func TestParseCursorBlankAndInvalid(t *testing.T) {
	parsed, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, parsed)

	_, err = ParseCursor("not-base64!")
	require.Error(t, err)
}

func TestTrimBuildsNextCursor(t *testing.T) {
	type row struct {
		at time.Time
		id uuid.UUID
	}
	now := time.Now().UTC()
	rows := []row{{now, uuid.New()}, {now.Add(-time.Minute), uuid.New()}, {now.Add(-2 * time.Minute), uuid.New()}}
	cursorOf := func(r row) Cursor { return Cursor{At: r.at, ID: r.id} }

	page := Trim(rows, 2, cursorOf)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, rows[1].id, next.ID)

	last := Trim(rows[:1], 2, cursorOf)
	require.Len(t, last.Items, 1)
	require.Empty(t, last.NextCursor)
}
