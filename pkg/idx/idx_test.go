package idx_test

import (
	"testing"
	"time"

	"github.com/fixplanhq/fixplan/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewProducesValidSortedIDs(t *testing.T) {
	t.Parallel()

	a := idx.New()
	b := idx.New()

	_, err := idx.Parse(a.String())
	require.NoError(t, err)
	_, err = idx.Parse(b.String())
	require.NoError(t, err)

	// Monotonic entropy guarantees order even within a millisecond.
	require.Less(t, a.String(), b.String())
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := idx.NewAt(at)

	got, err := id.Time()
	require.NoError(t, err)
	require.Equal(t, at, got)
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	require.True(t, idx.Zero.IsZero())
	require.False(t, idx.New().IsZero())
}
