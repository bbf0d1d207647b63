package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: NewAt with other timestamps resets the monotonic sequence.
func TestNewIsSortedAndUnique(t *testing.T) {
	ids := make([]string, 500)
	seen := make(map[string]struct{}, len(ids))
	for i := range ids {
		ids[i] = New()
		seen[ids[i]] = struct{}{}
	}
	assert.Len(t, seen, len(ids))
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestNewAtRoundTripsTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got, err := Time(NewAt(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(got), "got %v", got)
}

func TestNewAtBackwardsTime(t *testing.T) {
	t.Parallel()

	later := NewAt(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	earlier := NewAt(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Time("not-an-id")
	assert.Error(t, err)
}
