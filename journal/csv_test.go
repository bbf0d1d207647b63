package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestCSVWritesHeadersAndRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ip := filepath.Join(dir, "intents.csv")
	rp := filepath.Join(dir, "rejections.csv")

	j, err := NewCSV(ip, rp)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, j.OnIntent(ctx, approved("A", "BTCUSDT", base)))
	require.NoError(t, j.OnRejection(ctx, rejected("B", base)))
	require.NoError(t, j.Close())

	intents := readCSV(t, ip)
	require.Len(t, intents, 3)
	assert.Equal(t, intentHeader, intents[0])
	assert.Equal(t, []string{
		"A", "2024-01-02T03:04:05Z", "BTCUSDT", "BUY", "LONG", "DUAL_MA(5,20)",
		"50000.500000", "1000.000000", "true", "",
	}, intents[1])
	assert.Equal(t, "false", intents[2][8])

	rejections := readCSV(t, rp)
	require.Len(t, rejections, 2)
	assert.Equal(t, rejectionHeader, rejections[0])
	assert.Equal(t, []string{
		"B", "2024-01-02T03:04:05Z", "BTCUSDT", "SELL", "DailyLossExceeded",
		"-3.50", "3.00", "daily loss limit exceeded: -3.50% < -3.00%",
	}, rejections[1])
}

func TestCSVAppendsWithoutDuplicateHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ip := filepath.Join(dir, "intents.csv")
	rp := filepath.Join(dir, "rejections.csv")

	for _, id := range []string{"A", "B"} {
		j, err := NewCSV(ip, rp)
		require.NoError(t, err)
		require.NoError(t, j.OnIntent(context.Background(), approved(id, "BTCUSDT", base)))
		require.NoError(t, j.Close())
	}

	recs := readCSV(t, ip)
	require.Len(t, recs, 3)
	assert.Equal(t, "A", recs[1][0])
	assert.Equal(t, "B", recs[2][0])
}

func TestCSVBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "intents.csv"), "x.csv")
	assert.Error(t, err)
}
