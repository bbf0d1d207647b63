package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradecore/config"
	"github.com/rustyeddy/tradecore/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayCSV = `time,kind,symbol,price
2024-03-01T10:00:00Z,trade,BTCUSDT,1
2024-03-01T10:00:01Z,trade,BTCUSDT,1
2024-03-01T10:00:02Z,trade,BTCUSDT,1
2024-03-01T10:00:03Z,trade,BTCUSDT,1
2024-03-01T10:00:04Z,trade,BTCUSDT,2
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func replayConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Strategy.FastPeriod = 2
	cfg.Strategy.SlowPeriod = 3
	cfg.Engine.EvalInterval = config.Duration{}
	cfg.Engine.EvalEveryTicks = 5
	cfg.Journal = journal.Config{Type: "sqlite", Path: filepath.Join(dir, "trader.db")}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestUntilNextDay(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 24 * time.Hour},
		{time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC), time.Minute},
		{time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), 12 * time.Hour},
		{time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), 24 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, untilNextDay(tt.now), tt.now.String())
	}
}

func TestRunTraderReplay(t *testing.T) {
	dir := t.TempDir()
	cfg := replayConfig(t, dir)
	events := filepath.Join(dir, "events.csv")
	require.NoError(t, os.WriteFile(events, []byte(replayCSV), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, runTrader(ctx, cfg, events, zerolog.Nop()))

	j, err := journal.NewSQLite(cfg.Journal.Path)
	require.NoError(t, err)
	defer j.Close()

	approved, rejected, err := j.CountIntents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, approved)
	assert.Equal(t, 0, rejected)

	intents, err := j.ListIntents(context.Background(), "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "dual_ma", intents[0].Strategy)
	assert.Equal(t, 2.0, intents[0].Price)
	assert.True(t, intents[0].Time.Equal(time.Date(2024, 3, 1, 10, 0, 4, 0, time.UTC)),
		"intent stamped with the replayed trade time, got %s", intents[0].Time)

	out, err := execute(t, "journal", "stats", "--db", cfg.Journal.Path)
	require.NoError(t, err)
	assert.Contains(t, out, "approved: 1")
	assert.Contains(t, out, "rejected: 0")

	out, err = execute(t, "journal", "intents", "--db", cfg.Journal.Path, "--symbol", "BTCUSDT")
	require.NoError(t, err)
	assert.Contains(t, out, intents[0].ID)
	assert.Contains(t, out, "BUY")

	out, err = execute(t, "journal", "show", intents[0].ID, "--db", cfg.Journal.Path)
	require.NoError(t, err)
	assert.Contains(t, out, "** APPROVED BUY BTCUSDT")
}

func TestRunTraderMissingEvents(t *testing.T) {
	dir := t.TempDir()
	cfg := replayConfig(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := runTrader(ctx, cfg, filepath.Join(dir, "absent.csv"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replay")
}

func TestRunTraderStopsOnCancel(t *testing.T) {
	cfg := replayConfig(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runTrader(ctx, cfg, "", zerolog.Nop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runTrader did not stop")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "dual_ma (5/20)")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "trader version "+version+"\n", out)
}
