package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradecore/config"
	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/journal"
	"github.com/rustyeddy/tradecore/metrics"
	"github.com/rustyeddy/tradecore/notify"
	"github.com/rustyeddy/tradecore/pkg/logging"
	"github.com/rustyeddy/tradecore/replay"
	"github.com/rustyeddy/tradecore/risk"
	"github.com/rustyeddy/tradecore/strategies"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading core from a config file",
	Long: `Run the signal, risk and order book pipeline.

With --events the recorded market data in the CSV file is replayed through
the pipeline and the command exits when it is exhausted. Without it the
engine runs until interrupted, rolling the daily loss counter over at UTC
midnight.

Example:
  trader run -f trader.yaml --events testdata/btc.csv`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runConfigPath string
	runEventsPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runEventsPath, "events", "e", "", "replay market events from this CSV file")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.General.LogLevel
	if rootLogLevel != "" {
		level = rootLogLevel
	}
	log := logging.New(level, cfg.General.LogFormat, cmd.ErrOrStderr()).
		With().Str("env", cfg.General.Environment).Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runTrader(ctx, cfg, runEventsPath, log)
}

// runTrader wires every component from cfg and runs until ctx is done or,
// when eventsPath is set, until the recorded events are consumed.
func runTrader(ctx context.Context, cfg *config.Config, eventsPath string, log zerolog.Logger) error {
	m := metrics.New()

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := j.Close(); err != nil {
			log.Error().Err(err).Msg("close journal")
		}
	}()

	alerter := notify.NewAlerter(notify.NewNotifier(senders(cfg.Notify), cfg.Notify.Events, log), log)

	rm, err := risk.NewManager(cfg.RiskConfig(), cfg.Trading.InitialCapital, log)
	if err != nil {
		return fmt.Errorf("risk manager: %w", err)
	}
	strat, err := strategies.New(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	ecfg := cfg.EngineConfig()
	if eventsPath != "" {
		// Replay is driven by event time only; a wall-clock timer would
		// make its output depend on how fast the file is read.
		ecfg.EvalInterval = 0
	}
	eng, err := engine.New(ecfg, strat, rm, engine.MultiSink{j, alerter}, log, engine.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	day := &dayCloser{Engine: eng, alerter: alerter, log: log}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return eng.Run(gctx) })
	if cfg.Metrics.Enabled {
		g.Go(func() error { return metrics.Serve(gctx, cfg.Metrics.Addr, m, log) })
	}

	if err := alerter.Startup(gctx, ecfg.Symbols, strat.Name()); err != nil {
		log.Warn().Err(err).Msg("startup alert not delivered")
	}

	if eventsPath != "" {
		g.Go(func() error {
			defer cancel()
			stats, err := replay.Feed(gctx, eventsPath, day)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			if err := eng.Flush(gctx); err != nil {
				return err
			}
			// Without a tick cadence nothing has been evaluated yet.
			if ecfg.EvalEveryTicks == 0 {
				if err := eng.Evaluate(gctx); err != nil {
					return err
				}
			}
			log.Info().
				Int("trades", stats.Trades).
				Int("books", stats.Books).
				Int("rollovers", stats.Rollovers).
				Msg("replay finished")
			return nil
		})
	} else {
		g.Go(func() error { return day.runDaily(gctx, nil) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		if aerr := alerter.Error(context.Background(), err); aerr != nil {
			log.Warn().Err(aerr).Msg("error alert not delivered")
		}
		return err
	}

	snap := rm.Snapshot()
	log.Info().
		Float64("daily_pnl", snap.DailyPnL).
		Float64("total_position", snap.TotalPosition).
		Int("trades", alerter.Trades()).
		Msg("trader stopped")
	return nil
}

func senders(cfg config.NotifyConfig) []notify.Sender {
	var out []notify.Sender
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		out = append(out, notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.DiscordWebhookURL != "" {
		out = append(out, notify.NewDiscordSender(cfg.DiscordWebhookURL))
	}
	return out
}
