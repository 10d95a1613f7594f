package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/analyzers"
	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over a daily-bar CSV",
	Long: `Backtest replays a Yahoo-format daily CSV through a strategy.

Supported strategies:
  - noop: does nothing (baseline)
  - ema-sma-cross: long while SMA(20) is above EMA(50)
  - golden-cross: long while SMA(50) is above SMA(200)
  - monthly-ma: rebalance against SMA(200) on month-end trading days

Example:
  backtester backtest --bars data/SPY.csv --strategy golden-cross`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btBarsPath   string
	btStrategy   string
	btInstrument string
	btBalance    float64
	btFast       int
	btSlow       int
	btRiskFree   float64
	btPeriods    int
	btTiming     string
	btCloseEnd   bool
	btDBPath     string
	btVerbose    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config (flags below are ignored when set)")
	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to daily bar CSV (Date,Open,High,Low,Close,Adj Close,Volume)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "ema-sma-cross", "strategy name (noop, ema-sma-cross, golden-cross, monthly-ma)")
	backtestCmd.Flags().StringVarP(&btInstrument, "instrument", "i", "SPY", "instrument symbol")
	backtestCmd.Flags().Float64Var(&btBalance, "balance", 1000, "starting cash balance")
	backtestCmd.Flags().IntVar(&btFast, "fast", 0, "fast window override (0 = strategy default)")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 0, "slow window override (0 = strategy default)")
	backtestCmd.Flags().Float64Var(&btRiskFree, "risk-free", 0.05, "annual risk-free rate for the Sharpe ratio")
	backtestCmd.Flags().IntVar(&btPeriods, "periods", 252, "trading periods per year")
	backtestCmd.Flags().StringVar(&btTiming, "fill-timing", string(sim.SameBar), "fill timing (same-bar, next-bar)")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", false, "flatten any open position after the last bar")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "also journal trades/equity to this SQLite file")
	backtestCmd.Flags().BoolVarP(&btVerbose, "verbose", "v", false, "log every fill")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cfg.Data.CSV == "" {
		return fmt.Errorf("no bar CSV given (use --bars or data.csv in the config)")
	}

	feed, err := backtest.NewCSVFeed(cfg.Data.CSV)
	if err != nil {
		return fmt.Errorf("open bars: %w", err)
	}
	bars, err := backtest.LoadBars(feed)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	cal, err := buildCalendar(cfg, bars)
	if err != nil {
		return err
	}

	mem := journal.NewMemory()
	sink, err := buildJournal(cfg, mem)
	if err != nil {
		return err
	}
	defer sink.Close()

	timing, err := sim.ParseFillTiming(cfg.Execution.FillTiming)
	if err != nil {
		return err
	}

	engine := sim.NewEngine(sink, timing)
	engine.SetCash(decimal.NewFromFloat(cfg.Account.Balance))

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.Instrument, cfg.Strategy.Fast, cfg.Strategy.Slow, cal)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if btVerbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	runner := &backtest.Runner{
		Engine:   engine,
		Feed:     backtest.NewSliceFeed(bars),
		Strategy: strat,
		Options: backtest.RunnerOptions{
			CloseEnd:    cfg.Execution.CloseEnd,
			CloseReason: "EndOfFeed",
		},
		Logger: logger,
	}

	res, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	rep := analyzers.Build(mem, decimal.NewFromFloat(cfg.Account.Balance),
		cfg.Analysis.RiskFreeRate, cfg.Analysis.PeriodsPerYear)

	fmt.Printf("Strategy: %s  Bars: %d  (%s .. %s)\n\n",
		strat.Name(), res.Bars,
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
	backtest.PrintReport(os.Stdout, rep)
	return nil
}

func buildConfig() (*config.Config, error) {
	if btConfigPath != "" {
		return config.LoadFromFile(btConfigPath)
	}

	cfg := config.Default()
	cfg.Account.Balance = btBalance
	cfg.Strategy.Name = btStrategy
	cfg.Strategy.Instrument = btInstrument
	cfg.Strategy.Fast = btFast
	cfg.Strategy.Slow = btSlow
	cfg.Execution.FillTiming = btTiming
	cfg.Execution.CloseEnd = btCloseEnd
	cfg.Analysis.RiskFreeRate = btRiskFree
	cfg.Analysis.PeriodsPerYear = btPeriods
	cfg.Data.CSV = btBarsPath
	if btDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildCalendar(cfg *config.Config, bars []market.Bar) (*market.Calendar, error) {
	if len(cfg.Strategy.MonthEnds) > 0 {
		return market.NewCalendar(cfg.Strategy.MonthEnds)
	}
	// No external calendar given: take the last bar date of each month.
	return market.DeriveMonthEnds(bars), nil
}

func buildJournal(cfg *config.Config, mem *journal.Memory) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "memory":
		return journal.Tee{mem}, nil
	case "csv":
		c, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return journal.Tee{mem, c}, nil
	case "sqlite":
		s, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return journal.Tee{mem, s}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}
