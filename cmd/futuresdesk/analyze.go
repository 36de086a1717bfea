package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/agent"
	"github.com/ShayCichocki/futuresdesk/internal/config"
	"github.com/ShayCichocki/futuresdesk/internal/market"
	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/internal/report"
	"github.com/ShayCichocki/futuresdesk/internal/signals"
	"github.com/ShayCichocki/futuresdesk/internal/state"
	"github.com/ShayCichocki/futuresdesk/internal/tui"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

var (
	analyzeSymbol      string
	analyzeKeyword     string
	analyzeProvider    string
	analyzeNoTUI       bool
	analyzePrintReport bool
	analyzeListSymbols bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Run a full analysis for one futures variety",
	Long: `Run the analyst desk for one futures variety and write the final report.

The symbol is a variety code from the catalog (see 'futuresdesk symbols').
The keyword used for news and sentiment searches defaults to the
variety's Chinese name.

Examples:
  futuresdesk analyze ss
  futuresdesk analyze --symbol cu --keyword 沪铜
  futuresdesk analyze rb --provider offline --no-tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSymbol, "symbol", "s", "", "Futures variety code, e.g. ss")
	analyzeCmd.Flags().StringVarP(&analyzeKeyword, "keyword", "k", "", "Search keyword (default: the variety's catalog name)")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "Override the LLM provider (anthropic, gemini, offline)")
	analyzeCmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "Log progress instead of showing the live view")
	analyzeCmd.Flags().BoolVar(&analyzePrintReport, "print", false, "Print the final report after the summary")
	analyzeCmd.Flags().BoolVar(&analyzeListSymbols, "list-symbols", false, "List the catalog instead of running (same as 'futuresdesk symbols')")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeListSymbols {
		return runSymbols(cmd, nil)
	}

	symbol := analyzeSymbol
	if len(args) > 0 {
		if symbol != "" && !strings.EqualFold(symbol, args[0]) {
			return fmt.Errorf("symbol given twice: %q and %q", symbol, args[0])
		}
		symbol = args[0]
	}
	symbol = market.Normalize(symbol)
	if symbol == "" {
		return errors.New("a symbol is required, e.g. 'futuresdesk analyze ss'")
	}
	if _, err := market.Lookup(symbol); err != nil {
		color.Yellow("Warning: %s is not in the catalog; market data will be unavailable", symbol)
	}
	keyword := analyzeKeyword
	if keyword == "" {
		keyword = market.DisplayName(symbol)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if analyzeProvider != "" {
		cfg.LLM.Provider = config.Provider(strings.ToLower(analyzeProvider))
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	useTUI := !analyzeNoTUI && isatty.IsTerminal(os.Stdout.Fd())
	logger, cleanup, err := newLogger(cfg, useTUI)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer cleanup()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, stopWatch, err := signals.Watch(ctx, cwd)
	if err != nil {
		return fmt.Errorf("watch kill signal: %w", err)
	}
	defer stopWatch()

	prov, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	saver := report.NewSaver(cfg.Report.Dir).ForRun(runID)

	plan, err := agent.FuturesPlan(agent.PlanConfig{
		AnalystConfig: agent.AnalystConfig{
			Generator: prov,
			Saver:     saver,
			Language:  cfg.Report.Language,
			Logger:    logger,
		},
		TaskTimeout:      cfg.Timeouts.Task,
		AggregateTimeout: cfg.Timeouts.Aggregate,
	})
	if err != nil {
		return err
	}

	sinks := orchestrator.MultiSink{orchestrator.NewLogSink(logger)}

	var history *state.DB
	var recorder *state.Recorder
	if cfg.History.Enabled {
		history, err = openHistory(cfg)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else if err := history.CreateRun(&state.Run{
			ID:       runID,
			Symbol:   symbol,
			Keyword:  keyword,
			Provider: string(cfg.LLM.Provider),
		}); err != nil {
			logger.Warn("record run start", zap.Error(err))
			history.Close()
			history = nil
		} else {
			defer history.Close()
			recorder = state.NewRecorder(history, logger)
			sinks = append(sinks, recorder)
		}
	}

	var emitter *orchestrator.EventEmitter
	if useTUI {
		emitter = orchestrator.NewEventEmitter(cfg.Orchestrator.EventBuffer, logger)
		sinks = append(sinks, emitter)
	}

	orch, err := orchestrator.New(
		orchestrator.RequiredConfig{Plan: plan},
		orchestrator.WithSink(sinks),
		orchestrator.WithMaxConcurrency(cfg.Orchestrator.MaxConcurrency),
	)
	if err != nil {
		return err
	}

	req := orchestrator.Request{Symbol: symbol, Keyword: keyword, RunID: runID}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var res *orchestrator.Result
	var runErr error
	if emitter != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer emitter.Close()
			res, runErr = orch.Run(runCtx, req)
		}()
		tuiErr := tui.Run(emitter.Events(), tui.Options{
			Title:  fmt.Sprintf("%s · %s", symbol, keyword),
			OnQuit: cancel,
		})
		<-done
		if n := emitter.DroppedCount(); n > 0 {
			logger.Warn("live view missed events", zap.Uint64("dropped", n))
		}
		if tuiErr != nil {
			logger.Warn("live view failed", zap.Error(tuiErr))
		}
	} else {
		color.New(color.Bold).Printf("Analyzing %s (%s) with %s\n", symbol, keyword, cfg.LLM.Provider)
		fmt.Printf("  run %s\n", runID)
		res, runErr = orch.Run(runCtx, req)
	}
	canceled := runCtx.Err() != nil

	if history != nil {
		var final *models.SharedState
		if res != nil {
			final = res.State
		}
		if err := history.FinishRun(runID, runStatus(res, runErr, canceled), final, runErr); err != nil {
			logger.Warn("record run finish", zap.Error(err))
		}
		if n, err := recorder.Failures(); n > 0 {
			logger.Warn("some events were not recorded", zap.Int("dropped", n), zap.Error(err))
		}
	}

	// A kill request is consumed by the run it stopped.
	if errors.Is(context.Cause(ctx), signals.ErrKilled) {
		if err := signals.Clear(cwd); err != nil {
			logger.Warn("clear kill signal", zap.Error(err))
		}
	}

	if runErr != nil {
		return runErr
	}

	printSummary(res)
	if prov.usage != nil {
		printUsage(prov.usage)
	}
	if analyzePrintReport {
		printReport(res.State)
	}
	if canceled {
		reason := "interrupted"
		if cause := context.Cause(ctx); cause != nil {
			reason = cause.Error()
		}
		printStatus("⚠", "Run was stopped: "+reason, color.FgYellow)
	}
	return nil
}

func openHistory(cfg *config.Config) (*state.DB, error) {
	path := cfg.History.DBPath
	if path == "" {
		path = state.DefaultDBPath()
	}
	db, err := state.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// runStatus classifies how a run ended for the history.
func runStatus(res *orchestrator.Result, runErr error, canceled bool) state.RunStatus {
	switch {
	case runErr != nil || res == nil:
		return state.RunFaulted
	case canceled:
		return state.RunCanceled
	case !res.Aggregated:
		return state.RunEndedEarly
	default:
		return state.RunCompleted
	}
}
