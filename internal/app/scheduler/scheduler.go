// Package scheduler は cron でユースケースを定期実行します。
// 時刻を渡して呼び出すだけで、判定ロジックは持ちません。
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	analysis "signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/usecase"
	"signal_backend/internal/shared/apperr"
)

// Analyzer は銘柄の評価を行います。
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (analysis.Signal, error)
	AnalyzeAll(ctx context.Context, symbols []string) ([]analysis.Signal, error)
}

// Monitor は監視パスを実行します。
type Monitor interface {
	CheckActive(ctx context.Context) (usecase.PassResult, error)
}

// Reporter は日次レポートを送信します。
type Reporter interface {
	Report(ctx context.Context, now time.Time) (domain.Summary, error)
}

// Config はジョブのスケジュールです。書式は標準の5フィールド cron 式です。
type Config struct {
	Location *time.Location
	Analysis string
	Monitor  string
	Report   string
	Symbols  []string
}

// Scheduler は3つの定期ジョブを管理します。
// 同じジョブが前回の実行中であれば今回の実行はスキップされます。
type Scheduler struct {
	cron     *cron.Cron
	symbols  []string
	analyzer Analyzer
	monitor  Monitor
	reporter Reporter
	now      func() time.Time

	mu  sync.Mutex
	ctx context.Context
}

// New はジョブを登録した Scheduler を作成します。cron 式が不正な場合はエラーを返します。
func New(cfg Config, analyzer Analyzer, monitor Monitor, reporter Reporter) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{l: log.With().Str("component", "cron").Logger()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		symbols:  cfg.Symbols,
		analyzer: analyzer,
		monitor:  monitor,
		reporter: reporter,
		now:      time.Now,
		ctx:      context.Background(),
	}

	jobs := []struct {
		name string
		expr string
		run  func()
	}{
		{"analysis", cfg.Analysis, s.runAnalysis},
		{"monitor", cfg.Monitor, s.runMonitor},
		{"report", cfg.Report, s.runReport},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.expr, j.run); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", j.name, j.expr, err)
		}
	}
	return s, nil
}

// Start はジョブの実行を開始します。ジョブは ctx を引き継ぎます。
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		log.Info().Time("next", e.Next).Int("entry", int(e.ID)).Msg("job scheduled")
	}
}

// Stop は新規実行を止め、実行中のジョブが終わると Done になる context を返します。
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunStartup は起動直後に全銘柄を並行して一度だけ評価します。
// 個々の失敗は記録するだけで、ctx のキャンセルのみをエラーとして返します。
func (s *Scheduler) RunStartup(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range s.symbols {
		g.Go(func() error {
			if _, err := s.analyzer.Analyze(gctx, sym); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				ev := log.Error()
				if apperr.Skippable(err) {
					ev = log.Warn()
				}
				ev.Err(err).Str("symbol", sym).Msg("startup analysis skipped")
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) runAnalysis() {
	ctx := s.jobContext()
	sigs, err := s.analyzer.AnalyzeAll(ctx, s.symbols)
	if err != nil {
		log.Warn().Err(err).Msg("analysis cycle interrupted")
		return
	}
	log.Info().Int("assets", len(s.symbols)).Int("evaluated", len(sigs)).Msg("analysis cycle finished")
}

func (s *Scheduler) runMonitor() {
	res, err := s.monitor.CheckActive(s.jobContext())
	if err != nil {
		log.Error().Err(err).Msg("monitor pass failed")
		return
	}
	log.Debug().Int("checked", res.Checked).Int("resolved", res.Resolved).Int("skipped", res.Skipped).Msg("monitor pass finished")
}

func (s *Scheduler) runReport() {
	if _, err := s.reporter.Report(s.jobContext(), s.now().UTC()); err != nil {
		log.Error().Err(err).Msg("daily report failed")
	}
}

// cronLogger は cron.Logger を zerolog に接続します。
type cronLogger struct {
	l zerolog.Logger
}

var _ cron.Logger = cronLogger{}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
