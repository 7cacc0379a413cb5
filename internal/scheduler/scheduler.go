package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketMovers/internal/model"
	"MarketMovers/internal/notifier"
	"MarketMovers/internal/recorder"
	"MarketMovers/internal/report"
)

// Runner produces a report for one request.
type Runner interface {
	Run(ctx context.Context, req report.Request) (*model.Report, error)
}

// Sender delivers a formatted message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Scheduler runs the watchlist report on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron         *cron.Cron
	Runner       Runner
	Notifier     Sender
	Recorder     recorder.Recorder
	Watchlist    string
	LookbackDays int
	Ctx          context.Context

	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new Scheduler. tn may be nil when notifications are disabled.
func NewScheduler(ctx context.Context, runner Runner, tn Sender, rec recorder.Recorder, watchlist string, lookbackDays int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Runner:       runner,
		Notifier:     tn,
		Recorder:     rec,
		Watchlist:    watchlist,
		LookbackDays: lookbackDays,
		Ctx:          ctx,
		logger:       logger.Named("scheduler"),
		now:          time.Now,
	}
}

// Register adds the watchlist report task.
func (s *Scheduler) Register(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes the watchlist task immediately.
func (s *Scheduler) RunNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	s.logger.Info("running watchlist report", zap.String("symbols", s.Watchlist))
	rng, err := report.ResolveRange("", "", s.now(), s.LookbackDays)
	if err != nil {
		s.logger.Error("watchlist range", zap.Error(err))
		return
	}
	rep := s.Report(s.Ctx, s.Watchlist, rng)
	s.trySend(notifier.FormatReport(rep))
}

// Report runs the pipeline and records the outcome. The report is returned for every outcome.
func (s *Scheduler) Report(ctx context.Context, symbols string, rng model.DateRange) *model.Report {
	rep, err := s.Runner.Run(ctx, report.Request{Symbols: symbols, Range: rng})
	if err != nil {
		s.logger.Warn("report run", zap.String("outcome", string(rep.Outcome)), zap.Error(err))
	}
	if err := s.Recorder.RecordRun(rep); err != nil {
		s.logger.Error("record run", zap.Error(err))
	}
	return rep
}

// HandleCommand processes a user command and returns a reply.
//
//	/report                              configured watchlist, default window
//	/report AAPL,MSFT                    default window
//	/report AAPL MSFT 2024-01-01 2024-03-01
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats address commands as /report@BotName.
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/report":
		symbols, start, end := splitReportArgs(fields[1:])
		if symbols == "" {
			symbols = s.Watchlist
		}
		rng, err := report.ResolveRange(start, end, s.now(), s.LookbackDays)
		if err != nil {
			return "⚠️ " + err.Error()
		}
		return notifier.FormatReport(s.Report(ctx, symbols, rng))
	default:
		return notifier.FormatHelp()
	}
}

// splitReportArgs treats two trailing date-looking tokens as the range and the rest as symbols.
func splitReportArgs(args []string) (symbols, start, end string) {
	if n := len(args); n >= 2 && looksLikeDate(args[n-2]) && looksLikeDate(args[n-1]) {
		start, end = args[n-2], args[n-1]
		args = args[:n-2]
	}
	return strings.Join(args, ","), start, end
}

func looksLikeDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.logger.Debug("notifications disabled, report not sent")
		return
	}
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
