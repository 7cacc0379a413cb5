package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MarketMovers/internal/exporter"
	"MarketMovers/internal/model"
	"MarketMovers/internal/recorder"
	"MarketMovers/internal/report"
)

// Reporter runs and records one report.
type Reporter interface {
	Report(ctx context.Context, symbols string, rng model.DateRange) *model.Report
}

// Server exposes reports over HTTP.
type Server struct {
	Reporter     Reporter
	Recorder     recorder.Recorder
	Gatherer     prometheus.Gatherer
	Watchlist    string
	LookbackDays int

	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Server. rec and gatherer may be nil.
func New(reporter Reporter, rec recorder.Recorder, gatherer prometheus.Gatherer, watchlist string, lookbackDays int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{
		Reporter:     reporter,
		Recorder:     rec,
		Gatherer:     gatherer,
		Watchlist:    watchlist,
		LookbackDays: lookbackDays,
		logger:       logger.Named("server"),
		validate:     validator.New(),
		now:          time.Now,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Get("/report", s.handleReport)
		r.Get("/report/export", s.handleExport)
		r.Get("/runs", s.handleRuns)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

type reportQuery struct {
	Symbols string `validate:"max=512"`
	Start   string `validate:"omitempty,datetime=2006-01-02"`
	End     string `validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) runFromQuery(r *http.Request) (*model.Report, *ErrResponse) {
	q := reportQuery{
		Symbols: r.URL.Query().Get("symbols"),
		Start:   r.URL.Query().Get("start"),
		End:     r.URL.Query().Get("end"),
	}
	if err := s.validate.Struct(q); err != nil {
		return nil, ErrInvalidQuery(err)
	}
	if !r.URL.Query().Has("symbols") {
		q.Symbols = s.Watchlist
	}
	rng, err := report.ResolveRange(q.Start, q.End, s.now(), s.LookbackDays)
	if err != nil {
		return nil, ErrInvalidQuery(err)
	}
	return s.Reporter.Report(r.Context(), q.Symbols, rng), nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, errResp := s.runFromQuery(r)
	if errResp != nil {
		render.Render(w, r, errResp)
		return
	}
	render.Status(r, StatusFor(rep.Outcome))
	render.JSON(w, r, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rep, errResp := s.runFromQuery(r)
	if errResp != nil {
		render.Render(w, r, errResp)
		return
	}
	if rep.Outcome != model.OutcomeOK {
		render.Render(w, r, ErrOutcome(rep))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="movers-%s.xlsx"`, rep.RunID))
	if err := exporter.Write(w, rep); err != nil {
		s.logger.Error("write workbook", zap.String("run_id", rep.RunID.String()), zap.Error(err))
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			render.Render(w, r, ErrInvalidQuery(fmt.Errorf("limit must be 1..500")))
			return
		}
		limit = n
	}
	runs, err := s.Recorder.Recent(limit)
	if err != nil {
		s.logger.Error("list runs", zap.Error(err))
		render.Render(w, r, ErrInternal(err))
		return
	}
	render.JSON(w, r, runs)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
