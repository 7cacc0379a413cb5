package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketMovers/internal/model"
)

const (
	sideGainer = "gainer"
	sideLoser  = "loser"
)

// SQLiteRecorder persists run summaries to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			symbols      TEXT,
			start_date   TEXT,
			end_date     TEXT,
			outcome      TEXT NOT NULL,
			message      TEXT,
			notice_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS movers (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES runs(run_id),
			side         TEXT NOT NULL,
			rank         INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			total_change TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movers_run ON movers(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordRun stores the run and its ranked movers in one transaction.
func (r *SQLiteRecorder) RecordRun(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ts := rep.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = tx.Exec(`INSERT INTO runs
		(run_id, timestamp, symbols, start_date, end_date, outcome, message, notice_count)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.RunID.String(), ts.Unix(), strings.Join(rep.Input.Symbols, ","),
		formatDate(rep.Input.Range.Start), formatDate(rep.Input.Range.End),
		string(rep.Outcome), rep.Message, len(rep.Notices),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insert := func(side string, records []model.MoverRecord) error {
		for i, m := range records {
			if _, err := tx.Exec(`INSERT INTO movers (run_id, side, rank, symbol, total_change) VALUES (?,?,?,?,?)`,
				rep.RunID.String(), side, i+1, m.Symbol, m.TotalMarketCapChange.String()); err != nil {
				return fmt.Errorf("insert %s %s: %w", side, m.Symbol, err)
			}
		}
		return nil
	}
	if err := insert(sideGainer, rep.Gainers); err != nil {
		return err
	}
	if err := insert(sideLoser, rep.Losers); err != nil {
		return err
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first, with their movers attached.
func (r *SQLiteRecorder) Recent(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, symbols, start_date, end_date, outcome, message, notice_count
		FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	index := map[string]int{}
	for rows.Next() {
		var (
			s       RunSummary
			ts      int64
			outcome string
		)
		if err := rows.Scan(&s.RunID, &ts, &s.Symbols, &s.Start, &s.End, &outcome, &s.Message, &s.NoticeCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0).UTC()
		s.Outcome = model.Outcome(outcome)
		s.Gainers = []MoverRow{}
		s.Losers = []MoverRow{}
		index[s.RunID] = len(runs)
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return runs, nil
	}

	mrows, err := r.db.Query(`SELECT run_id, side, rank, symbol, total_change FROM movers
		WHERE run_id IN (SELECT run_id FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT ?)
		ORDER BY run_id, side, rank`, limit)
	if err != nil {
		return nil, fmt.Errorf("query movers: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var (
			runID, side, change string
			m                   MoverRow
		)
		if err := mrows.Scan(&runID, &side, &m.Rank, &m.Symbol, &change); err != nil {
			return nil, fmt.Errorf("scan mover: %w", err)
		}
		if m.Change, err = decimal.NewFromString(change); err != nil {
			return nil, fmt.Errorf("parse change for %s: %w", m.Symbol, err)
		}
		i, ok := index[runID]
		if !ok {
			continue
		}
		if side == sideGainer {
			runs[i].Gainers = append(runs[i].Gainers, m)
		} else {
			runs[i].Losers = append(runs[i].Losers, m)
		}
	}
	return runs, mrows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}
