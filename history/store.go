// Package history persists completed run summaries to a local SQLite
// database, one row per run.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dealhound/dealhound/models"
)

//go:embed schema.sql
var schemaSQL string

// Store is the run history database. SQLite runs in WAL mode with a single
// writer connection to avoid SQLITE_BUSY under concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, applying pragmas and
// schema. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run is one persisted run summary.
type Run struct {
	ID               int64
	RanAt            time.Time
	Items            []string
	Platforms        []string
	TotalOptions     int
	BestPlatform     string
	BestRestaurant   string
	BestItem         string
	BestPrice        *float64
	DiscountPct      *float64
	Committed        bool
	CommitAttempts   int
	ExecutionSeconds float64
}

// Save appends one completed run. Best-deal columns stay empty when the run
// found nothing.
func (s *Store) Save(ctx context.Context, r *models.RunReport) error {
	var (
		bestPlatform, bestRestaurant, bestItem string
		bestPrice, discount                    *float64
	)
	if r.BestDeal != nil {
		bestPlatform = r.BestDeal.Platform
		bestRestaurant = r.BestDeal.Restaurant
		bestItem = r.BestDeal.ItemName
		bestPrice = r.BestDeal.FinalPrice
		discount = r.BestDeal.DiscountPct
	}
	committed := 0
	attempts := 0
	if r.Commit != nil {
		if r.Commit.Committed {
			committed = 1
		}
		attempts = r.Commit.Attempts
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			ran_at, items, platforms, total_options,
			best_platform, best_restaurant, best_item, best_price, discount_pct,
			committed, commit_attempts, execution_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Timestamp.UTC().Format(time.RFC3339),
		strings.Join(r.Criteria.Items, ","),
		strings.Join(r.PlatformsProcessed, ","),
		r.TotalOptions,
		bestPlatform, bestRestaurant, bestItem, bestPrice, discount,
		committed, attempts, r.ExecutionSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ran_at, items, platforms, total_options,
		       best_platform, best_restaurant, best_item, best_price, discount_pct,
		       committed, commit_attempts, execution_seconds
		FROM runs
		ORDER BY ran_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ItemTrend returns past runs whose best deal matched item, newest first.
// Runs without a priced best deal are excluded.
func (s *Store) ItemTrend(ctx context.Context, item string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ran_at, items, platforms, total_options,
		       best_platform, best_restaurant, best_item, best_price, discount_pct,
		       committed, commit_attempts, execution_seconds
		FROM runs
		WHERE best_item = ? COLLATE NOCASE AND best_price IS NOT NULL
		ORDER BY ran_at DESC, id DESC
		LIMIT ?
	`, item, limit)
	if err != nil {
		return nil, fmt.Errorf("query item trend: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run       Run
		ranAt     string
		items     string
		platforms string
		price     sql.NullFloat64
		discount  sql.NullFloat64
		committed int
	)
	err := rows.Scan(
		&run.ID, &ranAt, &items, &platforms, &run.TotalOptions,
		&run.BestPlatform, &run.BestRestaurant, &run.BestItem, &price, &discount,
		&committed, &run.CommitAttempts, &run.ExecutionSeconds,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.RanAt, err = time.Parse(time.RFC3339, ranAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", ranAt, err)
	}
	run.Items = splitList(items)
	run.Platforms = splitList(platforms)
	if price.Valid {
		run.BestPrice = &price.Float64
	}
	if discount.Valid {
		run.DiscountPct = &discount.Float64
	}
	run.Committed = committed != 0
	return run, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
