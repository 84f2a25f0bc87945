// Package journal persists a history of session operations in SQLite.
//
// A Store implements session.Recorder, so wiring it into a controller with
// session.WithRecorder records every operation, refused and failed ones
// included. The history is what `gitpanel history` prints.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/session"
)

// DefaultListLimit is the number of records List returns when limit <= 0.
const DefaultListLimit = 20

const maxRetries = 5

// Options configures a Store.
type Options struct {
	// Logger receives recording failures and, with Debug, SQL traces.
	Logger *slog.Logger
	Debug  bool
}

// Store is a SQLite-backed operation journal. It is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens or creates the journal database at path.
func Open(path string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(log, opts.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&Record{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Record implements session.Recorder. Write failures are logged, never
// returned, so a broken journal cannot fail a repository operation.
func (s *Store) Record(ctx context.Context, e session.Entry) {
	if err := s.Append(ctx, e); err != nil {
		s.log.Warn("failed to record operation", "op", e.Op, "error", err)
	}
}

// Append stores e.
func (s *Store) Append(ctx context.Context, e session.Entry) error {
	rec := Record{
		ID:         e.ID,
		RepoPath:   e.Path,
		Op:         string(e.Op),
		Arg:        e.Arg,
		Outcome:    gperrors.Classify(e.Err).String(),
		StartedAt:  e.Started.UTC(),
		DurationMs: e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).Create(&rec).Error
	})
}

// Query filters List.
type Query struct {
	// RepoPath restricts the result to one repository when set.
	RepoPath string
	// Limit caps the number of records; DefaultListLimit when <= 0.
	Limit int
	// FailedOnly keeps only refused and failed operations.
	FailedOnly bool
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Record, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}

	var records []Record
	err := withRetry(func() error {
		tx := s.db.WithContext(ctx).Model(&Record{})
		if q.RepoPath != "" {
			tx = tx.Where("repo_path = ?", q.RepoPath)
		}
		if q.FailedOnly {
			tx = tx.Where("outcome <> ?", gperrors.KindNone.String())
		}
		return tx.Order("started_at DESC, created_at DESC").Limit(q.Limit).Find(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return records, nil
}

// Prune deletes records started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := withRetry(func() error {
		res := s.db.WithContext(ctx).Where("started_at < ?", cutoff.UTC()).Delete(&Record{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return removed, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withRetry retries fn while SQLite reports the database busy or locked.
func withRetry(fn func() error) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}
		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}

var _ session.Recorder = (*Store)(nil)
