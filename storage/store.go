package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tectest/harness"
	"tectest/logging"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrRunNotFound is returned when no recorded run matches an ID or prefix
var ErrRunNotFound = errors.New("run not found")

// gormLogger wraps the tectest logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

// LogMode sets the log level
func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

// Info logs info messages
func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

// Warn logs warn messages
func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

// Error logs error messages
func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs SQL queries, only in debug mode
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	case elapsed > 200*time.Millisecond:
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	default:
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

// newGormLogger creates a GORM logger that follows the --debug flag
// (exported to the environment by cmd/root.go)
func newGormLogger() logger.Interface {
	if os.Getenv(logging.DebugEnv) == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// Store records suite runs in SQLite
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the run history database in WAL mode
func NewStore(dbPath string) (*Store, error) {
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false, // Avoid transaction conflicts
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Several suite runs may record at once
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(&Run{}); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("failed to migrate Run schema: %w", err)
		}
	}

	// Manually create case_results (AutoMigrate has issues with foreign keys in SQLite)
	if !db.Migrator().HasTable(&CaseResult{}) {
		if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS case_results (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				name TEXT NOT NULL,
				mode TEXT NOT NULL DEFAULT 'run',
				reason TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				exit_status TEXT NOT NULL DEFAULT '',
				command_line TEXT NOT NULL DEFAULT '',
				cwd TEXT NOT NULL DEFAULT '',
				stdout TEXT NOT NULL DEFAULT '',
				stderr TEXT NOT NULL DEFAULT '',
				error TEXT NOT NULL DEFAULT '',
				workspace TEXT NOT NULL DEFAULT '',
				duration_ms INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME,
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			)
		`).Error; err != nil {
			return nil, fmt.Errorf("failed to create case_results table: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_run_id ON case_results(run_id)").Error; err != nil {
			return nil, fmt.Errorf("failed to create case_results index: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// SaveReport records a suite run and all of its case outcomes
func (s *Store) SaveReport(ctx context.Context, report *harness.Report) error {
	run, cases := convertFromReport(report)
	return withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&run).Error; err != nil {
				return fmt.Errorf("failed to create run: %w", err)
			}
			if len(cases) == 0 {
				return nil
			}
			if err := tx.Create(&cases).Error; err != nil {
				return fmt.Errorf("failed to create case results: %w", err)
			}
			return nil
		})
	}, 3)
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := withRetry(func() error {
		runs = nil
		q := s.db.WithContext(ctx).Order("started_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&runs).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID equals or starts with id, together with
// its case results
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	var detail RunDetail
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var matches []Run
			if err := tx.Where("id = ?", id).Limit(1).Find(&matches).Error; err != nil {
				return err
			}
			if len(matches) == 0 {
				if err := tx.Where("substr(id, 1, ?) = ?", len(id), id).Limit(2).Find(&matches).Error; err != nil {
					return err
				}
			}
			switch len(matches) {
			case 0:
				return fmt.Errorf("%w: %s", ErrRunNotFound, id)
			case 1:
			default:
				return fmt.Errorf("run ID prefix %q is ambiguous", id)
			}

			detail.Run = matches[0]
			detail.Cases = nil
			return tx.Where("run_id = ?", detail.Run.ID).Order("position ASC").Find(&detail.Cases).Error
		})
	}, 3)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// PruneRuns keeps the newest keep runs and deletes the rest, returning how
// many runs were removed
func (s *Store) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative: %d", keep)
	}

	var removed int64
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var ids []string
			if err := tx.Model(&Run{}).Order("started_at DESC").Pluck("id", &ids).Error; err != nil {
				return err
			}
			if len(ids) <= keep {
				removed = 0
				return nil
			}
			stale := ids[keep:]
			if err := tx.Where("run_id IN ?", stale).Delete(&CaseResult{}).Error; err != nil {
				return fmt.Errorf("failed to delete case results: %w", err)
			}
			result := tx.Where("id IN ?", stale).Delete(&Run{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete runs: %w", result.Error)
			}
			removed = result.RowsAffected
			return nil
		})
	}, 3)
	return removed, err
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withRetry retries operations on SQLITE_BUSY with linear backoff
func withRetry(fn func() error, maxRetries int) error {
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
