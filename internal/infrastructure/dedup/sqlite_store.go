// Package dedup persists the fingerprint ledger that makes repeated runs
// converge toward silence: a clean system shows nothing, a recurring problem
// is never permanently hidden by a stale success record.
package dedup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// ErrLocked indicates another process holds the store.
var ErrLocked = errors.New("dedup store is locked")

// SQLiteStore implements ports.DedupStore on a local SQLite file. It is the
// only state surviving reboots. A single mutex serializes every mutation;
// this is a small per-user record store, not a contended resource.
type SQLiteStore struct {
	db                 *sql.DB
	path               string
	reopenOnRecurrence bool
	logger             ports.Logger
	mu                 sync.Mutex
	now                func() time.Time
}

// NewSQLiteStore opens or creates the store. A missing file is first-run
// normal; a corrupt file is moved aside and treated as "no history" with a
// warning, never a fatal error.
func NewSQLiteStore(path string, reopenOnRecurrence bool, log ports.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := open(path)
	if err != nil {
		log.Warn("dedup store unreadable, starting with empty history", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, aside); renameErr != nil {
			return nil, fmt.Errorf("move corrupt store aside: %w", renameErr)
		}
		if db, err = open(path); err != nil {
			return nil, err
		}
	}

	return &SQLiteStore{
		db:                 db,
		path:               path,
		reopenOnRecurrence: reopenOnRecurrence,
		logger:             log,
		now:                time.Now,
	}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		fingerprint TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		severity TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open'
	);
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL REFERENCES records(fingerprint),
		command TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		stdout_excerpt TEXT,
		stderr_excerpt TEXT,
		outcome TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_fingerprint ON attempts(fingerprint);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the store location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Filter implements ports.DedupStore: only issues whose record is absent or
// Open pass through.
func (s *SQLiteStore) Filter(issues []domain.Issue) ([]domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		var status string
		err := s.db.QueryRow(`SELECT status FROM records WHERE fingerprint = ?`, issue.Fingerprint).Scan(&status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			filtered = append(filtered, issue)
		case err != nil:
			return nil, wrapStoreErr(err)
		default:
			if parsed, _ := domain.ParseIssueStatus(status); parsed == domain.StatusOpen {
				filtered = append(filtered, issue)
			}
		}
	}
	return filtered, nil
}

// RecordSeen upserts the record for an issue's fingerprint, creating it Open
// if new. A Remediated record that reappears is re-opened when the
// re-occurrence policy is on: remediation success is about the last run, not
// a permanent guarantee.
func (s *SQLiteStore) RecordSeen(issue domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(domain.TimestampFormat)

	var status string
	err := s.db.QueryRow(`SELECT status FROM records WHERE fingerprint = ?`, issue.Fingerprint).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		_, err := s.db.Exec(`INSERT INTO records (fingerprint, title, severity, first_seen, last_seen, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			issue.Fingerprint, issue.Title, string(issue.Severity), now, now, string(domain.StatusOpen))
		return wrapStoreErr(err)
	}
	if err != nil {
		return wrapStoreErr(err)
	}

	parsed, _ := domain.ParseIssueStatus(status)
	next := parsed
	if parsed == domain.StatusRemediated && s.reopenOnRecurrence {
		next = domain.StatusOpen
		s.logger.Info("remediated issue recurred, re-opening", map[string]interface{}{
			"fingerprint": issue.Fingerprint,
			"title":       issue.Title,
		})
	}

	_, err = s.db.Exec(`UPDATE records SET last_seen = ?, title = ?, severity = ?, status = ? WHERE fingerprint = ?`,
		now, issue.Title, string(issue.Severity), string(next), issue.Fingerprint)
	return wrapStoreErr(err)
}

// RecordRemediation appends an attempt and moves the record to Remediated
// iff the outcome was Success; Failure and UserCancelled leave it Open so
// the issue resurfaces next run.
func (s *SQLiteStore) RecordRemediation(fingerprint string, attempt domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = s.now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return wrapStoreErr(err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO attempts (id, fingerprint, command, exit_code, stdout_excerpt, stderr_excerpt, outcome, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, fingerprint, attempt.Command, attempt.ExitCode,
		attempt.StdoutExcerpt, attempt.StderrExcerpt, string(attempt.Outcome),
		attempt.Timestamp.UTC().Format(domain.TimestampFormat))
	if err != nil {
		return wrapStoreErr(err)
	}

	status := domain.StatusOpen
	if attempt.Outcome == domain.OutcomeSuccess {
		status = domain.StatusRemediated
	}
	if _, err := tx.Exec(`UPDATE records SET status = ? WHERE fingerprint = ?`, string(status), fingerprint); err != nil {
		return wrapStoreErr(err)
	}

	return wrapStoreErr(tx.Commit())
}

// Ignore permanently suppresses a fingerprint until an explicit Reopen.
func (s *SQLiteStore) Ignore(fingerprint string) error {
	return s.setStatus(fingerprint, domain.StatusIgnored)
}

// Reopen is the explicit user override back to Open.
func (s *SQLiteStore) Reopen(fingerprint string) error {
	return s.setStatus(fingerprint, domain.StatusOpen)
}

func (s *SQLiteStore) setStatus(fingerprint string, status domain.IssueStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE records SET status = ? WHERE fingerprint = ?`, string(status), fingerprint)
	if err != nil {
		return wrapStoreErr(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("no record for fingerprint %s", fingerprint)
	}
	return nil
}

// Record loads one record with its full attempt history.
func (s *SQLiteStore) Record(fingerprint string) (domain.DedupRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.scanRecord(s.db.QueryRow(
		`SELECT fingerprint, title, severity, first_seen, last_seen, status FROM records WHERE fingerprint = ?`,
		fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DedupRecord{}, false, nil
	}
	if err != nil {
		return domain.DedupRecord{}, false, wrapStoreErr(err)
	}

	if record.Attempts, err = s.attemptsFor(fingerprint); err != nil {
		return domain.DedupRecord{}, false, err
	}
	return record, true, nil
}

// Records returns records ordered by most recently seen, with attempts.
func (s *SQLiteStore) Records(limit int) ([]domain.DedupRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT fingerprint, title, severity, first_seen, last_seen, status FROM records ORDER BY datetime(last_seen) DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var records []domain.DedupRecord
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(err)
	}

	for i := range records {
		if records[i].Attempts, err = s.attemptsFor(records[i].Fingerprint); err != nil {
			return nil, err
		}
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanRecord(row rowScanner) (domain.DedupRecord, error) {
	var record domain.DedupRecord
	var severity, firstSeen, lastSeen, status string
	if err := row.Scan(&record.Fingerprint, &record.Title, &severity, &firstSeen, &lastSeen, &status); err != nil {
		return domain.DedupRecord{}, err
	}
	record.Severity, _ = domain.ParseSeverity(severity)
	record.Status, _ = domain.ParseIssueStatus(status)
	record.FirstSeen, _ = time.Parse(domain.TimestampFormat, firstSeen)
	record.LastSeen, _ = time.Parse(domain.TimestampFormat, lastSeen)
	return record, nil
}

func (s *SQLiteStore) attemptsFor(fingerprint string) ([]domain.AttemptRecord, error) {
	rows, err := s.db.Query(`SELECT id, command, exit_code, stdout_excerpt, stderr_excerpt, outcome, timestamp
		FROM attempts WHERE fingerprint = ? ORDER BY datetime(timestamp) ASC`, fingerprint)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var attempts []domain.AttemptRecord
	for rows.Next() {
		var attempt domain.AttemptRecord
		var stdout, stderr sql.NullString
		var outcome, ts string
		if err := rows.Scan(&attempt.ID, &attempt.Command, &attempt.ExitCode, &stdout, &stderr, &outcome, &ts); err != nil {
			return nil, wrapStoreErr(err)
		}
		attempt.StdoutExcerpt = stdout.String
		attempt.StderrExcerpt = stderr.String
		attempt.Outcome = domain.AttemptOutcome(outcome)
		attempt.Timestamp, _ = time.Parse(domain.TimestampFormat, ts)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}
	return err
}

var _ ports.DedupStore = (*SQLiteStore)(nil)
