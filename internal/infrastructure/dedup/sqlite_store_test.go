package dedup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/pkg/logger"
)

func newTestStore(t *testing.T, reopenOnRecurrence bool) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dedup.db"), reopenOnRecurrence, logger.NewStd(false))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testIssue(title string) domain.Issue {
	excerpt := "systemd[1]: " + title
	return domain.Issue{
		Fingerprint: domain.ComputeFingerprint(title, excerpt),
		Title:       title,
		Severity:    domain.SeverityHigh,
		Excerpt:     excerpt,
	}
}

func TestRecordSeenIsIdempotent(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("NetworkManager failed to start")

	for i := 0; i < 3; i++ {
		if err := store.RecordSeen(issue); err != nil {
			t.Fatalf("RecordSeen() #%d error = %v", i, err)
		}
	}

	records, err := store.Records(0)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Status != domain.StatusOpen {
		t.Fatalf("status = %s, want %s", records[0].Status, domain.StatusOpen)
	}
}

func TestRecordSeenUpdatesLastSeen(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("disk read errors on sda")

	first := time.Date(2026, 8, 22, 8, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	store.now = func() time.Time { return first }
	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return second }
	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}

	record, ok, err := store.Record(issue.Fingerprint)
	if err != nil || !ok {
		t.Fatalf("Record() = ok %t, err %v", ok, err)
	}
	if !record.FirstSeen.Equal(first) {
		t.Errorf("first_seen = %v, want %v", record.FirstSeen, first)
	}
	if !record.LastSeen.Equal(second) {
		t.Errorf("last_seen = %v, want %v", record.LastSeen, second)
	}
}

func TestSuccessfulRemediationSuppressesUntilRecurrence(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("bluetooth firmware missing")

	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	err := store.RecordRemediation(issue.Fingerprint, domain.AttemptRecord{
		Command: "apt install linux-firmware",
		Outcome: domain.OutcomeSuccess,
	})
	if err != nil {
		t.Fatalf("RecordRemediation() error = %v", err)
	}

	filtered, err := store.Filter([]domain.Issue{issue})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 0 {
		t.Fatalf("remediated issue not suppressed: %+v", filtered)
	}

	// The same fingerprint showing up on a later boot re-opens the record.
	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	filtered, err = store.Filter([]domain.Issue{issue})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 {
		t.Fatal("recurring issue stayed suppressed")
	}
}

func TestRecurrenceRespectsPolicyOff(t *testing.T) {
	store := newTestStore(t, false)
	issue := testIssue("amdgpu ring timeout")

	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRemediation(issue.Fingerprint, domain.AttemptRecord{
		Command: "update-initramfs -u",
		Outcome: domain.OutcomeSuccess,
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}

	filtered, err := store.Filter([]domain.Issue{issue})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 0 {
		t.Fatal("policy off, recurrence must stay suppressed")
	}
}

func TestFailedRemediationLeavesIssueOpen(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("NetworkManager failed to start")

	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRemediation(issue.Fingerprint, domain.AttemptRecord{
		Command:  "systemctl restart NetworkManager",
		ExitCode: 1,
		Outcome:  domain.OutcomeFailure,
	}); err != nil {
		t.Fatal(err)
	}

	filtered, err := store.Filter([]domain.Issue{issue})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 {
		t.Fatal("failed remediation must keep the issue visible")
	}
}

func TestIgnoreAndReopen(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("stale kernel modules")

	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	if err := store.Ignore(issue.Fingerprint); err != nil {
		t.Fatalf("Ignore() error = %v", err)
	}

	filtered, err := store.Filter([]domain.Issue{issue})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 0 {
		t.Fatal("ignored issue still visible")
	}

	// Ignored survives recurrence; only an explicit reopen brings it back.
	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}
	if filtered, _ = store.Filter([]domain.Issue{issue}); len(filtered) != 0 {
		t.Fatal("recurrence must not undo an explicit ignore")
	}

	if err := store.Reopen(issue.Fingerprint); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if filtered, _ = store.Filter([]domain.Issue{issue}); len(filtered) != 1 {
		t.Fatal("reopened issue not visible")
	}
}

func TestSetStatusUnknownFingerprint(t *testing.T) {
	store := newTestStore(t, true)
	if err := store.Ignore("deadbeef"); err == nil {
		t.Fatal("expected an error for an unknown fingerprint")
	}
}

func TestAttemptHistoryIsAppendOnlyAndOrdered(t *testing.T) {
	store := newTestStore(t, true)
	issue := testIssue("disk read errors on sda")

	if err := store.RecordSeen(issue); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	outcomes := []domain.AttemptOutcome{domain.OutcomeFailure, domain.OutcomeUserCancelled, domain.OutcomeSuccess}
	for i, outcome := range outcomes {
		err := store.RecordRemediation(issue.Fingerprint, domain.AttemptRecord{
			Command:   "smartctl -t short /dev/sda",
			Outcome:   outcome,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordRemediation() #%d error = %v", i, err)
		}
	}

	record, ok, err := store.Record(issue.Fingerprint)
	if err != nil || !ok {
		t.Fatalf("Record() = ok %t, err %v", ok, err)
	}
	if len(record.Attempts) != 3 {
		t.Fatalf("got %d attempts, want 3", len(record.Attempts))
	}
	for i, attempt := range record.Attempts {
		if attempt.Outcome != outcomes[i] {
			t.Errorf("attempt %d outcome = %s, want %s", i, attempt.Outcome, outcomes[i])
		}
		if attempt.ID == "" {
			t.Errorf("attempt %d missing generated id", i)
		}
	}
	if record.Status != domain.StatusRemediated {
		t.Fatalf("status = %s, want %s after final success", record.Status, domain.StatusRemediated)
	}
}

func TestCorruptStoreMovedAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dedup.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := NewSQLiteStore(path, true, logger.NewStd(false))
	if err != nil {
		t.Fatalf("corrupt store must not be fatal: %v", err)
	}
	defer store.Close()

	records, err := store.Records(0)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history after recovery, got %d", len(records))
	}

	matches, err := filepath.Glob(path + ".corrupt-*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("corrupt file not moved aside, glob = %v", matches)
	}

	// The recovered store is writable.
	if err := store.RecordSeen(testIssue("NetworkManager failed to start")); err != nil {
		t.Fatalf("RecordSeen() after recovery error = %v", err)
	}
}

func TestRecordsOrderedByLastSeen(t *testing.T) {
	store := newTestStore(t, true)

	older := testIssue("bluetooth firmware missing")
	newer := testIssue("NetworkManager failed to start")

	store.now = func() time.Time { return time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC) }
	if err := store.RecordSeen(older); err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC) }
	if err := store.RecordSeen(newer); err != nil {
		t.Fatal(err)
	}

	records, err := store.Records(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Fingerprint != newer.Fingerprint {
		t.Fatalf("limit/order wrong: %+v", records)
	}
}
