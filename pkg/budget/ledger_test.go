package budget

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedClock(month string) func() time.Time {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestLedger(t *testing.T, budget float64, month string) *FileLedger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	return NewFileLedger(path, budget).WithClock(fixedClock(month))
}

func TestStatusEmptyLedger(t *testing.T) {
	l := newTestLedger(t, 5.0, "2026-08")

	snap, err := l.Status()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Month != "2026-08" {
		t.Errorf("expected month 2026-08, got %s", snap.Month)
	}
	if snap.Spent != 0 || snap.Requests != 0 {
		t.Errorf("expected zeroed entry, got %+v", snap)
	}
	if snap.Remaining != 5.0 {
		t.Errorf("expected remaining 5.0, got %v", snap.Remaining)
	}

	// Status must not create the file.
	if _, err := os.Stat(l.path); !os.IsNotExist(err) {
		t.Error("Status should not persist the ledger")
	}
}

func TestRecordMonotonic(t *testing.T) {
	l := newTestLedger(t, 5.0, "2026-08")

	snap, err := l.Record(0.25)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Spent != 0.25 || snap.Requests != 1 {
		t.Errorf("unexpected snapshot after first record: %+v", snap)
	}

	snap, err = l.Record(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Spent != 0.75 {
		t.Errorf("expected spent 0.75, got %v", snap.Spent)
	}
	if snap.Requests != 2 {
		t.Errorf("expected 2 requests, got %d", snap.Requests)
	}
	if snap.Remaining != 5.0-0.75 {
		t.Errorf("expected remaining %v, got %v", 5.0-0.75, snap.Remaining)
	}

	// A fresh ledger on the same path sees the persisted state.
	reload := NewFileLedger(l.path, 5.0).WithClock(fixedClock("2026-08"))
	snap, err = reload.Status()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Spent != 0.75 || snap.Requests != 2 {
		t.Errorf("persisted state lost: %+v", snap)
	}
}

func TestRecordExactCost(t *testing.T) {
	l := newTestLedger(t, 5.0, "2026-08")

	cost := 100*0.000003 + 50*0.000015
	snap, err := l.Record(cost)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Spent != 0.00105 {
		t.Errorf("expected spent 0.00105, got %v", snap.Spent)
	}
}

func TestPruneKeepsThreeGreatestMonths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := NewFileLedger(path, 5.0)

	for _, month := range []string{"2026-01", "2026-02", "2026-03", "2026-04", "2026-05"} {
		l.WithClock(fixedClock(month))
		if _, err := l.Record(0.1); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var months map[string]entry
	if err := json.Unmarshal(data, &months); err != nil {
		t.Fatal(err)
	}
	if len(months) != 3 {
		t.Fatalf("expected 3 months retained, got %d: %v", len(months), months)
	}
	for _, want := range []string{"2026-03", "2026-04", "2026-05"} {
		if _, ok := months[want]; !ok {
			t.Errorf("expected month %s retained", want)
		}
	}
}

func TestOverspendGoesNegative(t *testing.T) {
	l := newTestLedger(t, 1.0, "2026-08")

	if _, err := l.Record(1.5); err != nil {
		t.Fatal(err)
	}
	snap, err := l.Status()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Remaining != -0.5 {
		t.Errorf("expected remaining -0.5, got %v", snap.Remaining)
	}
}

func TestCorruptLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewFileLedger(path, 5.0).WithClock(fixedClock("2026-08"))

	if _, err := l.Status(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt from Status, got %v", err)
	}
	if _, err := l.Record(0.1); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt from Record, got %v", err)
	}
}

func TestOtherMonthsUntouchedByRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := NewFileLedger(path, 5.0)

	l.WithClock(fixedClock("2026-07"))
	if _, err := l.Record(1.0); err != nil {
		t.Fatal(err)
	}
	l.WithClock(fixedClock("2026-08"))
	if _, err := l.Record(0.5); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var months map[string]entry
	if err := json.Unmarshal(data, &months); err != nil {
		t.Fatal(err)
	}
	if months["2026-07"].Spent != 1.0 || months["2026-07"].Requests != 1 {
		t.Errorf("july entry changed: %+v", months["2026-07"])
	}
	if months["2026-08"].Spent != 0.5 || months["2026-08"].Requests != 1 {
		t.Errorf("august entry wrong: %+v", months["2026-08"])
	}
}
