package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ration-ai/ration/pkg/models"
)

// ErrCorrupt is returned when the ledger file exists but no longer
// parses as JSON. Spend history cannot be silently reset, so callers
// must surface this rather than continue with a zeroed ledger.
var ErrCorrupt = errors.New("ledger corrupt")

const monthFormat = "2006-01"

// keepMonths is how many trailing months survive a write.
const keepMonths = 3

// entry is the persisted per-month counter pair.
type entry struct {
	Spent    float64 `json:"spent"`
	Requests int     `json:"requests"`
}

// Ledger tracks monthly paid-API spending.
//
// Status never writes. Record adds a successful call's cost, prunes
// old months, and persists. Implementations do not guard against
// concurrent writers; the read-modify-write cycle can lose updates
// when two processes record at once.
type Ledger interface {
	Status() (models.Snapshot, error)
	Record(cost float64) (models.Snapshot, error)
}

// FileLedger stores the ledger as a JSON file keyed by month. Every
// call re-reads the file so edits from other processes are picked up.
type FileLedger struct {
	path   string
	budget float64
	now    func() time.Time
}

// NewFileLedger creates a ledger at path with the given monthly ceiling.
func NewFileLedger(path string, monthlyBudget float64) *FileLedger {
	return &FileLedger{path: path, budget: monthlyBudget, now: time.Now}
}

// WithClock overrides the time source. Tests use it to pin the month.
func (l *FileLedger) WithClock(now func() time.Time) *FileLedger {
	l.now = now
	return l
}

// Status returns the current month's snapshot. A month with no spend
// yet reports zeros without being persisted.
func (l *FileLedger) Status() (models.Snapshot, error) {
	months, err := l.load()
	if err != nil {
		return models.Snapshot{}, err
	}
	month := l.now().Format(monthFormat)
	return l.snapshot(month, months[month]), nil
}

// Record adds cost to the current month, increments its request count,
// prunes to the most recent months, and persists the whole ledger.
func (l *FileLedger) Record(cost float64) (models.Snapshot, error) {
	months, err := l.load()
	if err != nil {
		return models.Snapshot{}, err
	}

	month := l.now().Format(monthFormat)
	e := months[month]
	e.Spent += cost
	e.Requests++
	months[month] = e

	prune(months)

	if err := l.save(months); err != nil {
		return models.Snapshot{}, err
	}
	return l.snapshot(month, e), nil
}

func (l *FileLedger) snapshot(month string, e entry) models.Snapshot {
	return models.Snapshot{
		Month:     month,
		Spent:     e.Spent,
		Requests:  e.Requests,
		Budget:    l.budget,
		Remaining: l.budget - e.Spent,
	}
}

func (l *FileLedger) load() (map[string]entry, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	months := map[string]entry{}
	if err := json.Unmarshal(data, &months); err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrCorrupt, l.path, err)
	}
	return months, nil
}

func (l *FileLedger) save(months map[string]entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	data, err := json.MarshalIndent(months, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// prune drops everything but the keepMonths greatest month keys.
func prune(months map[string]entry) {
	if len(months) <= keepMonths {
		return
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys[:len(keys)-keepMonths] {
		delete(months, k)
	}
}
