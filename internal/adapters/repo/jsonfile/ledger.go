package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

type recordSchema struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Operation string `json:"operation"`
	Email     string `json:"email"`
	TargetID  string `json:"target_id"`
	Result    string `json:"result"`
	Env       string `json:"env"`
	Details   string `json:"details"`
}

// Ledger is the append-only, day-partitioned audit log: one JSON array file
// per calendar day. Appends are a single read-modify-write-whole-file cycle
// under the lock, which is what makes concurrent writers safe.
type Ledger struct {
	dir   string
	clock ports.Clock
	mu    sync.Mutex
}

var _ ports.HistoryLedger = (*Ledger)(nil)

func NewLedger(dir string, clock ports.Clock) *Ledger {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Ledger{dir: dir, clock: clock}
}

func (l *Ledger) dayPath(date string) string {
	return filepath.Join(l.dir, date+".json")
}

// Record appends one history record to the current day's file. Missing
// identity and timestamp fields are filled in here.
func (l *Ledger) Record(ctx context.Context, record domain.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = l.clock.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := record.Timestamp.Format(domain.HistoryDateFormat)
	path := l.dayPath(date)

	records, err := readDay(path)
	if err != nil {
		return err
	}

	records = append(records, toRecordSchema(record))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}

	return writeFileAtomic(path, data)
}

func (l *Ledger) LoadToday(ctx context.Context) ([]domain.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := l.clock.Now().Format(domain.HistoryDateFormat)
	records, err := readDay(l.dayPath(date))
	if err != nil {
		return nil, err
	}

	return fromRecordSchemas(records), nil
}

// LoadAll returns every stored day, most recent first.
func (l *Ledger) LoadAll(ctx context.Context) ([]domain.HistoryDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	days := make([]domain.HistoryDay, 0, len(dates))
	for _, date := range dates {
		records, err := readDay(l.dayPath(date))
		if err != nil {
			// A corrupt day file must not hide the rest of the history.
			continue
		}
		days = append(days, domain.HistoryDay{Date: date, Records: fromRecordSchemas(records)})
	}

	return days, nil
}

// ClearToday removes only the current day's records, leaving other days
// intact.
func (l *Ledger) ClearToday(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := l.clock.Now().Format(domain.HistoryDateFormat)
	if err := os.Remove(l.dayPath(date)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove history file: %w", err)
	}

	return nil
}

func (l *Ledger) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read history directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove history file: %w", err)
		}
	}

	return nil
}

func readDay(path string) ([]recordSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []recordSchema
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history file %s: %w", filepath.Base(path), err)
	}

	return records, nil
}

func toRecordSchema(record domain.HistoryRecord) recordSchema {
	return recordSchema{
		ID:        record.ID,
		Timestamp: record.Timestamp.Format(time.RFC3339),
		Date:      record.Timestamp.Format(domain.HistoryDateFormat),
		Time:      record.Timestamp.Format("15:04:05"),
		Operation: record.Operation,
		Email:     record.Email,
		TargetID:  record.TargetID,
		Result:    string(record.Result),
		Env:       string(record.Env),
		Details:   record.Details,
	}
}

func fromRecordSchemas(records []recordSchema) []domain.HistoryRecord {
	result := make([]domain.HistoryRecord, 0, len(records))
	for _, record := range records {
		timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			timestamp = time.Time{}
		}
		result = append(result, domain.HistoryRecord{
			ID:        record.ID,
			Timestamp: timestamp,
			Operation: record.Operation,
			Email:     record.Email,
			TargetID:  record.TargetID,
			Result:    domain.Outcome(record.Result),
			Env:       domain.Environment(record.Env),
			Details:   record.Details,
		})
	}

	return result
}
