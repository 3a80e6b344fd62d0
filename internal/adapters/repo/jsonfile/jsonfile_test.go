package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func TestAccountsLoadMissingFileYieldsEmpty(t *testing.T) {
	repo := NewAccountsRepository(t.TempDir())

	accounts, err := repo.Load(context.Background(), domain.EnvDev)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAccountsMergeDeduplicatesByEmail(t *testing.T) {
	dir := t.TempDir()
	repo := NewAccountsRepository(dir)
	ctx := context.Background()

	added, err := repo.Merge(ctx, domain.EnvDev, []domain.Credential{
		{Email: "a@test.com", Password: "p1"},
		{Email: "b@test.com", Password: "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = repo.Merge(ctx, domain.EnvDev, []domain.Credential{
		{Email: "a@test.com", Password: "changed"},
		{Email: "c@test.com", Password: "p3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "existing entries are never overwritten")

	accounts, err := repo.Load(ctx, domain.EnvDev)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "p1", accounts[0].Password)
	assert.Equal(t, "c@test.com", accounts[2].Email)
}

func TestAccountsFilesAreScopedPerEnvironment(t *testing.T) {
	dir := t.TempDir()
	repo := NewAccountsRepository(dir)
	ctx := context.Background()

	_, err := repo.Merge(ctx, domain.EnvDev, []domain.Credential{{Email: "a@test.com", Password: "p"}})
	require.NoError(t, err)

	accounts, err := repo.Load(ctx, domain.EnvPda)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	_, err = os.Stat(filepath.Join(dir, "dev.json"))
	require.NoError(t, err)
}

func TestAccountsLoadRejectsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev.json"), []byte(`[{"email":"a@test.com"}]`), 0o600))

	repo := NewAccountsRepository(dir)

	_, err := repo.Load(context.Background(), domain.EnvDev)
	require.ErrorIs(t, err, domain.ErrAccountsInvalid)
}

func TestAccountsExportReplacesDestination(t *testing.T) {
	dir := t.TempDir()
	repo := NewAccountsRepository(dir)
	ctx := context.Background()
	path := filepath.Join(dir, "valid.json")

	require.NoError(t, os.WriteFile(path, []byte(`[{"email":"stale@test.com","password":"p"}]`), 0o600))

	err := repo.Export(ctx, path, []domain.Credential{
		{Email: "a@test.com", Password: "p1"},
		{Email: "a@test.com", Password: "dup"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []accountSchema
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a@test.com", entries[0].Email)
	assert.Equal(t, "p1", entries[0].Password)
}

func TestLedgerRecordWritesDayFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ledger := NewLedger(dir, fixedClock{now: now})
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, domain.HistoryRecord{
		Operation: "Like post",
		Email:     "a@test.com",
		TargetID:  "12345",
		Result:    domain.OutcomeSuccess,
		Env:       domain.EnvDev,
	}))

	data, err := os.ReadFile(filepath.Join(dir, "2026-03-01.json"))
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Like post", entries[0]["operation"])
	assert.Equal(t, "2026-03-01", entries[0]["date"])
	assert.Equal(t, "09:30:00", entries[0]["time"])
	assert.Equal(t, "success", entries[0]["result"])
	assert.NotEmpty(t, entries[0]["id"])
}

func TestLedgerRecordsAreImmutableAppends(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ledger := NewLedger(dir, fixedClock{now: now})
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, domain.HistoryRecord{Operation: "Like post", Result: domain.OutcomeSuccess}))
	require.NoError(t, ledger.Record(ctx, domain.HistoryRecord{Operation: "Report topic", Result: domain.OutcomeFailed}))

	records, err := ledger.LoadToday(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Like post", records[0].Operation)
	assert.Equal(t, domain.OutcomeSuccess, records[0].Result)
	assert.Equal(t, "Report topic", records[1].Operation)
}

func TestLedgerLoadAllMostRecentFirst(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	dayOne := NewLedger(dir, fixedClock{now: time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, dayOne.Record(ctx, domain.HistoryRecord{Operation: "Like post", Result: domain.OutcomeSuccess}))

	dayTwo := NewLedger(dir, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, dayTwo.Record(ctx, domain.HistoryRecord{Operation: "Report topic", Result: domain.OutcomeFailed}))

	days, err := dayTwo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-03-01", days[0].Date)
	assert.Equal(t, "2026-02-27", days[1].Date)
}

func TestLedgerClearTodayLeavesOtherDays(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	past := NewLedger(dir, fixedClock{now: time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, past.Record(ctx, domain.HistoryRecord{Operation: "Like post", Result: domain.OutcomeSuccess}))

	today := NewLedger(dir, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, today.Record(ctx, domain.HistoryRecord{Operation: "Report topic", Result: domain.OutcomeFailed}))

	require.NoError(t, today.ClearToday(ctx))

	days, err := today.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-02-27", days[0].Date)

	require.NoError(t, today.ClearAll(ctx))

	days, err = today.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestLedgerClearTodayWhenEmptyIsNoop(t *testing.T) {
	ledger := NewLedger(t.TempDir(), fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)})

	require.NoError(t, ledger.ClearToday(context.Background()))
	require.NoError(t, ledger.ClearAll(context.Background()))
}
