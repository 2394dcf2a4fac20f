package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	apperrors "z-script-ai-api/pkg/errors"
)

type usageRepoStub struct {
	mu       sync.Mutex
	records  map[string]entity.UsageRecord
	getErr   error
	setErr   error
	setCalls int
}

func newUsageRepoStub(records ...entity.UsageRecord) *usageRepoStub {
	s := &usageRepoStub{records: make(map[string]entity.UsageRecord)}
	for _, r := range records {
		s.records[r.UserID] = r
	}
	return s
}

func (s *usageRepoStub) GetUsage(_ context.Context, userID string) (*entity.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *usageRepoStub) SetUsage(_ context.Context, record *entity.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.records[record.UserID] = *record
	return nil
}

type txStub struct{ calls int }

func (t *txStub) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func newTestLedger(repo repository.UsageRepository, now time.Time) *Ledger {
	l := NewLedger(repo, nil, config.QuotaConfig{DefaultMonthlyLimit: 10})
	l.now = func() time.Time { return now }
	return l
}

func TestLedger_ReserveAtLimit(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub(entity.UsageRecord{
		UserID:            "u1",
		CurrentMonthCount: 10,
		MonthlyLimit:      10,
		LastResetAt:       time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	l := newTestLedger(repo, now)

	res, err := l.Reserve(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQuotaExceeded))
	assert.False(t, res.Allowed)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 10, appErr.Details["currentUsage"])
	assert.Equal(t, 10, appErr.Details["limit"])
	assert.Equal(t, "2024-07-01T00:00:00Z", appErr.Details["nextResetTimestamp"])
	assert.Zero(t, repo.setCalls)
}

func TestLedger_ReserveMonthRollover(t *testing.T) {
	now := time.Date(2024, time.July, 2, 8, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub(entity.UsageRecord{
		UserID:            "u1",
		CurrentMonthCount: 10,
		MonthlyLimit:      10,
		LastResetAt:       time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	l := newTestLedger(repo, now)

	res, err := l.Reserve(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.CurrentCount)
	// 滚动只在 Commit 时落库
	assert.Zero(t, repo.setCalls)
	assert.Equal(t, 10, repo.records["u1"].CurrentMonthCount)
}

func TestLedger_ReserveUnlimited(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub(entity.UsageRecord{
		UserID:            "vip",
		CurrentMonthCount: 5000,
		MonthlyLimit:      entity.UnlimitedMonthlyLimit,
		LastResetAt:       now,
	})
	res, err := newTestLedger(repo, now).Reserve(context.Background(), "vip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, "unlimited", res.LimitLabel)
}

func TestLedger_ReserveUnknownUserUsesDefault(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub()
	res, err := newTestLedger(repo, now).Reserve(context.Background(), "new")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, "10", res.LimitLabel)
	assert.Empty(t, repo.records)
}

func TestLedger_ReserveStoreError(t *testing.T) {
	repo := newUsageRepoStub()
	repo.getErr = errors.New("db down")
	_, err := newTestLedger(repo, time.Now()).Reserve(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, apperrors.IsCode(err, apperrors.CodeQuotaExceeded))
}

func TestLedger_CommitIncrements(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub(entity.UsageRecord{
		UserID:              "u1",
		CurrentMonthCount:   3,
		MonthlyLimit:        10,
		LastResetAt:         time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		TotalGeneratedCount: 40,
	})
	tx := &txStub{}
	l := NewLedger(repo, tx, config.QuotaConfig{DefaultMonthlyLimit: 10})
	l.now = func() time.Time { return now }

	rec, err := l.Commit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, rec.CurrentMonthCount)
	assert.Equal(t, 41, rec.TotalGeneratedCount)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 4, repo.records["u1"].CurrentMonthCount)
}

func TestLedger_CommitAppliesRollover(t *testing.T) {
	now := time.Date(2024, time.July, 2, 8, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub(entity.UsageRecord{
		UserID:              "u1",
		CurrentMonthCount:   10,
		MonthlyLimit:        10,
		LastResetAt:         time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		TotalGeneratedCount: 10,
	})
	rec, err := newTestLedger(repo, now).Commit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CurrentMonthCount)
	assert.Equal(t, 11, rec.TotalGeneratedCount)
	assert.True(t, rec.LastResetAt.Equal(now))
}

func TestLedger_CommitProvisionsUnknownUser(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub()
	rec, err := newTestLedger(repo, now).Commit(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CurrentMonthCount)
	assert.Equal(t, 10, repo.records["new"].MonthlyLimit)
}

func TestLedger_CommitWriteFailure(t *testing.T) {
	repo := newUsageRepoStub()
	repo.setErr = errors.New("write failed")
	_, err := newTestLedger(repo, time.Now()).Commit(context.Background(), "u1")
	require.Error(t, err)
}

// 每个 Reserve→Commit 周期恰好递增一次；上限内的序列执行后计数等于提交次数
func TestLedger_SequentialCyclesCountExactly(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	repo := newUsageRepoStub()
	l := newTestLedger(repo, now)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		res, err := l.Reserve(ctx, "u1")
		require.NoError(t, err)
		require.True(t, res.Allowed)
		_, err = l.Commit(ctx, "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, 10, repo.records["u1"].CurrentMonthCount)

	_, err := l.Reserve(ctx, "u1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQuotaExceeded))

	l.Rollback(ctx, "u1")
	assert.Equal(t, 10, repo.records["u1"].CurrentMonthCount)
}
