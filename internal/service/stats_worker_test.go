package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/cache"
	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCounter struct{}

func (failingCounter) Entity() string                          { return "Broken" }
func (failingCounter) Count(ctx context.Context) (int64, error) { return 0, errors.New("db down") }

func setupStatsWorker(t *testing.T, extra ...Counter) (*StatsWorker, *testutil.RecordingPublisher) {
	t.Helper()
	repos := testutil.NewRepositories()
	repos.Seed(t)
	tr := newTranslator(t)
	c := cache.NewLocal(0)

	counters := []Counter{
		NewCRUDService[*domain.Bank, dto.Bank](repos.Banks, dto.FromBank, c, tr, nil, zerolog.Nop(), CRUDConfig{}),
		NewCRUDService[*domain.Transaction, dto.Transaction](repos.Transactions, dto.FromTransaction, c, tr, nil, zerolog.Nop(), CRUDConfig{}),
	}
	counters = append(counters, extra...)

	publisher := &testutil.RecordingPublisher{}
	worker := NewStatsWorker(counters, publisher, zerolog.Nop(), StatsWorkerConfig{Interval: 100 * time.Millisecond})
	return worker, publisher
}

func TestStatsWorker_NewStatsWorker(t *testing.T) {
	worker, _ := setupStatsWorker(t)

	assert.Equal(t, 100*time.Millisecond, worker.interval)
	assert.False(t, worker.IsRunning())
	assert.Nil(t, worker.Last())
}

func TestStatsWorker_DefaultConfig(t *testing.T) {
	assert.Equal(t, 15*time.Minute, DefaultStatsWorkerConfig().Interval)

	worker := NewStatsWorker(nil, nil, zerolog.Nop(), StatsWorkerConfig{})
	assert.Equal(t, 15*time.Minute, worker.interval)
}

func TestStatsWorker_Sync(t *testing.T) {
	worker, publisher := setupStatsWorker(t, failingCounter{})

	snapshot := worker.Sync(context.Background())

	require.NotNil(t, snapshot)
	assert.Equal(t, map[string]int64{"Bank": 1, "Transaction": 1}, snapshot.Counts)
	assert.Equal(t, snapshot, worker.Last())
	assert.Equal(t, []string{"stats.synced"}, publisher.Types())
}

func TestStatsWorker_SyncCancelled(t *testing.T) {
	worker, publisher := setupStatsWorker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, worker.Sync(ctx))
	assert.Empty(t, publisher.Events())
}

func TestStatsWorker_StartStop(t *testing.T) {
	worker, publisher := setupStatsWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	assert.True(t, worker.IsRunning())
	assert.NotEmpty(t, publisher.Events(), "runs once on startup")

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestStatsWorker_StopWithoutStart(t *testing.T) {
	worker, _ := setupStatsWorker(t)

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestStatsWorker_StopsOnContextCancel(t *testing.T) {
	worker, _ := setupStatsWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 10*time.Millisecond)
}
