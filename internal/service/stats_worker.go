package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// Counter is implemented by every CRUD service
type Counter interface {
	Entity() string
	Count(ctx context.Context) (int64, error)
}

// StatsSnapshot is the row count of every entity at one point in time
type StatsSnapshot struct {
	Counts  map[string]int64 `json:"counts"`
	TakenAt time.Time        `json:"takenAt"`
}

// StatsWorker is a background worker that periodically counts the rows of every entity
type StatsWorker struct {
	counters  []Counter
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
	last      *StatsSnapshot
}

// StatsWorkerConfig holds configuration for the stats worker
type StatsWorkerConfig struct {
	Interval time.Duration // How often to take a snapshot
}

// DefaultStatsWorkerConfig returns sensible defaults
func DefaultStatsWorkerConfig() StatsWorkerConfig {
	return StatsWorkerConfig{Interval: 15 * time.Minute}
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	counters []Counter,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config StatsWorkerConfig,
) *StatsWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultStatsWorkerConfig().Interval
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &StatsWorker{
		counters:  counters,
		publisher: publisher,
		logger:    logger.With().Str("component", "stats_worker").Logger(),
		interval:  config.Interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background snapshots
func (w *StatsWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("entities", len(w.counters)).
		Msg("Starting stats worker")

	go w.run(ctx)
}

// Stop gracefully stops the stats worker
func (w *StatsWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping stats worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Stats worker stopped")
}

func (w *StatsWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.Sync(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setRunning(false)
			return
		case <-w.stopCh:
			w.setRunning(false)
			return
		case <-ticker.C:
			w.Sync(ctx)
		}
	}
}

func (w *StatsWorker) setRunning(running bool) {
	w.mu.Lock()
	w.running = running
	w.mu.Unlock()
}

// Sync counts every entity once, logs the result and publishes a stats.synced event
func (w *StatsWorker) Sync(ctx context.Context) *StatsSnapshot {
	startTime := time.Now()
	snapshot := &StatsSnapshot{Counts: make(map[string]int64, len(w.counters))}
	failed := 0

	for _, counter := range w.counters {
		if ctx.Err() != nil {
			w.logger.Info().Msg("Context cancelled, stopping sync")
			return nil
		}
		n, err := counter.Count(ctx)
		if err != nil {
			w.logger.Error().Err(err).Str("entity", counter.Entity()).Msg("Failed to count rows")
			failed++
			continue
		}
		snapshot.Counts[counter.Entity()] = n
	}
	snapshot.TakenAt = time.Now().UTC()

	w.mu.Lock()
	w.last = snapshot
	w.mu.Unlock()

	event := w.logger.Info().
		Int("errors", failed).
		Dur("elapsed", time.Since(startTime))
	entities := make([]string, 0, len(snapshot.Counts))
	for entity := range snapshot.Counts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	for _, entity := range entities {
		event = event.Int64(entity, snapshot.Counts[entity])
	}
	event.Msg("Completed stats sync")

	w.publisher.Publish(websocket.StatsSynced(snapshot))
	return snapshot
}

// Last returns the most recent snapshot, or nil before the first sync
func (w *StatsWorker) Last() *StatsSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// IsRunning returns whether the worker is currently running
func (w *StatsWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
