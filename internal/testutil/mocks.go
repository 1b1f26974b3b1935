package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/storage"
	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
)

// CountingRepository wraps a domain.Repository and records how often each method was called.
// Setting Err makes every call fail with it, simulating an unreachable database.
type CountingRepository[E domain.Entity] struct {
	domain.Repository[E]

	mu    sync.Mutex
	calls map[string]int
	Err   error
}

// NewCountingRepository wraps inner
func NewCountingRepository[E domain.Entity](inner domain.Repository[E]) *CountingRepository[E] {
	return &CountingRepository[E]{Repository: inner, calls: make(map[string]int)}
}

// Calls returns how many times method was invoked
func (r *CountingRepository[E]) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// Reset clears the call counters
func (r *CountingRepository[E]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make(map[string]int)
}

func (r *CountingRepository[E]) record(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	return r.Err
}

func (r *CountingRepository[E]) Count(ctx context.Context) (int64, error) {
	if err := r.record("Count"); err != nil {
		return 0, err
	}
	return r.Repository.Count(ctx)
}

func (r *CountingRepository[E]) GetAll(ctx context.Context) ([]E, error) {
	if err := r.record("GetAll"); err != nil {
		return nil, err
	}
	return r.Repository.GetAll(ctx)
}

func (r *CountingRepository[E]) GetPage(ctx context.Context, pageSize, offset int) ([]E, error) {
	if err := r.record("GetPage"); err != nil {
		return nil, err
	}
	return r.Repository.GetPage(ctx, pageSize, offset)
}

func (r *CountingRepository[E]) GetByID(ctx context.Context, id int32) (E, error) {
	if err := r.record("GetByID"); err != nil {
		var zero E
		return zero, err
	}
	return r.Repository.GetByID(ctx, id)
}

func (r *CountingRepository[E]) Create(ctx context.Context, e E) (E, error) {
	if err := r.record("Create"); err != nil {
		var zero E
		return zero, err
	}
	return r.Repository.Create(ctx, e)
}

func (r *CountingRepository[E]) Update(ctx context.Context, e E) (E, error) {
	if err := r.record("Update"); err != nil {
		var zero E
		return zero, err
	}
	return r.Repository.Update(ctx, e)
}

func (r *CountingRepository[E]) Delete(ctx context.Context, id int32) error {
	if err := r.record("Delete"); err != nil {
		return err
	}
	return r.Repository.Delete(ctx, id)
}

func (r *CountingRepository[E]) Search(ctx context.Context, text string) ([]E, error) {
	if err := r.record("Search"); err != nil {
		return nil, err
	}
	return r.Repository.Search(ctx, text)
}

func (r *CountingRepository[E]) GetByAttributes(ctx context.Context, partial E) ([]E, error) {
	if err := r.record("GetByAttributes"); err != nil {
		return nil, err
	}
	return r.Repository.GetByAttributes(ctx, partial)
}

// RecordingPublisher is a websocket.EventPublisher that keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

var _ websocket.EventPublisher = (*RecordingPublisher)(nil)

// Publish records the event
func (p *RecordingPublisher) Publish(event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []websocket.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]websocket.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the type of every recorded event in order
func (p *RecordingPublisher) Types() []string {
	events := p.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// MockLogoStorage is an in-memory storage.LogoRepository
type MockLogoStorage struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	UploadErr error
}

var _ storage.LogoRepository = (*MockLogoStorage)(nil)

// NewMockLogoStorage creates an empty MockLogoStorage
func NewMockLogoStorage() *MockLogoStorage {
	return &MockLogoStorage{Objects: make(map[string][]byte)}
}

func (m *MockLogoStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

func (m *MockLogoStorage) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

func (m *MockLogoStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[objectPath]
	return ok, nil
}

func (m *MockLogoStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://logos.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// Object returns the stored bytes under objectPath
func (m *MockLogoStorage) Object(objectPath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[objectPath]
	return data, ok
}
