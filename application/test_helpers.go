package application

import (
	"context"
	"sync"
	"time"

	"arenaapp/domain/events"
	"arenaapp/domain/interfaces"
	"arenaapp/domain/testhelpers"
)

// MemoryUnitOfWorkFactory creates units of work over one in-memory store.
// Events reach Published only when a unit of work commits.
type MemoryUnitOfWorkFactory struct {
	Store     *testhelpers.MemoryStore
	Published *testhelpers.EventRecorder

	mu        sync.Mutex
	commits   int
	rollbacks int
}

// NewMemoryUnitOfWorkFactory creates a factory over an empty store
func NewMemoryUnitOfWorkFactory() *MemoryUnitOfWorkFactory {
	return &MemoryUnitOfWorkFactory{
		Store:     testhelpers.NewMemoryStore(),
		Published: &testhelpers.EventRecorder{},
	}
}

// Create creates a new UnitOfWork
func (f *MemoryUnitOfWorkFactory) Create() UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

// Counts returns how many units of work committed and rolled back
func (f *MemoryUnitOfWorkFactory) Counts() (commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

type memoryUnitOfWork struct {
	factory *MemoryUnitOfWorkFactory
	pending []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *memoryUnitOfWork) Commit() error {
	u.factory.mu.Lock()
	u.factory.commits++
	u.factory.mu.Unlock()

	for _, event := range u.pending {
		_ = u.factory.Published.Publish(event)
	}
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.factory.mu.Lock()
	u.factory.rollbacks++
	u.factory.mu.Unlock()

	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Publish(event events.Event) error {
	u.pending = append(u.pending, event)
	return nil
}

func (u *memoryUnitOfWork) ArenaRepository() interfaces.ArenaRepository {
	return u.factory.Store.ArenaRepository()
}

func (u *memoryUnitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	return u.factory.Store.ParticipantRepository()
}

func (u *memoryUnitOfWork) ContestRepository() interfaces.ContestRepository {
	return u.factory.Store.ContestRepository()
}

func (u *memoryUnitOfWork) WagerRepository() interfaces.WagerRepository {
	return u.factory.Store.WagerRepository()
}

func (u *memoryUnitOfWork) EscrowRepository() interfaces.EscrowRepository {
	return u.factory.Store.EscrowRepository()
}

func (u *memoryUnitOfWork) TransferRepository() interfaces.TransferRepository {
	return u.factory.Store.TransferRepository()
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return u
}

// SerialLocker is a ContestLocker that runs every locked operation one at a time
type SerialLocker struct {
	mu    sync.Mutex
	Locks int
}

func (l *SerialLocker) Lock(ctx context.Context, contestID int64) (func(), error) {
	l.mu.Lock()
	l.Locks++
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}

// MetricsSpy is a MetricsRecorder that remembers what it was told
type MetricsSpy struct {
	mu          sync.Mutex
	Operations  map[string][]string
	Wagered     int64
	Settled     int64
	Fees        int64
	Claimed     int64
	ClaimsCount int
}

// NewMetricsSpy creates an empty spy
func NewMetricsSpy() *MetricsSpy {
	return &MetricsSpy{Operations: make(map[string][]string)}
}

func (m *MetricsSpy) RecordOperation(ctx context.Context, operation string, errorKind string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[operation] = append(m.Operations[operation], errorKind)
}

func (m *MetricsSpy) RecordWager(ctx context.Context, side string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Wagered += amount
}

func (m *MetricsSpy) RecordSettlement(ctx context.Context, totalPool, fee int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settled += totalPool
	m.Fees += fee
}

func (m *MetricsSpy) RecordClaim(ctx context.Context, payout int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Claimed += payout
	m.ClaimsCount++
}
