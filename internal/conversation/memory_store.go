package conversation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps state in process. Writes for one phone are
// serialized with a per-phone mutex; different phones proceed in parallel.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
	locks  map[string]*sync.Mutex
	now    func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*State),
		locks:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
}

// Get returns a copy of the stored state
func (m *MemoryStore) Get(_ context.Context, phone string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

// Update applies fn under the phone's lock
func (m *MemoryStore) Update(ctx context.Context, phone, displayName string, fn Mutator) (*State, error) {
	lock := m.lockFor(phone)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state, err := Load(ctx, m, phone, displayName)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	state.Version++
	if state.LastMessageAt.IsZero() {
		state.LastMessageAt = m.now()
	}

	m.mu.Lock()
	m.states[phone] = state.Clone()
	m.mu.Unlock()
	return state, nil
}

func (m *MemoryStore) lockFor(phone string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[phone]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[phone] = lock
	}
	return lock
}
