package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps audit records in process. Used by tests and by the
// server when no database is configured.
type MemoryStore struct {
	mu        sync.Mutex
	Messages  []MessageLog
	Calls     []CallLog
	Alerts    []EmergencyAlert
	Symptoms  []SymptomLog
	FailWrite error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertMessageLog(_ context.Context, rec *MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.Messages = append(m.Messages, *rec)
	return nil
}

func (m *MemoryStore) InsertCallLog(_ context.Context, rec *CallLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.Calls = append(m.Calls, *rec)
	return nil
}

func (m *MemoryStore) InsertEmergencyAlert(_ context.Context, rec *EmergencyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.Alerts = append(m.Alerts, *rec)
	return nil
}

func (m *MemoryStore) InsertSymptomLog(_ context.Context, rec *SymptomLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.Symptoms = append(m.Symptoms, *rec)
	return nil
}

func (m *MemoryStore) UpdateCallStatus(_ context.Context, callSID, status string, duration int, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Calls {
		if m.Calls[i].CallSID == callSID {
			m.Calls[i].Status = status
			m.Calls[i].Duration = duration
			m.Calls[i].CompletedAt = &completedAt
			return nil
		}
	}
	return ErrNotFound
}

// Snapshot returns copies of all stored records
func (m *MemoryStore) Snapshot() (msgs []MessageLog, calls []CallLog, alerts []EmergencyAlert, symptoms []SymptomLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs = append(msgs, m.Messages...)
	calls = append(calls, m.Calls...)
	alerts = append(alerts, m.Alerts...)
	symptoms = append(symptoms, m.Symptoms...)
	return
}
