// Package alerts defines the events pushed to the dashboard live feed
package alerts

import (
	"sync"
	"time"
)

// Event kinds
const (
	KindEmergency  = "emergency"
	KindRiskAlert  = "risk_alert"
	KindEscalation = "escalation"
)

// Event is one live feed entry
type Event struct {
	Kind        string    `json:"kind"`
	Type        string    `json:"type"`
	PatientID   string    `json:"patientId,omitempty"`
	PatientName string    `json:"patientName,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Risk        string    `json:"risk,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	At          time.Time `json:"at"`
}

// Publisher delivers events to subscribers. Publish must not block on
// slow subscribers.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops every event
type Discard struct{}

func (Discard) Publish(Event) {}

// Recorder is a Publisher that keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
