package conversation

import "time"

// Mode is the programme a conversation is currently focused on
type Mode string

const (
	ModeGeneral   Mode = "general"
	ModeMaternity Mode = "maternity"
	ModePCOS      Mode = "pcos"
)

// OrGeneral returns ModeGeneral for an unset mode
func (m Mode) OrGeneral() Mode {
	if m == "" {
		return ModeGeneral
	}
	return m
}

// MaxHistory is the number of turns kept per conversation
const MaxHistory = 10

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation history
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// State is the per-phone conversation document
type State struct {
	Phone         string    `json:"phone"`
	DisplayName   string    `json:"name"`
	Mode          Mode      `json:"context"`
	History       []Turn    `json:"history"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	// Version increments on every successful write
	Version int64 `json:"version"`
}

// NewState creates the state used on a phone's first message
func NewState(phone, displayName string) *State {
	if displayName == "" {
		displayName = "User"
	}
	return &State{
		Phone:       phone,
		DisplayName: displayName,
		Mode:        ModeGeneral,
		History:     []Turn{},
	}
}

// Append adds turns and drops the oldest ones beyond MaxHistory
func (s *State) Append(turns ...Turn) {
	s.History = append(s.History, turns...)
	if len(s.History) > MaxHistory {
		trimmed := make([]Turn, MaxHistory)
		copy(trimmed, s.History[len(s.History)-MaxHistory:])
		s.History = trimmed
	}
}

// Recent returns a copy of at most n of the newest turns
func (s *State) Recent(n int) []Turn {
	if n > len(s.History) {
		n = len(s.History)
	}
	out := make([]Turn, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.History = make([]Turn, len(s.History))
	copy(c.History, s.History)
	return &c
}
