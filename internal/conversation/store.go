package conversation

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a phone that never wrote
var ErrNotFound = errors.New("conversation: state not found")

// Mutator changes a state in place. Returning an error aborts the write.
type Mutator func(*State) error

// Store persists conversation state. Update is the only write path and
// serializes read-modify-write per phone, so concurrent turns for the
// same phone cannot lose each other's history.
type Store interface {
	Get(ctx context.Context, phone string) (*State, error)
	Update(ctx context.Context, phone, displayName string, fn Mutator) (*State, error)
}

// Load returns the stored state or a fresh one for a new phone
func Load(ctx context.Context, store Store, phone, displayName string) (*State, error) {
	state, err := store.Get(ctx, phone)
	if errors.Is(err, ErrNotFound) {
		return NewState(phone, displayName), nil
	}
	return state, err
}
