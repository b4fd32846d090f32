package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by a Source when no profile has the phone key
var ErrNotFound = errors.New("identity: profile not found")

// Source looks profiles up by normalized phone
type Source interface {
	FindByPhoneKey(ctx context.Context, phoneKey string) (*Profile, error)
}

// Match is the outcome of resolving an inbound phone number
type Match struct {
	Linked      bool
	MatchedFrom Collection
	Profile     *Profile
}

// ID returns the profile id, or empty when unlinked
func (m Match) ID() string {
	if m.Profile == nil {
		return ""
	}
	return m.Profile.ID
}

// Name returns the profile name, or empty when unlinked
func (m Match) Name() string {
	if m.Profile == nil {
		return ""
	}
	return m.Profile.Name
}

// Resolver maps inbound phone numbers to profiles across the primary
// and legacy collections, in that order
type Resolver struct {
	primary Source
	legacy  Source
}

// NewResolver creates a resolver. legacy may be nil.
func NewResolver(primary, legacy Source) *Resolver {
	return &Resolver{primary: primary, legacy: legacy}
}

// Resolve returns the first matching profile. A miss is not an error:
// it yields an unlinked Match so the conversation can continue degraded.
func (r *Resolver) Resolve(ctx context.Context, rawPhone string) (Match, error) {
	key := NormalizePhone(rawPhone)
	unlinked := Match{MatchedFrom: Unlinked}
	if key == "" {
		return unlinked, nil
	}

	for _, src := range []Source{r.primary, r.legacy} {
		if src == nil {
			continue
		}
		profile, err := src.FindByPhoneKey(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return unlinked, fmt.Errorf("failed to resolve phone: %w", err)
		}
		return Match{Linked: true, MatchedFrom: profile.Collection, Profile: profile}, nil
	}
	return unlinked, nil
}

// Index is an in-memory Source keyed by normalized phone
type Index struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewIndex builds an index over one collection's profiles
func NewIndex(profiles ...*Profile) *Index {
	idx := &Index{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		idx.Put(p)
	}
	return idx
}

// Put adds a profile. The first profile stored for a phone wins and
// profiles without a phone are ignored.
func (i *Index) Put(p *Profile) {
	key := NormalizePhone(p.Phone)
	if key == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.profiles[key]; !exists {
		i.profiles[key] = p
	}
}

// FindByPhoneKey implements Source
func (i *Index) FindByPhoneKey(_ context.Context, phoneKey string) (*Profile, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if p, ok := i.profiles[phoneKey]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}
