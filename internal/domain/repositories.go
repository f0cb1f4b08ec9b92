package domain

import (
	"context"
)

// DetailResolver fetches canonical metadata for titles from the provider
type DetailResolver interface {
	// Resolve returns full metadata for an exact title.
	// Fails with ErrNotFound or ErrProvider.
	Resolve(ctx context.Context, title string) (*Metadata, error)

	// Search returns provider hits for a free-text query
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// AddOutcome describes what the store did with an add request
type AddOutcome int

const (
	// AddStored means the store accepted the title
	AddStored AddOutcome = iota
	// AddDuplicate means the store already held the title (soft success)
	AddDuplicate
	// AddRejected means the store refused for another reason (soft success, not persisted)
	AddRejected
)

// AddResult is the adapter's canonical answer to an add
type AddResult struct {
	Entry   MovieEntry
	Outcome AddOutcome
	Cause   error // Store error behind AddDuplicate/AddRejected, nil for AddStored
}

// Persisted reports whether a subsequent list() will contain the title
func (r AddResult) Persisted() bool {
	return r.Outcome == AddStored || r.Outcome == AddDuplicate
}

// Target is the endpoint set and credential a remote call runs against
type Target struct {
	Mode  Mode
	Token string // Bearer credential, empty in guest mode
}

// ListStore is the remote list store, parameterized per call by target
type ListStore interface {
	List(ctx context.Context, target Target) ([]MovieEntry, error)
	Add(ctx context.Context, target Target, title string) (AddResult, error)
	Remove(ctx context.Context, target Target, title string) error
	UpdateNotes(ctx context.Context, target Target, title, notes string) error
	MarkWatched(ctx context.Context, target Target, title string) error

	// Recommend suggests up to topK titles matching a vague description.
	// Suggestions are not stored.
	Recommend(ctx context.Context, query string, topK int) ([]Recommendation, error)
}

// NotesCache is the durable local mapping from title to notes.
// Each scope holds an independent mapping. Every mutation is a full
// read-modify-write of the scope's mapping.
type NotesCache interface {
	Load(scope string) (map[string]string, error)
	Put(scope, title, notes string) error
	Delete(scope, title string) error
	Close() error
}

// AuthResult contains the result of a successful login
type AuthResult struct {
	Token    string // Bearer token for authenticated calls
	Username string // Display username
}
