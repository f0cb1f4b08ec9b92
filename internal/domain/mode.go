package domain

// Mode identifies which remote endpoint set an operation targets
type Mode int

const (
	ModeGuest Mode = iota
	ModeAuthenticated
)

// String returns the mode name used in logs and cache scopes
func (m Mode) String() string {
	switch m {
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "guest"
	}
}

// NoteState tracks how a title's notes relate to the remote store
type NoteState int

const (
	// NoteUnset means notes were never set locally or remotely
	NoteUnset NoteState = iota
	// NoteLocalOnly means the cache holds the value and the remote push has not settled
	NoteLocalOnly
	// NoteSynced means the cache and the remote store agree
	NoteSynced
	// NoteLocalAheadOfRemote means the remote push failed; the cache value wins
	NoteLocalAheadOfRemote
)

func (s NoteState) String() string {
	switch s {
	case NoteLocalOnly:
		return "local-only"
	case NoteSynced:
		return "synced"
	case NoteLocalAheadOfRemote:
		return "local-ahead"
	default:
		return "unset"
	}
}
