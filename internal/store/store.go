package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketNotes = []byte("notes")
)

// NotesStore implements domain.NotesCache using BoltDB.
// Each scope's mapping is stored as one JSON document and every mutation
// rewrites the whole document, so mu serializes read-modify-write cycles.
type NotesStore struct {
	db *bolt.DB
	mu sync.Mutex

	// In-memory copy of each scope's document (promoted on access)
	cache map[string][]byte
}

// NewNotesStore opens the notes database under baseCacheDir, partitioned by
// backend URL. An empty baseCacheDir gives a memory-only store.
func NewNotesStore(baseCacheDir, backendURL string) (*NotesStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &NotesStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if backendURL != "" {
		dir = filepath.Join(baseCacheDir, hashBackendURL(backendURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "notes.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotes)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &NotesStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashBackendURL(backendURL string) string {
	normalized := strings.TrimRight(strings.ToLower(backendURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *NotesStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers (callers hold mu) ===

// read returns the scope's whole mapping; a missing scope is an empty mapping
func (s *NotesStore) read(scope string) (map[string]string, error) {
	data, ok := s.cache[scope]
	if !ok && s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketNotes)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(scope)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read notes: %w", err)
		}
		if data != nil {
			s.cache[scope] = data
		}
	}

	notes := make(map[string]string)
	if data == nil {
		return notes, nil
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes for scope %q: %w", scope, err)
	}
	return notes, nil
}

// write replaces the scope's whole mapping. The memory copy is only updated
// once the durable write commits.
func (s *NotesStore) write(scope string, notes map[string]string) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return err
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketNotes)
			if len(notes) == 0 {
				return b.Delete([]byte(scope))
			}
			return b.Put([]byte(scope), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write notes: %w", err)
		}
	}

	s.cache[scope] = data
	return nil
}

// === NotesCache ===

// Load returns a copy of the scope's mapping
func (s *NotesStore) Load(scope string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(scope)
}

// Put sets one title's notes within the scope
func (s *NotesStore) Put(scope, title, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read(scope)
	if err != nil {
		return err
	}
	all[title] = notes
	return s.write(scope, all)
}

// Delete evicts one title from the scope. Evicting a missing title is a no-op.
func (s *NotesStore) Delete(scope, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read(scope)
	if err != nil {
		return err
	}
	if _, ok := all[title]; !ok {
		return nil
	}
	delete(all, title)
	return s.write(scope, all)
}

// Clear wipes every scope
func (s *NotesStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string][]byte)
	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketNotes) != nil {
			if err := tx.DeleteBucket(bucketNotes); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketNotes)
		return err
	})
}
