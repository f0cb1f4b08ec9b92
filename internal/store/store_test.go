package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T, dir string) *NotesStore {
	t.Helper()
	s, err := NewNotesStore(dir, "http://localhost:8000")
	require.NoError(t, err)
	return s
}

func TestNotesStore_PutLoadDelete(t *testing.T) {
	for name, dir := range map[string]string{"memory": "", "disk": t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			s := newDiskStore(t, dir)
			defer s.Close()

			notes, err := s.Load("guest")
			require.NoError(t, err)
			assert.Empty(t, notes)

			require.NoError(t, s.Put("guest", "Dune", "rewatch"))
			require.NoError(t, s.Put("guest", "Up", "cry"))
			require.NoError(t, s.Put("user:ana", "Dune", "boring"))

			notes, err = s.Load("guest")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"Dune": "rewatch", "Up": "cry"}, notes)

			require.NoError(t, s.Delete("guest", "Dune"))
			require.NoError(t, s.Delete("guest", "Missing"))

			notes, err = s.Load("guest")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"Up": "cry"}, notes)

			notes, err = s.Load("user:ana")
			require.NoError(t, err)
			assert.Equal(t, "boring", notes["Dune"])
		})
	}
}

func TestNotesStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s := newDiskStore(t, dir)
	require.NoError(t, s.Put("user:ana", "Dune", "rewatch"))
	require.NoError(t, s.Close())

	s = newDiskStore(t, dir)
	defer s.Close()
	notes, err := s.Load("user:ana")
	require.NoError(t, err)
	assert.Equal(t, "rewatch", notes["Dune"])
}

func TestNotesStore_PartitionedByBackend(t *testing.T) {
	dir := t.TempDir()

	a, err := NewNotesStore(dir, "http://a.example")
	require.NoError(t, err)
	require.NoError(t, a.Put("guest", "Dune", "from a"))
	require.NoError(t, a.Close())

	b, err := NewNotesStore(dir, "http://b.example")
	require.NoError(t, err)
	defer b.Close()
	notes, err := b.Load("guest")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNotesStore_LoadReturnsCopy(t *testing.T) {
	s := newDiskStore(t, "")
	require.NoError(t, s.Put("guest", "Dune", "rewatch"))

	notes, err := s.Load("guest")
	require.NoError(t, err)
	notes["Dune"] = "mutated"

	again, err := s.Load("guest")
	require.NoError(t, err)
	assert.Equal(t, "rewatch", again["Dune"])
}

func TestNotesStore_ConcurrentPutsKeepEveryTitle(t *testing.T) {
	s := newDiskStore(t, t.TempDir())
	defer s.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Put("guest", fmt.Sprintf("title-%d", i), "x"))
		}()
	}
	wg.Wait()

	notes, err := s.Load("guest")
	require.NoError(t, err)
	assert.Len(t, notes, n)
}

func TestNotesStore_Clear(t *testing.T) {
	s := newDiskStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Put("guest", "Dune", "x"))
	require.NoError(t, s.Put("user:ana", "Up", "y"))
	require.NoError(t, s.Clear())

	for _, scope := range []string{"guest", "user:ana"} {
		notes, err := s.Load(scope)
		require.NoError(t, err)
		assert.Empty(t, notes)
	}
}
