// Package history keeps a local log of compiled messages.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/lvrach/chatmark/internal/annotate"
)

const maxEntries = 200

// Entry represents a single history record.
type Entry struct {
	ID        string          `json:"id"`
	CreatedAt string          `json:"created_at"`
	Source    string          `json:"source"`
	Result    annotate.Result `json:"result"`
}

// dataDir returns the data directory path.
// Exported as a var for testing.
var dataDir = defaultDataDir

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "chatmark")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chatmark")
}

func historyPath() string {
	return filepath.Join(dataDir(), "history.json")
}

func lockPath() string {
	return filepath.Join(dataDir(), "history.lock")
}

// Load reads the history file and returns all entries, oldest first.
// Returns nil slice and nil error if the file does not exist.
func Load() ([]Entry, error) {
	var entries []Entry
	err := withLock(func() error {
		var err error
		entries, err = load()
		return err
	})
	return entries, err
}

// Append records a compiled message, capping the log at maxEntries.
// A corrupt file is replaced rather than failing the append.
func Append(source string, res annotate.Result) (Entry, error) {
	entry := Entry{
		ID:        newID(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    source,
		Result:    res,
	}

	err := withLock(func() error {
		entries, err := load()
		if err != nil {
			// Corrupt file, start fresh.
			entries = nil
		}

		entries = append(entries, entry)

		// Cap at maxEntries (drop oldest).
		if len(entries) > maxEntries {
			entries = entries[len(entries)-maxEntries:]
		}

		return atomicWrite(entries)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Get returns the entry whose ID starts with prefix. An ambiguous prefix
// is an error.
func Get(prefix string) (*Entry, error) {
	entries, err := Load()
	if err != nil {
		return nil, err
	}

	var found *Entry
	for i := range entries {
		if !strings.HasPrefix(entries[i].ID, prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("ambiguous id %q", prefix)
		}
		found = &entries[i]
	}
	return found, nil
}

// Remove deletes the entry with the given ID. It reports whether an entry
// was removed.
func Remove(id string) (bool, error) {
	var removed bool
	err := withLock(func() error {
		entries, err := load()
		if err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		if !removed {
			return nil
		}
		return atomicWrite(kept)
	})
	return removed, err
}

// Clear removes all history entries.
func Clear() error {
	return withLock(func() error {
		err := os.Remove(historyPath())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// withLock runs fn while holding an exclusive lock on the history file, so
// concurrent invocations don't drop each other's entries.
func withLock(fn func() error) error {
	if err := os.MkdirAll(dataDir(), 0o700); err != nil {
		return err
	}
	lock := flock.New(lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	return fn()
}

func load() ([]Entry, error) {
	data, err := os.ReadFile(historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return entries, nil
}

func atomicWrite(entries []Entry) error {
	path := historyPath()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
