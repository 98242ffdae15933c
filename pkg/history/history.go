// Package history persists a small rolling log of past interactions so that
// recent exchanges can be folded into the next system prompt.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the number of entries retained on disk.
	DefaultLimit = 10
	// relevanceWindow bounds how old an entry may be and still be offered
	// as prompt context.
	relevanceWindow = time.Hour

	defaultFileName = ".tai.history"
)

// Entry is one completed interaction.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserInput string    `json:"user_input"`
	Response  string    `json:"llm_response"`
}

// RelevantEntry pairs an entry with its age at query time.
type RelevantEntry struct {
	Entry Entry
	Age   time.Duration
}

// History is a bounded, file-backed interaction log.
type History struct {
	path    string
	limit   int
	entries []Entry
	now     func() time.Time
}

// DefaultPath returns the per-user history file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, defaultFileName), nil
}

// Load reads the history file at path, tolerating a missing or empty file.
func Load(path string) (*History, error) {
	h := &History{path: path, limit: DefaultLimit, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file at %s: %w", path, err)
	}

	var stored struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	h.entries = stored.Entries
	return h, nil
}

// SetLimit overrides the retained-entry cap. Values below one are ignored.
func (h *History) SetLimit(limit int) {
	if limit >= 1 {
		h.limit = limit
	}
}

// Entries returns a copy of the stored entries, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Add appends one interaction, trims to the retention limit, and saves.
func (h *History) Add(userInput, response string) error {
	h.entries = append(h.entries, Entry{
		ID:        uuid.NewString(),
		Timestamp: h.now().UTC(),
		UserInput: userInput,
		Response:  response,
	})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	return h.save()
}

// Relevant returns entries younger than one hour, oldest first, each tagged
// with its age.
func (h *History) Relevant() []RelevantEntry {
	now := h.now()
	var out []RelevantEntry
	for _, e := range h.entries {
		age := now.Sub(e.Timestamp)
		if age < relevanceWindow {
			out = append(out, RelevantEntry{Entry: e, Age: age})
		}
	}
	return out
}

// Clear removes the history file and forgets in-memory entries.
func (h *History) Clear() error {
	h.entries = nil
	err := os.Remove(h.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

func (h *History) save() error {
	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(struct {
		Entries []Entry `json:"entries"`
	}{Entries: h.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history file at %s: %w", h.path, err)
	}
	return nil
}
