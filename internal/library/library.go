// Package library persists cloned reference voices across restarts.
//
// The store is a single JSON index holding every entry, reference audio
// included, loaded fully into memory at startup and rewritten whole on
// each mutation. A process-wide lock keeps the file and the map in
// lock-step; the design assumes a single process owns the index.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const indexFile = "index.json"

// ErrNotFound reports an unknown voice ID.
var ErrNotFound = errors.New("library: voice not found")

// Entry is one stored voice.
type Entry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RefAudioB64  string `json:"ref_audio_b64"`
	RefText      string `json:"ref_text,omitempty"`
	CreatedAt    string `json:"created_at"`
	LanguageHint string `json:"language_hint"`
}

// Library is the in-memory voice index backed by a JSON file.
type Library struct {
	mu     sync.RWMutex
	dir    string
	path   string
	voices map[string]Entry
	logger zerolog.Logger
}

// Open loads the index from dir, creating the directory when missing. A
// corrupt or absent index yields an empty library rather than an error so
// the service can still start.
func Open(dir string, logger zerolog.Logger) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	l := &Library{
		dir:    dir,
		path:   filepath.Join(dir, indexFile),
		voices: make(map[string]Entry),
		logger: logger,
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", l.path).Msg("failed to read voice index")
		}
		return l, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn().Err(err).Str("path", l.path).Msg("failed to parse voice index")
		return l, nil
	}
	for _, e := range entries {
		l.voices[e.ID] = e
	}
	logger.Info().Int("voices", len(l.voices)).Msg("voice library loaded")
	return l, nil
}

// Add stores a new voice and persists the index. The returned entry
// carries the generated ID and creation timestamp.
func (l *Library) Add(name, refAudioB64, description, refText, languageHint string) (Entry, error) {
	entry := Entry{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		RefAudioB64:  refAudioB64,
		RefText:      refText,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		LanguageHint: languageHint,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.voices[entry.ID] = entry
	if err := l.persistLocked(); err != nil {
		delete(l.voices, entry.ID)
		return Entry{}, err
	}
	l.logger.Info().Str("id", entry.ID).Str("name", name).Msg("voice added")
	return entry, nil
}

// Get returns the entry for id; ok is false when the ID is unknown.
func (l *Library) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.voices[id]
	return entry, ok
}

// List returns all entries. Order is not meaningful.
func (l *Library) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.voices))
	for _, e := range l.voices {
		out = append(out, e)
	}
	return out
}

// Update patches only the supplied fields and persists the index.
func (l *Library) Update(id string, name, description *string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.voices[id]
	if !ok {
		return Entry{}, ErrNotFound
	}

	prev := entry
	if name != nil {
		entry.Name = *name
	}
	if description != nil {
		entry.Description = *description
	}
	l.voices[id] = entry

	if err := l.persistLocked(); err != nil {
		l.voices[id] = prev
		return Entry{}, err
	}
	return entry, nil
}

// Delete removes the entry and persists the index. The boolean reports
// whether the ID existed.
func (l *Library) Delete(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.voices[id]
	if !ok {
		return false, nil
	}
	delete(l.voices, id)
	if err := l.persistLocked(); err != nil {
		l.voices[id] = entry
		return false, err
	}
	l.logger.Info().Str("id", id).Msg("voice deleted")
	return true, nil
}

// persistLocked rewrites the whole index. Callers hold the write lock.
func (l *Library) persistLocked() error {
	entries := make([]Entry, 0, len(l.voices))
	for _, e := range l.voices {
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode voice index: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write voice index: %w", err)
	}
	return nil
}
