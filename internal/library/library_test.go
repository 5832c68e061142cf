package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLibrary(t *testing.T, dir string) *Library {
	t.Helper()
	l, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	return l
}

func TestAddAndGet(t *testing.T) {
	l := openTestLibrary(t, t.TempDir())

	entry, err := l.Add("Alice", "YXVkaW8=", "test voice", "hello there", "en")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.CreatedAt)

	got, ok := l.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "YXVkaW8=", got.RefAudioB64)
	assert.Equal(t, "hello there", got.RefText)
	assert.Equal(t, "en", got.LanguageHint)

	_, ok = l.Get("nope")
	assert.False(t, ok)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	l := openTestLibrary(t, dir)
	entry, err := l.Add("Bob", "YXVkaW8=", "", "", "de")
	require.NoError(t, err)

	reopened := openTestLibrary(t, dir)
	got, ok := reopened.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, "de", got.LanguageHint)
}

func TestUpdate(t *testing.T) {
	l := openTestLibrary(t, t.TempDir())
	entry, err := l.Add("Carol", "YXVkaW8=", "old", "", "en")
	require.NoError(t, err)

	name := "Caroline"
	updated, err := l.Update(entry.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.Name)
	assert.Equal(t, "old", updated.Description)

	desc := "new description"
	updated, err = l.Update(entry.ID, nil, &desc)
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.Name)
	assert.Equal(t, "new description", updated.Description)

	_, err = l.Update("missing", &name, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete(t *testing.T) {
	l := openTestLibrary(t, t.TempDir())
	entry, err := l.Add("Dave", "YXVkaW8=", "", "", "en")
	require.NoError(t, err)

	deleted, err := l.Delete(entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok := l.Get(entry.ID)
	assert.False(t, ok)

	deleted, err = l.Delete(entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestList(t *testing.T) {
	l := openTestLibrary(t, t.TempDir())
	_, err := l.Add("Zoe", "YXVkaW8=", "", "", "en")
	require.NoError(t, err)
	_, err = l.Add("Amy", "YXVkaW8=", "", "", "en")
	require.NoError(t, err)

	entries := l.List()
	require.Len(t, entries, 2)
}

func TestOpenToleratesCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644))

	l := openTestLibrary(t, dir)
	assert.Empty(t, l.List())

	// The library still accepts new entries after discarding the corrupt
	// index.
	_, err := l.Add("Eve", "YXVkaW8=", "", "", "en")
	require.NoError(t, err)
}
