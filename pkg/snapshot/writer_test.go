package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscards/pkg/domain"
)

func testSnapshot() *domain.Snapshot {
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Snapshot{
		GeneratedAt: when,
		Topics: []domain.Topic{
			{Token: "비트코인", Score: 2, Color: "hsl(123deg 65% 50%)", ArticleIDs: []string{"https://example.com/a1"}},
		},
		ArticlesByID: map[string]domain.Article{
			"https://example.com/a1": {
				ID:          "https://example.com/a1",
				Title:       "비트코인 급등",
				Link:        "https://example.com/a1",
				Source:      "Example",
				PublishedAt: &when,
			},
		},
	}
}

func TestWriter_CreatesFileAndDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "latest.json")
	w := NewWriter(path)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.Write(testSnapshot()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriter_OutputShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	require.NoError(t, NewWriter(path).Write(testSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "generatedAt")
	assert.Contains(t, doc, "topics")
	assert.Contains(t, doc, "articlesById")

	var restored domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, "비트코인", restored.Topics[0].Token)
	require.Contains(t, restored.ArticlesByID, "https://example.com/a1")
	assert.Nil(t, restored.ArticlesByID["https://example.com/a1"].Image, "absent image serializes as null")
}

func TestWriter_EmptySnapshotIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	empty := &domain.Snapshot{
		GeneratedAt:  time.Now().UTC(),
		Topics:       []domain.Topic{},
		ArticlesByID: map[string]domain.Article{},
	}
	require.NoError(t, NewWriter(path).Write(empty))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"topics": []`)
	assert.Contains(t, string(data), `"articlesById": {}`)
}

func TestWriter_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0o644))

	require.NoError(t, NewWriter(path).Write(testSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old content")

	var restored domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
}

func TestWriter_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.json")
	require.NoError(t, NewWriter(path).Write(testSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "latest.json", entries[0].Name())
}

func TestWriter_DirectoryCreationFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a dir"), 0o644))

	w := NewWriter(filepath.Join(blocker, "latest.json"))
	err := w.Write(testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create snapshot directory")
}
