package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "phaya"))

	val, ok := store.Get("embedding.provider")
	assert.True(t, ok)
	assert.Equal(t, "phaya", val)
	assert.Equal(t, "phaya", store.GetString("embedding.provider"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("chunking.size", 500))
	require.NoError(t, store.Set("chunking.trim", true))
	require.NoError(t, store.Set("chunking.embed_delay", "250ms"))

	assert.Equal(t, 500, store.GetInt("chunking.size"))
	assert.Equal(t, 0, store.GetInt("chunking.trim"))
	assert.True(t, store.GetBool("chunking.trim"))
	assert.False(t, store.GetBool("chunking.size"))
	assert.Equal(t, 250*time.Millisecond, store.GetDuration("chunking.embed_delay"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("a", "1s"))
	require.NoError(t, store.Set("b", int64(300)))
	require.NoError(t, store.Set("c", "soon"))
	require.NoError(t, store.Set("d", true))

	assert.Equal(t, time.Second, store.GetDuration("a"))
	assert.Equal(t, 300*time.Millisecond, store.GetDuration("b"))
	assert.Equal(t, time.Duration(0), store.GetDuration("c"))
	assert.Equal(t, time.Duration(0), store.GetDuration("d"))
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.backend", "sqlite"))
	require.NoError(t, store.Set("chunking.size", 400))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[storage]")
	assert.Contains(t, string(raw), "[chunking]")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", reloaded.GetString("storage.backend"))
	assert.Equal(t, 400, reloaded.GetInt("chunking.size"))
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("server.address", ":9000"))
	require.NoError(t, store.Set("embedding.model", "m"))

	assert.Equal(t, []string{"embedding.model", "server.address"}, store.Keys())
}

func TestConfigStore_LoadNestedFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "openai"
endpoint = "http://localhost:9999/v1/embeddings"

[chunking]
size = 800
overlap = 80
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "http://localhost:9999/v1/embeddings", store.GetString("embedding.endpoint"))
	assert.Equal(t, 800, store.GetInt("chunking.size"))
	assert.Equal(t, 80, store.GetInt("chunking.overlap"))
}

func TestConfigStore_LoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flat)
}

func TestNestMap_RoundTrip(t *testing.T) {
	flat := map[string]any{"a.b": 1, "a.c.d": "x", "e": true}

	assert.Equal(t, flat, flattenMap(nestMap(flat), ""))
}

func TestNestMap_ScalarPrefixConflict(t *testing.T) {
	flat := map[string]any{"a": 1, "a.b": 2}

	nested := nestMap(flat)

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
}
