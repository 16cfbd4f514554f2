package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
}

func TestLoad_ParsesAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
data_dir = "/var/lib/semindex"

[chunking]
size = 1024
overlap = 256

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "sk-test"
batch_size = 50

[github]
token = "ghp_test"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/semindex", cfg.DataDir)
	assert.Equal(t, 1024, cfg.Chunking.Size)
	assert.Equal(t, 256, cfg.Chunking.Overlap)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 50, cfg.Embedding.BatchSize)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Default()
	want.DataDir = "/tmp/idx"
	want.Chunking.Size = 512
	require.NoError(t, Save(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
