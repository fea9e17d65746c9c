package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePath(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.WritePath("out/pages.jsonl", []byte("{}\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "pages.jsonl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	abs := filepath.Join(t.TempDir(), "abs.json")
	path, err = w.WritePath(abs, []byte("[]"))
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestWriteForURL(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	path, err := w.WriteForURL("https://community.example.com/t5/hcm-q-a/x/qaq-p/123#M4", []byte("x"), ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "community_example_com_t5_hcm-q-a_x_qaq-p_123.json"), path)
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "example_com", filenameFromURL("https://example.com/"))
	assert.Equal(t, "example_com_docs_intro", filenameFromURL("https://example.com/docs/intro"))
	assert.Equal(t, "page_html", filenameFromURL("page.html"))
}
