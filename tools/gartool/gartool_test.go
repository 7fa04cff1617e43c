package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/joker_tool/pack/gar"
)

func TestExtractCreate(t *testing.T) {
	root := t.TempDir()
	w := gar.NewWriter()
	require.NoError(t, w.SetAlignment(0x10))
	require.NoError(t, w.Add("title.mfl", []byte("MFL title")))
	require.NoError(t, w.Add("sub/menu.mfl", []byte("menu")))
	require.NoError(t, w.Add("pack.mfpk", []byte("MFPK")))
	original, err := w.Bytes()
	require.NoError(t, err)
	archive := filepath.Join(root, "ui.gar")
	require.NoError(t, os.WriteFile(archive, original, 0666))

	var out bytes.Buffer
	require.NoError(t, list(&out, archive, true))
	assert.Equal(t, "title.mfl\nsub/menu.mfl\npack.mfpk\n", out.String())

	out.Reset()
	require.NoError(t, list(&out, archive, false))
	assert.Contains(t, out.String(), "title.mfl [0x9 bytes] @ 0x")

	out.Reset()
	dir, err := extract(&out, archive)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ui"), dir)
	content, err := os.ReadFile(filepath.Join(dir, "sub", "menu.mfl"))
	require.NoError(t, err)
	assert.Equal(t, []byte("menu"), content)
	listing, err := os.ReadFile(filepath.Join(dir, listFileName))
	require.NoError(t, err)
	assert.Equal(t, "title.mfl\nsub/menu.mfl\npack.mfpk", string(listing))

	rebuilt := filepath.Join(root, "rebuilt.gar")
	require.NoError(t, create(dir, rebuilt, 0x10))
	data, err := os.ReadFile(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestCreateErrors(t *testing.T) {
	root := t.TempDir()
	assert.Error(t, create(filepath.Join(root, "missing"), filepath.Join(root, "a.gar"), 4))
	require.NoError(t, os.WriteFile(filepath.Join(root, listFileName), []byte("../escape.mfl\n"), 0666))
	assert.Error(t, create(root, filepath.Join(root, "a.gar"), 4))
	assert.Error(t, create(root, filepath.Join(root, "a.gar"), 3))
}

func TestExtractPath(t *testing.T) {
	_, err := extractPath("/tmp/x", "../../etc/passwd")
	assert.Error(t, err)
	p, err := extractPath("/tmp/x", "a/b.mfl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/x", "a", "b.mfl"), p)
}
