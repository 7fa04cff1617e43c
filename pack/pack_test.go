package pack_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/joker_tool/pack"
	"github.com/mogaika/joker_tool/pack/gar"
	"github.com/mogaika/joker_tool/pack/layout"
	_ "github.com/mogaika/joker_tool/pack/mfpj"
	"github.com/mogaika/joker_tool/pack/mfpk"
	"github.com/mogaika/joker_tool/vfs"
)

func TestFormatOf(t *testing.T) {
	for name, format := range map[string]string{
		"title.mfl":     ".MFL",
		"title.mfl.yml": ".MFL",
		"a.b.MFPK.YAML": ".MFPK",
		"archive.gar":   ".GAR",
		"noext":         "",
		"dir/menu.mfpj": ".MFPJ",
		"strange.yml":   "",
	} {
		assert.Equal(t, format, pack.FormatOf(name), name)
	}
	assert.Equal(t, []string{".GAR", ".MFL", ".MFPJ", ".MFPK"}, pack.Formats())
}

func TestDecodeEncode(t *testing.T) {
	data, err := mfpk.Encode(&mfpk.Package{Files: []mfpk.Entry{{Name: "common", ID: 1}}})
	require.NoError(t, err)

	doc, err := pack.Decode("common.mfpk", data)
	require.NoError(t, err)
	require.IsType(t, &mfpk.Package{}, doc)

	again, err := pack.Encode("common.mfpk", doc)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	_, err = pack.Decode("common.bin", data)
	assert.ErrorIs(t, err, pack.ErrNoHandler)
	_, err = pack.Encode("common.mfl", doc)
	assert.Error(t, err)
	_, err = pack.Encode("x.gar", doc)
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	doc, err := pack.DecodeYAML("menu.mfl.yml", strings.NewReader("name: menu\nlayoutId: 3\n"))
	require.NoError(t, err)
	l, ok := doc.(*layout.Layout)
	require.True(t, ok)
	assert.EqualValues(t, 3, l.ID)

	_, err = pack.DecodeYAML("menu.mfl.yml", strings.NewReader("name: menu\nbogus: 3\n"))
	assert.Error(t, err)
	_, err = pack.DecodeYAML("a.gar.yml", strings.NewReader("creator: x\n"))
	assert.Error(t, err)

	text, err := pack.MarshalYAML(l)
	require.NoError(t, err)
	assert.Contains(t, string(text), "name: menu")
}

func TestOpenSave(t *testing.T) {
	root := t.TempDir()
	data, err := layout.Encode(&layout.Layout{Name: "menu"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "menu.mfl"), data, 0666))
	d := vfs.NewDirectoryDriver(root)

	doc, err := pack.Open(d, "menu.mfl")
	require.NoError(t, err)
	l := doc.(*layout.Layout)
	l.Name = "renamed"

	saved, err := pack.Save(d, "menu.mfl", l)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(filepath.Join(root, "menu.mfl"))
	require.NoError(t, err)
	assert.Equal(t, saved, onDisk)

	_, err = pack.Save(d, "menu.mfl", &layout.Layout{Root: &layout.Widget{Kind: layout.WidgetPane, Pane: "missing"}})
	assert.ErrorIs(t, err, layout.ErrUnresolvedReference)

	w := gar.NewWriter()
	require.NoError(t, w.Add("menu.mfl", onDisk))
	archive, err := w.Bytes()
	require.NoError(t, err)
	listing, err := pack.Decode("ui.gar", archive)
	require.NoError(t, err)
	assert.Equal(t, "menu.mfl", listing.(*gar.Listing).Files[0].Name)
}
