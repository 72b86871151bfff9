package readme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	herrors "github.com/avierra/hangar/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFind_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ReadMe.MD", "# Plugin\n")

	path, err := Find(dir)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "ReadMe.MD"), path)
}

func TestFind_PrefersMarkdownOverPlain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README", "plain\n")
	writeFile(t, dir, "README.md", "# md\n")

	path, err := Find(dir)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "README.md"), path)
}

func TestFind_NoReadme_ReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugin.xpl", "bytes")

	_, err := Find(dir)

	require.Error(t, err)
	require.True(t, herrors.IsCategory(err, herrors.CategoryNotFound))
}

func TestRenderHTML_ProducesHeadings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md", "# Terrain Radar\n\nDraws terrain.\n")

	out, err := RenderHTML(path)
	require.NoError(t, err)

	require.Contains(t, string(out), "<h1>Terrain Radar</h1>")
	require.Contains(t, string(out), "<p>Draws terrain.</p>")
}

func TestSummary_FirstParagraphOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md",
		"# Terrain Radar\n\nDraws *terrain* on the map display.\n\nSecond paragraph is ignored.\n")

	got, err := Summary(path, 0)
	require.NoError(t, err)

	require.Equal(t, "Draws terrain on the map display.", got)
}

func TestSummary_TruncatesLongParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md", "# T\n\n"+strings.Repeat("word ", 100)+"\n")

	got, err := Summary(path, 20)
	require.NoError(t, err)

	require.Len(t, []rune(got), 23)
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestSummary_HeadingOnly_ReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md", "# Only a heading\n")

	got, err := Summary(path, 0)
	require.NoError(t, err)

	require.Empty(t, got)
}
