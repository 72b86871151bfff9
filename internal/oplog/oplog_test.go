package oplog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T, limit int) *Log {
	t.Helper()
	l, err := Open(":memory:", limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestAppend_ThenHistory_ReturnsFormattedLines(t *testing.T) {
	l := openTestLog(t, 10)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, "Installed plugin: TerrainRadar"))
	require.NoError(t, l.Append(ctx, "Backup created: TerrainRadar.zip"))

	lines, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] Installed plugin: TerrainRadar$`, lines[0])
	require.True(t, strings.HasSuffix(lines[1], "Backup created: TerrainRadar.zip"))
}

func TestAppend_BeyondLimit_KeepsNewestLines(t *testing.T) {
	const limit = 5
	l := openTestLog(t, limit)
	ctx := context.Background()

	for i := 0; i < limit+5; i++ {
		require.NoError(t, l.Append(ctx, fmt.Sprintf("op %d", i)))
	}

	lines, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, lines, limit)

	// Oldest surviving line is op 5, newest is op 9.
	require.True(t, strings.HasSuffix(lines[0], "op 5"))
	require.True(t, strings.HasSuffix(lines[limit-1], "op 9"))
}

func TestOpen_ZeroLimit_UsesDefault(t *testing.T) {
	l := openTestLog(t, 0)
	ctx := context.Background()

	for i := 0; i < DefaultLimit+3; i++ {
		require.NoError(t, l.Append(ctx, fmt.Sprintf("op %d", i)))
	}

	n, err := l.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, n)
}

func TestClear_RemovesEverything(t *testing.T) {
	l := openTestLog(t, 10)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, "something"))
	require.NoError(t, l.Clear(ctx))

	lines, err := l.History(ctx)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oplog.db")
	ctx := context.Background()

	l, err := Open(path, 10)
	require.NoError(t, err)
	require.NoError(t, l.Append(ctx, "survives restart"))
	require.NoError(t, l.Close())

	l2, err := Open(path, 10)
	require.NoError(t, err)
	defer l2.Close()

	lines, err := l2.History(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, strings.HasSuffix(lines[0], "survives restart"))
}
