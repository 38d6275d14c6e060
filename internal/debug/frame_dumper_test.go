package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpFrameBufferWritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	fd := NewFrameDumper(dir)

	var frame [256 * 240]uint8
	require.NoError(t, fd.DumpFrameBuffer(frame, 0))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "frame_000000.png", entries[0].Name())
	require.Equal(t, 1, fd.Count())
}
