package fuse

import (
	"slices"
	"testing"

	"github.com/ostafen/pnglet/internal/scan"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/stretchr/testify/require"
)

func testBlob(t *testing.T) ([]byte, []scan.FileInfo) {
	t.Helper()

	h := png.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: png.RGB}
	img, err := png.Encode(h, [][]byte{{0xFF, 0x00, 0x00}})
	require.NoError(t, err)

	blob := slices.Concat([]byte("padding!"), img, []byte("more"))

	c := &scan.Carver{}
	finfos := slices.Collect(c.Carve(blob))
	require.Len(t, finfos, 1)
	return blob, finfos
}

func names(n *node) []string {
	var out []string
	for _, c := range n.children {
		out = append(out, c.name)
	}
	return out
}

func TestBuildTree(t *testing.T) {
	blob, finfos := testBlob(t)

	// a stale entry pointing at non-PNG bytes and a duplicate are dropped
	finfos = append(finfos,
		scan.FileInfo{Name: "stale.png", Offset: 0, Size: 8},
		finfos[0],
	)

	root := buildTree(blob, finfos, nil)
	require.Equal(t, []string{"f00000008.chunks", "f00000008.png"}, names(root))

	img, ok := root.lookup("f00000008.png")
	require.True(t, ok)
	require.False(t, img.dir)
	require.Equal(t, blob[8:len(blob)-4], img.data)

	chunks, ok := root.lookup("f00000008.chunks")
	require.True(t, ok)
	require.True(t, chunks.dir)
	require.Equal(t, []string{"000_IHDR", "001_IDAT", "002_IEND"}, names(chunks))

	ihdr, _ := chunks.lookup("000_IHDR")
	var h png.Header
	require.NoError(t, h.UnmarshalBinary(ihdr.data))
	require.Equal(t, uint32(1), h.Width)

	iend, _ := chunks.lookup("002_IEND")
	require.Empty(t, iend.data)

	// inodes are unique
	seen := map[uint64]bool{root.inode: true}
	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			require.False(t, seen[c.inode], c.name)
			seen[c.inode] = true
			walk(c)
		}
	}
	walk(root)
	require.Len(t, seen, 6)
}

func TestChunkFileName(t *testing.T) {
	require.Equal(t, "012_tEXt", ChunkFileName(12, png.ChunkType{'t', 'E', 'X', 't'}))
}
