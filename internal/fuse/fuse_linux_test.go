package fuse

import (
	"context"
	"os"
	"testing"
	"time"

	"bazil.org/fuse"
	"github.com/stretchr/testify/require"
)

func TestImageFSNodes(t *testing.T) {
	blob, finfos := testBlob(t)
	ctx := context.Background()

	ifs := &ImageFS{root: buildTree(blob, finfos, nil), mtime: time.Unix(0, 0)}
	rootNode, err := ifs.Root()
	require.NoError(t, err)
	root := rootNode.(*Dir)

	var attr fuse.Attr
	require.NoError(t, root.Attr(ctx, &attr))
	require.True(t, attr.Mode.IsDir())

	dirents, err := root.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 2)
	require.Equal(t, fuse.DT_Dir, dirents[0].Type)
	require.Equal(t, fuse.DT_File, dirents[1].Type)

	_, err = root.Lookup(ctx, "missing.png")
	require.Equal(t, fuse.ENOENT, err)

	imgNode, err := root.Lookup(ctx, "f00000008.png")
	require.NoError(t, err)
	img := imgNode.(*File)

	require.NoError(t, img.Attr(ctx, &attr))
	require.Equal(t, os.FileMode(0444), attr.Mode)
	require.Equal(t, uint64(len(blob)-12), attr.Size)

	var resp fuse.ReadResponse
	require.NoError(t, img.Read(ctx, &fuse.ReadRequest{Offset: 0, Size: 8}, &resp))
	require.Equal(t, "\x89PNG\r\n\x1a\n", string(resp.Data))

	require.NoError(t, img.Read(ctx, &fuse.ReadRequest{Offset: int64(attr.Size) - 4, Size: 100}, &resp))
	require.Equal(t, []byte{0xAE, 0x42, 0x60, 0x82}, resp.Data)

	require.NoError(t, img.Read(ctx, &fuse.ReadRequest{Offset: int64(attr.Size) + 1, Size: 10}, &resp))
	require.Empty(t, resp.Data)

	chunksNode, err := root.Lookup(ctx, "f00000008.chunks")
	require.NoError(t, err)
	dirents, err = chunksNode.(*Dir).ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 3)
}
