package png_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/ostafen/pnglet/pkg/png"
	"github.com/stretchr/testify/require"
)

func TestCRC32(t *testing.T) {
	require.Equal(t, uint32(0xCBF43926), png.CRC32([]byte("123456789")))
	require.Equal(t, uint32(0xAE426082), png.CRC32([]byte("IEND")))
	require.Equal(t, uint32(0), png.CRC32(nil))

	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}
	require.Equal(t, uint32(0x907753DE), png.Checksum(png.TypeIHDR, ihdr))
	require.Equal(t, png.CRC32(append([]byte("IHDR"), ihdr...)), png.Checksum(png.TypeIHDR, ihdr))
}

func TestEncodeChunk(t *testing.T) {
	iend := png.EncodeChunk(png.TypeIEND, nil)
	require.Equal(t, "0000000049454e44ae426082", hex.EncodeToString(iend))

	payload := []byte("hello, chunk")
	b := png.EncodeChunk(png.TypeIDAT, payload)
	require.Len(t, b, 12+len(payload))

	c := png.NewCursor(b)
	chunk, err := c.DecodeChunk()
	require.NoError(t, err)
	require.Equal(t, png.TypeIDAT, chunk.Type)
	require.Equal(t, payload, chunk.Data)
	require.True(t, chunk.Verify())
	require.Equal(t, len(b), c.Offset())
	require.Equal(t, 0, c.Len())
}

func TestChunkWriteTo(t *testing.T) {
	chunk := png.NewChunk(png.TypeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0})

	var buf bytes.Buffer
	n, err := chunk.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(chunk.Len()), n)
	require.Equal(t, png.EncodeChunk(chunk.Type, chunk.Data), buf.Bytes())
}

func TestDecodeChunkBitFlip(t *testing.T) {
	b := png.EncodeChunk(png.TypeIDAT, []byte{0x78, 0x01, 0xff, 0x00})

	// every bit of the type tag and of the payload is covered by the CRC
	for i := 4; i < len(b)-4; i++ {
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte(nil), b...)
			corrupt[i] ^= 1 << bit

			c := png.NewCursor(corrupt)
			_, err := c.DecodeChunk()
			require.ErrorIs(t, err, png.ErrChecksumMismatch, "byte %d bit %d", i, bit)
			require.Equal(t, 0, c.Offset())
		}
	}
}

func TestDecodeChunkTruncated(t *testing.T) {
	b := png.EncodeChunk(png.TypeIDAT, []byte("payload"))

	for n := 0; n < len(b); n++ {
		c := png.NewCursor(b[:n])
		_, err := c.DecodeChunk()
		require.ErrorIs(t, err, png.ErrTruncatedChunk, "%d bytes", n)
		require.Equal(t, 0, c.Offset())
	}
}

func TestDecodeChunkTooLarge(t *testing.T) {
	b := []byte{0x80, 0, 0, 0, 'I', 'D', 'A', 'T', 0, 0, 0, 0}

	_, err := png.NewCursor(b).DecodeChunk()
	require.ErrorIs(t, err, png.ErrChunkTooLarge)
}

func TestChunksIterator(t *testing.T) {
	var b []byte
	b = png.AppendChunk(b, png.TypeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 0, 0, 0, 0})
	b = png.AppendChunk(b, png.TypeIDAT, []byte{1, 2, 3})
	b = png.AppendChunk(b, png.TypeIEND, nil)

	var (
		types   []string
		offsets []int
	)
	for ci, err := range png.Chunks(b) {
		require.NoError(t, err)
		types = append(types, ci.Type.String())
		offsets = append(offsets, ci.Offset)
	}
	require.Equal(t, []string{"IHDR", "IDAT", "IEND"}, types)
	require.Equal(t, []int{0, 25, 40}, offsets)

	// a broken tail stops the iteration with an error
	var errs []error
	for _, err := range png.Chunks(b[:len(b)-1]) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], png.ErrTruncatedChunk)
}

func TestChunkTypeProperties(t *testing.T) {
	tests := []struct {
		tag        string
		critical   bool
		public     bool
		safeToCopy bool
	}{
		{"IHDR", true, true, false},
		{"IDAT", true, true, false},
		{"tEXt", false, true, true},
		{"gAMA", false, true, false},
		{"prVt", false, false, true},
	}

	for _, tt := range tests {
		ct, ok := png.ParseChunkType(tt.tag)
		require.True(t, ok)
		require.Equal(t, tt.critical, ct.Critical(), tt.tag)
		require.Equal(t, tt.public, ct.Public(), tt.tag)
		require.Equal(t, tt.safeToCopy, ct.SafeToCopy(), tt.tag)
	}

	_, ok := png.ParseChunkType("ID4T")
	require.False(t, ok)
	_, ok = png.ParseChunkType("IDA")
	require.False(t, ok)
}
