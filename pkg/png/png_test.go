package png_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/stretchr/testify/require"
)

func redPixel() png.Header {
	return png.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: png.RGB}
}

// splitChunks walks an encoded stream and returns its chunks in order.
func splitChunks(t *testing.T, b []byte) []png.Chunk {
	t.Helper()

	require.True(t, png.HasSignature(b))

	var chunks []png.Chunk
	for ci, err := range png.Chunks(b[len(png.Signature):]) {
		require.NoError(t, err)
		chunks = append(chunks, ci.Chunk)
	}
	return chunks
}

func TestEncodeRedPixel(t *testing.T) {
	enc := png.Encoder{
		Compressor: png.ZlibCodec{Level: 1, Strategy: png.StrategyFixed},
		Policy:     png.FixedFilter(png.FilterNone),
	}

	b, err := enc.Encode(&png.Image{Header: redPixel(), Rows: [][]byte{{0xFF, 0x00, 0x00}}})
	require.NoError(t, err)
	require.Equal(t, []byte(png.Signature), b[:8])

	chunks := splitChunks(t, b)
	require.Len(t, chunks, 3)

	require.Equal(t, png.TypeIHDR, chunks[0].Type)
	require.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}, chunks[0].Data)

	require.Equal(t, png.TypeIDAT, chunks[1].Type)
	raw, err := png.DefaultCodec.Decompress(chunks[1].Data, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xFF, 0x00, 0x00}, raw)

	require.Equal(t, png.TypeIEND, chunks[2].Type)
	require.Empty(t, chunks[2].Data)
	require.Equal(t, []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xAE, 0x42, 0x60, 0x82}, b[len(b)-12:])

	m, err := png.Decode(b)
	require.NoError(t, err)
	require.Equal(t, redPixel(), m.Header)
	require.Equal(t, [][]byte{{0xFF, 0x00, 0x00}}, m.Rows)
}

// redPixelPNG is a red pixel compressed with zlib level 1 and fixed Huffman codes.
var redPixelPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x01, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0xDB, 0x7D, 0x2E,
	0xBC, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestDecodeRedPixelStream(t *testing.T) {
	m, err := png.Decode(redPixelPNG)
	require.NoError(t, err)
	require.Equal(t, redPixel(), m.Header)
	require.Equal(t, [][]byte{{0xFF, 0x00, 0x00}}, m.Rows)
	require.Nil(t, m.Palette)
	require.Empty(t, m.Extra)
}

func legalHeaders() []png.Header {
	depths := map[png.ColorType][]uint8{
		png.Greyscale:      {1, 2, 4, 8, 16},
		png.RGB:            {8, 16},
		png.Palette:        {1, 2, 4, 8},
		png.GreyscaleAlpha: {8, 16},
		png.RGBA:           {8, 16},
	}

	var headers []png.Header
	for _, ct := range []png.ColorType{png.Greyscale, png.RGB, png.Palette, png.GreyscaleAlpha, png.RGBA} {
		for _, d := range depths[ct] {
			for _, size := range [][2]uint32{{1, 1}, {3, 2}, {17, 5}} {
				headers = append(headers, png.Header{
					Width:     size[0],
					Height:    size[1],
					BitDepth:  d,
					ColorType: ct,
				})
			}
		}
	}
	return headers
}

func randomImage(rng *rand.Rand, h png.Header) *png.Image {
	m, err := png.NewImage(h)
	if err != nil {
		panic(err)
	}
	for _, row := range m.Rows {
		rng.Read(row)
	}
	if h.ColorType == png.Palette {
		m.Palette = make([]byte, 3<<h.BitDepth)
		rng.Read(m.Palette)
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	policies := []png.FilterPolicy{
		png.FixedFilter(png.FilterNone),
		png.FixedFilter(png.FilterSub),
		png.FixedFilter(png.FilterUp),
		png.FixedFilter(png.FilterAverage),
		png.FixedFilter(png.FilterPaeth),
		png.MinSumAbs{},
	}

	for _, h := range legalHeaders() {
		for _, policy := range policies {
			name := fmt.Sprintf("%s/%T%v", h, policy, policy)
			t.Run(name, func(t *testing.T) {
				want := randomImage(rng, h)

				enc := png.Encoder{Policy: policy}
				b, err := enc.Encode(want)
				require.NoError(t, err)

				got, err := png.Decode(b)
				require.NoError(t, err)

				if diff := cmp.Diff(want, got); diff != "" {
					t.Error(diff)
				}
			})
		}
	}
}

func TestRoundTripCompressionSettings(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	want := randomImage(rng, png.Header{Width: 40, Height: 30, BitDepth: 8, ColorType: png.RGBA})

	for _, codec := range []png.ZlibCodec{
		{Level: 0},
		{Level: 1, Strategy: png.StrategyFixed},
		{Level: 9},
		{Level: -1},
		{Strategy: png.StrategyHuffmanOnly},
		{Strategy: png.StrategyStore},
	} {
		enc := png.Encoder{Compressor: codec, Policy: png.MinSumAbs{}}
		b, err := enc.Encode(want)
		require.NoError(t, err, "%+v", codec)

		got, err := png.Decode(b)
		require.NoError(t, err, "%+v", codec)
		require.Equal(t, want.Rows, got.Rows)
	}

	_, err := png.ZlibCodec{Level: 12}.Compress([]byte{1})
	require.Error(t, err)
}

func TestSplitIDAT(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	want := randomImage(rng, png.Header{Width: 64, Height: 64, BitDepth: 8, ColorType: png.RGB})

	enc := png.Encoder{MaxIDATSize: 1000, Compressor: png.ZlibCodec{Strategy: png.StrategyStore}}
	b, err := enc.Encode(want)
	require.NoError(t, err)

	idats := 0
	for _, c := range splitChunks(t, b) {
		if c.Type == png.TypeIDAT {
			require.LessOrEqual(t, len(c.Data), 1000)
			idats++
		}
	}
	require.Greater(t, idats, 1)

	got, err := png.Decode(b)
	require.NoError(t, err)
	require.Equal(t, want.Rows, got.Rows)
}

func TestExtraChunksPreserved(t *testing.T) {
	text, _ := png.ParseChunkType("tEXt")
	want := randomImage(rand.New(rand.NewSource(9)), redPixel())
	want.Extra = []png.Chunk{png.NewChunk(text, []byte("Comment\x00red pixel"))}

	var enc png.Encoder
	b, err := enc.Encode(want)
	require.NoError(t, err)

	got, err := png.Decode(b)
	require.NoError(t, err)
	require.Equal(t, want.Extra, got.Extra)

	// critical chunks cannot be smuggled in as extras
	want.Extra = []png.Chunk{png.NewChunk(png.TypeIDAT, nil)}
	_, err = enc.Encode(want)
	require.ErrorIs(t, err, png.ErrUnknownCriticalChunk)
}

func TestEncodeInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		img  png.Image
		err  error
	}{
		{"zero width", png.Image{Header: png.Header{Height: 1, BitDepth: 8}}, png.ErrInvalidHeader},
		{"zero height", png.Image{Header: png.Header{Width: 1, BitDepth: 8}}, png.ErrInvalidHeader},
		{"rgb 4 bit", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 4, ColorType: png.RGB}}, png.ErrInvalidHeader},
		{"palette 16 bit", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 16, ColorType: png.Palette}}, png.ErrInvalidHeader},
		{"color type 1", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: 1}}, png.ErrInvalidHeader},
		{"compression method", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, Compression: 1}}, png.ErrInvalidHeader},
		{"filter method", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, Filter: 1}}, png.ErrInvalidHeader},
		{"interlace method", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, Interlace: 2}}, png.ErrInvalidHeader},
		{"adam7", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, Interlace: 1}, Rows: [][]byte{{0}}}, png.ErrUnsupported},
		{"missing rows", png.Image{Header: png.Header{Width: 1, Height: 2, BitDepth: 8}, Rows: [][]byte{{0}}}, png.ErrScanlineLength},
		{"short row", png.Image{Header: png.Header{Width: 2, Height: 1, BitDepth: 8}, Rows: [][]byte{{0}}}, png.ErrScanlineLength},
		{"missing palette", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: png.Palette}, Rows: [][]byte{{0}}}, png.ErrMissingPalette},
		{"oversized palette", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 1, ColorType: png.Palette}, Palette: make([]byte, 9), Rows: [][]byte{{0}}}, png.ErrInvalidHeader},
		{"greyscale palette", png.Image{Header: png.Header{Width: 1, Height: 1, BitDepth: 8}, Palette: make([]byte, 3), Rows: [][]byte{{0}}}, png.ErrChunksOutOfOrder},
	}

	var enc png.Encoder
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Encode(&tt.img)
			require.ErrorIs(t, err, tt.err)

			var fe *png.FormatError
			require.True(t, errors.As(err, &fe))
		})
	}
}

func TestHeaderDerivedSizes(t *testing.T) {
	tests := []struct {
		h        png.Header
		bpp      int
		rowBytes int
	}{
		{png.Header{Width: 1, Height: 1, BitDepth: 1, ColorType: png.Greyscale}, 1, 1},
		{png.Header{Width: 9, Height: 1, BitDepth: 1, ColorType: png.Greyscale}, 1, 2},
		{png.Header{Width: 3, Height: 1, BitDepth: 4, ColorType: png.Palette}, 1, 2},
		{png.Header{Width: 5, Height: 1, BitDepth: 8, ColorType: png.RGB}, 3, 15},
		{png.Header{Width: 5, Height: 1, BitDepth: 16, ColorType: png.RGB}, 6, 30},
		{png.Header{Width: 2, Height: 1, BitDepth: 16, ColorType: png.RGBA}, 8, 16},
		{png.Header{Width: 2, Height: 1, BitDepth: 8, ColorType: png.GreyscaleAlpha}, 2, 4},
	}

	for _, tt := range tests {
		require.NoError(t, tt.h.Validate())
		require.Equal(t, tt.bpp, tt.h.BytesPerPixel(), tt.h.String())
		require.Equal(t, tt.rowBytes, tt.h.RowBytes(), tt.h.String())
	}
}

func TestDecodeHeader(t *testing.T) {
	h, err := png.DecodeHeader(redPixelPNG)
	require.NoError(t, err)
	require.Equal(t, redPixel(), h)

	_, err = png.DecodeHeader(redPixelPNG[:20])
	require.ErrorIs(t, err, png.ErrTruncatedChunk)
}

// build assembles a stream from raw chunks, bypassing the encoder's checks.
func build(chunks ...png.Chunk) []byte {
	b := []byte(png.Signature)
	for _, c := range chunks {
		b = png.AppendChunk(b, c.Type, c.Data)
	}
	return b
}

func TestDecodeErrors(t *testing.T) {
	ihdr := png.NewChunk(png.TypeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0})
	iend := png.NewChunk(png.TypeIEND, nil)

	goodIDAT := splitChunks(t, redPixelPNG)[1]
	idat := func(raw []byte) png.Chunk {
		z, err := png.DefaultCodec.Compress(raw)
		require.NoError(t, err)
		return png.NewChunk(png.TypeIDAT, z)
	}
	text, _ := png.ParseChunkType("tEXt")
	crit, _ := png.ParseChunkType("ABCD")
	plte := png.NewChunk(png.TypePLTE, []byte{1, 2, 3})

	afterIHDR := len(png.Signature) + ihdr.Len()

	tests := []struct {
		name string
		b    []byte
		err  error
	}{
		{"empty", nil, png.ErrBadSignature},
		{"bad signature", append([]byte("\x89PNG\r\n\x1a\x0b"), redPixelPNG[8:]...), png.ErrBadSignature},
		{"signature only", []byte(png.Signature), png.ErrMissingHeader},
		{"truncated after IHDR", redPixelPNG[:afterIHDR], png.ErrTruncatedChunk},
		{"truncated inside IDAT", redPixelPNG[:afterIHDR+10], png.ErrTruncatedChunk},
		{"missing IEND", redPixelPNG[:len(redPixelPNG)-12], png.ErrTruncatedChunk},
		{"IDAT first", build(goodIDAT, ihdr, iend), png.ErrMissingHeader},
		{"ancillary first", build(png.NewChunk(text, nil), ihdr, goodIDAT, iend), png.ErrMissingHeader},
		{"duplicate IHDR", build(ihdr, ihdr, goodIDAT, iend), png.ErrChunksOutOfOrder},
		{"IEND before IDAT", build(ihdr, iend), png.ErrChunksOutOfOrder},
		{"data after IEND", build(ihdr, goodIDAT, iend, iend), png.ErrChunksOutOfOrder},
		{"short tail after IEND", append(build(ihdr, goodIDAT, iend), 1, 2, 3, 4, 5), png.ErrChunksOutOfOrder},
		{"ancillary after IEND", build(ihdr, goodIDAT, iend, png.NewChunk(text, nil)), png.ErrChunksOutOfOrder},
		{"split IDAT", build(ihdr, goodIDAT, png.NewChunk(text, nil), goodIDAT, iend), png.ErrChunksOutOfOrder},
		{"PLTE after IDAT", build(ihdr, goodIDAT, plte, iend), png.ErrChunksOutOfOrder},
		{"IEND with payload", build(ihdr, goodIDAT, png.NewChunk(png.TypeIEND, []byte{0})), png.ErrChunksOutOfOrder},
		{"unknown critical", build(ihdr, png.NewChunk(crit, nil), goodIDAT, iend), png.ErrUnknownCriticalChunk},
		{"bad IHDR", build(png.NewChunk(png.TypeIHDR, []byte{0, 0, 0, 0, 0, 0, 0, 1, 8, 2, 0, 0, 0}), goodIDAT, iend), png.ErrInvalidHeader},
		{"short IHDR", build(png.NewChunk(png.TypeIHDR, []byte{0, 0, 0, 1}), goodIDAT, iend), png.ErrInvalidHeader},
		{"palette without PLTE", build(png.NewChunk(png.TypeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 3, 0, 0, 0}), idat([]byte{0, 0}), iend), png.ErrMissingPalette},
		{"not zlib", build(ihdr, png.NewChunk(png.TypeIDAT, []byte("garbage")), iend), png.ErrDecompression},
		{"too few bytes", build(ihdr, idat([]byte{0, 1, 2}), iend), png.ErrScanlineLength},
		{"too many bytes", build(ihdr, idat([]byte{0, 1, 2, 3, 4}), iend), png.ErrScanlineLength},
		{"bad filter byte", build(ihdr, idat([]byte{5, 1, 2, 3}), iend), png.ErrUnknownFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := png.Decode(tt.b)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, m)
		})
	}
}

func TestDecodeOversizedHeader(t *testing.T) {
	ihdr := func(h png.Header) png.Chunk {
		b, err := h.MarshalBinary()
		require.NoError(t, err)
		return png.NewChunk(png.TypeIHDR, b)
	}
	z, err := png.DefaultCodec.Compress([]byte{0, 1, 2, 3})
	require.NoError(t, err)
	idat := png.NewChunk(png.TypeIDAT, z)
	iend := png.NewChunk(png.TypeIEND, nil)

	// lengths that fit int64 but not int32 are rejected up front on 32-bit
	tooShort := png.ErrScanlineLength
	if math.MaxInt == math.MaxInt32 {
		tooShort = png.ErrInvalidHeader
	}

	tests := []struct {
		name string
		h    png.Header
		err  error
	}{
		{"length overflows", png.Header{Width: math.MaxInt32, Height: math.MaxInt32, BitDepth: 16, ColorType: png.RGBA}, png.ErrInvalidHeader},
		{"huge greyscale", png.Header{Width: math.MaxInt32, Height: math.MaxInt32, BitDepth: 8, ColorType: png.Greyscale}, tooShort},
		{"large RGBA", png.Header{Width: 30000, Height: 30000, BitDepth: 16, ColorType: png.RGBA}, tooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := build(ihdr(tt.h), idat, iend)

			var m *png.Image
			require.NotPanics(t, func() { m, err = png.Decode(b) })
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, m)
		})
	}
}

func TestDecompressLimit(t *testing.T) {
	z, err := png.DefaultCodec.Compress(make([]byte, 1000))
	require.NoError(t, err)

	out, err := png.DefaultCodec.Decompress(z, 10)
	require.NoError(t, err)
	require.Len(t, out, 11)

	out, err = png.DefaultCodec.Decompress(z, 1000)
	require.NoError(t, err)
	require.Len(t, out, 1000)

	out, err = png.DefaultCodec.Decompress(z, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, out, 1000)

	_, err = png.DefaultCodec.Decompress(z, -1)
	require.Error(t, err)
}

func TestDecodeChecksumMismatch(t *testing.T) {
	// flip every bit after the signature that lies inside a type tag or
	// payload of any chunk
	for ci, err := range png.Chunks(redPixelPNG[8:]) {
		require.NoError(t, err)

		start := 8 + ci.Offset + 4
		end := 8 + ci.Offset + 8 + len(ci.Data)
		for i := start; i < end; i++ {
			for bit := 0; bit < 8; bit++ {
				b := bytes.Clone(redPixelPNG)
				b[i] ^= 1 << bit

				_, err := png.Decode(b)
				require.ErrorIs(t, err, png.ErrChecksumMismatch, "%s byte %d bit %d", ci.Type, i, bit)
			}
		}
	}
}

func TestDecodeBoundaryImages(t *testing.T) {
	h := png.Header{Width: 1, Height: 1, BitDepth: 1, ColorType: png.Greyscale}

	b, err := png.Encode(h, [][]byte{{0x80}})
	require.NoError(t, err)

	m, err := png.Decode(b)
	require.NoError(t, err)
	require.Equal(t, h, m.Header)
	require.Equal(t, [][]byte{{0x80}}, m.Rows)

	chunks := splitChunks(t, b)
	last := chunks[len(chunks)-1]
	require.Equal(t, png.TypeIEND, last.Type)
	require.Empty(t, last.Data)
}

func TestImagePix(t *testing.T) {
	m, err := png.NewImage(png.Header{Width: 2, Height: 2, BitDepth: 8, ColorType: png.Greyscale})
	require.NoError(t, err)

	require.NoError(t, m.SetPix([]byte{1, 2, 3, 4}))
	require.Equal(t, [][]byte{{1, 2}, {3, 4}}, m.Rows)
	require.Equal(t, []byte{1, 2, 3, 4}, m.Pix())

	require.ErrorIs(t, m.SetPix([]byte{1, 2, 3}), png.ErrScanlineLength)
}
