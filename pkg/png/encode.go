// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package png

import (
	"io"
)

// Encoder assembles PNG streams. The zero value emits a single IDAT chunk
// compressed with DefaultCodec and every scanline filtered with None.
// An Encoder holds no per-call state and may be shared between goroutines.
type Encoder struct {
	Compressor Compressor
	Policy     FilterPolicy
	// MaxIDATSize caps the payload of each IDAT chunk; 0 means one chunk.
	MaxIDATSize int
}

// Encode assembles a PNG from a header and unfiltered scanlines using the
// zero Encoder.
func Encode(h Header, rows [][]byte) ([]byte, error) {
	var enc Encoder
	return enc.Encode(&Image{Header: h, Rows: rows})
}

func (e *Encoder) Encode(m *Image) ([]byte, error) {
	data, err := e.filterRows(m)
	if err != nil {
		return nil, err
	}

	compressed, err := e.compressor().Compress(data)
	if err != nil {
		return nil, err
	}

	n := len(Signature) + 2*chunkOverhead + ihdrLength + len(compressed) + chunkOverhead
	if m.Palette != nil {
		n += chunkOverhead + len(m.Palette)
	}
	for _, c := range m.Extra {
		n += chunkOverhead + len(c.Data)
	}

	out := make([]byte, 0, n)
	out = append(out, Signature...)
	out = AppendChunk(out, TypeIHDR, m.Header.appendIHDR(nil))
	if m.Palette != nil {
		out = AppendChunk(out, TypePLTE, m.Palette)
	}
	for _, c := range m.Extra {
		out = AppendChunk(out, c.Type, c.Data)
	}
	for _, part := range e.splitIDAT(compressed) {
		out = AppendChunk(out, TypeIDAT, part)
	}
	return AppendChunk(out, TypeIEND, nil), nil
}

// EncodeTo writes the encoded stream to w.
func (e *Encoder) EncodeTo(w io.Writer, m *Image) error {
	b, err := e.Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (e *Encoder) compressor() Compressor {
	if e.Compressor == nil {
		return DefaultCodec
	}
	return e.Compressor
}

func (e *Encoder) policy() FilterPolicy {
	if e.Policy == nil {
		return FixedFilter(FilterNone)
	}
	return e.Policy
}

func (e *Encoder) splitIDAT(data []byte) [][]byte {
	size := e.MaxIDATSize
	if size <= 0 || size > MaxChunkLength {
		size = MaxChunkLength
	}
	if len(data) <= size {
		return [][]byte{data}
	}

	parts := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > 0 {
		n := min(size, len(data))
		parts = append(parts, data[:n])
		data = data[n:]
	}
	return parts
}

// filterRows validates m and returns the filtered scanline stream: each row
// prefixed by its filter byte.
func (e *Encoder) filterRows(m *Image) ([]byte, error) {
	h := m.Header
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if h.Interlace != InterlaceNone {
		return nil, formatErr(ErrUnsupported, TypeIHDR, 0, "interlaced encoding")
	}
	if err := validatePalette(h, m.Palette); err != nil {
		return nil, err
	}
	for _, c := range m.Extra {
		if c.Type.Critical() || !c.Type.Valid() {
			return nil, formatErr(ErrUnknownCriticalChunk, c.Type, 0, "only ancillary chunks may be added")
		}
	}

	rowBytes := h.RowBytes()
	if len(m.Rows) != int(h.Height) {
		return nil, formatErr(ErrScanlineLength, ChunkType{}, 0, "got %d scanlines, want %d", len(m.Rows), h.Height)
	}

	policy := e.policy()
	scratch := NewFilterScratch(rowBytes)
	bpp := h.BytesPerPixel()

	out := make([]byte, 0, h.DataLen())
	var prior []byte
	for y, raw := range m.Rows {
		if len(raw) != rowBytes {
			return nil, formatErr(ErrScanlineLength, ChunkType{}, 0, "scanline %d has %d bytes, want %d", y, len(raw), rowBytes)
		}

		ft := policy.Select(raw, prior, bpp, scratch)

		dst := scratch.Row(FilterNone)
		if err := Filter(dst, raw, prior, bpp, ft); err != nil {
			return nil, err
		}
		out = append(out, byte(ft))
		out = append(out, dst...)
		prior = raw
	}
	return out, nil
}

// validatePalette enforces the PLTE rules: required for indexed images,
// optional for truecolour ones, forbidden for greyscale.
func validatePalette(h Header, palette []byte) error {
	switch h.ColorType {
	case Palette:
		if palette == nil {
			return formatErr(ErrMissingPalette, TypePLTE, 0, "indexed image without palette")
		}
	case RGB, RGBA:
		if palette == nil {
			return nil
		}
	default:
		if palette != nil {
			return formatErr(ErrChunksOutOfOrder, TypePLTE, 0, "palette not allowed for color type %s", h.ColorType)
		}
		return nil
	}

	entries := len(palette) / 3
	if len(palette)%3 != 0 || entries == 0 || entries > 256 {
		return formatErr(ErrInvalidHeader, TypePLTE, 0, "bad palette length: %d", len(palette))
	}
	if h.ColorType == Palette && entries > 1<<h.BitDepth {
		return formatErr(ErrInvalidHeader, TypePLTE, 0, "%d palette entries exceed bit depth %d", entries, h.BitDepth)
	}
	return nil
}
