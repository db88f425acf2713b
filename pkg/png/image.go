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

// Image is a decoded PNG: its header and the unfiltered scanlines. Each row
// is Header.RowBytes() long and samples are packed at the header's bit
// depth, most significant bits first.
type Image struct {
	Header Header
	// Palette holds the PLTE payload (RGB triples). Required for the Palette
	// colour type, optional for RGB and RGBA.
	Palette []byte
	Rows    [][]byte
	// Extra keeps ancillary chunks in the order they were encountered.
	Extra []Chunk
}

// NewImage allocates zeroed rows for h.
func NewImage(h Header) (*Image, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	rowBytes := h.RowBytes()
	pix := make([]byte, int(h.Height)*rowBytes)

	rows := make([][]byte, h.Height)
	for y := range rows {
		rows[y] = pix[y*rowBytes : (y+1)*rowBytes : (y+1)*rowBytes]
	}
	return &Image{Header: h, Rows: rows}, nil
}

// Pix returns the rows concatenated.
func (m *Image) Pix() []byte {
	pix := make([]byte, 0, len(m.Rows)*m.Header.RowBytes())
	for _, row := range m.Rows {
		pix = append(pix, row...)
	}
	return pix
}

// SetPix splits pix into rows. It fails unless pix holds exactly Height
// rows of RowBytes each.
func (m *Image) SetPix(pix []byte) error {
	rowBytes := m.Header.RowBytes()
	if len(pix) != int(m.Header.Height)*rowBytes {
		return formatErr(ErrScanlineLength, ChunkType{}, 0, "got %d bytes, want %d", len(pix), int(m.Header.Height)*rowBytes)
	}

	m.Rows = make([][]byte, m.Header.Height)
	for y := range m.Rows {
		m.Rows[y] = pix[y*rowBytes : (y+1)*rowBytes : (y+1)*rowBytes]
	}
	return nil
}
