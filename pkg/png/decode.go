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
	"bytes"
)

const (
	dsStart = iota
	dsSeenIHDR
	dsSeenPLTE
	dsSeenIDAT
	dsAfterIDAT
	dsSeenIEND
)

// Decoder reassembles images from PNG streams.
type Decoder struct {
	// Decompressor inflates the IDAT stream; DefaultCodec when nil.
	Decompressor Decompressor
}

type decoder struct {
	stage   int
	img     Image
	idat    bytes.Buffer
	palette bool
}

// Decode parses a complete PNG stream with the zero Decoder.
func Decode(b []byte) (*Image, error) {
	var dec Decoder
	return dec.Decode(b)
}

// Decode verifies the signature, walks every chunk up to IEND, and returns
// the defiltered scanlines. It never returns a partial image.
func (dec *Decoder) Decode(b []byte) (*Image, error) {
	if !HasSignature(b) {
		return nil, formatErr(ErrBadSignature, ChunkType{}, 0, "")
	}

	d := &decoder{}
	end := len(Signature)
	for ci, err := range Chunks(b[len(Signature):]) {
		// any byte past IEND is misplaced, even one that does not parse
		if d.stage == dsSeenIEND {
			return nil, formatErr(ErrChunksOutOfOrder, ci.Type, end, "%d bytes after IEND", len(b)-end)
		}
		if err != nil {
			return nil, shiftOffset(err, len(Signature))
		}
		if err := d.parseChunk(ci.Chunk, ci.Offset+len(Signature)); err != nil {
			return nil, err
		}
		end = ci.Offset + len(Signature) + ci.Len()
	}

	if err := d.finish(len(b)); err != nil {
		return nil, err
	}

	data, err := dec.inflate(d.idat.Bytes(), d.img.Header)
	if err != nil {
		return nil, err
	}

	rows, err := defilterRows(d.img.Header, data)
	if err != nil {
		return nil, err
	}
	d.img.Rows = rows
	return &d.img, nil
}

// DecodeHeader reads the signature and the IHDR chunk only.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if !HasSignature(b) {
		return h, formatErr(ErrBadSignature, ChunkType{}, 0, "")
	}

	c := NewCursor(b[len(Signature):])
	chunk, err := c.DecodeChunk()
	if err != nil {
		return h, shiftOffset(err, len(Signature))
	}
	if chunk.Type != TypeIHDR {
		return h, formatErr(ErrMissingHeader, chunk.Type, len(Signature), "first chunk is %s", chunk.Type)
	}
	return h, h.UnmarshalBinary(chunk.Data)
}

func (d *decoder) parseChunk(c Chunk, off int) error {
	if d.stage == dsStart && c.Type != TypeIHDR {
		return formatErr(ErrMissingHeader, c.Type, off, "first chunk is %s", c.Type)
	}

	switch c.Type {
	case TypeIHDR:
		if d.stage != dsStart {
			return formatErr(ErrChunksOutOfOrder, c.Type, off, "duplicate IHDR")
		}
		if err := d.img.Header.UnmarshalBinary(c.Data); err != nil {
			return err
		}
		if d.img.Header.Interlace != InterlaceNone {
			return formatErr(ErrUnsupported, c.Type, off, "interlaced image")
		}
		d.stage = dsSeenIHDR
	case TypePLTE:
		if d.stage != dsSeenIHDR {
			return formatErr(ErrChunksOutOfOrder, c.Type, off, "PLTE must precede IDAT and appear once")
		}
		palette := bytes.Clone(c.Data)
		if err := validatePalette(d.img.Header, palette); err != nil {
			return err
		}
		d.img.Palette = palette
		d.stage = dsSeenPLTE
	case TypeIDAT:
		switch d.stage {
		case dsSeenIHDR, dsSeenPLTE:
			if d.img.Header.ColorType == Palette && d.img.Palette == nil {
				return formatErr(ErrMissingPalette, c.Type, off, "indexed image without PLTE")
			}
			d.stage = dsSeenIDAT
		case dsSeenIDAT:
		default:
			return formatErr(ErrChunksOutOfOrder, c.Type, off, "IDAT chunks must be consecutive")
		}
		d.idat.Write(c.Data)
	case TypeIEND:
		if d.stage < dsSeenIDAT {
			return formatErr(ErrChunksOutOfOrder, c.Type, off, "IEND before IDAT")
		}
		if len(c.Data) != 0 {
			return formatErr(ErrChunksOutOfOrder, c.Type, off, "IEND carries %d bytes", len(c.Data))
		}
		d.stage = dsSeenIEND
	default:
		if c.Type.Critical() || !c.Type.Valid() {
			return formatErr(ErrUnknownCriticalChunk, c.Type, off, "")
		}
		if d.stage == dsSeenIDAT {
			d.stage = dsAfterIDAT
		}
		d.img.Extra = append(d.img.Extra, Chunk{Type: c.Type, Data: bytes.Clone(c.Data), CRC: c.CRC})
	}
	return nil
}

// finish reports what is missing when the stream ended before IEND.
func (d *decoder) finish(size int) error {
	switch d.stage {
	case dsSeenIEND:
		return nil
	case dsStart:
		return formatErr(ErrMissingHeader, ChunkType{}, size, "no chunks")
	case dsSeenIHDR, dsSeenPLTE:
		return formatErr(ErrTruncatedChunk, TypeIDAT, size, "stream ends before IDAT")
	}
	return formatErr(ErrTruncatedChunk, TypeIEND, size, "stream ends before IEND")
}

func (dec *Decoder) inflate(idat []byte, h Header) ([]byte, error) {
	var z Decompressor = DefaultCodec
	if dec.Decompressor != nil {
		z = dec.Decompressor
	}

	want := h.DataLen()
	data, err := z.Decompress(idat, want)
	if err != nil {
		return nil, formatErr(ErrDecompression, TypeIDAT, 0, "%v", err)
	}
	if len(data) != want {
		return nil, formatErr(ErrScanlineLength, TypeIDAT, 0, "inflated %d bytes, want %d", len(data), want)
	}
	return data, nil
}

func shiftOffset(err error, delta int) error {
	if fe, ok := err.(*FormatError); ok {
		fe.Offset += delta
	}
	return err
}
