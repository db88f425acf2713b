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
	"encoding/binary"
	"io"
	"iter"
)

// Signature is the fixed 8-byte prefix of every PNG stream.
const Signature = "\x89PNG\r\n\x1a\n"

const (
	// chunkOverhead is the size of the length, type and CRC fields.
	chunkOverhead = 12

	// MaxChunkLength is the largest payload a chunk may declare.
	MaxChunkLength = 1<<31 - 1
)

// ChunkType is the 4-byte tag identifying a chunk.
type ChunkType [4]byte

var (
	TypeIHDR = ChunkType{'I', 'H', 'D', 'R'}
	TypePLTE = ChunkType{'P', 'L', 'T', 'E'}
	TypeIDAT = ChunkType{'I', 'D', 'A', 'T'}
	TypeIEND = ChunkType{'I', 'E', 'N', 'D'}
)

func ParseChunkType(s string) (ChunkType, bool) {
	var t ChunkType
	if len(s) != len(t) {
		return t, false
	}
	copy(t[:], s)
	return t, t.Valid()
}

func (t ChunkType) String() string { return string(t[:]) }

// Valid reports whether every byte of the tag is an ASCII letter.
func (t ChunkType) Valid() bool {
	for _, c := range t {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

// The case of each tag letter carries a property bit (bit 5).

func (t ChunkType) Critical() bool   { return t[0]&0x20 == 0 }
func (t ChunkType) Public() bool     { return t[1]&0x20 == 0 }
func (t ChunkType) SafeToCopy() bool { return t[3]&0x20 != 0 }

// Chunk is a single length-prefixed, checksummed block of a PNG stream.
type Chunk struct {
	Type ChunkType
	Data []byte
	CRC  uint32
}

// NewChunk builds a chunk and computes its checksum.
func NewChunk(t ChunkType, data []byte) Chunk {
	return Chunk{
		Type: t,
		Data: data,
		CRC:  Checksum(t, data),
	}
}

// Len returns the encoded size of the chunk.
func (c Chunk) Len() int { return chunkOverhead + len(c.Data) }

// Verify recomputes the checksum and compares it with the stored one.
func (c Chunk) Verify() bool { return Checksum(c.Type, c.Data) == c.CRC }

// WriteTo writes the encoded chunk to w.
func (c Chunk) WriteTo(w io.Writer) (int64, error) {
	if len(c.Data) > MaxChunkLength {
		return 0, formatErr(ErrChunkTooLarge, c.Type, 0, "payload of %d bytes", len(c.Data))
	}

	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(c.Data)))
	copy(hdr[4:], c.Type[:])

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(c.Data)
	n += m
	if err != nil {
		return int64(n), err
	}

	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], c.CRC)
	m, err = w.Write(footer[:])
	return int64(n + m), err
}

// EncodeChunk returns the wire encoding of a chunk: big-endian length, type
// tag, payload and the big-endian CRC of tag and payload.
func EncodeChunk(t ChunkType, data []byte) []byte {
	return AppendChunk(make([]byte, 0, chunkOverhead+len(data)), t, data)
}

// AppendChunk appends the wire encoding of a chunk to dst.
func AppendChunk(dst []byte, t ChunkType, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	dst = append(dst, t[:]...)
	dst = append(dst, data...)
	return binary.BigEndian.AppendUint32(dst, Checksum(t, data))
}

// Cursor reads chunks sequentially from an in-memory buffer.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the position of the next unread byte.
func (c *Cursor) Offset() int { return c.off }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.off }

// DecodeChunk reads the next chunk and advances the cursor by exactly
// 12 + length bytes. On failure the cursor is left where it was. The returned
// payload aliases the cursor's buffer.
func (c *Cursor) DecodeChunk() (Chunk, error) {
	rest := c.buf[c.off:]
	if len(rest) < 8 {
		return Chunk{}, formatErr(ErrTruncatedChunk, ChunkType{}, c.off, "%d bytes left, chunk header needs 8", len(rest))
	}

	var t ChunkType
	copy(t[:], rest[4:8])

	length := binary.BigEndian.Uint32(rest[:4])
	if length > MaxChunkLength {
		return Chunk{}, formatErr(ErrChunkTooLarge, t, c.off, "bad chunk length: %d", length)
	}

	end := chunkOverhead + int(length)
	if len(rest) < end {
		return Chunk{}, formatErr(ErrTruncatedChunk, t, c.off, "declared %d bytes, %d available", end, len(rest))
	}

	chunk := Chunk{
		Type: t,
		Data: rest[8 : 8+length : 8+length],
		CRC:  binary.BigEndian.Uint32(rest[8+length : end]),
	}
	if !chunk.Verify() {
		return Chunk{}, formatErr(ErrChecksumMismatch, t, c.off, "stored %08x, computed %08x", chunk.CRC, Checksum(t, chunk.Data))
	}

	c.off += end
	return chunk, nil
}

// ChunkInfo pairs a decoded chunk with its offset in the source buffer.
type ChunkInfo struct {
	Chunk
	Offset int
}

// Chunks lazily iterates over the chunks of buf, which must start right
// after the signature. Iteration stops after the first error, which is
// yielded with a zero ChunkInfo. The sequence ends without error once buf
// is exhausted, so callers that require IEND must check for it.
func Chunks(buf []byte) iter.Seq2[ChunkInfo, error] {
	return func(yield func(ChunkInfo, error) bool) {
		c := NewCursor(buf)
		for c.Len() > 0 {
			off := c.Offset()

			chunk, err := c.DecodeChunk()
			if err != nil {
				yield(ChunkInfo{}, err)
				return
			}
			if !yield(ChunkInfo{Chunk: chunk, Offset: off}, nil) {
				return
			}
		}
	}
}

// HasSignature reports whether b starts with the PNG signature.
func HasSignature(b []byte) bool {
	return len(b) >= len(Signature) && string(b[:len(Signature)]) == Signature
}
