package ess

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const (
	defaultBufferSize = 64 * 1024
	// readChunk caps a single allocation step of ReadBytes so that an
	// implausible declared length fails on end-of-input instead of on a
	// huge up-front allocation.
	readChunk = 64 * 1024
)

// Cursor is a forward-only little-endian reader over a save byte stream.
// It never rewinds and buffers no more than the underlying bufio.Reader.
// Every read either returns the full value or a *DecodeError.
type Cursor struct {
	r   *bufio.Reader
	off int64
	buf [8]byte
}

func NewCursor(rd io.Reader) *Cursor {
	return newCursorSize(rd, defaultBufferSize)
}

func newCursorSize(rd io.Reader, size int) *Cursor {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Cursor{r: bufio.NewReaderSize(rd, size)}
}

// Offset reports the number of bytes consumed so far.
func (c *Cursor) Offset() int64 {
	return c.off
}

func (c *Cursor) fail(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newDecodeError(KindUnexpectedEOF, c.off, nil)
	}
	return newDecodeError(KindIO, c.off, err)
}

func (c *Cursor) fill(n int) ([]byte, error) {
	b := c.buf[:n]
	read, err := io.ReadFull(c.r, b)
	if err != nil {
		derr := c.fail(err)
		c.off += int64(read)
		return nil, derr
	}
	c.off += int64(n)
	return b, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, c.fail(err)
	}
	c.off++
	return b, nil
}

// ReadU16 reads a little-endian WORD.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadF32() (float32, error) {
	u, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ReadBool reads one byte; any nonzero value is true.
func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.ReadU8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (c *Cursor) ReadFormID() (FormID, error) {
	v, err := c.ReadU32()
	return FormID(v), err
}

func (c *Cursor) ReadIRef() (IRef, error) {
	v, err := c.ReadU32()
	return IRef(v), err
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, newDecodeError(KindUnexpectedEOF, c.off, nil)
	}
	if n == 0 {
		return []byte{}, nil
	}
	out := make([]byte, 0, min(n, readChunk))
	for len(out) < n {
		step := min(n-len(out), readChunk)
		start := len(out)
		out = append(out, make([]byte, step)...)
		read, err := io.ReadFull(c.r, out[start:])
		if err != nil {
			derr := c.fail(err)
			c.off += int64(read)
			return nil, derr
		}
		c.off += int64(step)
	}
	return out, nil
}

// readArray4 reads a 4-byte tag.
func (c *Cursor) readArray4() ([4]byte, error) {
	var out [4]byte
	b, err := c.fill(4)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Skip discards n bytes.
func (c *Cursor) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	discarded, err := c.r.Discard(int(n))
	if err != nil {
		derr := c.fail(err)
		c.off += int64(discarded)
		return derr
	}
	c.off += n
	return nil
}
