package ess

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// Text in save files is Windows-1252. Every byte maps to a rune, so
// decoding never fails.
var textDecoder = charmap.Windows1252

func decodeText(b []byte) string {
	out := make([]rune, 0, len(b))
	for _, c := range b {
		out = append(out, textDecoder.DecodeByte(c))
	}
	return string(out)
}

// ReadBString reads a byte-length-prefixed string and decodes all of it.
func (c *Cursor) ReadBString() (string, error) {
	n, err := c.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return decodeText(b), nil
}

// ReadBZString reads a byte-length-prefixed, zero-terminated string. All n
// bytes are consumed; only the part before the first zero is decoded.
func (c *Cursor) ReadBZString() (string, error) {
	n, err := c.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return decodeText(b), nil
}
