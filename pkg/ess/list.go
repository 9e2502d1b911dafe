package ess

import "golang.org/x/exp/constraints"

// readCount reads a little-endian count of the width selected by N.
func readCount[N constraints.Unsigned](c *Cursor) (N, error) {
	var zero N
	switch any(zero).(type) {
	case uint8:
		v, err := c.ReadU8()
		return N(v), err
	case uint16:
		v, err := c.ReadU16()
		return N(v), err
	default:
		v, err := c.ReadU32()
		return N(v), err
	}
}

// readList reads a count of width N followed by that many elements. Counts
// are trusted; a corrupt count surfaces as an end-of-input error. Element
// errors carry the element index in their field path.
func readList[N constraints.Unsigned, T any](c *Cursor, name string, read func(*Cursor) (T, error)) ([]T, error) {
	count, err := readCount[N](c)
	if err != nil {
		return nil, inField(name+".count", err)
	}
	// Do not trust the count for the allocation size.
	out := make([]T, 0, min(uint64(count), 1024))
	for i := uint64(0); i < uint64(count); i++ {
		v, err := read(c)
		if err != nil {
			return nil, inIndex(name, int(i), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readBlob16 reads a 16-bit length followed by that many opaque bytes.
func readBlob16(c *Cursor) ([]byte, error) {
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(int(n))
}
