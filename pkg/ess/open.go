package ess

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sys/unix"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// File is a save decoded from disk.
type File struct {
	Path string
	// Size is the on-disk size, before any decompression.
	Size int64
	// Fingerprint identifies the stored bytes. Two files with the same
	// fingerprint hold the same save.
	Fingerprint uint64
	Save        *Save
}

// Open decodes the save at path with the default decoder.
func Open(path string) (*File, error) {
	return defaultDecoder.Open(path)
}

// Open maps the file at path read-only and decodes it. Saves compressed with
// zstd or gzip are decompressed transparently. If mmap is unavailable the
// file is streamed instead.
func (d *Decoder) Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	size := stat.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		return d.openStream(f, path, size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return d.openStream(f, path, size)
	}
	defer func() { _ = unix.Munmap(data) }()

	// Decode copies every value out of the cursor, so nothing in the Save
	// aliases the mapping.
	sv, err := d.decodeStored(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &File{
		Path:        path,
		Size:        size,
		Fingerprint: Fingerprint(data),
		Save:        sv,
	}, nil
}

// openStream decodes f from its current position, hashing the stored bytes
// as they are read.
func (d *Decoder) openStream(f io.Reader, path string, size int64) (*File, error) {
	h := xxhash.New()
	sv, err := d.decodeStored(io.TeeReader(f, h))
	if err != nil {
		return nil, err
	}
	// The fingerprint covers the whole file, including what Decode left unread.
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return &File{
		Path:        path,
		Size:        size,
		Fingerprint: h.Sum64(),
		Save:        sv,
	}, nil
}

func (d *Decoder) decodeStored(r io.Reader) (*Save, error) {
	rc, err := OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return d.Decode(rc)
}

// PreviewFile decodes only the leading sections of the save at path. It
// streams the file instead of mapping it, since most of it is never read.
func (d *Decoder) PreviewFile(path string) (*Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rc, err := OpenReader(f)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return d.DecodePreview(rc)
}

// OpenReader returns a reader over the decompressed save in r. zstd and gzip
// streams are detected by their magic; anything else is passed through.
func OpenReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	default:
		return io.NopCloser(br), nil
	}
}

// Fingerprint returns the 64-bit xxhash of a stored save.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
