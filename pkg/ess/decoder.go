package ess

import (
	"errors"
	"fmt"
	"io"
)

const (
	// FileMagic is the 12-byte identifier that opens every PC save.
	FileMagic = "TES4SAVEGAME"

	// xboxContainerMarker opens saves still wrapped in an Xbox 360 STFS
	// container. Unwrapping it is out of scope.
	xboxContainerMarker = "CON "

	fileIDSize = 12

	// exe_time was added to the file header in 0.82.
	exeTimeMinVersion = 82

	expectedMajorVersion = 0
	maxKnownMinorVersion = 126
)

// Logger receives non-fatal diagnostics. internal/logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

type Option func(*Decoder)

// WithLogger reports consistency diagnostics to l.
func WithLogger(l Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithStrict turns consistency diagnostics into KindInconsistent errors.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// WithBufferSize sets the read buffer size of the cursor.
func WithBufferSize(n int) Option {
	return func(d *Decoder) {
		d.bufSize = n
	}
}

// Decoder decodes save games. It holds configuration only and is safe for
// concurrent use; each call owns its own cursor.
type Decoder struct {
	log     Logger
	strict  bool
	bufSize int
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		log:     nopLogger{},
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode decodes a complete save from r with the default lenient decoder.
func Decode(r io.Reader) (*Save, error) {
	return defaultDecoder.Decode(r)
}

// DecodePreview decodes the leading sections of a save from r.
func DecodePreview(r io.Reader) (*Preview, error) {
	return defaultDecoder.DecodePreview(r)
}

// Decode reads a save in a single forward pass. On failure it returns a
// *DecodeError and no partial value.
func (d *Decoder) Decode(r io.Reader) (*Save, error) {
	s := d.newState(r)
	head, err := s.head()
	if err != nil {
		return nil, err
	}
	globals, err := s.globals()
	if err != nil {
		return nil, inField("globals", err)
	}
	return &Save{
		FileHeader:     head.FileHeader,
		SaveGameHeader: head.SaveGameHeader,
		Plugins:        head.Plugins,
		Globals:        globals,
		Diagnostics:    s.diags,
	}, nil
}

// DecodePreview reads the file header, save header and plugin list, then
// stops. The cursor buffers ahead, so some of r beyond the plugin list may
// have been consumed.
func (d *Decoder) DecodePreview(r io.Reader) (*Preview, error) {
	s := d.newState(r)
	head, err := s.head()
	if err != nil {
		return nil, err
	}
	head.Diagnostics = s.diags
	return &head, nil
}

type decodeState struct {
	d     *Decoder
	c     *Cursor
	diags []Diagnostic
}

func (d *Decoder) newState(r io.Reader) *decodeState {
	return &decodeState{d: d, c: newCursorSize(r, d.bufSize)}
}

// check records a diagnostic when ok is false. It only fails in strict mode.
func (s *decodeState) check(ok bool, field string, off int64, format string, args ...any) error {
	if ok {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	s.diags = append(s.diags, Diagnostic{Field: field, Offset: off, Msg: msg})
	s.d.log.Warn("save consistency check failed", "field", field, "offset", off, "detail", msg)
	if s.d.strict {
		return &DecodeError{Kind: KindInconsistent, Field: field, Offset: off, Err: errors.New(msg), fullPath: true}
	}
	return nil
}

func (s *decodeState) head() (Preview, error) {
	fh, err := s.fileHeader()
	if err != nil {
		return Preview{}, inField("file_header", err)
	}
	sh, err := s.saveHeader(fh.MinorVersion)
	if err != nil {
		return Preview{}, inField("save_header", err)
	}
	plugins, err := readList[uint8](s.c, "plugins", (*Cursor).ReadBString)
	if err != nil {
		return Preview{}, err
	}
	s.d.log.Debug("decoded save header", "player", sh.PlayerName, "save", sh.SaveNumber, "plugins", len(plugins))
	return Preview{FileHeader: fh, SaveGameHeader: sh, Plugins: plugins}, nil
}

func (s *decodeState) fileHeader() (FileHeader, error) {
	id, err := s.c.ReadBytes(fileIDSize)
	if err != nil {
		if errors.Is(err, ErrUnexpectedEOF) {
			return FileHeader{}, newDecodeError(KindNoHeader, 0, nil)
		}
		return FileHeader{}, err
	}
	switch {
	case string(id) == FileMagic:
	case string(id[:len(xboxContainerMarker)]) == xboxContainerMarker:
		return FileHeader{}, newDecodeError(KindForeignContainer, 0, nil)
	default:
		de := newDecodeError(KindBadFileID, 0, nil)
		copy(de.FileID[:], id)
		return FileHeader{}, de
	}

	fh := FileHeader{FileID: FileMagic}
	off := s.c.Offset()
	if fh.MajorVersion, err = s.c.ReadU8(); err != nil {
		return FileHeader{}, inField("major_version", err)
	}
	if err := s.check(fh.MajorVersion == expectedMajorVersion, "file_header.major_version", off,
		"expected %d, got %d", expectedMajorVersion, fh.MajorVersion); err != nil {
		return FileHeader{}, err
	}

	off = s.c.Offset()
	if fh.MinorVersion, err = s.c.ReadU8(); err != nil {
		return FileHeader{}, inField("minor_version", err)
	}
	if err := s.check(fh.MinorVersion <= maxKnownMinorVersion, "file_header.minor_version", off,
		"expected at most %d, got %d", maxKnownMinorVersion, fh.MinorVersion); err != nil {
		return FileHeader{}, err
	}

	// Version gates. Add new optional fields here in file order.
	if fh.MinorVersion >= exeTimeMinVersion {
		exe, err := readSystemTime(s.c)
		if err != nil {
			return FileHeader{}, inField("exe_time", err)
		}
		fh.ExeTime = &exe
	}
	return fh, nil
}

func (s *decodeState) saveHeader(minor uint8) (SaveGameHeader, error) {
	var (
		sh  SaveGameHeader
		err error
	)
	off := s.c.Offset()
	if sh.HeaderVersion, err = s.c.ReadU32(); err != nil {
		return sh, inField("header_version", err)
	}
	if err := s.check(sh.HeaderVersion == uint32(minor), "save_header.header_version", off,
		"expected file minor version %d, got %d", minor, sh.HeaderVersion); err != nil {
		return sh, err
	}
	if err := s.c.Skip(4); err != nil {
		return sh, inField("header_size", err)
	}
	if sh.SaveNumber, err = s.c.ReadU32(); err != nil {
		return sh, inField("save_number", err)
	}
	if sh.PlayerName, err = s.c.ReadBZString(); err != nil {
		return sh, inField("player_name", err)
	}
	if sh.PlayerLevel, err = s.c.ReadU16(); err != nil {
		return sh, inField("player_level", err)
	}
	if sh.Cell, err = s.c.ReadBZString(); err != nil {
		return sh, inField("cell", err)
	}
	if sh.GameDays, err = s.c.ReadF32(); err != nil {
		return sh, inField("game_days", err)
	}
	if sh.GameTicks, err = s.c.ReadU32(); err != nil {
		return sh, inField("game_ticks", err)
	}
	if sh.GameTime, err = readSystemTime(s.c); err != nil {
		return sh, inField("game_time", err)
	}
	if sh.Screenshot, err = s.screenshot(); err != nil {
		return sh, inField("screenshot", err)
	}
	return sh, nil
}

func (s *decodeState) screenshot() (Screenshot, error) {
	var ss Screenshot
	off := s.c.Offset()
	size, err := s.c.ReadU32()
	if err != nil {
		return ss, inField("size", err)
	}
	if ss.Width, err = s.c.ReadU32(); err != nil {
		return ss, inField("width", err)
	}
	if ss.Height, err = s.c.ReadU32(); err != nil {
		return ss, inField("height", err)
	}
	want := screenshotBlockSize(ss.Width, ss.Height)
	if err := s.check(uint64(size) == want, "save_header.screenshot.size", off,
		"declared %d bytes, %dx%d needs %d", size, ss.Width, ss.Height, want); err != nil {
		return ss, err
	}
	if ss.Pixels, err = readScreenshotPixels(s.c, ss.Width, ss.Height); err != nil {
		return ss, inField("pixels", err)
	}
	return ss, nil
}

// readBool reads a boolean discriminant, noting non-canonical bytes.
func (s *decodeState) readBool(field string) (bool, error) {
	off := s.c.Offset()
	b, err := s.c.ReadU8()
	if err != nil {
		return false, err
	}
	if err := s.check(b <= 1, field, off, "non-canonical boolean byte 0x%02x", b); err != nil {
		return false, err
	}
	return b != 0, nil
}
