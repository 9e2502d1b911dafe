// Package esstest builds synthetic save images for tests.
package esstest

import (
	"bytes"
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/charmap"

	"github.com/samcharles93/esstool/pkg/ess"
)

// Writer appends little-endian primitives in save layout.
type Writer struct {
	buf bytes.Buffer
}

func (w *Writer) Len() int      { return w.buf.Len() }
func (w *Writer) Bytes() []byte { return bytes.Clone(w.buf.Bytes()) }

func (w *Writer) U8(v uint8) *Writer {
	w.buf.WriteByte(v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
	return w
}

func (w *Writer) F32(v float32) *Writer {
	return w.U32(math.Float32bits(v))
}

func (w *Writer) Raw(b []byte) *Writer {
	w.buf.Write(b)
	return w
}

// BString writes a byte-length-prefixed Windows-1252 string.
func (w *Writer) BString(s string) *Writer {
	b := encode(s)
	return w.U8(uint8(len(b))).Raw(b)
}

// BZString writes a byte-length-prefixed string with a trailing zero that is
// counted in the length.
func (w *Writer) BZString(s string) *Writer {
	b := encode(s)
	return w.U8(uint8(len(b) + 1)).Raw(b).U8(0)
}

func (w *Writer) SystemTime(t ess.SystemTime) *Writer {
	for _, v := range []uint16{t.Year, t.Month, t.Weekday, t.Day, t.Hour, t.Minute, t.Second, t.Millisecond} {
		w.U16(v)
	}
	return w
}

// Blob16 writes a 16-bit length followed by b.
func (w *Writer) Blob16(b []byte) *Writer {
	return w.U16(uint16(len(b))).Raw(b)
}

func encode(s string) []byte {
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic("esstest: " + s + " is not representable in Windows-1252")
	}
	return b
}

// Options tweak Encode to produce malformed or unusual images.
type Options struct {
	// ScreenshotSize overrides the declared screenshot block size.
	ScreenshotSize *uint32
	// HeaderVersion overrides the save header version word.
	HeaderVersion *uint32
	// QuickKeyByte is written for occupied quick-key slots. Zero means 1.
	QuickKeyByte byte
	// Trailer is appended after the globals section.
	Trailer []byte
}

// Layout records where sections of an encoded image start.
type Layout struct {
	SaveHeader int
	Screenshot int
	Plugins    int
	Globals    int
	QuickKeys  int
	End        int
}

// Encode lays out s as a save image. Created items are written as bare
// record headers, so any save with created items fails to decode.
func Encode(s *ess.Save, opts Options) ([]byte, Layout) {
	var (
		w   Writer
		lay Layout
	)
	fh := s.FileHeader
	id := fh.FileID
	if id == "" {
		id = ess.FileMagic
	}
	w.Raw([]byte(id)).U8(fh.MajorVersion).U8(fh.MinorVersion)
	if fh.ExeTime != nil {
		w.SystemTime(*fh.ExeTime)
	}

	lay.SaveHeader = w.Len()
	sh := s.SaveGameHeader
	hv := sh.HeaderVersion
	if opts.HeaderVersion != nil {
		hv = *opts.HeaderVersion
	}
	w.U32(hv).U32(0).U32(sh.SaveNumber).BZString(sh.PlayerName).U16(sh.PlayerLevel).
		BZString(sh.Cell).F32(sh.GameDays).U32(sh.GameTicks).SystemTime(sh.GameTime)

	lay.Screenshot = w.Len()
	ss := sh.Screenshot
	size := uint32(ss.Width*ss.Height*3 + 8)
	if opts.ScreenshotSize != nil {
		size = *opts.ScreenshotSize
	}
	w.U32(size).U32(ss.Width).U32(ss.Height)
	for _, p := range ss.Pixels {
		w.U8(p.R).U8(p.G).U8(p.B)
	}

	lay.Plugins = w.Len()
	w.U8(uint8(len(s.Plugins)))
	for _, p := range s.Plugins {
		w.BString(p)
	}

	lay.Globals = w.Len()
	g := s.Globals
	w.U32(0).U32(uint32(g.RecordsNum)).U32(uint32(g.NextObjectID)).U32(uint32(g.WorldID)).
		U32(g.WorldX).U32(g.WorldY)
	w.U32(uint32(g.PlayerLocation.Cell)).F32(g.PlayerLocation.X).F32(g.PlayerLocation.Y).F32(g.PlayerLocation.Z)
	w.U16(uint16(len(g.Globals)))
	for _, v := range g.Globals {
		w.U32(uint32(v.IRef)).F32(v.Value)
	}
	w.U16(0).U32(uint32(len(g.DeathCounts)))
	for _, d := range g.DeathCounts {
		w.U32(uint32(d.Actor)).U16(d.Count)
	}
	w.F32(g.GameModeSecs).Blob16(g.Processes).Blob16(g.SpectatorEvents).Blob16(g.Weather)
	w.U32(g.PlayerCombatCount).U32(uint32(len(g.CreatedItems)))
	for _, r := range g.CreatedItems {
		w.Raw(r.Type[:]).U32(r.Flags.Bits())
	}

	lay.QuickKeys = w.Len()
	set := opts.QuickKeyByte
	if set == 0 {
		set = 1
	}
	w.U16(uint16(len(g.QuickKeys)))
	for _, k := range g.QuickKeys {
		if k == nil {
			w.U8(0)
			continue
		}
		w.U8(set).U32(uint32(*k))
	}
	w.Blob16(g.Reticule).Blob16(g.Interface)
	w.U16(0).U16(uint16(len(g.Regions)))
	for _, r := range g.Regions {
		w.U32(uint32(r.IRef)).U32(r.Value)
	}
	lay.End = w.Len()
	w.Raw(opts.Trailer)
	return w.Bytes(), lay
}

// Sample returns a small, internally consistent save modelled on a real
// Oblivion save: minor version 125, player "Kheros" and 28 plugins.
func Sample() *ess.Save {
	exe := ess.SystemTime{Year: 2022, Month: 6, Weekday: 4, Day: 2, Hour: 17, Minute: 41, Second: 9, Millisecond: 120}
	plugins := []string{"Oblivion.esm", "DLCShiveringIsles.esp", "Knights.esp", "DLCBattlehornCastle.esp",
		"DLCFrostcrag.esp", "DLCSpellTomes.esp", "DLCMehrunesRazor.esp", "DLCOrrery.esp",
		"DLCThievesDen.esp", "DLCVileLair.esp", "DLCHorseArmor.esp", "Unofficial Oblivion Patch.esp",
		"Unofficial Shivering Isles Patch.esp", "Oblivion Citadel Door Fix.esp", "Better Cities.esp",
		"Francesco's Leveled Creatures-Items Mod.esm", "Cobl Main.esm", "Oscuro's_Oblivion_Overhaul.esm",
		"RealSwords.esp", "Natural_Environments.esp", "Harvest [Flora].esp", "Harvest [Containers].esp",
		"Enhanced Economy.esp", "Midas Magic Spells of Aurum.esp", "Map Marker Overhaul.esp",
		"Streamline.esp", "Café Tamriel.esp", "Bashed Patch, 0.esp"}
	idle := ess.IRef(0x0000_1234)
	torch := ess.IRef(0x0000_0042)
	return &ess.Save{
		FileHeader: ess.FileHeader{
			FileID:       ess.FileMagic,
			MajorVersion: 0,
			MinorVersion: 125,
			ExeTime:      &exe,
		},
		SaveGameHeader: ess.SaveGameHeader{
			HeaderVersion: 125,
			SaveNumber:    325,
			PlayerName:    "Kheros",
			PlayerLevel:   12,
			Cell:          "Imperial City Market District",
			GameDays:      41.5,
			GameTicks:     31_337_000,
			GameTime:      ess.SystemTime{Year: 2022, Month: 6, Weekday: 5, Day: 3, Hour: 21, Minute: 5, Second: 33, Millisecond: 7},
			Screenshot: ess.Screenshot{
				Width:  2,
				Height: 2,
				Pixels: []ess.RGB{{R: 0xff}, {G: 0xff}, {B: 0xff}, {R: 0x10, G: 0x20, B: 0x30}},
			},
		},
		Plugins: plugins,
		Globals: ess.GlobalSection{
			RecordsNum:     0x0001_8a2c,
			NextObjectID:   0xff00_4e21,
			WorldID:        0x0000_003c,
			WorldX:         4,
			WorldY:         0xffff_fffe,
			PlayerLocation: ess.PlayerLocation{Cell: 0x0002_c0d1, X: 1024.5, Y: -2048.25, Z: 64},
			Globals: []ess.GlobalVar{
				{IRef: 0x10, Value: 1},
				{IRef: 0x11, Value: 3.5},
			},
			DeathCounts: []ess.DeathCount{
				{Actor: 0x20, Count: 3},
			},
			GameModeSecs:      1234.5,
			Processes:         []byte{1, 2, 3, 4},
			SpectatorEvents:   []byte{},
			Weather:           []byte{0xaa, 0xbb},
			PlayerCombatCount: 0,
			CreatedItems:      []ess.Record{},
			QuickKeys:         []*ess.IRef{&idle, nil, nil, &torch, nil, nil, nil, nil},
			Reticule:          []byte{9},
			Interface:         []byte{7, 7},
			Regions: []ess.Region{
				{IRef: 0x30, Value: 7},
				{IRef: 0x31, Value: 0},
			},
		},
	}
}

func Ptr[T any](v T) *T { return &v }
