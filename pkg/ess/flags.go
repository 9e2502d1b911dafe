package ess

import "strings"

// Bit positions of the named record flags, low to high. All other bits are
// reserved and dropped on decode.
const (
	flagESMFile             = 1 << 0
	flagDeleted             = 1 << 5
	flagCastsShadows        = 1 << 9
	flagPersistentReference = 1 << 10
	flagInitiallyDisabled   = 1 << 11
	flagIgnored             = 1 << 12
	flagVisibleWhenDistant  = 1 << 15
	flagDangerous           = 1 << 17
	flagCompressed          = 1 << 18
	flagCantWait            = 1 << 19

	recordFlagMask = flagESMFile | flagDeleted | flagCastsShadows | flagPersistentReference |
		flagInitiallyDisabled | flagIgnored | flagVisibleWhenDistant | flagDangerous |
		flagCompressed | flagCantWait
)

// RecordFlags is the unpacked 32-bit flag word of a record.
type RecordFlags struct {
	ESMFile             bool `json:"esm_file"`
	Deleted             bool `json:"deleted"`
	CastsShadows        bool `json:"casts_shadows"`
	PersistentReference bool `json:"persistent_reference"`
	InitiallyDisabled   bool `json:"initially_disabled"`
	Ignored             bool `json:"ignored"`
	VisibleWhenDistant  bool `json:"visible_when_distant"`
	Dangerous           bool `json:"dangerous"`
	Compressed          bool `json:"compressed"`
	CantWait            bool `json:"cant_wait"`
}

// RecordFlagsFromBits unpacks a flag word. Every value is accepted.
func RecordFlagsFromBits(v uint32) RecordFlags {
	return RecordFlags{
		ESMFile:             v&flagESMFile != 0,
		Deleted:             v&flagDeleted != 0,
		CastsShadows:        v&flagCastsShadows != 0,
		PersistentReference: v&flagPersistentReference != 0,
		InitiallyDisabled:   v&flagInitiallyDisabled != 0,
		Ignored:             v&flagIgnored != 0,
		VisibleWhenDistant:  v&flagVisibleWhenDistant != 0,
		Dangerous:           v&flagDangerous != 0,
		Compressed:          v&flagCompressed != 0,
		CantWait:            v&flagCantWait != 0,
	}
}

// Bits packs the named flags back into a word. Reserved bits are zero.
func (f RecordFlags) Bits() uint32 {
	var v uint32
	for _, e := range f.entries() {
		if e.set {
			v |= e.bit
		}
	}
	return v
}

func (f RecordFlags) String() string {
	var names []string
	for _, e := range f.entries() {
		if e.set {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

type flagEntry struct {
	name string
	bit  uint32
	set  bool
}

func (f RecordFlags) entries() [10]flagEntry {
	return [10]flagEntry{
		{"esm_file", flagESMFile, f.ESMFile},
		{"deleted", flagDeleted, f.Deleted},
		{"casts_shadows", flagCastsShadows, f.CastsShadows},
		{"persistent_reference", flagPersistentReference, f.PersistentReference},
		{"initially_disabled", flagInitiallyDisabled, f.InitiallyDisabled},
		{"ignored", flagIgnored, f.Ignored},
		{"visible_when_distant", flagVisibleWhenDistant, f.VisibleWhenDistant},
		{"dangerous", flagDangerous, f.Dangerous},
		{"compressed", flagCompressed, f.Compressed},
		{"cant_wait", flagCantWait, f.CantWait},
	}
}
