package ess

import "fmt"

// FormID addresses an object resolved against the loaded plugins.
type FormID uint32

func (id FormID) String() string {
	return fmt.Sprintf("%08X", uint32(id))
}

// IRef is a save-local index into the FormID array. It is not a FormID.
type IRef uint32

func (r IRef) String() string {
	return fmt.Sprintf("iref:%08X", uint32(r))
}

// RecordType is the 4-byte tag of a record, e.g. "NPC_".
type RecordType [4]byte

func (t RecordType) String() string {
	return decodeText(t[:])
}

func (t RecordType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FileHeader opens every save.
type FileHeader struct {
	FileID       string `json:"file_id"`
	MajorVersion uint8  `json:"major_version"`
	MinorVersion uint8  `json:"minor_version"`
	// ExeTime is the modification time of the game executable. It is only
	// present when MinorVersion >= 82.
	ExeTime *SystemTime `json:"exe_time,omitempty"`
}

type SaveGameHeader struct {
	// HeaderVersion duplicates FileHeader.MinorVersion.
	HeaderVersion uint32     `json:"header_version"`
	SaveNumber    uint32     `json:"save_number"`
	PlayerName    string     `json:"player_name"`
	PlayerLevel   uint16     `json:"player_level"`
	Cell          string     `json:"cell"`
	GameDays      float32    `json:"game_days"`
	GameTicks     uint32     `json:"game_ticks"`
	GameTime      SystemTime `json:"game_time"`
	Screenshot    Screenshot `json:"screenshot"`
}

type PlayerLocation struct {
	Cell FormID  `json:"cell"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
}

// GlobalVar is stored as a float regardless of the variable's declared type.
type GlobalVar struct {
	IRef  IRef    `json:"iref"`
	Value float32 `json:"value"`
}

type DeathCount struct {
	Actor IRef   `json:"actor"`
	Count uint16 `json:"count"`
}

type Region struct {
	IRef  IRef   `json:"iref"`
	Value uint32 `json:"value"`
}

type GlobalSection struct {
	// RecordsNum is documented as a record count but is stored as a FormID.
	RecordsNum     FormID         `json:"records_num"`
	NextObjectID   FormID         `json:"next_object_id"`
	WorldID        FormID         `json:"world_id"`
	WorldX         uint32         `json:"world_x"`
	WorldY         uint32         `json:"world_y"`
	PlayerLocation PlayerLocation `json:"player_location"`
	Globals        []GlobalVar    `json:"globals"`
	DeathCounts    []DeathCount   `json:"death_counts"`
	GameModeSecs   float32        `json:"game_mode_seconds"`

	// Opaque, undecoded blobs.
	Processes       []byte `json:"processes"`
	SpectatorEvents []byte `json:"spectator_events"`
	Weather         []byte `json:"weather"`

	PlayerCombatCount uint32   `json:"player_combat_count"`
	CreatedItems      []Record `json:"created_items"`

	// QuickKeys holds one entry per hotkey slot; nil marks an empty slot.
	QuickKeys []*IRef `json:"quick_keys"`

	Reticule  []byte   `json:"reticule"`
	Interface []byte   `json:"interface"`
	Regions   []Region `json:"regions"`
}

// Record is a type-tagged, flag-bearing unit. Its payload is not modelled.
type Record struct {
	Type  RecordType  `json:"type"`
	Flags RecordFlags `json:"flags"`
}

// Save is a fully decoded save game. It is only ever returned complete.
type Save struct {
	FileHeader     FileHeader     `json:"file_header"`
	SaveGameHeader SaveGameHeader `json:"save_game_header"`
	Plugins        []string       `json:"plugins"`
	Globals        GlobalSection  `json:"globals"`

	// Diagnostics lists non-fatal consistency findings.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Preview holds the leading sections of a save, enough to list saves
// without decoding the globals section.
type Preview struct {
	FileHeader     FileHeader     `json:"file_header"`
	SaveGameHeader SaveGameHeader `json:"save_game_header"`
	Plugins        []string       `json:"plugins"`
	Diagnostics    []Diagnostic   `json:"diagnostics,omitempty"`
}

// Diagnostic is a non-fatal consistency finding.
type Diagnostic struct {
	Field  string `json:"field"`
	Offset int64  `json:"offset"`
	Msg    string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at offset %d: %s", d.Field, d.Offset, d.Msg)
}
