package api

import (
	"strconv"

	"github.com/samcharles93/esstool/pkg/ess"
)

// SaveResponse describes a stored save.
type SaveResponse struct {
	ID          string    `json:"id"`
	Object      string    `json:"object"`
	CreatedAt   int64     `json:"created_at"`
	Size        int64     `json:"size"`
	Fingerprint string    `json:"fingerprint"`
	Save        *ess.Save `json:"save,omitempty"`
}

// SaveSummary is the list form of a stored save.
type SaveSummary struct {
	ID          string  `json:"id"`
	Object      string  `json:"object"`
	CreatedAt   int64   `json:"created_at"`
	Player      string  `json:"player"`
	Level       uint16  `json:"level"`
	Cell        string  `json:"cell"`
	SaveNumber  uint32  `json:"save_number"`
	GameDays    float32 `json:"game_days"`
	PluginCount int     `json:"plugin_count"`
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

type Plugin struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Saves   int    `json:"saves"`
}

func saveResponse(rec *saveRecord, full bool) SaveResponse {
	resp := SaveResponse{
		ID:          rec.ID,
		Object:      "save",
		CreatedAt:   rec.CreatedAt.Unix(),
		Size:        rec.Size,
		Fingerprint: strconv.FormatUint(rec.Fingerprint, 16),
	}
	if full {
		resp.Save = rec.Save
	}
	return resp
}

func saveSummary(rec *saveRecord) SaveSummary {
	h := rec.Save.SaveGameHeader
	return SaveSummary{
		ID:          rec.ID,
		Object:      "save",
		CreatedAt:   rec.CreatedAt.Unix(),
		Player:      h.PlayerName,
		Level:       h.PlayerLevel,
		Cell:        h.Cell,
		SaveNumber:  h.SaveNumber,
		GameDays:    h.GameDays,
		PluginCount: len(rec.Save.Plugins),
	}
}
