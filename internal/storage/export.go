package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/player"
)

type ExportData struct {
	Disks      int                `json:"disks"`
	Total      int                `json:"total"`
	DurationMs int64              `json:"durationMs"`
	SettleMs   int64              `json:"settleMs"`
	Solved     bool               `json:"solved"`
	Moves      []hanoi.Move       `json:"moves"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func NewExportData(timing player.Timing, result *player.Result) ExportData {
	return ExportData{
		Disks:      result.Disks,
		Total:      hanoi.TotalMoves(result.Disks),
		DurationMs: timing.Duration.Milliseconds(),
		SettleMs:   timing.Settle.Milliseconds(),
		Solved:     result.Solved,
		Moves:      result.Moves,
		Metrics:    result.Metrics,
	}
}

func WriteJSON(w io.Writer, timing player.Timing, result *player.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(timing, result))
}

func ExportJSON(path string, timing player.Timing, result *player.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, timing, result)
}
