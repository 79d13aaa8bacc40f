package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/player"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Disks     int                `json:"disks"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  time.Duration      `json:"duration"`
	Settle    time.Duration      `json:"settle"`
	Moves     int                `json:"moves"`
	Solved    bool               `json:"solved"`
	Canceled  bool               `json:"canceled"`
	Elapsed   time.Duration      `json:"elapsed"`
	Source    string             `json:"source"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and moves.csv under a new run directory.
func (s *Store) Save(source string, timing player.Timing, result *player.Result) (string, error) {
	runID := fmt.Sprintf("%d-disks_%s", result.Disks, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Disks:     result.Disks,
		Timestamp: time.Now(),
		Duration:  timing.Duration,
		Settle:    timing.Settle,
		Moves:     len(result.Moves),
		Solved:    result.Solved,
		Canceled:  result.Canceled,
		Elapsed:   result.Elapsed,
		Source:    source,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "moves.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"step", "disk", "from", "to"}); err != nil {
		return "", err
	}
	for i, m := range result.Moves {
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(m.Disk), m.From.String(), m.To.String()}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns saved runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadMoves reads the move transcript of a run in step order.
func (s *Store) LoadMoves(runID string) ([]hanoi.Move, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "moves.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []hanoi.Move{}, nil
	}

	moves := make([]hanoi.Move, 0, len(records)-1)
	for i, record := range records[1:] {
		disk, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("moves.csv line %d: %w", i+2, err)
		}
		from, err := hanoi.ParsePeg(record[2])
		if err != nil {
			return nil, fmt.Errorf("moves.csv line %d: %w", i+2, err)
		}
		to, err := hanoi.ParsePeg(record[3])
		if err != nil {
			return nil, fmt.Errorf("moves.csv line %d: %w", i+2, err)
		}
		moves = append(moves, hanoi.Move{Disk: disk, From: from, To: to})
	}

	return moves, nil
}
