package timer

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Snapshot is the full durable state of the local timer. It round-trips
// through the store verbatim.
type Snapshot struct {
	State              State     `json:"state"`
	GoalSeconds        int       `json:"goal_seconds"`
	ElapsedSeconds     int       `json:"elapsed_seconds"`
	LapBoundarySeconds int       `json:"lap_boundary_seconds"`
	Instrument         string    `json:"instrument,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	StartedAt          time.Time `json:"started_at"`
	Laps               []Lap     `json:"laps,omitempty"`

	// Submission bookkeeping, set once saving begins.
	SessionID string `json:"session_id,omitempty"`
	ItemsSent int    `json:"items_sent,omitempty"`
}

// SnapshotStore is the persistence port for crash recovery. Load returns
// (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Clear() error
}

// FileStore keeps the snapshot as a JSON document, written via a temp file
// and rename so a crash mid-write cannot corrupt the previous snapshot.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (f *FileStore) Save(snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemStore is an in-memory SnapshotStore for tests.
type MemStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	snap := *m.snap
	snap.Laps = append([]Lap(nil), m.snap.Laps...)
	return &snap, nil
}

func (m *MemStore) Save(snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	cp.Laps = append([]Lap(nil), snap.Laps...)
	m.snap = &cp
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}
