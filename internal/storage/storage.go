package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

var frameHeader = []string{"tick", "time", "id", "x", "y", "vx", "vy", "radius"}

// Frame is one body at one tick. Velocity is in vector orientation.
type Frame struct {
	Tick   uint64
	Time   float64
	ID     physics.BodyID
	X, Y   float64
	VX, VY float64
	Radius float64
}

// FramesOf flattens a snapshot into one frame per body.
func FramesOf(snap sim.Snapshot) []Frame {
	frames := make([]Frame, 0, len(snap.Bodies))
	for _, b := range snap.Bodies {
		frames = append(frames, Frame{
			Tick:   snap.Tick,
			Time:   snap.Elapsed,
			ID:     b.ID,
			X:      b.Position.X,
			Y:      b.Position.Y,
			VX:     b.Velocity.X(),
			VY:     b.Velocity.Y(),
			Radius: b.Radius,
		})
	}
	return frames
}

// Recorder collects frames in memory as a sim.Observer.
type Recorder struct {
	mu     sync.Mutex
	every  uint64
	frames []Frame
}

// NewRecorder keeps every n-th tick; n below 1 keeps all of them.
func NewRecorder(every int) *Recorder {
	return &Recorder{every: uint64(max(every, 1))}
}

func (r *Recorder) OnTick(snap sim.Snapshot) {
	if snap.Tick%r.every != 0 {
		return
	}
	r.mu.Lock()
	r.frames = append(r.frames, FramesOf(snap)...)
	r.mu.Unlock()
}

func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

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
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	Bodies    int                `json:"bodies"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run ID. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	now := time.Now()
	scenario := meta.Scenario
	if scenario == "" {
		scenario = "custom"
	}
	runID := fmt.Sprintf("%s_%d", scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

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

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		if err := w.Write(frameRecord(f)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, newest first. Directories without valid
// metadata are skipped.
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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		f, err := parseFrame(record)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", runID, i+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// Trajectories groups frames by body, each in tick order.
func Trajectories(frames []Frame) map[physics.BodyID][]Frame {
	out := make(map[physics.BodyID][]Frame)
	for _, f := range frames {
		out[f.ID] = append(out[f.ID], f)
	}
	for _, t := range out {
		sort.SliceStable(t, func(i, j int) bool { return t[i].Tick < t[j].Tick })
	}
	return out
}

func frameRecord(f Frame) []string {
	return []string{
		strconv.FormatUint(f.Tick, 10),
		formatFloat(f.Time),
		strconv.FormatUint(uint64(f.ID), 10),
		formatFloat(f.X),
		formatFloat(f.Y),
		formatFloat(f.VX),
		formatFloat(f.VY),
		formatFloat(f.Radius),
	}
}

func parseFrame(record []string) (Frame, error) {
	var f Frame
	var err error
	if f.Tick, err = strconv.ParseUint(record[0], 10, 64); err != nil {
		return f, err
	}
	id, err := strconv.ParseUint(record[2], 10, 64)
	if err != nil {
		return f, err
	}
	f.ID = physics.BodyID(id)

	floats := []*float64{&f.Time, nil, &f.X, &f.Y, &f.VX, &f.VY, &f.Radius}
	for i, dst := range floats {
		if dst == nil {
			continue
		}
		if *dst, err = strconv.ParseFloat(record[i+1], 64); err != nil {
			return f, err
		}
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
