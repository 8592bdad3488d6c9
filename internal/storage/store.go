// Package storage keeps a history of rendered plots: one directory per
// render holding metadata.json and the drawn traces as traces.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/pipeline"
	"github.com/san-kum/bladebalance/internal/scene"
)

const (
	metadataFile = "metadata.json"
	tracesFile   = "traces.csv"
)

var traceHeader = []string{"trace", "label", "role", "element", "x", "y"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string        `json:"id"`
	Specimen  string        `json:"specimen"`
	Timestamp time.Time     `json:"timestamp"`
	Output    string        `json:"output,omitempty"`
	Theme     string        `json:"theme,omitempty"`
	Demo      bool          `json:"demo"`
	Summary   scene.Summary `json:"summary"`
	COP       *float64      `json:"cop,omitempty"`
	RogGrip   *float64      `json:"rog_grip,omitempty"`
	DBP       []float64     `json:"dbp,omitempty"`
	Skipped   []string      `json:"skipped,omitempty"`
}

// Record describes one render to save.
type Record struct {
	Result *pipeline.Result
	Output string
	Theme  string
	Demo   bool
}

// Save writes r under a new run directory and returns its id.
func (s *Store) Save(r Record) (string, error) {
	if r.Result == nil || r.Result.Scene == nil {
		return "", errors.New("storage: empty record")
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	ts := s.now()
	runID, runDir, err := s.mkRunDir(scene.Slug(r.Result.Specimen.Name()), ts)
	if err != nil {
		return "", err
	}

	d := r.Result.Derived
	meta := RunMetadata{
		ID:        runID,
		Specimen:  r.Result.Specimen.Name(),
		Timestamp: ts,
		Output:    r.Output,
		Theme:     r.Theme,
		Demo:      r.Demo,
		Summary:   r.Result.Scene.Summary,
	}
	if d.HasCOP {
		meta.COP = &d.COP
	}
	if d.HasRogGrip {
		meta.RogGrip = &d.RogGrip
	}
	if d.HasDBP {
		meta.DBP = []float64{d.DBP[0].X, d.DBP[0].Y, d.DBP[1].X, d.DBP[1].Y}
	}
	for _, sk := range d.Skipped {
		meta.Skipped = append(meta.Skipped, fmt.Sprintf("%s: %v", sk.Quantity, sk.Err))
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTraces(filepath.Join(runDir, tracesFile), r.Result.Scene.Traces); err != nil {
		return "", err
	}
	return runID, nil
}

// mkRunDir creates <slug>_<unix>, adding a counter when a render of the same
// specimen already happened within that second.
func (s *Store) mkRunDir(slug string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", slug, ts.Unix())
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTraces(path string, traces []scene.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTraces(f, traces); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTraces writes one row per trace point.
func WriteTraces(out io.Writer, traces []scene.Trace) error {
	w := csv.NewWriter(out)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for i, t := range traces {
		for _, p := range t.Points {
			row := []string{
				strconv.Itoa(i),
				t.Label,
				t.Role,
				t.Element,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the recorded runs, oldest first.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTraces reads back the traces of a run. Points are rounded to the
// precision they were written with.
func (s *Store) LoadTraces(runID string) ([]scene.Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, tracesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scene.Trace{}, nil
	}

	var traces []scene.Trace
	last := -1
	for i, rec := range records[1:] {
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+2, err)
		}
		x, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+2, err)
		}
		y, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+2, err)
		}
		if idx != last {
			traces = append(traces, scene.Trace{Label: rec[1], Role: rec[2], Element: rec[3]})
			last = idx
		}
		t := &traces[len(traces)-1]
		t.Points = append(t.Points, balance.Point{X: x, Y: y})
	}
	return traces, nil
}
