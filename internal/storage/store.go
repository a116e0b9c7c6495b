package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	traceFile    = "trace.csv"
	floatersFile = "floaters.csv"
)

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

// Dir returns the directory holding a saved run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Timestamp  time.Time           `json:"timestamp"`
	Dt         float64             `json:"dt"`
	Duration   float64             `json:"duration"`
	Steps      int                 `json:"steps"`
	Floaters   int                 `json:"floaters"`
	Controller string              `json:"controller"`
	Hypotheses []string            `json:"hypotheses"`
	Metrics    map[string]float64  `json:"metrics"`
	Ledger     dynamo.LedgerTotals `json:"ledger"`
	Skips      dynamo.SkipCounts   `json:"skips"`
	Error      string              `json:"error,omitempty"`
}

// Save writes a run directory with metadata, the configuration, the sampled
// trace and per-floater rows. runErr, if any, is recorded in the metadata.
func (s *Store) Save(name string, res *experiment.Result, runErr error) (string, error) {
	ts := s.now()
	runID, runDir, err := s.makeRunDir(name, ts)
	if err != nil {
		return "", err
	}

	cfg := res.Config
	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  ts,
		Dt:         cfg.Sim.Dt,
		Duration:   cfg.Sim.Duration,
		Steps:      res.StepsTaken,
		Floaters:   cfg.Floaters.Count,
		Controller: controllerName(cfg),
		Hypotheses: enabledHypotheses(cfg.Hypotheses),
		Metrics:    res.Metrics,
	}
	if res.Final != nil {
		meta.Ledger = res.Final.Ledger
		meta.Skips = res.Final.Skips
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := cfg.WriteYAML(filepath.Join(runDir, configFile)); err != nil {
		return "", err
	}
	if err := writeTrace(runDir, res.Trace); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) makeRunDir(name string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%s", name, ts.Format("20060102-150405"))
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", fmt.Errorf("creating run dir: %w", err)
		}
	}
}

func writeTrace(runDir string, trace []*dynamo.Snapshot) error {
	tw, err := NewTraceWriter(runDir)
	if err != nil {
		return err
	}
	for _, snap := range trace {
		tw.OnStep(snap)
	}
	return tw.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns the saved runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].Timestamp.After(runs[j].Timestamp)
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
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &meta, nil
}

// LoadConfig reads the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadTrace reads the sampled tick rows of a run.
func (s *Store) LoadTrace(runID string) ([]TraceRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []TraceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	return rows, nil
}

// LoadFloaters reads the per-floater rows of a run.
func (s *Store) LoadFloaters(runID string) ([]FloaterRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, floatersFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []FloaterRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing floaters: %w", err)
	}
	return rows, nil
}

func controllerName(cfg config.Config) string {
	if cfg.Hypotheses.H3.Enabled {
		return "pulse_coast"
	}
	if cfg.Control.Mode == "" {
		return "none"
	}
	return cfg.Control.Mode
}

func enabledHypotheses(h config.HypothesesConfig) []string {
	out := []string{}
	if h.H1.Enabled {
		out = append(out, "h1")
	}
	if h.H2.Enabled {
		out = append(out, "h2")
	}
	if h.H3.Enabled {
		out = append(out, "h3")
	}
	return out
}
