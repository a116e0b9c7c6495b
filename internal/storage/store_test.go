package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/experiment"
)

func runShort(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := config.Default()
	cfg.Sim.Duration = 2
	cfg.Sim.RecordEvery = 5
	exp, err := experiment.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	res := runShort(t)

	runID, err := st.Save("baseline", res, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "baseline" || meta.Steps != 20 || meta.Floaters != 8 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Controller != "none" {
		t.Errorf("expected controller none, got %s", meta.Controller)
	}
	if meta.Ledger != res.Final.Ledger {
		t.Errorf("ledger: got %+v, want %+v", meta.Ledger, res.Final.Ledger)
	}

	rows, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(rows) != len(res.Trace) {
		t.Fatalf("trace rows: got %d, want %d", len(rows), len(res.Trace))
	}
	last := rows[len(rows)-1]
	if last.Tick != 20 || last.NetEnergyJ != res.Final.Ledger.NetEnergyJ {
		t.Errorf("last row: %+v", last)
	}

	floaters, err := st.LoadFloaters(runID)
	if err != nil {
		t.Fatalf("load floaters failed: %v", err)
	}
	if len(floaters) != 8*len(res.Trace) {
		t.Errorf("floater rows: got %d, want %d", len(floaters), 8*len(res.Trace))
	}

	cfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg != res.Config {
		t.Error("saved configuration differs")
	}
}

func TestStoreRecordsRunError(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("broken", runShort(t), errors.New("halted"))
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Error != "halted" {
		t.Errorf("error: got %q", meta.Error)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	res := runShort(t)

	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		st.now = func() time.Time { return ts }
		if _, err := st.Save(name, res, nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].Name != "c" || runs[2].Name != "a" {
		t.Errorf("order: %s %s %s", runs[0].Name, runs[1].Name, runs[2].Name)
	}
}

func TestStoreUniqueRunIDs(t *testing.T) {
	st := New(t.TempDir())
	res := runShort(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	st.now = func() time.Time { return fixed }

	a, err := st.Save("same", res, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save("same", res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("duplicate run id %s", a)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("got %v, %v", runs, err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("export", runShort(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Metadata.ID != runID || len(data.Trace) == 0 {
		t.Errorf("unexpected export: id %s rows %d", data.Metadata.ID, len(data.Trace))
	}
}

func TestTraceWriterStreams(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	res := runShort(t)
	for _, s := range res.Trace {
		tw.OnStep(s)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, traceFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.Count(data, []byte("\n"))
	if lines != len(res.Trace)+1 {
		t.Errorf("lines: got %d, want %d", lines, len(res.Trace)+1)
	}
}
