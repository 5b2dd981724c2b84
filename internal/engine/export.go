package engine

// export.go - CSV exports of stream tables and the baseline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/massflow-labs/massflow/internal/baseline"
)

// BaselineExportName is the file the assembled baseline is written to.
const BaselineExportName = "massflow_baseline.csv"

// exportName maps a stream to its export file name. The kerbside names
// match the historical report outputs.
func exportName(s baseline.Stream) string {
	switch s {
	case baseline.KerbsideRecycling:
		return "hhkerb_rec_ton_drs.csv"
	case baseline.KerbsideResidual:
		return "hhkerb_waste_ton_drs.csv"
	default:
		return s.Name() + "_ton_drs.csv"
	}
}

// Export writes one CSV per computed stream plus the assembled baseline
// into dir, creating it if needed. It requires a completed run.
func (e *Engine) Export(dir string) error {
	table := e.Baseline()
	if table == nil {
		return fmt.Errorf("no baseline to export; run the pipeline first")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	for _, s := range baseline.Streams() {
		st, ok := e.StreamTable(s.Name())
		if !ok {
			return fmt.Errorf("stream %s not computed", s.Name())
		}
		if err := writeCSVFile(filepath.Join(dir, exportName(s)), st.WriteCSV); err != nil {
			return err
		}
	}

	if err := writeCSVFile(filepath.Join(dir, BaselineExportName), table.WriteCSV); err != nil {
		return err
	}

	e.logger.Info("exported baseline", "dir", dir, "files", len(baseline.Streams())+1)
	return nil
}

func writeCSVFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
