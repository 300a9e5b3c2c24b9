package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/featwalk/featwalk/internal/engine"
)

// Store persists one run's report and per-combination logs under
// .featwalk/runs/<run_id>. The engine itself is stateless; persistence is
// strictly a caller-side concern and nothing reads these back.
type Store struct {
	RunID   string
	BaseDir string
}

// New creates a store for a run, rooted at workDir.
func New(runID, workDir string) (*Store, error) {
	base := filepath.Join(workDir, ".featwalk", "runs", runID)
	if err := os.MkdirAll(filepath.Join(base, "combos"), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Store{RunID: runID, BaseDir: base}, nil
}

// WriteOutcome writes the captured streams for one combination.
func (s *Store) WriteOutcome(o engine.Outcome) error {
	name := comboFileName(o.Combination)
	if o.Stdout != "" {
		if err := os.WriteFile(filepath.Join(s.BaseDir, "combos", name+".stdout"), []byte(o.Stdout), 0o644); err != nil {
			return err
		}
	}
	if o.Stderr != "" {
		if err := os.WriteFile(filepath.Join(s.BaseDir, "combos", name+".stderr"), []byte(o.Stderr), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport writes the final report JSON.
func (s *Store) WriteReport(report *engine.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.BaseDir, "report.json"), data, 0o644)
}

// comboFileName flattens a combination into a filesystem-safe name.
func comboFileName(c []string) string {
	if len(c) == 0 {
		return "baseline"
	}
	return strings.ReplaceAll(strings.Join(c, "+"), string(filepath.Separator), "_")
}
