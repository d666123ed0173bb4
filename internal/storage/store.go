package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

const (
	metadataFile  = "metadata.json"
	potentialFile = "potential.csv"
	statesFile    = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type StateMetadata struct {
	Energy     float64 `json:"energy"`
	Residual   float64 `json:"boundary_residual"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

type RunMetadata struct {
	ID        string          `json:"id"`
	Shape     string          `json:"shape"`
	Scheme    string          `json:"scheme"`
	Timestamp time.Time       `json:"timestamp"`
	Grid      potential.Grid  `json:"grid"`
	Sweep     eigen.Sweep     `json:"sweep"`
	Options   eigen.Options   `json:"options"`
	ElapsedMs float64         `json:"elapsed_ms"`
	States    []StateMetadata `json:"states"`
}

// Save writes the result under a new run directory and returns its id.
func (s *Store) Save(r *store.Result) (string, error) {
	if r == nil {
		return "", store.ErrEmpty
	}
	runID := fmt.Sprintf("%s_%d", r.Shape, time.Now().UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Shape:     r.Shape,
		Scheme:    r.Scheme.String(),
		Timestamp: time.Now(),
		Grid:      r.Grid,
		Sweep:     r.Sweep,
		Options:   r.Options,
		ElapsedMs: float64(r.Elapsed) / float64(time.Millisecond),
		States:    make([]StateMetadata, len(r.Solutions)),
	}
	for i, sol := range r.Solutions {
		meta.States[i] = StateMetadata{
			Energy:     sol.Energy,
			Residual:   sol.BoundaryResidual,
			Iterations: sol.Iterations,
			Converged:  sol.Converged,
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeColumns(filepath.Join(runDir, potentialFile), []string{"x", "V"}, r.X, r.Potential); err != nil {
		return "", err
	}

	header := []string{"x"}
	cols := [][]float64{r.X}
	for i, sol := range r.Solutions {
		header = append(header, fmt.Sprintf("psi%d", i))
		cols = append(cols, sol.Wavefunction)
	}
	if err := writeColumns(filepath.Join(runDir, statesFile), header, cols...); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns saved runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult rebuilds the full result of a saved run.
func (s *Store) LoadResult(runID string) (*store.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	scheme, err := shooting.ParseScheme(meta.Scheme)
	if err != nil {
		return nil, err
	}

	pot, err := readColumns(filepath.Join(s.Dir(runID), potentialFile))
	if err != nil {
		return nil, err
	}
	if len(pot) != 2 {
		return nil, fmt.Errorf("%s: expected 2 columns, got %d", potentialFile, len(pot))
	}
	states, err := readColumns(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	if len(states) != len(meta.States)+1 {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", statesFile, len(meta.States)+1, len(states))
	}
	if len(states[0]) != len(pot[0]) {
		return nil, fmt.Errorf("%w: %s has %d rows, %s has %d", dynamo.ErrDimensionMismatch,
			statesFile, len(states[0]), potentialFile, len(pot[0]))
	}

	r := &store.Result{
		Shape:     meta.Shape,
		Scheme:    scheme,
		Grid:      meta.Grid,
		X:         pot[0],
		Potential: pot[1],
		Sweep:     meta.Sweep,
		Options:   meta.Options,
		Started:   meta.Timestamp,
		Elapsed:   time.Duration(meta.ElapsedMs * float64(time.Millisecond)),
		Solutions: make([]eigen.Solution, len(meta.States)),
	}
	for i, st := range meta.States {
		r.Solutions[i] = eigen.Solution{
			Energy:           st.Energy,
			Wavefunction:     states[i+1],
			Positions:        r.X,
			BoundaryResidual: st.Residual,
			Iterations:       st.Iterations,
			Converged:        st.Converged,
		}
	}
	return r, nil
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

func writeColumns(path string, header []string, cols ...[]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	row := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readColumns returns the numeric columns of a CSV file with a header row.
func readColumns(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
	}

	cols := make([][]float64, len(records[0]))
	for j := range cols {
		cols[j] = make([]float64, 0, len(records)-1)
	}
	for i := 1; i < len(records); i++ {
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), i+1, err)
			}
			cols[j] = append(cols[j], v)
		}
	}
	return cols, nil
}
