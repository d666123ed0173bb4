package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
)

type ExportState struct {
	Energy     float64   `json:"energy"`
	Residual   float64   `json:"boundary_residual"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Psi        []float64 `json:"psi"`
}

type ExportData struct {
	Shape     string             `json:"shape"`
	Scheme    string             `json:"scheme"`
	Grid      potential.Grid     `json:"grid"`
	Sweep     eigen.Sweep        `json:"sweep"`
	Options   eigen.Options      `json:"options"`
	Points    int                `json:"points"`
	X         []float64          `json:"x"`
	Potential []float64          `json:"potential"`
	Scan      []eigen.SweepPoint `json:"scan,omitempty"`
	States    []ExportState      `json:"states"`
}

func NewExportData(r *Result) ExportData {
	data := ExportData{
		Shape:     r.Shape,
		Scheme:    r.Scheme.String(),
		Grid:      r.Grid,
		Sweep:     r.Sweep,
		Options:   r.Options,
		Points:    len(r.X),
		X:         r.X,
		Potential: r.Potential,
		Scan:      r.Scan,
		States:    make([]ExportState, len(r.Solutions)),
	}
	for i, s := range r.Solutions {
		data.States[i] = ExportState{
			Energy:     s.Energy,
			Residual:   s.BoundaryResidual,
			Iterations: s.Iterations,
			Converged:  s.Converged,
			Psi:        s.Wavefunction,
		}
	}
	return data
}

func WriteJSON(w io.Writer, r *Result) error {
	if r == nil {
		return ErrEmpty
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(r))
}

func ExportJSON(path string, r *Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, r)
}

func ExportJSONStdout(r *Result) error {
	return WriteJSON(os.Stdout, r)
}

// WriteCSV writes one row per grid sample: x, V, then ψ for every state.
func WriteCSV(w io.Writer, r *Result) error {
	if r == nil {
		return ErrEmpty
	}
	cw := csv.NewWriter(w)

	header := []string{"x", "V"}
	for i := range r.Solutions {
		header = append(header, fmt.Sprintf("psi%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range r.X {
		row := []string{
			strconv.FormatFloat(r.X[i], 'g', -1, 64),
			strconv.FormatFloat(r.Potential[i], 'g', -1, 64),
		}
		for _, s := range r.Solutions {
			row = append(row, strconv.FormatFloat(s.Wavefunction[i], 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
