package config

import (
	"sort"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
)

var box = potential.Grid{XMin: 0, XMax: 10, Step: 0.01}

func preset(shape string, grid potential.Grid, emin, emax, estep float64) *Config {
	return &Config{
		Potential:  shape,
		Scheme:     DefaultScheme,
		Grid:       grid,
		Search:     eigen.Sweep{EMin: emin, EMax: emax, EStep: estep},
		Tolerances: eigen.DefaultOptions(),
		LogLevel:   DefaultLogLevel,
	}
}

var Presets = map[string]map[string]*Config{
	"square_well": {
		"ground":  preset("square_well", box, 0.01, 3, 0.01),
		"classic": preset("square_well", box, 10, 500, 5),
		"euler":   {Potential: "square_well", Scheme: "euler", Grid: box, Search: eigen.Sweep{EMin: 0.01, EMax: 3, EStep: 0.01}, Tolerances: eigen.DefaultOptions(), LogLevel: DefaultLogLevel},
	},
	"linear_well": {
		"low":  preset("linear_well", box, 0.5, 30, 0.1),
		"wide": preset("linear_well", box, 1, 200, 1),
	},
	"parabolic_well": {
		"low": preset("parabolic_well", box, 0.1, 20, 0.05),
	},
	"square_linear_well": {
		"low": preset("square_linear_well", box, 0.05, 5, 0.01),
	},
	"square_barrier": {
		"below": preset("square_barrier", box, 0.05, 14.9, 0.05),
		"above": preset("square_barrier", box, 15.1, 60, 0.1),
	},
	"triangle_barrier": {
		"low": preset("triangle_barrier", box, 0.05, 10, 0.02),
	},
	"coupled_parabolic_well": {
		"low": preset("coupled_parabolic_well", box, 0.05, 10, 0.02),
	},
	"coupled_square_well_field": {
		"low": preset("coupled_square_well_field", box, 0.05, 8, 0.02),
	},
	"harmonic_oscillator": {
		"ladder": preset("harmonic_oscillator", potential.NewHarmonicOscillator().Grid(), 0.05, 3, 0.01),
	},
	"kronig_penney": {
		"bands": preset("kronig_penney", potential.NewKronigPenney().Grid(), 0.1, 60, 0.1),
	},
}

func GetPreset(shape, name string) *Config {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	cfg, ok := shapePresets[name]
	if !ok {
		return nil
	}
	clone := *cfg
	return &clone
}

func ListPresets(shape string) []string {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(shapePresets))
	for name := range shapePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
