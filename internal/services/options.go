package services

import (
	"errors"
	"fmt"
)

const (
	DefaultDetourMultiplier     = 1.4
	DefaultMaxClusterRounds     = 20
	DefaultMaxTwoOptScans       = 100
	DefaultImprovementEpsilonKm = 0.001
)

// Options tunes the dispatch heuristics.
//
// The iteration caps bound worst-case runtime; reaching them is not an error.
// ImprovementEpsilonKm is the minimum gain a 2-opt move must achieve to be
// applied; setting it to zero risks endless oscillation on coordinate sets
// with numerically equal edge lengths.
type Options struct {
	// Straight-line to road distance factor.
	DetourMultiplier     float64 `yaml:"detour_multiplier"`
	MaxClusterRounds     int     `yaml:"max_cluster_rounds"`
	MaxTwoOptScans       int     `yaml:"max_two_opt_scans"`
	ImprovementEpsilonKm float64 `yaml:"improvement_epsilon_km"`
}

func DefaultOptions() Options {
	return Options{
		DetourMultiplier:     DefaultDetourMultiplier,
		MaxClusterRounds:     DefaultMaxClusterRounds,
		MaxTwoOptScans:       DefaultMaxTwoOptScans,
		ImprovementEpsilonKm: DefaultImprovementEpsilonKm,
	}
}

// WithDefaults returns a copy where every zero field holds its default.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.DetourMultiplier == 0 {
		o.DetourMultiplier = d.DetourMultiplier
	}
	if o.MaxClusterRounds == 0 {
		o.MaxClusterRounds = d.MaxClusterRounds
	}
	if o.MaxTwoOptScans == 0 {
		o.MaxTwoOptScans = d.MaxTwoOptScans
	}
	if o.ImprovementEpsilonKm == 0 {
		o.ImprovementEpsilonKm = d.ImprovementEpsilonKm
	}
	return o
}

// sanitize replaces out-of-range values with their defaults so a
// hand-built Options can never stall or crash the heuristics.
func (o Options) sanitize() Options {
	d := DefaultOptions()
	if o.DetourMultiplier < 1 {
		o.DetourMultiplier = d.DetourMultiplier
	}
	if o.MaxClusterRounds < 1 {
		o.MaxClusterRounds = d.MaxClusterRounds
	}
	if o.MaxTwoOptScans < 0 {
		o.MaxTwoOptScans = d.MaxTwoOptScans
	}
	if o.ImprovementEpsilonKm <= 0 {
		o.ImprovementEpsilonKm = d.ImprovementEpsilonKm
	}
	return o
}

func (o Options) Validate() error {
	var errs []error
	if o.DetourMultiplier < 1 {
		errs = append(errs, fmt.Errorf("detour_multiplier must be >= 1, got %v", o.DetourMultiplier))
	}
	if o.MaxClusterRounds < 1 {
		errs = append(errs, fmt.Errorf("max_cluster_rounds must be >= 1, got %d", o.MaxClusterRounds))
	}
	if o.MaxTwoOptScans < 0 {
		errs = append(errs, fmt.Errorf("max_two_opt_scans must be >= 0, got %d", o.MaxTwoOptScans))
	}
	if o.ImprovementEpsilonKm <= 0 {
		errs = append(errs, fmt.Errorf("improvement_epsilon_km must be > 0, got %v", o.ImprovementEpsilonKm))
	}
	if len(errs) > 0 {
		return fmt.Errorf("optimizer options: %w", errors.Join(errs...))
	}
	return nil
}
