// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package config implements the YAML-backed configuration record that
// drives a bigrig run: region count, root range, the model parameters of
// each time period, and the flags that select among the process's
// optional behaviors.
package config

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/model"
	"github.com/js-arias/bigrig/period"
)

// ErrNotSymmetric is returned when an adjustment matrix triple file's row
// count matches neither the symmetric nor the asymmetric region-pair
// count for the configured region count, or when a symmetric file gives
// the two orders of a region pair different weights.
var ErrNotSymmetric = errors.New("config: adjustment matrix does not match a symmetric or asymmetric shape")

// Mode selects the anagenesis sampling algorithm of a run. The bigrig
// commands run spread.Sim for ModeSim and spread.Fast for every other
// value, ModeAdjusted included; cladogenesis splits are always drawn with
// clado.Sample.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeSim      Mode = "sim"
	ModeAdjusted Mode = "adjusted"
)

// RateRecord is the YAML-serializable form of model.RateParams.
type RateRecord struct {
	Dispersion float64 `yaml:"dispersion"`
	Extinction float64 `yaml:"extinction"`
}

// CladoRecord is the YAML-serializable form of model.CladoParams.
type CladoRecord struct {
	Allopatry float64 `yaml:"allopatry"`
	Sympatry  float64 `yaml:"sympatry"`
	Copy      float64 `yaml:"copy"`
	Jump      float64 `yaml:"jump"`
}

// PeriodRecord describes one period's start, length, and model
// parameters.
type PeriodRecord struct {
	Start  float64     `yaml:"start"`
	Length float64     `yaml:"length"`
	Rates  RateRecord  `yaml:"rates"`
	Clado  CladoRecord `yaml:"cladogenesis"`

	// AdjustmentMatrixFile names a TSV file of (from, to, weight)
	// triples for this period's adjustment matrix. It is only carried in
	// the record: Models and PeriodList do not load it, and the models
	// they build have no adjustment matrix.
	AdjustmentMatrixFile string `yaml:"adjustment_matrix_file,omitempty"`

	// AdjustmentExponent is the exponent for the adjustment matrix's
	// non-zero entries. It is only carried in the record: Models and
	// PeriodList do not apply it.
	AdjustmentExponent float64 `yaml:"adjustment_exponent,omitempty"`
}

// Config is the full, file-backed description of a simulation run.
type Config struct {
	RegionCount int            `yaml:"region_count"`
	RootRange   string         `yaml:"root_range"`
	Periods     []PeriodRecord `yaml:"periods"`

	Mode Mode `yaml:"mode,omitempty"`

	// Duplicity selects, for the two-region case, whether allopatry
	// and copy splits are counted by outcome or by process.
	Duplicity bool `yaml:"duplicity,omitempty"`

	// ExtinctionOfSingletons allows a singleton range to go globally
	// extinct instead of treating extinction as impossible for it.
	ExtinctionOfSingletons bool `yaml:"extinction_of_singletons,omitempty"`

	// SimulateTree marks the configuration for the joint birth-death
	// process (simulate.SimulateTree): the tree command refuses a
	// configuration without it, and Models gives every model the
	// TreeCladogenesis clock when it is set. The sim command does not
	// check it.
	SimulateTree bool `yaml:"simulate_tree,omitempty"`

	// TreeCladogenesis is the constant speciation clock used only when
	// SimulateTree is true.
	TreeCladogenesis float64 `yaml:"tree_cladogenesis,omitempty"`

	// TreeDuration is the absolute duration simulated when SimulateTree
	// is true.
	TreeDuration float64 `yaml:"tree_duration,omitempty"`

	// Redo is only carried in the record: the bigrig commands overwrite
	// existing result files whether or not it is set.
	Redo bool `yaml:"redo,omitempty"`

	// Seed, if non-zero, seeds the run for reproducibility.
	Seed int64 `yaml:"seed,omitempty"`
}

// Read reads a Config from a YAML file.
func Read(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// Write writes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return enc.Close()
}

// RootDist parses the configured root range string into a dist.Dist of
// RegionCount regions.
func (c *Config) RootDist() (dist.Dist, error) {
	d, err := dist.Parse(c.RootRange)
	if err != nil {
		return dist.Dist{}, fmt.Errorf("config: root_range: %w", err)
	}
	if d.Regions() != c.RegionCount {
		return dist.Dist{}, fmt.Errorf("config: root_range has %d regions, want %d", d.Regions(), c.RegionCount)
	}
	return d, nil
}

// Models builds one model.Model per period record, in file order.
func (c *Config) Models() ([]*model.Model, error) {
	models := make([]*model.Model, len(c.Periods))
	for i, pr := range c.Periods {
		m := model.New(
			model.RateParams{Dispersion: pr.Rates.Dispersion, Extinction: pr.Rates.Extinction},
			model.CladoParams{
				Allopatry: pr.Clado.Allopatry,
				Sympatry:  pr.Clado.Sympatry,
				Copy:      pr.Clado.Copy,
				Jump:      pr.Clado.Jump,
			},
			c.Duplicity,
		)
		m.ExtinctionOfSingletons = c.ExtinctionOfSingletons
		if c.SimulateTree {
			m.Tree = &model.TreeParams{Cladogenesis: c.TreeCladogenesis}
		}
		models[i] = m
	}
	return models, nil
}

// PeriodList builds the period.List described by c, in period-record
// order, assigning each period's Index to its position in the file.
func (c *Config) PeriodList() (*period.List, error) {
	models, err := c.Models()
	if err != nil {
		return nil, err
	}

	periods := make([]period.Period, len(c.Periods))
	for i, pr := range c.Periods {
		periods[i] = period.Period{
			Start:  pr.Start,
			Length: pr.Length,
			Model:  models[i],
			Index:  i,
		}
	}
	return period.New(periods)
}

// LoadAdjustmentMatrix reads a TSV of (from, to, weight) triples and
// builds a model.AdjustmentMatrix for a model of regionCount regions. The
// file may list either the symmetric n(n+1)/2 rows (diagonal included,
// upper triangle only) or the full asymmetric n(n-1) directed rows; any
// other row count is rejected with ErrNotSymmetric.
func LoadAdjustmentMatrix(r io.Reader, regionCount int) (*model.AdjustmentMatrix, error) {
	rows, err := readTriples(r)
	if err != nil {
		return nil, err
	}

	symmetricRows := regionCount * (regionCount + 1) / 2
	asymmetricRows := regionCount * (regionCount - 1)

	// For 3 regions both shapes have 6 rows; only the symmetric shape
	// carries diagonal rows, which tells them apart.
	hasDiagonal := false
	for _, t := range rows {
		if t.from == t.to {
			hasDiagonal = true
		}
	}

	vals := make([]float64, regionCount*regionCount)
	switch {
	case len(rows) == symmetricRows && (hasDiagonal || symmetricRows != asymmetricRows):
		seen := make(map[[2]int]float64, len(rows))
		for _, t := range rows {
			if t.from >= regionCount || t.to >= regionCount {
				return nil, fmt.Errorf("config: adjustment matrix: region index out of range: %d,%d", t.from, t.to)
			}
			key := [2]int{t.from, t.to}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if prev, ok := seen[key]; ok && prev != t.weight {
				return nil, fmt.Errorf("%w: region pair %d,%d has mismatched weights %v and %v", ErrNotSymmetric, t.from, t.to, prev, t.weight)
			}
			seen[key] = t.weight
			vals[t.from*regionCount+t.to] = t.weight
			vals[t.to*regionCount+t.from] = t.weight
		}
	case len(rows) == asymmetricRows:
		for _, t := range rows {
			if t.from >= regionCount || t.to >= regionCount {
				return nil, fmt.Errorf("config: adjustment matrix: region index out of range: %d,%d", t.from, t.to)
			}
			vals[t.from*regionCount+t.to] = t.weight
		}
	default:
		return nil, fmt.Errorf("%w: got %d rows, want %d (symmetric) or %d (asymmetric)", ErrNotSymmetric, len(rows), symmetricRows, asymmetricRows)
	}

	return model.NewAdjustmentMatrix(regionCount, vals)
}
