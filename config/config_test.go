// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package config_test

import (
	"strings"
	"testing"

	"github.com/js-arias/bigrig/config"
)

const sampleYAML = `
region_count: 4
root_range: "0111"
duplicity: false
periods:
  - start: 0
    length: 10
    rates:
      dispersion: 1
      extinction: 1
    cladogenesis:
      sympatry: 1
      jump: 0.5
`

func TestReadConfig(t *testing.T) {
	c, err := config.Read(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.RegionCount != 4 {
		t.Errorf("RegionCount = %d, want 4", c.RegionCount)
	}
	if len(c.Periods) != 1 {
		t.Fatalf("len(Periods) = %d, want 1", len(c.Periods))
	}
	if c.Periods[0].Clado.Sympatry != 1 {
		t.Errorf("Periods[0].Clado.Sympatry = %v, want 1", c.Periods[0].Clado.Sympatry)
	}
}

func TestRootDist(t *testing.T) {
	c, err := config.Read(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	d, err := c.RootDist()
	if err != nil {
		t.Fatalf("RootDist: %v", err)
	}
	if d.Regions() != 4 {
		t.Errorf("Regions() = %d, want 4", d.Regions())
	}
	if d.Popcount() != 3 {
		t.Errorf("Popcount() = %d, want 3", d.Popcount())
	}
}

func TestPeriodList(t *testing.T) {
	c, err := config.Read(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	list, err := c.PeriodList()
	if err != nil {
		t.Fatalf("PeriodList: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
	if list.At(0).Model.Rates.Dispersion != 1 {
		t.Errorf("period model dispersion rate = %v, want 1", list.At(0).Model.Rates.Dispersion)
	}
}

func TestLoadAdjustmentMatrixSymmetric(t *testing.T) {
	const tsv = "0\t0\t0\n0\t1\t0.5\n0\t2\t1.0\n1\t1\t0\n1\t2\t1.0\n2\t2\t0\n"
	am, err := config.LoadAdjustmentMatrix(strings.NewReader(tsv), 3)
	if err != nil {
		t.Fatalf("LoadAdjustmentMatrix: %v", err)
	}
	if got, want := am.Get(0, 1), 0.5; got != want {
		t.Errorf("Get(0,1) = %v, want %v", got, want)
	}
	if got, want := am.Get(1, 0), 0.5; got != want {
		t.Errorf("Get(1,0) = %v, want %v (expected symmetric fill)", got, want)
	}
}

func TestLoadAdjustmentMatrixAsymmetric(t *testing.T) {
	const tsv = "0\t1\t0.2\n1\t0\t0.8\n0\t2\t1.0\n2\t0\t1.0\n1\t2\t1.0\n2\t1\t1.0\n"
	am, err := config.LoadAdjustmentMatrix(strings.NewReader(tsv), 3)
	if err != nil {
		t.Fatalf("LoadAdjustmentMatrix: %v", err)
	}
	if am.Get(0, 1) == am.Get(1, 0) {
		t.Errorf("expected an asymmetric matrix, got Get(0,1)==Get(1,0)==%v", am.Get(0, 1))
	}
}

func TestLoadAdjustmentMatrixBadShape(t *testing.T) {
	const tsv = "0\t1\t0.5\n"
	if _, err := config.LoadAdjustmentMatrix(strings.NewReader(tsv), 4); err == nil {
		t.Errorf("expected an error for a row count matching neither shape")
	}
}
