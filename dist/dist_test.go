// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist_test

import (
	"errors"
	"testing"

	"github.com/js-arias/bigrig/dist"
)

func TestBitwiseOps(t *testing.T) {
	d := dist.New(0b1001, 4)
	e := dist.New(0b1101, 4)

	if got := d.SymmetricDifference(e); got != dist.New(0b0100, 4) {
		t.Errorf("symmetric difference: got %v", got)
	}
	if got := d.Union(e); got != dist.New(0b1101, 4) {
		t.Errorf("union: got %v", got)
	}
	if got := d.Intersect(e); got != dist.New(0b1001, 4) {
		t.Errorf("intersect: got %v", got)
	}
}

func TestAt(t *testing.T) {
	d := dist.New(0b1001, 4)
	want := []bool{true, false, false, true}
	for i, w := range want {
		if got := d.At(i); got != w {
			t.Errorf("At(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestValid(t *testing.T) {
	valid := dist.New(0b110011, 6)
	invalid := dist.New(0b110011, 5)
	if !valid.Valid() {
		t.Errorf("expected %v to be valid", valid)
	}
	if invalid.Valid() {
		t.Errorf("expected %v to be invalid", invalid)
	}
}

func TestAdd1(t *testing.T) {
	d := dist.New(0b1001, 4)
	if got := d.Add1(); got != dist.New(0b1010, 4) {
		t.Errorf("Add1: got %v", got)
	}
}

func TestNegateBit(t *testing.T) {
	d := dist.New(0b1001, 4)
	for i := 0; i < 4; i++ {
		tmp := d.NegateBit(i)
		if tmp == d {
			t.Errorf("NegateBit(%d) did not change value", i)
		}
		if !tmp.OneRegionOff(d) {
			t.Errorf("NegateBit(%d) changed more than one region", i)
		}
	}
}

func TestParseString(t *testing.T) {
	tests := map[string]dist.Dist{
		"1010":    dist.New(0b1010, 4),
		"0000":    dist.New(0b0000, 4),
		"1011111": dist.New(0b1011111, 7),
	}
	for s, want := range tests {
		got, err := dist.Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", s, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", s, got, want)
		}
		if got.String() != s {
			t.Errorf("String() = %q, want %q", got.String(), s)
		}
	}
}

func TestSetUnsetIndex(t *testing.T) {
	d := dist.New(0b1010, 4) // regions 1 and 3 set; 0 and 2 empty.
	if i, err := d.SetIndex(0); err != nil || i != 1 {
		t.Errorf("SetIndex(0) = %d, %v; want 1, nil", i, err)
	}
	if i, err := d.SetIndex(1); err != nil || i != 3 {
		t.Errorf("SetIndex(1) = %d, %v; want 3, nil", i, err)
	}
	if _, err := d.SetIndex(2); !errors.Is(err, dist.ErrInvalidIndex) {
		t.Errorf("SetIndex(2) = %v, want ErrInvalidIndex", err)
	}

	if i, err := d.UnsetIndex(0); err != nil || i != 0 {
		t.Errorf("UnsetIndex(0) = %d, %v; want 0, nil", i, err)
	}
	if i, err := d.UnsetIndex(1); err != nil || i != 2 {
		t.Errorf("UnsetIndex(1) = %d, %v; want 2, nil", i, err)
	}
	if _, err := d.UnsetIndex(2); !errors.Is(err, dist.ErrInvalidIndex) {
		t.Errorf("UnsetIndex(2) = %v, want ErrInvalidIndex", err)
	}
}

func TestNextDist(t *testing.T) {
	d := dist.New(0, 4)
	maxPop := 2
	var seen []dist.Dist
	for i := 0; i < 5; i++ {
		d = d.NextDist(maxPop)
		seen = append(seen, d)
		if d.Popcount() > maxPop {
			t.Errorf("NextDist produced popcount %d > %d", d.Popcount(), maxPop)
		}
	}
	want := []dist.Dist{
		dist.New(0b0001, 4),
		dist.New(0b0010, 4),
		dist.New(0b0011, 4),
		dist.New(0b0100, 4),
		dist.New(0b0101, 4),
	}
	for i, w := range want {
		if seen[i] != w {
			t.Errorf("NextDist step %d = %v, want %v", i, seen[i], w)
		}
	}
}

func TestFullEmptySingle(t *testing.T) {
	if got := dist.Full(4); got.Popcount() != 4 {
		t.Errorf("Full(4).Popcount() = %d, want 4", got.Popcount())
	}
	if got := dist.Empty(4); !got.IsEmpty() {
		t.Errorf("Empty(4) is not empty: %v", got)
	}
	if got := dist.Single(4, 2); got.Popcount() != 1 || !got.At(2) {
		t.Errorf("Single(4,2) = %v", got)
	}
}
