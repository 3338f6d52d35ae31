// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package period implements a piecewise-constant timeline of model
// parameters: an ordered list of non-overlapping time periods, each
// carrying the biogeography model in effect during it.
package period

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/js-arias/bigrig/model"
)

// ErrNoPeriod is returned when no period in a list covers a requested time.
var ErrNoPeriod = errors.New("period: no period covers the requested time")

// ErrInvalidPeriod is returned when a period or a period list is internally
// inconsistent (e.g. a negative length, or an unordered list).
var ErrInvalidPeriod = errors.New("period: invalid period")

// ErrPeriodGap is returned when a period list leaves a span of time
// between Start and the last period's End uncovered by any period.
var ErrPeriodGap = errors.New("period: gap between periods")

// Period is a single time interval over which a Model applies. Times are
// measured forward from the root at time 0, on the same axis as
// phylo.Node.AbsTime.
type Period struct {
	Start  float64
	Length float64
	Model  *model.Model

	// Index identifies the period's position in its originating list,
	// and is carried along into spread.Transition and clado.Split so a
	// caller can recover which period produced an event.
	Index int
}

// End returns the period's end time, Start+Length.
func (p Period) End() float64 { return p.Start + p.Length }

// adjustStart moves the period's start to s, shrinking or growing its
// length so its end stays fixed.
func (p *Period) adjustStart(s float64) {
	p.Length = p.End() - s
	p.Start = s
}

// adjustEnd moves the period's end to e, leaving its start fixed.
func (p *Period) adjustEnd(e float64) {
	p.Length = e - p.Start
}

// clamp restricts the period to the interval [s, e].
func (p *Period) clamp(s, e float64) {
	if p.Start < s {
		p.adjustStart(s)
	}
	if p.End() > e {
		p.adjustEnd(e)
	}
}

// List is an ordered, clamp-able collection of periods.
type List struct {
	periods []Period
}

// New builds a period list from an arbitrary-order slice of periods,
// sorting them by start time.
func New(periods []Period) (*List, error) {
	cp := make([]Period, len(periods))
	copy(cp, periods)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Start < cp[j].Start })

	for i := 1; i < len(cp); i++ {
		if cp[i].Start < cp[i-1].End() {
			return nil, fmt.Errorf("%w: period %d overlaps period %d", ErrInvalidPeriod, i, i-1)
		}
		if cp[i].Start > cp[i-1].End() {
			return nil, fmt.Errorf("%w: between period %d (ends %v) and period %d (starts %v)", ErrPeriodGap, i-1, cp[i-1].End(), i, cp[i].Start)
		}
	}
	return &List{periods: cp}, nil
}

// Len returns the number of periods in the list.
func (l *List) Len() int { return len(l.periods) }

// At returns the i-th period.
func (l *List) At(i int) Period { return l.periods[i] }

// All returns every period in the list, in start-time order.
func (l *List) All() []Period {
	out := make([]Period, len(l.periods))
	copy(out, l.periods)
	return out
}

// Get returns the period covering time d, i.e. the one with
// Start <= d <= End.
func (l *List) Get(d float64) (Period, error) {
	for _, p := range l.periods {
		if p.Start <= d && d <= p.End() {
			return p, nil
		}
	}
	return Period{}, fmt.Errorf("%w: time %v", ErrNoPeriod, d)
}

// Back returns the last period in the list.
func (l *List) Back() Period {
	return l.periods[len(l.periods)-1]
}

// Sub returns a new list containing only the periods overlapping
// [start, end], each clamped to that interval. This is the branch-local
// view that spread.SimulateTransitions walks across.
func (l *List) Sub(start, end float64) *List {
	var out []Period
	for _, p := range l.periods {
		if p.End() < start || p.Start > end {
			continue
		}
		p.clamp(start, end)
		out = append(out, p)
	}
	return &List{periods: out}
}

// Read reads a period list from a TSV file. The file has no header; each
// row is start-time, length, and a period index into a caller-supplied
// slice of models, in the order produced by config.Config.Models.
//
//	# periods
//	0	10	0
//	10	15	1
//	25	1000	1
func Read(r io.Reader, models []*model.Model) (*List, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	var periods []Period
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on line %d: %v", ln, err)
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("on line %d: expecting 3 fields, found %d", ln, len(row))
		}

		start, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: start time: %v", ln, err)
		}
		length, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: length: %v", ln, err)
		}
		mi, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("on line %d: model index: %v", ln, err)
		}
		if mi < 0 || mi >= len(models) {
			return nil, fmt.Errorf("on line %d: model index %d out of range [0,%d)", ln, mi, len(models))
		}

		periods = append(periods, Period{
			Start:  start,
			Length: length,
			Model:  models[mi],
			Index:  len(periods),
		})
	}

	return New(periods)
}

// Write writes a period list into a tab-delimited file. The written model
// index is the period's Index field, so the file round-trips only when the
// caller's models slice is ordered the same way the periods were built.
func (l *List) Write(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# periods\n")

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	for _, p := range l.periods {
		row := []string{
			strconv.FormatFloat(p.Start, 'f', -1, 64),
			strconv.FormatFloat(p.Length, 'f', -1, 64),
			strconv.Itoa(p.Index),
		}
		if err := tsv.Write(row); err != nil {
			return err
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return bw.Flush()
}
