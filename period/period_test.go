// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package period_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/bigrig/model"
	"github.com/js-arias/bigrig/period"
)

func testModel() *model.Model {
	return model.New(model.RateParams{Dispersion: 1, Extinction: 1}, model.CladoParams{Sympatry: 1, Jump: 1}, false)
}

func TestNewOrdersAndValidates(t *testing.T) {
	m := testModel()
	l, err := period.New([]period.Period{
		{Start: 10, Length: 5, Model: m},
		{Start: 0, Length: 10, Model: m},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := l.At(0).Start, 0.0; got != want {
		t.Errorf("At(0).Start = %v, want %v", got, want)
	}
	if got, want := l.At(1).Start, 10.0; got != want {
		t.Errorf("At(1).Start = %v, want %v", got, want)
	}

	if _, err := period.New([]period.Period{
		{Start: 0, Length: 10, Model: m},
		{Start: 5, Length: 10, Model: m},
	}); err == nil {
		t.Errorf("expected an error for overlapping periods")
	}
}

func TestNewRejectsGaps(t *testing.T) {
	m := testModel()
	_, err := period.New([]period.Period{
		{Start: 0, Length: 10, Model: m},
		{Start: 15, Length: 10, Model: m},
	})
	if err == nil {
		t.Fatalf("expected an error for a gap between periods")
	}
	if !errors.Is(err, period.ErrPeriodGap) {
		t.Errorf("error = %v, want ErrPeriodGap", err)
	}
}

func TestGet(t *testing.T) {
	m := testModel()
	l, err := period.New([]period.Period{
		{Start: 0, Length: 10, Model: m},
		{Start: 10, Length: 15, Model: m},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p, err := l.Get(12)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Start != 10 {
		t.Errorf("Get(12).Start = %v, want 10", p.Start)
	}

	if _, err := l.Get(100); err == nil {
		t.Errorf("expected an error for a time outside every period")
	}
}

func TestSubClamps(t *testing.T) {
	m := testModel()
	l, err := period.New([]period.Period{
		{Start: 0, Length: 10, Model: m, Index: 0},
		{Start: 10, Length: 15, Model: m, Index: 1},
		{Start: 25, Length: 1000, Model: m, Index: 2},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sub := l.Sub(5, 20)
	if got, want := sub.Len(), 2; got != want {
		t.Fatalf("Sub length = %d, want %d", got, want)
	}
	if got, want := sub.At(0).Start, 5.0; got != want {
		t.Errorf("Sub.At(0).Start = %v, want %v", got, want)
	}
	if got, want := sub.At(0).End(), 10.0; got != want {
		t.Errorf("Sub.At(0).End() = %v, want %v", got, want)
	}
	if got, want := sub.At(1).End(), 20.0; got != want {
		t.Errorf("Sub.At(1).End() = %v, want %v", got, want)
	}
}

func TestReadWrite(t *testing.T) {
	models := []*model.Model{testModel(), testModel()}
	const data = "0\t10\t0\n10\t15\t1\n"

	l, err := period.Read(strings.NewReader(data), models)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got, want := l.Len(), 2; got != want {
		t.Fatalf("Len = %d, want %d", got, want)
	}
	if l.At(1).Model != models[1] {
		t.Errorf("At(1).Model does not match models[1]")
	}

	var sb strings.Builder
	if err := l.Write(&sb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(sb.String(), "10\t15\t1") {
		t.Errorf("Write output missing expected row: %q", sb.String())
	}
}

func TestReadInvalidModelIndex(t *testing.T) {
	models := []*model.Model{testModel()}
	if _, err := period.Read(strings.NewReader("0\t10\t5\n"), models); err == nil {
		t.Errorf("expected an error for an out-of-range model index")
	}
}
