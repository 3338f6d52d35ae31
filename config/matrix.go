// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type triple struct {
	from, to int
	weight   float64
}

// readTriples reads a TSV of (from, to, weight) adjustment-matrix rows.
// The file has no header; comment lines start with '#'.
//
//	# adjustment matrix
//	0	1	0.5
//	0	2	1.0
//	1	2	1.0
func readTriples(r io.Reader) ([]triple, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	var rows []triple
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

		from, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("on line %d: from region: %v", ln, err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("on line %d: to region: %v", ln, err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: weight: %v", ln, err)
		}
		rows = append(rows, triple{from: from, to: to, weight: weight})
	}
	return rows, nil
}
