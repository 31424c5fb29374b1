// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"math"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// StatusResult is the status of the record logged at the end of a
// run.
const StatusResult = "result"

// BestCode returns the phenotype code of every "result" record whose
// fitness equals the minimum fitness over the whole table.
//
// The minimum is taken over all records, not only results, so if the
// lowest fitness was logged by a progress record, BestCode returns
// nothing. A result record whose phenotype carries no code yields "".
func BestCode(t *table.Table) ([]string, error) {
	for _, col := range []string{"fitness", "status", "phenotype"} {
		if t.Column(col) == nil {
			return nil, errors.Errorf("no %q column", col)
		}
	}
	for _, col := range []string{"status", "phenotype"} {
		if _, ok := t.Column(col).([]string); !ok {
			return nil, errors.Errorf("%s column has type %T, want []string", col, t.Column(col))
		}
	}

	fitness, err := FloatColumn(t, "fitness")
	if err != nil {
		return nil, err
	}
	min, ok := minFloat(fitness)
	if !ok {
		return []string{}, nil
	}

	t = table.NewBuilder(t).Add("fitness", fitness).Done()
	g := table.Filter(t, func(f float64) bool { return f == min }, "fitness")
	g = table.FilterEq(g, "status", StatusResult)
	best := rootTable(g)

	codes := []string{}
	if best.Len() == 0 {
		return codes, nil
	}
	for _, ph := range best.MustColumn("phenotype").([]string) {
		codes = append(codes, phenotypeCode(ph))
	}
	return codes, nil
}

// phenotypeCode extracts the "code" field from the raw JSON of a
// phenotype.
func phenotypeCode(ph string) string {
	code, err := jsonparser.GetString([]byte(ph), "code")
	if err != nil {
		return ""
	}
	return code
}

// FloatColumn returns column col of t converted to float64. The
// column must be []int64 or []float64.
func FloatColumn(t *table.Table, col string) ([]float64, error) {
	var out []float64
	switch seq := t.Column(col).(type) {
	case nil:
		return nil, errors.Errorf("no %q column", col)
	case []float64:
		out = seq
	case []int64:
		slice.Convert(&out, seq)
	default:
		return nil, errors.Errorf("%s column has type %T, want numbers", col, seq)
	}
	return out, nil
}

// minFloat returns the minimum of the non-NaN values in xs.
func minFloat(xs []float64) (float64, bool) {
	min, ok := math.Inf(1), false
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if !ok || x < min {
			min, ok = x, true
		}
	}
	return min, ok
}
