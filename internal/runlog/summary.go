// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"math"
	"sort"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/pkg/errors"
)

// Generations groups the fitness values of t by generation. It
// returns the distinct generations in increasing order and the
// fitness values of each, in row order.
//
// Every row must have both a generation and a fitness.
func Generations(t *table.Table) (gens []int64, fitness map[int64][]float64, err error) {
	gs, err := FloatColumn(t, "gen")
	if err != nil {
		return nil, nil, err
	}
	fs, err := FloatColumn(t, "fitness")
	if err != nil {
		return nil, nil, err
	}

	gens = []int64{}
	fitness = make(map[int64][]float64)
	for i, g := range gs {
		if math.IsNaN(g) {
			return nil, nil, errors.Errorf("row %d has no generation", i)
		}
		if math.IsNaN(fs[i]) {
			return nil, nil, errors.Errorf("row %d has no fitness", i)
		}
		gen := int64(g)
		if float64(gen) != g {
			return nil, nil, errors.Errorf("row %d has non-integer generation %v", i, g)
		}
		if _, ok := fitness[gen]; !ok {
			gens = append(gens, gen)
		}
		fitness[gen] = append(fitness[gen], fs[i])
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, fitness, nil
}

// Summarize returns a table with one row per generation giving the
// number of records and the distribution of fitness in that
// generation. The quartiles use go-moremath's default (R8)
// interpolation, so they may differ slightly from the box plot's.
func Summarize(t *table.Table) (*table.Table, error) {
	gens, fitness, err := Generations(t)
	if err != nil {
		return nil, err
	}

	n := len(gens)
	count := make([]int, n)
	lo, hi := make([]float64, n), make([]float64, n)
	q1, med, q3 := make([]float64, n), make([]float64, n), make([]float64, n)
	mean := make([]float64, n)
	for i, gen := range gens {
		s := (&stats.Sample{Xs: append([]float64(nil), fitness[gen]...)}).Sort()
		count[i] = len(s.Xs)
		lo[i], hi[i] = s.Bounds()
		q1[i] = s.Quantile(0.25)
		med[i] = s.Quantile(0.5)
		q3[i] = s.Quantile(0.75)
		mean[i] = s.Mean()
	}

	return new(table.Builder).
		Add("gen", gens).
		Add("n", count).
		Add("min", lo).
		Add("q1", q1).
		Add("median", med).
		Add("q3", q3).
		Add("max", hi).
		Add("mean", mean).
		Done(), nil
}
