// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fitplot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genTable returns a table with perGen records for each generation in
// [0, maxGen].
func genTable(maxGen, perGen int) *table.Table {
	var gens []int64
	var fitness []float64
	for g := 0; g <= maxGen; g++ {
		for i := 0; i < perGen; i++ {
			gens = append(gens, int64(g))
			fitness = append(fitness, 100/float64(g+1)+float64(i))
		}
	}
	return new(table.Builder).Add("gen", gens).Add("fitness", fitness).Done()
}

func TestPlotDecimationThreshold(t *testing.T) {
	for _, test := range []struct {
		maxGen    int
		decimated bool
		boxes     int
	}{
		{0, false, 1},
		{49, false, 50},
		{50, false, 51},
		{51, true, 11},
		{99, true, 20},
	} {
		t.Run(fmt.Sprint(test.maxGen), func(t *testing.T) {
			_, layout, err := Plot(genTable(test.maxGen, 3), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, test.decimated, layout.Decimated)
			require.Len(t, layout.Categories, test.boxes)
			require.Len(t, layout.Labels, test.boxes)
			for i, gen := range layout.Categories {
				if test.decimated {
					assert.Zero(t, gen%5, "generation %d has a box", gen)
				} else {
					assert.Equal(t, int64(i), gen)
				}
			}
		})
	}
}

func TestPlotUndecimatedLabels(t *testing.T) {
	_, layout, err := Plot(genTable(50, 2), DefaultOptions())
	require.NoError(t, err)
	for i, lab := range layout.Labels {
		assert.Equal(t, fmt.Sprint(i), lab)
	}
}

func TestPlotDecimatedLabels(t *testing.T) {
	_, layout, err := Plot(genTable(120, 2), DefaultOptions())
	require.NoError(t, err)
	require.True(t, layout.Decimated)

	// Boxes at 0, 5, ..., 120; labels at every 5th box.
	require.Len(t, layout.Labels, 25)
	for i, lab := range layout.Labels {
		if i%5 == 0 {
			assert.Equal(t, fmt.Sprint(layout.Categories[i]), lab)
		} else {
			assert.Empty(t, lab, "label %d should be hidden", i)
		}
	}
	assert.Equal(t, []string{"0", "25", "50", "75", "100"}, layout.VisibleLabels())
}

func TestPlotSwarmIsNotDecimated(t *testing.T) {
	tab := genTable(60, 4)
	opts := DefaultOptions()
	opts.Swarm = true
	_, layout, err := Plot(tab, opts)
	require.NoError(t, err)
	assert.True(t, layout.Decimated)
	assert.Equal(t, tab.Len(), layout.SwarmPoints)

	opts.Swarm = false
	_, layout, err = Plot(tab, opts)
	require.NoError(t, err)
	assert.Zero(t, layout.SwarmPoints)
}

func TestPlotOptions(t *testing.T) {
	tab := genTable(60, 2)

	opts := DefaultOptions()
	opts.DecimateAbove = -1
	_, layout, err := Plot(tab, opts)
	require.NoError(t, err)
	assert.False(t, layout.Decimated)
	assert.Len(t, layout.Categories, 61)

	opts = DefaultOptions()
	opts.DecimateAbove = 10
	opts.DecimateEvery = 20
	opts.BoxFill = FillPlain
	_, layout, err = Plot(tab, opts)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 20, 40, 60}, layout.Categories)
	assert.Equal(t, []string{"0", "", "", ""}, layout.Labels)
}

func TestPlotDoesNotModifyInput(t *testing.T) {
	tab := genTable(60, 2)
	gens := append([]int64(nil), tab.MustColumn("gen").([]int64)...)
	_, _, err := Plot(tab, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, gens, tab.Column("gen"))
	assert.Equal(t, len(gens), tab.Len())
}

func TestPlotErrors(t *testing.T) {
	nan := math.NaN()
	for _, test := range []struct {
		name string
		tab  *table.Table
		want string
	}{
		{"no rows", new(table.Builder).Add("gen", []int64{}).Add("fitness", []float64{}).Done(), "no records"},
		{"no fitness", new(table.Builder).Add("gen", []int64{1}).Done(), `"fitness"`},
		{"null fitness", new(table.Builder).Add("gen", []int64{1}).Add("fitness", []float64{nan}).Done(), "no fitness"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := Plot(test.tab, DefaultOptions())
			assert.ErrorContains(t, err, test.want)
		})
	}

	opts := DefaultOptions()
	opts.DecimateEvery = 0
	_, _, err := Plot(genTable(3, 1), opts)
	assert.ErrorContains(t, err, "decimate_every")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	tab := genTable(20, 5)
	opts := DefaultOptions()
	opts.Swarm = true

	for _, name := range []string{"fitness.svg", "fitness.png"} {
		path := filepath.Join(dir, name)
		p, _, err := Render(tab, path, opts)
		require.NoError(t, err, name)
		require.NotNil(t, p)
		st, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.NotZero(t, st.Size(), name)
	}

	// A missing directory is only reported.
	p, layout, err := Render(tab, filepath.Join(dir, "missing", "fitness.svg"), opts)
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Len(t, layout.Categories, 21)

	// Nothing is saved without a location.
	_, _, err = Render(tab, "", opts)
	require.NoError(t, err)

	_, _, err = Render(tab, filepath.Join(dir, "fitness.unknown"), opts)
	assert.Error(t, err)
}
