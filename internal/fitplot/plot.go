// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fitplot draws the distribution of fitness over the
// generations of grammatical evolution runs.
//
// The chart has one box per generation. When a run is long, only
// every Nth generation gets a box and only every Nth box is labeled.
// An optional swarm overlay shows every individual record, including
// those of generations without a box.
package fitplot

import (
	"fmt"
	"image/color"
	"io/fs"
	"math"

	"github.com/aclements/go-gg/table"
	"github.com/gehash/evostat/internal/runlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Log receives non-fatal diagnostics.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Layout describes what Plot drew.
type Layout struct {
	// Decimated is set if only every DecimateEvery'th generation
	// got a box.
	Decimated bool

	// Categories are the generations that got a box, in order.
	Categories []int64

	// Labels[i] is the x axis label of Categories[i]. Hidden
	// labels are "".
	Labels []string

	// SwarmPoints is the number of points in the swarm overlay.
	SwarmPoints int
}

// VisibleLabels returns the labels that are drawn.
func (l *Layout) VisibleLabels() []string {
	var out []string
	for _, lab := range l.Labels {
		if lab != "" {
			out = append(out, lab)
		}
	}
	return out
}

const (
	// dataFrac approximates the fraction of the figure taken by
	// the data area, for sizing boxes and swarm points.
	dataFrac = 0.85

	swarmRadius = vg.Length(1.5)
)

// Plot builds the fitness distribution chart of t, which must have
// "gen" and "fitness" columns with a value in every row.
func Plot(t *table.Table, opts Options) (*plot.Plot, *Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	gens, fitness, err := runlog.Generations(t)
	if err != nil {
		return nil, nil, err
	}
	if len(gens) == 0 {
		return nil, nil, errors.New("no records to plot")
	}

	layout := &Layout{}
	boxGens, boxFitness := gens, fitness
	if opts.decimates(gens[len(gens)-1]) {
		layout.Decimated = true
		dt, err := decimate(t, opts.DecimateEvery)
		if err != nil {
			return nil, nil, err
		}
		boxGens, boxFitness, err = runlog.Generations(dt)
		if err != nil {
			return nil, nil, err
		}
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	// X positions are generation numbers, so the boxes and the
	// undecimated swarm share one axis.
	stride := minGap(boxGens)
	lo, hi := float64(gens[0])-stride/2, float64(gens[len(gens)-1])+stride/2
	span := hi - lo
	dataWidth := opts.Width * dataFrac

	boxWidth := 0.7 * dataWidth * vg.Length(stride/span)
	boxWidth = vg.Length(math.Max(2, math.Min(60, float64(boxWidth))))
	ticks := make([]plot.Tick, 0, len(boxGens))
	for i, gen := range boxGens {
		b, err := plotter.NewBoxPlot(boxWidth, float64(gen), plotter.Values(boxFitness[gen]))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "generation %d", gen)
		}
		styleBox(b, opts.BoxFill)
		p.Add(b)

		label := fmt.Sprint(gen)
		if layout.Decimated && i%opts.DecimateEvery != 0 {
			label = ""
		}
		layout.Categories = append(layout.Categories, gen)
		layout.Labels = append(layout.Labels, label)
		ticks = append(ticks, plot.Tick{Value: float64(gen), Label: label})
	}

	if opts.Swarm {
		s, err := swarm(gens, fitness, minGap(gens), span, opts)
		if err != nil {
			return nil, nil, err
		}
		layout.SwarmPoints = s.Len()
		p.Add(s)
	}

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min, p.X.Max = lo, hi
	return p, layout, nil
}

// Render builds the chart of t and, if figLocation is not empty,
// saves it there in the format given by its extension.
//
// A figLocation in a directory that does not exist is logged and
// otherwise ignored.
func Render(t *table.Table, figLocation string, opts Options) (*plot.Plot, *Layout, error) {
	p, layout, err := Plot(t, opts)
	if err != nil {
		return nil, nil, err
	}
	if figLocation == "" {
		return p, layout, nil
	}
	if err := p.Save(opts.Width, opts.Height, figLocation); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, errors.Wrap(err, "saving figure")
		}
		Log.WithField("file", figLocation).Warn("could not save figure: no such directory")
	}
	return p, layout, nil
}

// decimate returns the rows of t whose generation is a multiple of
// every. The generation column of the result is float64.
func decimate(t *table.Table, every int) (*table.Table, error) {
	gen, err := runlog.FloatColumn(t, "gen")
	if err != nil {
		return nil, err
	}
	t = table.NewBuilder(t).Add("gen", gen).Done()
	g := table.Filter(t, func(gen float64) bool {
		return math.Mod(gen, float64(every)) == 0
	}, "gen")
	if dt := g.Table(table.RootGroupID); dt != nil {
		return dt, nil
	}
	return new(table.Builder).Add("gen", []float64{}).Add("fitness", []float64{}).Done(), nil
}

func styleBox(b *plotter.BoxPlot, fill FillStyle) {
	if fill != FillThemed {
		return
	}
	dark := color.Gray{Y: 64}
	b.FillColor = color.White
	b.BoxStyle.Color = dark
	b.MedianStyle.Color = dark
	b.WhiskerStyle.Color = dark
	b.WhiskerStyle.Dashes = nil
	b.GlyphStyle.Color = dark
	b.GlyphStyle.Shape = draw.RingGlyph{}
}

// swarm returns a scatter of every fitness value, spread around its
// generation. gap is the distance between adjacent generations and
// span is the width of the x axis, in generations.
func swarm(gens []int64, fitness map[int64][]float64, gap, span float64, opts Options) (*plotter.Scatter, error) {
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, ys := range fitness {
		for _, y := range ys {
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}
	yRange := ymax - ymin
	if yRange == 0 {
		yRange = 1
	}

	// Convert the glyph diameter to data units on both axes.
	diam := float64(2 * swarmRadius)
	yTol := yRange * diam / float64(opts.Height*dataFrac)
	xStep := span * diam / float64(opts.Width*dataFrac)

	var xys plotter.XYs
	for _, gen := range gens {
		ys := fitness[gen]
		offs := swarmOffsets(ys, yTol, xStep, 0.45*gap)
		for i, y := range ys {
			xys = append(xys, plotter.XY{X: float64(gen) + offs[i], Y: y})
		}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "swarm")
	}
	s.GlyphStyle.Color = color.Gray{Y: 64}
	s.GlyphStyle.Radius = swarmRadius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

// minGap returns the smallest distance between adjacent values of
// the sorted gens, or 1 if there are fewer than two.
func minGap(gens []int64) float64 {
	gap := math.Inf(1)
	for i := 1; i < len(gens); i++ {
		gap = math.Min(gap, float64(gens[i]-gens[i-1]))
	}
	if math.IsInf(gap, 1) {
		return 1
	}
	return gap
}
