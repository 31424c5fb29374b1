// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fitplot

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"
)

// A FillStyle selects how boxes are drawn.
type FillStyle string

const (
	// FillThemed draws unfilled boxes with a light grid, like a
	// "white" paper theme.
	FillThemed FillStyle = "themed"

	// FillPlain uses the plotting library's default styling.
	FillPlain FillStyle = "plain"
)

// Options configures a fitness distribution plot.
type Options struct {
	// DecimateAbove is the largest generation plotted without
	// decimation. If the table holds a later generation, only
	// every DecimateEvery'th generation gets a box. A negative
	// value disables decimation.
	DecimateAbove int `yaml:"decimate_above"`

	// DecimateEvery is the decimation stride. It applies both to
	// generations and to x axis labels.
	DecimateEvery int `yaml:"decimate_every"`

	// Swarm overlays every individual record as a point. The
	// swarm is never decimated.
	Swarm bool `yaml:"swarm_overlay"`

	BoxFill FillStyle `yaml:"box_fill_style"`

	// Width and Height are the figure size.
	Width  vg.Length `yaml:"width"`
	Height vg.Length `yaml:"height"`

	Title string `yaml:"title"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DecimateAbove: 50,
		DecimateEvery: 5,
		BoxFill:       FillThemed,
		Width:         7 * vg.Inch,
		Height:        5 * vg.Inch,
	}
}

// Validate reports whether o is usable.
func (o Options) Validate() error {
	if o.DecimateEvery < 1 {
		return errors.Errorf("decimate_every must be at least 1; got %d", o.DecimateEvery)
	}
	switch o.BoxFill {
	case FillThemed, FillPlain:
	default:
		return errors.Errorf("unknown box_fill_style %q", o.BoxFill)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errors.Errorf("figure size must be positive; got %v x %v", o.Width, o.Height)
	}
	return nil
}

// decimates reports whether a table whose latest generation is maxGen
// is decimated.
func (o Options) decimates(maxGen int64) bool {
	return o.DecimateAbove >= 0 && maxGen > int64(o.DecimateAbove)
}

// LoadOptions reads options from a YAML file. Fields the file does
// not set keep their default values. Width and height are in points.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	f, err := os.Open(path)
	if err != nil {
		return opts, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return opts, errors.Wrapf(err, "parsing %s", path)
	}
	return opts, opts.Validate()
}
