// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command evoplot plots the fitness of grammatical evolution runs
// over generations.
//
// evoplot reads every JSON run log in a directory, or a table
// snapshot written by an earlier invocation, and draws a box plot of
// fitness for each generation. Runs longer than 50 generations are
// decimated so that only every 5th generation gets a box.
//
//	evoplot -i runs/ -f fitness.png -s -o runs
//
// reads runs/*.json, writes the chart with a swarm overlay to
// fitness.png and the loaded table to runs.mpk.gz, which can be
// given back to -i.
//
// Plot options can also be read from a YAML file given with
// --config:
//
//	decimate_above: 100
//	decimate_every: 10
//	swarm_overlay: true
//	box_fill_style: plain
//	width: 720
//	height: 360
//	title: symbolic regression
package main

import (
	"fmt"
	"io"

	"github.com/aclements/go-gg/table"
	"github.com/gehash/evostat/internal/fitplot"
	"github.com/gehash/evostat/internal/runlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	runlog.Log = log
	fitplot.Log = log
}

type config struct {
	input       string
	figLocation string
	showPlot    bool
	showSwarm   bool
	outputFile  string
	code        bool
	table       bool
	configFile  string
	plain       bool
	noDecimate  bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var cfg config
	cmd := &cobra.Command{
		Use:   "evoplot -i <dir|snapshot" + runlog.SnapshotSuffix + "> [flags]",
		Short: "Plot fitness over generations of grammatical evolution runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.input, "input", "i", "", "read run logs from `dir`, or a snapshot ending in "+runlog.SnapshotSuffix)
	f.StringVar(&cfg.input, "input_folder", "", "same as --input")
	f.MarkHidden("input_folder")
	f.StringVarP(&cfg.figLocation, "fig_location", "f", "", "save the chart to `file`; the extension selects the format")
	f.BoolVarP(&cfg.showPlot, "show_plot", "d", false, "open the chart in a viewer")
	f.BoolVarP(&cfg.showSwarm, "show_swarm", "s", false, "overlay every record on the box plot")
	f.StringVarP(&cfg.outputFile, "output_file", "o", "", "write a snapshot of the loaded table to `path`"+runlog.SnapshotSuffix)
	f.BoolVarP(&cfg.code, "code", "c", false, "print the code of the best individual")
	f.BoolVarP(&cfg.table, "table", "t", false, "print per-generation fitness statistics instead of plotting")
	f.StringVar(&cfg.configFile, "config", "", "read plot options from YAML `file`")
	f.BoolVar(&cfg.plain, "plain", false, "use plain box styling")
	f.BoolVar(&cfg.noDecimate, "no_decimate", false, "give every generation a box, however many there are")
	f.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debugging output")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, cfg *config) error {
	if cfg.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.input == "" {
		return errors.Wrap(runlog.ErrNoInput, "--input is required")
	}

	opts, err := plotOptions(cfg)
	if err != nil {
		return err
	}

	tab, err := load(cfg.input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.table {
		sum, err := runlog.Summarize(tab)
		if err != nil {
			return err
		}
		table.Fprint(out, sum)
	} else {
		p, layout, err := fitplot.Render(tab, cfg.figLocation, opts)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"boxes":     len(layout.Categories),
			"decimated": layout.Decimated,
			"swarm":     layout.SwarmPoints,
		}).Debug("plotted")
		if cfg.showPlot {
			if err := show(p, opts); err != nil {
				log.WithError(err).Warn("could not display chart")
			}
		}
	}

	if cfg.code {
		if err := printBestCode(out, tab); err != nil {
			return err
		}
	}

	if cfg.outputFile != "" {
		path, err := runlog.StoreSnapshot(tab, cfg.outputFile)
		if err != nil {
			return errors.Wrap(err, "writing snapshot")
		}
		log.WithField("file", path).Info("wrote snapshot")
	}
	return nil
}

// plotOptions combines the configuration file with flags. Flags win.
func plotOptions(cfg *config) (fitplot.Options, error) {
	opts := fitplot.DefaultOptions()
	if cfg.configFile != "" {
		var err error
		opts, err = fitplot.LoadOptions(cfg.configFile)
		if err != nil {
			return opts, err
		}
	}
	if cfg.showSwarm {
		opts.Swarm = true
	}
	if cfg.plain {
		opts.BoxFill = fitplot.FillPlain
	}
	if cfg.noDecimate {
		opts.DecimateAbove = -1
	}
	return opts, opts.Validate()
}

func load(input string) (*table.Table, error) {
	if runlog.IsSnapshotPath(input) {
		tab, err := runlog.LoadSnapshot(input)
		if err != nil {
			return nil, errors.Wrap(err, "loading snapshot")
		}
		log.WithFields(logrus.Fields{"file": input, "rows": tab.Len()}).Info("loaded snapshot")
		return tab, nil
	}

	tab, rep, err := runlog.LoadDir(input)
	if err == runlog.ErrNoRecords {
		if ferr := rep.Err(); ferr != nil {
			return nil, fmt.Errorf("%s: %w: %v", input, err, ferr)
		}
		return nil, fmt.Errorf("%s: %w: no .json files", input, err)
	} else if err != nil {
		return nil, err
	}
	if failed := rep.Failed(); len(failed) > 0 {
		log.Warnf("%d of %d run logs could not be loaded", len(failed), len(rep.Files))
	}
	log.WithFields(logrus.Fields{"dir": input, "files": rep.Loaded(), "rows": rep.Rows()}).Info("loaded run logs")
	return tab, nil
}

func printBestCode(w io.Writer, tab *table.Table) error {
	codes, err := runlog.BestCode(tab)
	if err != nil {
		return errors.Wrap(err, "finding best individual")
	}
	if len(codes) == 0 {
		log.Warn("no best individual found: the lowest fitness is not a result record")
		return nil
	}
	for _, code := range codes {
		fmt.Fprintln(w, code)
	}
	return nil
}
