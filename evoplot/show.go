// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/gehash/evostat/internal/fitplot"
	"gonum.org/v1/plot"
)

// show writes p to a temporary SVG and opens it with the platform's
// default viewer. It does not wait for the viewer to exit.
func show(p *plot.Plot, opts fitplot.Options) error {
	wt, err := p.WriterTo(opts.Width, opts.Height, "svg")
	if err != nil {
		return err
	}
	f, err := os.CreateTemp("", "evoplot-*.svg")
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithField("file", f.Name()).Debug("displaying chart")
	return viewer(f.Name()).Start()
}

func viewer(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	}
	return exec.Command("xdg-open", path)
}
