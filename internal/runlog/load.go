// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runlog loads grammatical evolution run logs into a single
// table and derives results from it.
//
// A run log is a JSON file holding an array of records, one per
// logged generation:
//
//	[{"status": "progress", "gen": 0, "fitness": 12.5},
//	 ...
//	 {"status": "result", "gen": 99, "fitness": 0.5,
//	  "phenotype": {"code": "x = x + 1;"}}]
//
// All run logs in a directory are concatenated into one
// github.com/aclements/go-gg/table.Table, with one column per record
// field. Nested objects such as "phenotype" are stored as their raw
// JSON text.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoInput is returned when no input path was given.
	ErrNoInput = errors.New("no input path given")

	// ErrNoRecords is returned by LoadDir when no run log in the
	// directory could be loaded.
	ErrNoRecords = errors.New("no run log could be loaded")
)

// Log receives per-file diagnostics.
var Log logrus.FieldLogger = logrus.StandardLogger()

// FileOutcome is the result of loading one run log.
type FileOutcome struct {
	Path string
	Rows int
	Err  error
}

func (o FileOutcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Path, o.Err)
	}
	return fmt.Sprintf("%s: %d rows", o.Path, o.Rows)
}

// LoadReport summarizes a LoadDir call.
type LoadReport struct {
	Dir   string
	Files []FileOutcome
}

// Loaded returns the number of files that loaded successfully.
func (r *LoadReport) Loaded() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the outcomes of the files that failed to load.
func (r *LoadReport) Failed() []FileOutcome {
	var out []FileOutcome
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Rows returns the total number of rows loaded.
func (r *LoadReport) Rows() int {
	n := 0
	for _, f := range r.Files {
		n += f.Rows
	}
	return n
}

// Err returns all per-file errors combined, or nil if every file
// loaded.
func (r *LoadReport) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failed() {
		merr = multierror.Append(merr, errors.Wrap(f.Err, f.Path))
	}
	return merr.ErrorOrNil()
}

// LoadDir loads every ".json" file in dir and concatenates them into
// one table, in directory listing order.
//
// Files that cannot be read or parsed are logged, recorded in the
// report, and skipped. If no file can be loaded, LoadDir returns
// ErrNoRecords along with the report.
func LoadDir(dir string) (*table.Table, *LoadReport, error) {
	if dir == "" {
		return nil, nil, ErrNoInput
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing run logs")
	}

	rep := &LoadReport{Dir: dir}
	var sets [][]record
	for _, ent := range ents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		recs, err := readFile(path)
		if err != nil {
			Log.WithField("file", path).WithError(err).Warn("skipping run log")
			rep.Files = append(rep.Files, FileOutcome{Path: path, Err: err})
			continue
		}
		Log.WithFields(logrus.Fields{"file": path, "rows": len(recs)}).Debug("loaded run log")
		rep.Files = append(rep.Files, FileOutcome{Path: path, Rows: len(recs)})
		sets = append(sets, recs)
	}
	if len(sets) == 0 {
		return nil, rep, ErrNoRecords
	}

	t, err := buildTable(sets)
	if err != nil {
		return nil, rep, err
	}
	return t, rep, nil
}

func readFile(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRecords(data)
}

// buildTable types each record set against the union schema of all
// sets and concatenates the results.
func buildTable(sets [][]record) (*table.Table, error) {
	schema := inferSchema(sets)
	if len(schema) == 0 {
		// Only empty run logs.
		return new(table.Table), nil
	}

	parts := make([]table.Grouping, 0, len(sets))
	for _, recs := range sets {
		var b table.Builder
		for _, col := range schema {
			seq, err := col.column(recs)
			if err != nil {
				return nil, err
			}
			b.Add(col.name, seq)
		}
		parts = append(parts, b.Done())
	}
	return rootTable(table.Concat(parts...)), nil
}

// rootTable returns the ungrouped table of g.
func rootTable(g table.Grouping) *table.Table {
	if t := g.Table(table.RootGroupID); t != nil {
		return t
	}
	return new(table.Table)
}

// IsSnapshotPath reports whether path names a table snapshot rather
// than a directory of run logs.
func IsSnapshotPath(path string) bool {
	return strings.HasSuffix(path, SnapshotSuffix)
}
