// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runJSON returns a run log with one progress record for each
// generation in [from, to) and a final result record for generation
// to-1. fitness gives the fitness of each generation.
func runJSON(from, to int, fitness func(gen int) float64, code string) string {
	var recs []string
	for gen := from; gen < to; gen++ {
		recs = append(recs, fmt.Sprintf(`{"status": "progress", "gen": %d, "fitness": %v}`, gen, fitness(gen)))
	}
	last := to - 1
	recs = append(recs, fmt.Sprintf(`{"status": "result", "gen": %d, "fitness": %v, "phenotype": {"code": %q}}`, last, fitness(last), code))
	return "[" + strings.Join(recs, ",\n") + "]"
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	fit := func(gen int) float64 { return 100 - float64(gen) + 0.5 }
	dir := writeFiles(t, map[string]string{
		"a.json":    runJSON(0, 10, fit, "a"),
		"b.json":    runJSON(10, 20, fit, "b"),
		"notes.txt": "not a run log",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	tab, rep, err := LoadDir(dir)
	require.NoError(t, err)
	assert.NoError(t, rep.Err())
	assert.Equal(t, 2, rep.Loaded())
	assert.Equal(t, 22, rep.Rows())

	// Each file holds 10 progress records and one result.
	require.Equal(t, 22, tab.Len())
	assert.Equal(t, []string{"status", "gen", "fitness", "phenotype"}, tab.Columns())

	wantGens := []int64{}
	for _, r := range [][2]int{{0, 10}, {10, 20}} {
		for gen := r[0]; gen < r[1]; gen++ {
			wantGens = append(wantGens, int64(gen))
		}
		wantGens = append(wantGens, int64(r[1]-1))
	}
	if diff := cmp.Diff(wantGens, tab.Column("gen")); diff != "" {
		t.Errorf("gen column mismatch (-want +got):\n%s", diff)
	}

	fitness := tab.MustColumn("fitness").([]float64)
	for i, gen := range wantGens {
		if want := fit(int(gen)); fitness[i] != want {
			t.Errorf("row %d: fitness %v, want %v", i, fitness[i], want)
		}
	}

	ph := tab.MustColumn("phenotype").([]string)
	assert.Equal(t, "null", ph[0])
	assert.JSONEq(t, `{"code": "a"}`, ph[10])
	assert.JSONEq(t, `{"code": "b"}`, ph[21])
}

func TestLoadDirBestEffort(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.json":  `[{"gen": 0, "fitness": `,
		"good.json": `[{"gen": 0, "fitness": 1}, {"gen": 1, "fitness": 2}]`,
		"num.json":  `[1, 2, 3]`,
	})

	tab, rep, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, 1, rep.Loaded())

	failed := rep.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, filepath.Join(dir, "bad.json"), failed[0].Path)
	assert.Equal(t, filepath.Join(dir, "num.json"), failed[1].Path)
	require.Error(t, rep.Err())
	assert.Contains(t, rep.Err().Error(), "bad.json")
	assert.Contains(t, rep.Err().Error(), "num.json")
}

func TestLoadDirNoRecords(t *testing.T) {
	for name, files := range map[string]map[string]string{
		"empty":    {},
		"only bad": {"bad.json": "{"},
		"no json":  {"a.txt": "[]"},
	} {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, files)
			_, rep, err := LoadDir(dir)
			assert.Equal(t, ErrNoRecords, err)
			require.NotNil(t, rep)
			assert.Zero(t, rep.Loaded())
		})
	}
}

func TestLoadDirErrors(t *testing.T) {
	_, _, err := LoadDir("")
	assert.Equal(t, ErrNoInput, err)

	_, _, err = LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadDirUnionSchema(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"1.json": `[{"gen": 0, "fitness": 3}]`,
		"2.json": `{"gen": 1, "fitness": 2.5, "status": "result", "phenotype": {"code": "x"}}`,
	})
	tab, _, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"gen", "fitness", "status", "phenotype"}, tab.Columns())
	assert.Equal(t, []int64{0, 1}, tab.Column("gen"))
	assert.Equal(t, []float64{3, 2.5}, tab.Column("fitness"))
	assert.Equal(t, []string{"", "result"}, tab.Column("status"))
	ph := tab.MustColumn("phenotype").([]string)
	assert.Equal(t, "null", ph[0])
	assert.JSONEq(t, `{"code": "x"}`, ph[1])
}

func TestParseRecords(t *testing.T) {
	for _, test := range []struct {
		input   string
		rows    int
		wantErr string
	}{
		{`[]`, 0, ""},
		{`  [{"a": 1}, {"b": 2}]  `, 2, ""},
		{`{"a": 1}`, 1, ""},
		{``, 0, "malformed"},
		{`[{"a": 1},]`, 0, "malformed"},
		{`"run"`, 0, "neither"},
		{`[{"a": 1}, "x"]`, 0, "record 1"},
	} {
		recs, err := parseRecords([]byte(test.input))
		if test.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("parseRecords(%q): want error containing %q; got %v", test.input, test.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRecords(%q): %v", test.input, err)
		} else if len(recs) != test.rows {
			t.Errorf("parseRecords(%q): want %d records; got %d", test.input, test.rows, len(recs))
		}
	}
}

func TestColumnKinds(t *testing.T) {
	recs, err := parseRecords([]byte(`[
		{"i": 1, "f": 1, "b": true, "s": "x", "m": "x", "n": null},
		{"i": 2, "f": 1.5, "s": "y\"z", "m": 2, "n": null},
		{"i": 3, "f": null, "b": false, "m": [1], "n": null}
	]`))
	require.NoError(t, err)
	tab, err := buildTable([][]record{recs})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, tab.Column("i"))

	f := tab.MustColumn("f").([]float64)
	require.Len(t, f, 3)
	assert.Equal(t, []float64{1, 1.5}, f[:2])
	assert.True(t, math.IsNaN(f[2]))

	// A bool column with a missing value falls back to raw JSON.
	assert.Equal(t, []string{"true", "null", "false"}, tab.Column("b"))
	assert.Equal(t, []string{"x", `y"z`, ""}, tab.Column("s"))
	assert.Equal(t, []string{`"x"`, "2", "[1]"}, tab.Column("m"))
	assert.Equal(t, []string{"null", "null", "null"}, tab.Column("n"))
}

func TestUnify(t *testing.T) {
	for _, test := range []struct {
		a, b, want colKind
	}{
		{kindInt, kindInt, kindInt},
		{kindNone, kindFloat, kindFloat},
		{kindString, kindNone, kindString},
		{kindInt, kindFloat, kindFloat},
		{kindFloat, kindInt, kindFloat},
		{kindInt, kindString, kindRaw},
		{kindBool, kindFloat, kindRaw},
		{kindRaw, kindString, kindRaw},
	} {
		if got := unify(test.a, test.b); got != test.want {
			t.Errorf("unify(%v, %v) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func TestIsSnapshotPath(t *testing.T) {
	assert.True(t, IsSnapshotPath("runs"+SnapshotSuffix))
	assert.False(t, IsSnapshotPath("runs/"))
	assert.False(t, IsSnapshotPath("runs.json"))
}
