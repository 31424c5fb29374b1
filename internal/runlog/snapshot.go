// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/aclements/go-gg/table"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotSuffix is appended to the base path given to StoreSnapshot.
const SnapshotSuffix = ".mpk.gz"

const snapshotVersion = 1

type snapshot struct {
	Version int              `msgpack:"version"`
	Rows    int              `msgpack:"rows"`
	Columns []snapshotColumn `msgpack:"columns"`
}

// snapshotColumn holds one table column. Exactly one of the value
// slices is used, selected by Kind.
type snapshotColumn struct {
	Name    string    `msgpack:"name"`
	Kind    string    `msgpack:"kind"`
	Ints    []int64   `msgpack:"ints,omitempty"`
	Floats  []float64 `msgpack:"floats,omitempty"`
	Strings []string  `msgpack:"strings,omitempty"`
	Bools   []bool    `msgpack:"bools,omitempty"`
}

// StoreSnapshot writes t to path+SnapshotSuffix as gzip-compressed
// msgpack, replacing any existing file. It returns the path written.
//
// Columns must be []int64, []float64, []string, or []bool, which are
// the column types produced by LoadDir.
func StoreSnapshot(t *table.Table, path string) (string, error) {
	if path == "" {
		return "", ErrNoInput
	}
	path += SnapshotSuffix

	snap := snapshot{Version: snapshotVersion, Rows: t.Len()}
	for _, name := range t.Columns() {
		col := snapshotColumn{Name: name}
		switch seq := t.Column(name).(type) {
		case []int64:
			col.Kind, col.Ints = kindInt.String(), seq
		case []float64:
			col.Kind, col.Floats = kindFloat.String(), seq
		case []string:
			col.Kind, col.Strings = kindString.String(), seq
		case []bool:
			col.Kind, col.Bools = kindBool.String(), seq
		default:
			return "", fmt.Errorf("column %q has unsupported type %T", name, seq)
		}
		snap.Columns = append(snap.Columns, col)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	zw, err := gzip.NewWriterLevel(bw, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	if err := msgpack.NewEncoder(zw).Encode(&snap); err != nil {
		return "", errors.Wrap(err, "encoding snapshot")
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	if err := bw.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}

// LoadSnapshot reads a table written by StoreSnapshot.
func LoadSnapshot(path string) (*table.Table, error) {
	if path == "" {
		return nil, ErrNoInput
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	defer zr.Close()

	var snap snapshot
	if err := msgpack.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, errors.Wrapf(err, "decoding snapshot %s", path)
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Errorf("%s: unsupported snapshot version %d", path, snap.Version)
	}

	var b table.Builder
	for _, col := range snap.Columns {
		// omitempty drops zero-length slices, so rebuild them
		// with the right type.
		var seq interface{}
		var n int
		switch col.Kind {
		case kindInt.String():
			if col.Ints == nil {
				col.Ints = []int64{}
			}
			seq, n = col.Ints, len(col.Ints)
		case kindFloat.String():
			if col.Floats == nil {
				col.Floats = []float64{}
			}
			seq, n = col.Floats, len(col.Floats)
		case kindString.String():
			if col.Strings == nil {
				col.Strings = []string{}
			}
			seq, n = col.Strings, len(col.Strings)
		case kindBool.String():
			if col.Bools == nil {
				col.Bools = []bool{}
			}
			seq, n = col.Bools, len(col.Bools)
		default:
			return nil, errors.Errorf("%s: column %q has unknown kind %q", path, col.Name, col.Kind)
		}
		if n != snap.Rows {
			return nil, errors.Errorf("%s: column %q has %d rows, want %d", path, col.Name, n, snap.Rows)
		}
		b.Add(col.Name, seq)
	}
	return b.Done(), nil
}
