// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// A value is one field of one run record, as it appeared in the
// JSON source.
type value struct {
	typ jsonparser.ValueType
	raw []byte
}

// A record is one run record. Keys are kept in source order.
type record struct {
	keys []string
	vals map[string]value
}

// parseRecords parses a JSON document holding either an array of run
// records or a single run record.
func parseRecords(data []byte) ([]record, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, errors.New("malformed JSON")
	}
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}

	switch data[0] {
	case '{':
		r, err := parseRecord(data)
		if err != nil {
			return nil, err
		}
		return []record{r}, nil

	case '[':
		recs := []record{}
		var perr error
		_, err := jsonparser.ArrayEach(data, func(elem []byte, typ jsonparser.ValueType, _ int, err error) {
			if perr != nil {
				return
			}
			if err != nil {
				perr = err
				return
			}
			if typ != jsonparser.Object {
				perr = errors.Errorf("record %d is a JSON %s, not an object", len(recs), typ)
				return
			}
			r, err := parseRecord(elem)
			if err != nil {
				perr = errors.Wrapf(err, "record %d", len(recs))
				return
			}
			recs = append(recs, r)
		})
		if err == nil {
			err = perr
		}
		if err != nil {
			return nil, err
		}
		return recs, nil
	}
	return nil, errors.New("document is neither an array of records nor a record")
}

func parseRecord(obj []byte) (record, error) {
	r := record{vals: make(map[string]value)}
	err := jsonparser.ObjectEach(obj, func(key, val []byte, typ jsonparser.ValueType, _ int) error {
		k := string(key)
		if _, ok := r.vals[k]; !ok {
			r.keys = append(r.keys, k)
		}
		r.vals[k] = value{typ, val}
		return nil
	})
	return r, err
}

// A colKind is the Go type chosen for a table column.
type colKind uint8

const (
	kindNone   colKind = iota // only nulls seen so far
	kindInt                   // []int64
	kindFloat                 // []float64
	kindString                // []string
	kindBool                  // []bool
	kindRaw                   // []string of raw JSON
)

var kindNames = [...]string{"none", "int", "float", "string", "bool", "raw"}

func (k colKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// kindOf returns the narrowest column kind that can hold v.
func kindOf(v value) colKind {
	switch v.typ {
	case jsonparser.Null, jsonparser.NotExist:
		return kindNone
	case jsonparser.Number:
		if _, err := jsonparser.ParseInt(v.raw); err == nil {
			return kindInt
		}
		return kindFloat
	case jsonparser.String:
		return kindString
	case jsonparser.Boolean:
		return kindBool
	}
	return kindRaw
}

// unify returns the kind of a column holding values of both kinds a
// and b.
func unify(a, b colKind) colKind {
	switch {
	case a == b:
		return a
	case a == kindNone:
		return b
	case b == kindNone:
		return a
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	}
	return kindRaw
}

// A colSchema is the inferred type of one column over every record
// that will be loaded into the combined table.
type colSchema struct {
	name    string
	kind    colKind
	missing bool // some record lacks the column or holds null
}

// finalKind returns the kind used to store the column, taking missing
// values into account.
func (c colSchema) finalKind() colKind {
	switch c.kind {
	case kindNone:
		return kindRaw
	case kindInt:
		if c.missing {
			return kindFloat
		}
	case kindBool:
		if c.missing {
			return kindRaw
		}
	}
	return c.kind
}

// inferSchema computes the union schema of the given record sets.
// Columns are ordered by first appearance.
func inferSchema(sets [][]record) []colSchema {
	var cols []colSchema
	index := make(map[string]int)
	nrecs := 0
	for _, recs := range sets {
		for _, r := range recs {
			for _, k := range r.keys {
				v := r.vals[k]
				i, ok := index[k]
				if !ok {
					i = len(cols)
					index[k] = i
					// Records before this one lack the column.
					cols = append(cols, colSchema{name: k, missing: nrecs > 0})
				}
				kind := kindOf(v)
				if kind == kindNone {
					cols[i].missing = true
				}
				cols[i].kind = unify(cols[i].kind, kind)
			}
			for i := range cols {
				if _, ok := r.vals[cols[i].name]; !ok {
					cols[i].missing = true
				}
			}
			nrecs++
		}
	}
	return cols
}

// column converts field col of every record in recs to a slice of
// the column's final kind.
func (c colSchema) column(recs []record) (interface{}, error) {
	switch c.finalKind() {
	case kindInt:
		out := make([]int64, len(recs))
		for i, r := range recs {
			x, err := jsonparser.ParseInt(r.vals[c.name].raw)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q row %d", c.name, i)
			}
			out[i] = x
		}
		return out, nil

	case kindFloat:
		out := make([]float64, len(recs))
		for i, r := range recs {
			v, ok := r.vals[c.name]
			if !ok || kindOf(v) == kindNone {
				out[i] = math.NaN()
				continue
			}
			x, err := jsonparser.ParseFloat(v.raw)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q row %d", c.name, i)
			}
			out[i] = x
		}
		return out, nil

	case kindString:
		out := make([]string, len(recs))
		for i, r := range recs {
			v, ok := r.vals[c.name]
			if !ok || kindOf(v) == kindNone {
				continue
			}
			s, err := jsonparser.ParseString(v.raw)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q row %d", c.name, i)
			}
			out[i] = s
		}
		return out, nil

	case kindBool:
		out := make([]bool, len(recs))
		for i, r := range recs {
			b, err := jsonparser.ParseBoolean(r.vals[c.name].raw)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q row %d", c.name, i)
			}
			out[i] = b
		}
		return out, nil
	}

	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = rawJSON(r.vals[c.name])
	}
	return out, nil
}

// rawJSON returns the JSON text of v. Strings are returned quoted,
// since jsonparser strips the quotes from string values.
func rawJSON(v value) string {
	switch v.typ {
	case jsonparser.NotExist, jsonparser.Null:
		return "null"
	case jsonparser.String:
		return `"` + string(v.raw) + `"`
	}
	return string(v.raw)
}
