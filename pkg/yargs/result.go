// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"maps"
	"math"
	"slices"
	"strings"
)

// Source identifies where a value came from.
type Source int

const (
	SourceNone Source = iota
	SourceDefault
	SourceEnv
	SourceConfig
	SourceCLI
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceEnv:
		return "env"
	case SourceConfig:
		return "config"
	case SourceCLI:
		return "cli"
	}
	return "none"
}

// Result is the outcome of a successful parse. Every value is reachable
// by its canonical key and by each of its aliases.
type Result struct {
	// Positional holds the "_" values, including the command words.
	Positional []any
	// Script is the "$0" value.
	Script string
	// Rest holds the raw tokens after "--". They are also appended to
	// Positional.
	Rest []string
	// Command is the resolved command path, empty at the root.
	Command []string

	values  map[string]any
	sources map[string]Source
	aliases map[string][]string
	handler Handler
}

func newResult(script string) *Result {
	return &Result{
		Script:  script,
		values:  make(map[string]any),
		sources: make(map[string]Source),
		aliases: make(map[string][]string),
	}
}

// Get returns the value for key or any of its aliases.
func (r *Result) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key has a value.
func (r *Result) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Source reports where the value for key came from.
func (r *Result) Source(key string) Source {
	return r.sources[key]
}

// String returns the value for key rendered as a string, or "".
func (r *Result) String(key string) string {
	v, ok := r.values[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Bool returns the value for key as a bool. Missing keys are false.
func (r *Result) Bool(key string) bool {
	switch v := r.values[key].(type) {
	case bool:
		return v
	case string:
		return parseBoolValue(v)
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	}
	return false
}

// Float returns the value for key as a float64. Missing or non-numeric
// values are NaN.
func (r *Result) Float(key string) float64 {
	switch v := r.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		return parseNumber(v)
	}
	return math.NaN()
}

// Int returns the value for key truncated to an int; NaN and missing
// values are 0.
func (r *Result) Int(key string) int {
	f := r.Float(key)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// Strings returns the value for key as a string slice. Scalars become a
// one-element slice.
func (r *Result) Strings(key string) []string {
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	if vs, ok := v.([]any); ok {
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			out = append(out, stringify(e))
		}
		return out
	}
	return []string{stringify(v)}
}

// Aliases returns canonical key -> aliases for the scope the parse ended in.
func (r *Result) Aliases() map[string][]string {
	return maps.Clone(r.aliases)
}

// Keys returns every key in the result, sorted.
func (r *Result) Keys() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// Map returns the flat result object: every key and alias, plus "_", "$0",
// and "--" when tokens followed a separator.
func (r *Result) Map() map[string]any {
	m := maps.Clone(r.values)
	if m == nil {
		m = make(map[string]any)
	}
	m["_"] = slices.Clone(r.Positional)
	m["$0"] = r.Script
	if len(r.Rest) > 0 {
		m["--"] = slices.Clone(r.Rest)
	}
	return m
}

// Nested returns Map with dotted keys expanded into nested maps, so
// "foo.bar" becomes {"foo": {"bar": ...}}. A dotted key whose prefix is
// already a scalar is kept flat.
func (r *Result) Nested() map[string]any {
	flat := r.Map()
	out := make(map[string]any)
	for _, k := range slices.Sorted(maps.Keys(flat)) {
		v := flat[k]
		if k == "$0" || !strings.Contains(k, ".") {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
			continue
		}
		parts := strings.Split(k, ".")
		cur := out
		ok := true
		for _, p := range parts[:len(parts)-1] {
			next, exists := cur[p]
			if !exists {
				m := make(map[string]any)
				cur[p] = m
				cur = m
				continue
			}
			m, isMap := next.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			cur = m
		}
		if ok {
			cur[parts[len(parts)-1]] = v
		} else {
			out[k] = v
		}
	}
	return out
}

// set stores v under key and every alias.
func (r *Result) set(key string, names []string, v any, src Source) {
	for _, n := range names {
		r.values[n] = v
		r.sources[n] = src
	}
	if _, ok := r.values[key]; !ok {
		r.values[key] = v
		r.sources[key] = src
	}
}
