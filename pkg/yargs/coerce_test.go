// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCoerceImplicit(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", float64(42)},
		{"-1.5", -1.5},
		{"1e3", float64(1000)},
		{"0x1F", float64(31)},
		{"007", "007"},
		{"1234567890123456", "1234567890123456"},
		{"123456789012345", float64(123456789012345)},
		{"TRUE", "TRUE"},
		{"web", "web"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := coerceImplicit(tt.in); !cmp.Equal(got, tt.want) {
			t.Errorf("coerceImplicit(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"8080", 8080},
		{" 1.5 ", 1.5},
		{"-0x10", -16},
		{"0x10000000000000000", 1 << 64},
		{"-0x" + strings.Repeat("f", 300), math.Inf(-1)},
		{"1e400", math.Inf(1)},
		{".5", 0.5},
		{"abc", math.NaN()},
		{"1.2.3", math.NaN()},
		{"", math.NaN()},
	}
	for _, tt := range tests {
		if got := parseNumber(tt.in); !cmp.Equal(got, tt.want, cmpopts.EquateNaNs()) {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceTokens(t *testing.T) {
	reg := newRegistry(true)
	for _, spec := range []OptionSpec{
		{Key: "port", Type: TypeNumber, Aliases: []string{"p"}},
		{Key: "verbose", Type: TypeCount, Aliases: []string{"v"}},
		{Key: "tag", Type: TypeArray},
		{Key: "ids", Type: TypeArray, Elem: TypeNumber},
		{Key: "color", Type: TypeBoolean},
		{Key: "name", Type: TypeString},
		{Key: "point", Arity: 2, Type: TypeNumber},
		{Key: "dry-run", Type: TypeBoolean},
	} {
		if err := reg.register(spec); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name           string
		args           []string
		wantValues     map[string]any
		wantPositional []string
		wantUnknown    []string
	}{
		{
			name:       "scalar last wins",
			args:       []string{"--port=1", "--port", "2"},
			wantValues: map[string]any{"port": float64(2)},
		},
		{
			name:       "array accumulates strings",
			args:       []string{"--tag=1", "--tag=2"},
			wantValues: map[string]any{"tag": []any{"1", "2"}},
		},
		{
			name:           "array consumes following positionals",
			args:           []string{"--tag", "a", "b", "--color", "x"},
			wantValues:     map[string]any{"tag": []any{"a", "b"}, "color": true},
			wantPositional: []string{"x"},
		},
		{
			name:       "numeric array elements",
			args:       []string{"--ids", "1", "2"},
			wantValues: map[string]any{"ids": []any{float64(1), float64(2)}},
		},
		{
			name:       "number parse failure is NaN",
			args:       []string{"--port", "abc"},
			wantValues: map[string]any{"port": math.NaN()},
		},
		{
			name:       "number without value is NaN",
			args:       []string{"--port"},
			wantValues: map[string]any{"port": math.NaN()},
		},
		{
			name:       "count cluster",
			args:       []string{"-vvv"},
			wantValues: map[string]any{"verbose": 3},
		},
		{
			name:       "short with attached value",
			args:       []string{"-p8080"},
			wantValues: map[string]any{"port": float64(8080)},
		},
		{
			name:       "negative number value",
			args:       []string{"-p", "-5"},
			wantValues: map[string]any{"port": float64(-5)},
		},
		{
			name:           "boolean consumes only literals",
			args:           []string{"--color", "false", "--color", "web"},
			wantValues:     map[string]any{"color": true},
			wantPositional: []string{"web"},
		},
		{
			name:       "boolean negation",
			args:       []string{"--no-color"},
			wantValues: map[string]any{"color": false},
		},
		{
			name:        "unknown negation",
			args:        []string{"--no-cache"},
			wantValues:  map[string]any{"cache": false},
			wantUnknown: []string{"cache"},
		},
		{
			name:       "string without value is empty",
			args:       []string{"--name"},
			wantValues: map[string]any{"name": ""},
		},
		{
			name:       "arity",
			args:       []string{"--point", "1", "2", "3"},
			wantValues: map[string]any{"point": []any{float64(1), float64(2)}},
			// The third value is left over.
			wantPositional: []string{"3"},
		},
		{
			name:        "unknown flag takes a value",
			args:        []string{"--bogus", "x", "--flag"},
			wantValues:  map[string]any{"bogus": "x", "flag": true},
			wantUnknown: []string{"bogus", "flag"},
		},
		{
			name:        "unknown spellings share a key",
			args:        []string{"--foo-bar", "1", "--fooBar", "2", "--no-foo-bar"},
			wantValues:  map[string]any{"foo-bar": false},
			wantUnknown: []string{"foo-bar"},
		},
		{
			name:       "camel-case name resolves",
			args:       []string{"--dryRun"},
			wantValues: map[string]any{"dry-run": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := coerceTokens(lex(tt.args, false), reg, DefaultParserConfig())
			if diff := cmp.Diff(tt.wantValues, a.values, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantPositional, a.positional, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("positional mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantUnknown, a.unknown, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("unknown mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceTokensArity(t *testing.T) {
	reg := newRegistry(true)
	if err := reg.register(OptionSpec{Key: "point", Arity: 2}); err != nil {
		t.Fatal(err)
	}
	a := coerceTokens(lex([]string{"--point", "1"}, false), reg, DefaultParserConfig())
	if len(a.errs) != 1 || a.errs[0].Kind != KindArityMismatch {
		t.Fatalf("errs = %v, want one arity mismatch", a.errs)
	}
	if got, want := a.errs[0].Msg, "Not enough arguments following: point"; got != want {
		t.Errorf("Msg = %q, want %q", got, want)
	}
}

func TestCoerceTokensUnknownAsArgs(t *testing.T) {
	reg := newRegistry(true)
	if err := reg.register(OptionSpec{Key: "v", Type: TypeBoolean}); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultParserConfig()
	cfg.UnknownOptionsAsArgs = true
	a := coerceTokens(lex([]string{"-v", "--other=1", "-x", "run"}, false), reg, cfg)
	if diff := cmp.Diff([]string{"--other=1", "-x", "run"}, a.positional); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"v": true}, a.values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceRaw(t *testing.T) {
	tests := []struct {
		spec *OptionSpec
		raw  string
		want any
	}{
		{nil, "8080", float64(8080)},
		{nil, "web", "web"},
		{&OptionSpec{Type: TypeString}, "8080", "8080"},
		{&OptionSpec{Type: TypeBoolean}, "no", false},
		{&OptionSpec{Type: TypeArray}, "a, b,,c", []any{"a", "b", "c"}},
		{&OptionSpec{Type: TypeArray, Elem: TypeNumber}, "1,2", []any{float64(1), float64(2)}},
		{&OptionSpec{Type: TypeCount}, "3", 3},
	}
	for _, tt := range tests {
		if got := coerceRaw(tt.spec, tt.raw); !cmp.Equal(got, tt.want) {
			t.Errorf("coerceRaw(%+v, %q) = %#v, want %#v", tt.spec, tt.raw, got, tt.want)
		}
	}
}
