// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		numericShorts bool
		want          []token
	}{
		{
			name: "long with inline value",
			args: []string{"--port=8080", "--verbose"},
			want: []token{
				{kind: tokLong, name: "port", value: "8080", hasValue: true, raw: "--port=8080"},
				{kind: tokLong, name: "verbose", raw: "--verbose"},
			},
		},
		{
			name: "empty inline value",
			args: []string{"--name="},
			want: []token{
				{kind: tokLong, name: "name", hasValue: true, raw: "--name="},
			},
		},
		{
			name: "short cluster",
			args: []string{"-abc", "-n=3"},
			want: []token{
				{kind: tokShort, name: "abc", raw: "-abc"},
				{kind: tokShort, name: "n", value: "3", hasValue: true, raw: "-n=3"},
			},
		},
		{
			name: "negative number is positional",
			args: []string{"-5", "-1.5e3"},
			want: []token{
				{kind: tokPositional, value: "-5", raw: "-5"},
				{kind: tokPositional, value: "-1.5e3", raw: "-1.5e3"},
			},
		},
		{
			name:          "negative number with numeric shorts",
			args:          []string{"-5"},
			numericShorts: true,
			want: []token{
				{kind: tokShort, name: "5", raw: "-5"},
			},
		},
		{
			name: "separator",
			args: []string{"a", "--", "--not-a-flag", "-x"},
			want: []token{
				{kind: tokPositional, value: "a", raw: "a"},
				{kind: tokSeparator, raw: "--"},
				{kind: tokPositional, value: "--not-a-flag", raw: "--not-a-flag", literal: true},
				{kind: tokPositional, value: "-x", raw: "-x", literal: true},
			},
		},
		{
			name: "lone dash",
			args: []string{"-"},
			want: []token{
				{kind: tokPositional, value: "-", raw: "-"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex(tt.args, tt.numericShorts)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(token{})); diff != "" {
				t.Errorf("lex(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}
