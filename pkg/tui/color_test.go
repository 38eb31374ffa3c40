// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"
	"strings"
	"testing"
)

func TestNewColorizer(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		noColor bool
		term    string
		want    bool
	}{
		{name: "enabled", enabled: true, term: "xterm-256color", want: true},
		{name: "disabled by caller", enabled: false, term: "xterm", want: false},
		{name: "NO_COLOR", enabled: true, noColor: true, term: "xterm", want: false},
		{name: "dumb terminal", enabled: true, term: "dumb", want: false},
		{name: "no TERM", enabled: true, term: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", tt.term)
			t.Setenv("NO_COLOR", "1")
			if !tt.noColor {
				os.Unsetenv("NO_COLOR")
			}
			c := NewColorizer(tt.enabled)
			if c.Enabled != tt.want {
				t.Fatalf("Enabled = %v, want %v", c.Enabled, tt.want)
			}
			got := c.Heading("USAGE:")
			if tt.want {
				if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "USAGE:") {
					t.Fatalf("Heading = %q, want escape codes around text", got)
				}
				return
			}
			if got != "USAGE:" {
				t.Fatalf("Heading = %q, want plain text", got)
			}
		})
	}
}

func TestZeroColorizer(t *testing.T) {
	var c Colorizer
	for _, got := range []string{c.Heading("a"), c.Error("a"), c.Dim("a")} {
		if got != "a" {
			t.Fatalf("got %q, want %q", got, "a")
		}
	}
}
