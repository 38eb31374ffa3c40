// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

const tomlSchema = `
name = "app"
version = "1.2.0"
strict = true

[[options]]
key = "verbose"
type = "boolean"
aliases = ["v"]

[[commands]]
pattern = "serve <name>"
description = "Start a server"

  [[commands.options]]
  key = "port"
  type = "number"
  default = 8080

  [[commands.options]]
  key = "timeout"
  type = "string"
  coerce = "duration"
`

const yamlSchema = `
name: tool
version: 1.0.0
options:
  - key: mode
    choices: [fast, safe]
    required: true
`

func writeSchema(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut, log.New(io.Discard))
	return out.String(), errOut.String(), err
}

func TestRunPrintsResult(t *testing.T) {
	path := writeSchema(t, "app.toml", tomlSchema)
	stdout, stderr, err := runCLI(t, "--schema", path, "--", "serve", "web", "-v", "--timeout", "90")
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	want := map[string]any{
		"$0":      "app",
		"_":       []any{"serve"},
		"name":    "web",
		"port":    float64(8080),
		"timeout": (90 * time.Second).String(),
		"verbose": true,
		"v":       true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRunValidationFailure(t *testing.T) {
	path := writeSchema(t, "tool.yaml", yamlSchema)
	_, stderr, err := runCLI(t, "-s", path, "--", "--mode", "turbo")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if !strings.Contains(stderr, "Invalid values:") {
		t.Errorf("stderr = %q, want the validation message", stderr)
	}

	_, stderr, err = runCLI(t, "-s", path)
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "Missing required argument: mode") {
		t.Errorf("err = %v, stderr = %q", err, stderr)
	}
}

func TestRunMinVersion(t *testing.T) {
	path := writeSchema(t, "tool.yaml", yamlSchema)
	_, _, err := runCLI(t, "-s", path, "--min-version", "2.0", "--", "--mode", "fast")
	if err == nil || !strings.Contains(err.Error(), "need at least 2.0.0") {
		t.Errorf("err = %v, want version error", err)
	}

	if _, _, err := runCLI(t, "-s", path, "--min-version", "0.9", "--", "--mode", "fast"); err != nil {
		t.Errorf("run: %v", err)
	}

	_, _, err = runCLI(t, "-s", path, "--min-version", "latest")
	if !errors.Is(err, errReported) {
		t.Errorf("err = %v, want a reported coerce failure", err)
	}
}

func TestRunCompletionScript(t *testing.T) {
	path := writeSchema(t, "app.toml", tomlSchema)
	stdout, _, err := runCLI(t, "-s", path, "--completion")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "complete -o bashdefault -o default -F _app_yargs_completions app") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunHelp(t *testing.T) {
	stdout, _, err := runCLI(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "--schema FILE") {
		t.Errorf("help = %q", stdout)
	}

	path := writeSchema(t, "app.toml", tomlSchema)
	stdout, _, err = runCLI(t, "-s", path, "--", "serve", "--help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Start a server") {
		t.Errorf("command help = %q", stdout)
	}
}

func TestDecodeSchema(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		data    string
		wantErr string
	}{
		{name: "json", path: "s.json", data: `{"name": "x", "options": [{"key": "a", "type": "count"}]}`},
		{name: "json unknown field", path: "s.json", data: `{"name": "x", "bogus": 1}`, wantErr: "unknown field"},
		{name: "missing name", path: "s.toml", data: "version = \"1.0.0\"\n", wantErr: "name is required"},
		{name: "hcl", path: "s.hcl", data: "name = \"x\"\n", wantErr: "unsupported format hcl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSchema(tt.path, []byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchemaParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		s       schema
		wantErr string
	}{
		{
			name:    "bad type",
			s:       schema{Name: "x", Options: []optionDef{{Key: "a", Type: "float"}}},
			wantErr: `unknown type "float"`,
		},
		{
			name:    "bad nested coerce",
			s:       schema{Name: "x", Commands: []commandDef{{Pattern: "run", Options: []optionDef{{Key: "p", Coerce: "port", PortRange: "9-1"}}}}},
			wantErr: `command "run": option p:`,
		},
		{
			name:    "bad pattern",
			s:       schema{Name: "x", Commands: []commandDef{{Pattern: "run <a..> <b>"}}},
			wantErr: "variadic placeholder must be last",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.s.parser(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestJSONSafe(t *testing.T) {
	in := map[string]any{
		"nan":  math.NaN(),
		"list": []any{math.Inf(1), 1.5},
		"dur":  2 * time.Second,
	}
	want := map[string]any{
		"nan":  "NaN",
		"list": []any{"+Inf", 1.5},
		"dur":  "2s",
	}
	if diff := cmp.Diff(want, jsonSafe(in)); diff != "" {
		t.Errorf("jsonSafe mismatch (-want +got):\n%s", diff)
	}
}
