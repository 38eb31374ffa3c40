// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ftdetect guesses the format of a config file.
package ftdetect

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type FileType int

const (
	Unknown FileType = iota
	JSON
	TOML
	YAML
	HCL
)

func (t FileType) String() string {
	switch t {
	case JSON:
		return "json"
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	case HCL:
		return "hcl"
	}
	return "unknown"
}

// Detect returns the format of the config file at path with content data.
// The extension decides when it is known; otherwise the content is sniffed.
func Detect(path string, data []byte) FileType {
	if ft, ok := detectByName(path); ok {
		return ft
	}
	return detectByContent(data)
}

func detectByName(path string) (FileType, bool) {
	if path == "" {
		return Unknown, false
	}
	base := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(base) {
	case ".json":
		return JSON, true
	case ".toml":
		return TOML, true
	case ".yml", ".yaml":
		return YAML, true
	case ".hcl", ".tf":
		return HCL, true
	}
	// Dotfiles such as .apprc carry no extension worth trusting.
	return Unknown, false
}

var (
	tomlTableRE = regexp.MustCompile(`(?m)^\s*\[\[?[A-Za-z0-9_.\-" ]+\]\]?\s*$`)
	hclBlockRE  = regexp.MustCompile(`(?m)^\s*[A-Za-z_][A-Za-z0-9_\-]*(\s+"[^"]*")*\s*\{\s*$`)
	assignRE    = regexp.MustCompile(`(?m)^\s*[A-Za-z_][A-Za-z0-9_\-.]*\s*=`)
)

func detectByContent(data []byte) FileType {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Unknown
	}
	if trimmed[0] == '{' && json.Valid(trimmed) {
		return JSON
	}
	switch {
	case tomlTableRE.Match(trimmed):
		return TOML
	case hclBlockRE.Match(trimmed):
		return HCL
	case assignRE.Match(trimmed):
		// key = value is both TOML and HCL; TOML is the common case.
		return TOML
	}
	var m map[string]any
	if err := yaml.Unmarshal(trimmed, &m); err == nil && len(m) > 0 {
		return YAML
	}
	return Unknown
}
