// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package configfile loads JSON, TOML, YAML and HCL config files into plain
// Go maps.
//
// Numbers are normalized to float64 and nested tables to map[string]any so
// that every format produces the same shapes as encoding/json.
package configfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/containerd/errdefs"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"

	"github.com/yeetrun/yargs/pkg/ftdetect"
)

// Load reads the file at path with readFile (os.ReadFile when nil) and
// parses it according to its detected format. A missing file wraps
// errdefs.ErrNotFound; a malformed one wraps errdefs.ErrInvalidArgument.
func Load(path string, readFile func(string) ([]byte, error)) (map[string]any, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", errdefs.ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes data using the format detected from path and content.
func Parse(path string, data []byte) (map[string]any, error) {
	var (
		m   map[string]any
		err error
	)
	switch ft := ftdetect.Detect(path, data); ft {
	case ftdetect.JSON:
		m, err = ParseJSON(data)
	case ftdetect.TOML:
		m, err = ParseTOML(data)
	case ftdetect.YAML:
		m, err = ParseYAML(data)
	case ftdetect.HCL:
		m, err = ParseHCL(path, data)
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: unrecognized config format in %s", errdefs.ErrInvalidArgument, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", errdefs.ErrInvalidArgument, path, err)
	}
	return m, nil
}

// ParseJSON decodes a JSON object.
func ParseJSON(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// ParseTOML decodes a TOML document.
func ParseTOML(data []byte) (map[string]any, error) {
	m := map[string]any{}
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, err
	}
	return normalizeMap(m), nil
}

// ParseYAML decodes a YAML mapping.
func ParseYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return normalizeMap(m), nil
}

// ParseHCL decodes an HCL file. Attributes become keys; a block becomes a
// nested map under its type and then under each of its labels.
// Expressions are evaluated without variables or functions.
func ParseHCL(filename string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}
	return hclBody(body)
}

func hclBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any)
	for _, name := range slices.Sorted(maps.Keys(body.Attributes)) {
		attr := body.Attributes[name]
		v, err := hclValue(attr.Expr)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	for _, block := range body.Blocks {
		inner, err := hclBody(block.Body)
		if err != nil {
			return nil, err
		}
		dst := out
		for _, key := range append([]string{block.Type}, block.Labels...) {
			next, ok := dst[key].(map[string]any)
			if !ok {
				next = make(map[string]any)
				dst[key] = next
			}
			dst = next
		}
		maps.Copy(dst, inner)
	}
	return out, nil
}

func hclValue(expr hcl.Expression) (any, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	bs, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Flatten turns nested maps into dotted keys: {"a": {"b": 1}} becomes
// {"a.b": 1}. Arrays are left as they are.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	flatten("", normalizeMap(m), out)
	return out
}

func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return normalizeMap(x)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []map[string]any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			out = append(out, normalizeMap(e))
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			out = append(out, normalize(e))
		}
		return out
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

// FindUp searches start and each of its parents for the first of names
// that exists and returns its path. It returns an error wrapping
// fs.ErrNotExist when nothing is found.
func FindUp(start string, names ...string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%v not found above %s: %w", names, start, fs.ErrNotExist)
}
