// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env maps environment variables onto option keys.
package env

import (
	"strings"
	"unicode"
)

// Collect returns the variables in environ ("NAME=value") that start with
// prefix followed by an underscore, keyed by option name. The prefix is
// matched case-insensitively and stripped; the remainder is split on delim,
// each segment camel-cased and the segments joined with ".":
//
//	MY_APP_LOG_LEVEL=debug        -> logLevel
//	MY_APP_SERVER__HTTP_PORT=8080 -> server.httpPort
//
// An empty prefix collects every variable.
func Collect(environ []string, prefix, delim string) map[string]string {
	out := make(map[string]string)
	want := ""
	if prefix != "" {
		want = strings.ToUpper(prefix) + "_"
	}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if want != "" {
			if len(name) <= len(want) || !strings.EqualFold(name[:len(want)], want) {
				continue
			}
			name = name[len(want):]
		}
		key := Key(name, delim)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// Key converts an environment variable name (without prefix) to an option
// key.
func Key(name, delim string) string {
	segments := []string{name}
	if delim != "" {
		segments = strings.Split(name, delim)
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = camel(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// camel converts FOO_BAR to fooBar.
func camel(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range strings.ToLower(s) {
		if r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
