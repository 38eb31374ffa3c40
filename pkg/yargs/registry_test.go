// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/google/go-cmp/cmp"
)

func TestRegisterIdempotent(t *testing.T) {
	spec := OptionSpec{
		Key:         "port",
		Aliases:     []string{"p", "listen-port"},
		Type:        TypeNumber,
		Default:     float64(8080),
		HasDefault:  true,
		Description: "Port to listen on",
		Choices:     []any{float64(80), float64(8080)},
		Implies:     []string{"host"},
	}
	once := newRegistry(true)
	if err := once.register(spec); err != nil {
		t.Fatal(err)
	}
	twice := newRegistry(true)
	for range 2 {
		if err := twice.register(spec); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(once, twice, cmp.AllowUnexported(Registry{}, OptionSpec{})); diff != "" {
		t.Errorf("registering twice changed the registry (-once +twice):\n%s", diff)
	}
}

func TestRegistryAliases(t *testing.T) {
	r := newRegistry(true)
	if err := r.register(OptionSpec{Key: "dry-run", Aliases: []string{"n"}}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"dry-run", "n", "dryRun"} {
		if got := r.canonical(name); got != "dry-run" {
			t.Errorf("canonical(%q) = %q, want dry-run", name, got)
		}
	}
	want := map[string][]string{"dry-run": {"n", "dryRun"}}
	if diff := cmp.Diff(want, r.aliasMap()); diff != "" {
		t.Errorf("aliasMap mismatch (-want +got):\n%s", diff)
	}

	err := r.alias("other", "n")
	if err == nil {
		t.Fatal("rebinding alias n succeeded")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || !errdefs.IsAlreadyExists(err) {
		t.Errorf("err = %v, want ConfigError wrapping ErrAlreadyExists", err)
	}

	// Binding the same alias again is a no-op.
	if err := r.alias("dry-run", "n"); err != nil {
		t.Errorf("re-alias: %v", err)
	}
}

func TestRegistryNoCamelCase(t *testing.T) {
	r := newRegistry(false)
	if err := r.register(OptionSpec{Key: "dry-run"}); err != nil {
		t.Fatal(err)
	}
	if r.known("dryRun") {
		t.Error("dryRun is known with camel-case expansion disabled")
	}
}

func TestRegistryOverlay(t *testing.T) {
	root := newRegistry(true)
	for _, spec := range []OptionSpec{
		{Key: "verbose", Type: TypeBoolean},
		{Key: "secret", Local: true},
		{Key: "port", Type: TypeNumber, Default: float64(80)},
	} {
		if err := root.register(spec); err != nil {
			t.Fatal(err)
		}
	}
	child := root.overlay()
	if err := child.register(OptionSpec{Key: "name", Type: TypeString}); err != nil {
		t.Fatal(err)
	}
	child.setDefault("port", float64(9090))

	if child.known("secret") {
		t.Error("local option leaked into overlay")
	}
	if !child.known("verbose") {
		t.Error("global option not inherited")
	}
	if s, _ := root.lookup("port"); s.Default != float64(80) {
		t.Errorf("overlay modified the parent default: %v", s.Default)
	}
	if s, _ := child.lookup("port"); s.Default != float64(9090) {
		t.Errorf("overlay default = %v, want 9090", s.Default)
	}

	var keys []string
	for _, s := range child.snapshot() {
		keys = append(keys, s.Key)
	}
	if diff := cmp.Diff([]string{"verbose", "name", "port"}, keys); diff != "" {
		t.Errorf("snapshot keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryReset(t *testing.T) {
	r := newRegistry(true)
	for _, spec := range []OptionSpec{
		{Key: "keep"},
		{Key: "drop-me", Local: true, Aliases: []string{"d"}},
	} {
		if err := r.register(spec); err != nil {
			t.Fatal(err)
		}
	}
	r.reset()
	for _, name := range []string{"drop-me", "d", "dropMe"} {
		if r.known(name) {
			t.Errorf("%q survived reset", name)
		}
	}
	if !r.known("keep") {
		t.Error("global option dropped by reset")
	}
}

func TestNumericShorts(t *testing.T) {
	r := newRegistry(true)
	if r.numericShorts() {
		t.Fatal("empty registry has numeric shorts")
	}
	if err := r.register(OptionSpec{Key: "ipv4", Aliases: []string{"4"}, Type: TypeBoolean}); err != nil {
		t.Fatal(err)
	}
	if !r.overlay().numericShorts() {
		t.Error("numeric short not seen through overlay")
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"foo":         "foo",
		"foo-bar":     "fooBar",
		"foo-bar-baz": "fooBarBaz",
		"-x":          "-x",
	}
	for in, want := range tests {
		if got := camelCase(in); got != want {
			t.Errorf("camelCase(%q) = %q, want %q", in, got, want)
		}
	}
}
