// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/containerd/errdefs"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// Type is the declared value type of an option.
type Type int

const (
	// TypeImplicit tries boolean, then number, then leaves the string as is.
	TypeImplicit Type = iota
	TypeArray
	TypeBoolean
	TypeCount
	TypeNumber
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeArray:
		return "array"
	case TypeBoolean:
		return "boolean"
	case TypeCount:
		return "count"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	}
	return ""
}

// OptionSpec describes a single option key.
type OptionSpec struct {
	Key     string
	Aliases []string
	Type    Type
	// Elem is the element type of an array option. Elements are kept as
	// strings unless Elem is TypeNumber or TypeBoolean.
	Elem Type

	Default            any
	HasDefault         bool
	DefaultDescription string

	Required    bool
	RequiredMsg string
	Choices     []any
	Arity       int
	RequiresArg bool

	Group       string
	Description string
	Hidden      bool
	Deprecated  string

	// Local options are not inherited by subcommands and are dropped by Reset.
	Local bool

	// Coerce runs on the merged value after type coercion.
	Coerce func(any) (any, error)

	Implies   []string
	Conflicts []string

	expanded   []string // camel-case variants, kept out of help
	positional bool     // declared as a command placeholder
}

func (s *OptionSpec) clone() *OptionSpec {
	c := *s
	c.Aliases = slices.Clone(s.Aliases)
	c.Choices = slices.Clone(s.Choices)
	c.Implies = slices.Clone(s.Implies)
	c.Conflicts = slices.Clone(s.Conflicts)
	c.expanded = slices.Clone(s.expanded)
	return &c
}

// merge copies the non-empty fields of o into s. Aliases are handled by the
// registry.
func (s *OptionSpec) merge(o OptionSpec) {
	if o.Type != TypeImplicit {
		s.Type = o.Type
	}
	if o.Elem != TypeImplicit {
		s.Elem = o.Elem
	}
	if o.HasDefault || o.Default != nil {
		s.Default = o.Default
		s.HasDefault = true
	}
	if o.DefaultDescription != "" {
		s.DefaultDescription = o.DefaultDescription
	}
	if o.Required {
		s.Required = true
	}
	if o.RequiredMsg != "" {
		s.RequiredMsg = o.RequiredMsg
	}
	if len(o.Choices) > 0 {
		s.Choices = slices.Clone(o.Choices)
	}
	if o.Arity != 0 {
		s.Arity = o.Arity
	}
	if o.RequiresArg {
		s.RequiresArg = true
	}
	if o.Group != "" {
		s.Group = o.Group
	}
	if o.Description != "" {
		s.Description = o.Description
	}
	if o.Hidden {
		s.Hidden = true
	}
	if o.Deprecated != "" {
		s.Deprecated = o.Deprecated
	}
	if o.Local {
		s.Local = true
	}
	if o.Coerce != nil {
		s.Coerce = o.Coerce
	}
	s.Implies = appendUnique(s.Implies, o.Implies...)
	s.Conflicts = appendUnique(s.Conflicts, o.Conflicts...)
}

// takesValue reports whether a flag of this spec always wants an argument.
func (s *OptionSpec) takesValue() bool {
	if s == nil {
		return false
	}
	switch s.Type {
	case TypeString, TypeNumber, TypeArray:
		return true
	}
	return s.Arity > 0 || s.RequiresArg
}

// names returns the key followed by every alias, including camel-case
// expansions.
func (s *OptionSpec) names() []string {
	out := make([]string, 0, 1+len(s.Aliases)+len(s.expanded))
	out = append(out, s.Key)
	out = append(out, s.Aliases...)
	return append(out, s.expanded...)
}

// Registry holds OptionSpecs for one scope. A registry created by overlay
// sees the non-local specs of its parent; local specs shadow inherited ones.
type Registry struct {
	parent *Registry
	camel  bool

	order []string               // canonical keys, registration order
	specs map[string]*OptionSpec // canonical key -> spec
	names map[string]string      // key or alias -> canonical key
}

func newRegistry(camel bool) *Registry {
	return &Registry{camel: camel}
}

func (r *Registry) overlay() *Registry {
	return &Registry{parent: r, camel: r.camel}
}

// lookup resolves any name to its spec, searching this layer first.
func (r *Registry) lookup(name string) (*OptionSpec, bool) {
	inherited := false
	for l := r; l != nil; l = l.parent {
		if k, ok := l.names[name]; ok {
			s := l.specs[k]
			if !inherited || !s.Local {
				return s, true
			}
		}
		inherited = true
	}
	return nil, false
}

// canonical returns the canonical key for name, or name itself when it is
// not registered.
func (r *Registry) canonical(name string) string {
	if s, ok := r.lookup(name); ok {
		return s.Key
	}
	return name
}

// known reports whether name is a registered key or alias.
func (r *Registry) known(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// ensure returns the local spec for key, copying an inherited spec into this
// layer or creating a new one as needed.
func (r *Registry) ensure(key string) *OptionSpec {
	if k, ok := r.names[key]; ok {
		return r.specs[k]
	}
	if inh, ok := r.lookup(key); ok && r.parent != nil {
		s := inh.clone()
		r.add(s)
		for _, n := range s.names() {
			r.names[n] = s.Key
		}
		return s
	}
	s := &OptionSpec{Key: key}
	r.add(s)
	r.names[key] = key
	r.expand(s, key)
	return s
}

func (r *Registry) add(s *OptionSpec) {
	mak.Set(&r.specs, s.Key, s)
	if r.names == nil {
		r.names = make(map[string]string)
	}
	r.order = append(r.order, s.Key)
}

// expand binds the camel-case form of a dashed name, when free.
func (r *Registry) expand(s *OptionSpec, name string) {
	if !r.camel {
		return
	}
	c := camelCase(name)
	if c == name {
		return
	}
	if _, taken := r.names[c]; taken {
		return
	}
	r.names[c] = s.Key
	s.expanded = append(s.expanded, c)
}

// register merges spec into the registry. Re-registering a key with the
// same fields leaves the registry unchanged.
func (r *Registry) register(spec OptionSpec) error {
	if spec.Key == "" {
		return &ConfigError{Msg: "option key must not be empty", Err: errdefs.ErrInvalidArgument}
	}
	s := r.ensure(spec.Key)
	s.merge(spec)
	for _, a := range spec.Aliases {
		if err := r.alias(s.Key, a); err != nil {
			return err
		}
	}
	return nil
}

// alias binds alias to key. Binding an alias already owned by a different
// key in this layer is an error.
func (r *Registry) alias(key, alias string) error {
	if alias == "" {
		return &ConfigError{Key: key, Msg: "alias must not be empty", Err: errdefs.ErrInvalidArgument}
	}
	s := r.ensure(key)
	if alias == s.Key {
		return nil
	}
	if owner, ok := r.names[alias]; ok {
		if owner == s.Key {
			if !slices.Contains(s.Aliases, alias) {
				// Promote a camel-case expansion to an explicit alias.
				s.expanded = slices.DeleteFunc(s.expanded, func(n string) bool { return n == alias })
				s.Aliases = append(s.Aliases, alias)
			}
			return nil
		}
		return &ConfigError{
			Key: key,
			Msg: fmt.Sprintf("alias %q is already bound to %q", alias, owner),
			Err: errdefs.ErrAlreadyExists,
		}
	}
	r.names[alias] = s.Key
	s.Aliases = append(s.Aliases, alias)
	r.expand(s, alias)
	return nil
}

func (r *Registry) setDefault(key string, v any) {
	s := r.ensure(key)
	s.Default = v
	s.HasDefault = true
}

func (r *Registry) setChoices(key string, choices ...any) {
	s := r.ensure(key)
	s.Choices = append(s.Choices, choices...)
}

func (r *Registry) setRequired(key, msg string) {
	s := r.ensure(key)
	s.Required = true
	if msg != "" {
		s.RequiredMsg = msg
	}
}

// local returns the specs registered in this layer, in registration order.
func (r *Registry) local() []*OptionSpec {
	out := make([]*OptionSpec, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.specs[k])
	}
	return out
}

// inherited returns the parent specs visible from this layer and not
// shadowed by it.
func (r *Registry) inherited() []*OptionSpec {
	if r.parent == nil {
		return nil
	}
	var out []*OptionSpec
	for _, s := range r.parent.snapshot() {
		if s.Local {
			continue
		}
		if _, shadowed := r.specs[s.Key]; shadowed {
			continue
		}
		out = append(out, s)
	}
	return out
}

// snapshot returns every spec visible from this layer: inherited ones first,
// then local ones, each group in registration order.
func (r *Registry) snapshot() []*OptionSpec {
	return append(r.inherited(), r.local()...)
}

// aliasMap returns canonical key -> aliases for every visible spec.
func (r *Registry) aliasMap() map[string][]string {
	m := make(map[string][]string)
	for _, s := range r.snapshot() {
		m[s.Key] = append(slices.Clone(s.Aliases), s.expanded...)
	}
	return m
}

// numericShorts reports whether a single-digit short flag is registered,
// in which case "-1" is read as a flag and not as a negative number.
func (r *Registry) numericShorts() bool {
	for l := r; l != nil; l = l.parent {
		for n := range l.names {
			if len(n) == 1 && n[0] >= '0' && n[0] <= '9' {
				return true
			}
		}
	}
	return false
}

// reset drops local specs, keeping the global ones.
func (r *Registry) reset() {
	drop := make(set.Set[string])
	for _, s := range r.local() {
		if s.Local {
			drop.Add(s.Key)
		}
	}
	if len(drop) == 0 {
		return
	}
	r.order = slices.DeleteFunc(r.order, drop.Contains)
	for k := range drop {
		delete(r.specs, k)
	}
	for n, k := range r.names {
		if drop.Contains(k) {
			delete(r.names, n)
		}
	}
}

// camelCase turns "foo-bar" into "fooBar".
func camelCase(s string) string {
	if !strings.Contains(s, "-") || strings.HasPrefix(s, "-") {
		return s
	}
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
