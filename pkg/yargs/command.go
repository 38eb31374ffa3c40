// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/containerd/errdefs"
)

// Handler runs a resolved command.
type Handler func(ctx context.Context, r *Result) error

// CommandSpec registers a command.
//
// Pattern is a sequence of literal words followed by placeholders:
//
//	serve start <name> [port] [files..]
//
// <x> is required, [x] optional, and a trailing ".." makes the last
// placeholder variadic. <name|n> gives the placeholder an alias. A pattern
// that starts with "$0" or "*" attaches its placeholders and handler to the
// enclosing scope itself (the default command).
type CommandSpec struct {
	Pattern     string
	Aliases     []string // alternative names for the last literal word
	Description string
	Hidden      bool
	Deprecated  string
	Builder     func(p *Parser)
	Handler     Handler
}

type placeholder struct {
	name     string
	aliases  []string
	required bool
	variadic bool
}

func (ph placeholder) String() string {
	name := strings.Join(append([]string{ph.name}, ph.aliases...), "|")
	if ph.variadic {
		name += ".."
	}
	if ph.required {
		return "<" + name + ">"
	}
	return "[" + name + "]"
}

// commandNode is one literal segment in the command tree.
type commandNode struct {
	name         string
	path         []string
	spec         CommandSpec
	defined      bool // registered directly, not only as a prefix
	placeholders []placeholder
	children     []*commandNode
}

func (n *commandNode) clone() *commandNode {
	c := *n
	c.path = slices.Clone(n.path)
	c.placeholders = slices.Clone(n.placeholders)
	c.children = slices.Clone(n.children)
	return &c
}

func (n *commandNode) runnable() bool {
	return n.spec.Handler != nil
}

// hasChildren reports whether the node has subcommands.
func (n *commandNode) hasChildren() bool {
	return len(n.children) > 0
}

// match finds the child named tok. Names win over aliases.
func (n *commandNode) match(tok string) *commandNode {
	for _, c := range n.children {
		if c.name == tok {
			return c
		}
	}
	for _, c := range n.children {
		if slices.Contains(c.spec.Aliases, tok) {
			return c
		}
	}
	return nil
}

// childNames returns every child name and alias.
func (n *commandNode) childNames(includeHidden bool) []string {
	var out []string
	for _, c := range n.children {
		if c.spec.Hidden && !includeHidden {
			continue
		}
		out = append(out, c.name)
		out = append(out, c.spec.Aliases...)
	}
	return out
}

// usage renders the literal path plus placeholders, e.g. "serve start <name>".
func (n *commandNode) usage() string {
	parts := slices.Clone(n.path)
	for _, ph := range n.placeholders {
		parts = append(parts, ph.String())
	}
	return strings.Join(parts, " ")
}

// parsePattern splits a command pattern into literal words and placeholders.
func parsePattern(pattern string) (literals []string, phs []placeholder, err error) {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return nil, nil, &ConfigError{Msg: "empty command pattern", Err: errdefs.ErrInvalidArgument}
	}
	for i, f := range fields {
		isPH := strings.HasPrefix(f, "<") || strings.HasPrefix(f, "[")
		if !isPH {
			if len(phs) > 0 {
				return nil, nil, &ConfigError{Key: pattern, Msg: fmt.Sprintf("literal %q after a placeholder", f), Err: errdefs.ErrInvalidArgument}
			}
			if i == 0 && (f == "$0" || f == "*") {
				continue
			}
			literals = append(literals, f)
			continue
		}
		ph, err := parsePlaceholder(f)
		if err != nil {
			return nil, nil, &ConfigError{Key: pattern, Msg: err.Error(), Err: errdefs.ErrInvalidArgument}
		}
		if len(phs) > 0 && phs[len(phs)-1].variadic {
			return nil, nil, &ConfigError{Key: pattern, Msg: "variadic placeholder must be last", Err: errdefs.ErrInvalidArgument}
		}
		phs = append(phs, ph)
	}
	return literals, phs, nil
}

func parsePlaceholder(f string) (placeholder, error) {
	var ph placeholder
	switch {
	case strings.HasPrefix(f, "<") && strings.HasSuffix(f, ">"):
		ph.required = true
	case strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]"):
	default:
		return ph, fmt.Errorf("malformed placeholder %q", f)
	}
	inner := f[1 : len(f)-1]
	if strings.HasSuffix(inner, "..") {
		ph.variadic = true
		inner = strings.TrimSuffix(inner, "..")
	}
	names := strings.Split(inner, "|")
	if names[0] == "" {
		return ph, fmt.Errorf("placeholder %q has no name", f)
	}
	ph.name = names[0]
	ph.aliases = names[1:]
	return ph, nil
}

// insert adds spec under root. With cow set, every node on the path is
// cloned before it is modified so that shared nodes stay untouched.
func insert(root *commandNode, spec CommandSpec, cow bool) (*commandNode, error) {
	lits, phs, err := parsePattern(spec.Pattern)
	if err != nil {
		return nil, err
	}
	node := root
	for _, lit := range lits {
		idx := slices.IndexFunc(node.children, func(c *commandNode) bool { return c.name == lit })
		if idx < 0 {
			child := &commandNode{name: lit, path: append(slices.Clone(node.path), lit)}
			node.children = append(node.children, child)
			node = child
			continue
		}
		child := node.children[idx]
		if cow {
			child = child.clone()
			node.children[idx] = child
		}
		node = child
	}
	if len(lits) > 0 {
		node.spec = spec
		node.defined = true
	} else {
		// Default command: only the runnable parts attach to the scope node.
		node.spec.Handler = spec.Handler
		if spec.Description != "" {
			node.spec.Description = spec.Description
		}
		if spec.Builder != nil {
			node.spec.Builder = spec.Builder
		}
	}
	node.placeholders = phs
	return node, nil
}

// binding is the outcome of matching leftover positionals against a node's
// placeholders.
type binding struct {
	values    map[string][]string // placeholder name -> raw values
	leftover  []string
	missing   []string
	variadics map[string]bool
}

func bindPlaceholders(node *commandNode, positionals []string) binding {
	b := binding{values: make(map[string][]string), variadics: make(map[string]bool)}
	remaining := positionals
	for _, ph := range node.placeholders {
		if ph.variadic {
			b.variadics[ph.name] = true
			if len(remaining) == 0 && ph.required {
				b.missing = append(b.missing, ph.name)
			}
			if len(remaining) > 0 {
				b.values[ph.name] = remaining
			}
			remaining = nil
			break
		}
		if len(remaining) == 0 {
			if ph.required {
				b.missing = append(b.missing, ph.name)
			}
			continue
		}
		b.values[ph.name] = remaining[:1]
		remaining = remaining[1:]
	}
	b.leftover = remaining
	return b
}

func requiredPlaceholders(node *commandNode) int {
	n := 0
	for _, ph := range node.placeholders {
		if ph.required {
			n++
		}
	}
	return n
}

// suggest returns the closest candidate to tok, or "" when nothing is near.
func suggest(tok string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.Distance(tok, c, nil)
		if d > 3 || d > len(c)/2+1 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
