// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import "context"

// CommandModule is a command defined as a type instead of a CommandSpec.
type CommandModule interface {
	// Command returns the pattern, e.g. "get <key> [default]".
	Command() string
	Describe() string
	// Build configures the command's options; it runs only when the
	// command is selected.
	Build(p *Parser)
	Handle(ctx context.Context, r *Result) error
}

// AliasedModule is implemented by modules that have alternative names.
type AliasedModule interface {
	Aliases() []string
}

// CommandModules registers each module as a command.
func (p *Parser) CommandModules(mods ...CommandModule) *Parser {
	for _, m := range mods {
		spec := CommandSpec{
			Pattern:     m.Command(),
			Description: m.Describe(),
			Builder:     m.Build,
			Handler:     m.Handle,
		}
		if a, ok := m.(AliasedModule); ok {
			spec.Aliases = a.Aliases()
		}
		p.Command(spec)
	}
	return p
}
