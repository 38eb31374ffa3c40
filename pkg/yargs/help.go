// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minColumn    = 24
	indent       = "    "
)

func aliasSuffix(aliases []string) string {
	if len(aliases) == 0 {
		return ""
	}
	if len(aliases) == 1 {
		return fmt.Sprintf(" (alias: %s)", aliases[0])
	}
	return fmt.Sprintf(" (aliases: %s)", strings.Join(aliases, ", "))
}

func describeWithAliases(desc string, aliases []string) string {
	suffix := aliasSuffix(aliases)
	if desc == "" {
		return strings.TrimSpace(suffix)
	}
	return desc + suffix
}

// width returns the help width: the configured value, else the terminal
// width, else 80.
func (p *Parser) width() int {
	if p.wrap > 0 {
		return p.wrap
	}
	if f, ok := p.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

type helpRow struct {
	left, right string
}

// writeRows prints two aligned columns, wrapping the right one.
func writeRows(b *strings.Builder, rows []helpRow, width int) {
	col := minColumn
	for _, r := range rows {
		if w := runewidth.StringWidth(r.left) + 2; w > col {
			col = w
		}
	}
	if limit := width / 2; col > limit && limit >= minColumn {
		col = limit
	}
	avail := width - len(indent) - col
	if avail < 20 {
		avail = 20
	}
	pad := strings.Repeat(" ", len(indent)+col)
	for _, r := range rows {
		if r.right == "" {
			b.WriteString(indent + r.left + "\n")
			continue
		}
		lines := strings.Split(wordwrap.WrapString(r.right, uint(avail)), "\n")
		if runewidth.StringWidth(r.left)+2 > col {
			b.WriteString(indent + r.left + "\n" + pad + lines[0] + "\n")
		} else {
			b.WriteString(indent + runewidth.FillRight(r.left, col) + lines[0] + "\n")
		}
		for _, l := range lines[1:] {
			b.WriteString(pad + l + "\n")
		}
	}
}

func (p *Parser) expand(s string) string {
	return strings.ReplaceAll(s, "$0", p.name)
}

func (p *Parser) usageLine(s *scope, node *commandNode) string {
	if s.usage != "" {
		return p.expand(s.usage)
	}
	parts := []string{p.name}
	parts = append(parts, node.path...)
	parts = append(parts, "[OPTIONS]")
	if node.hasChildren() {
		parts = append(parts, "COMMAND")
	}
	for _, ph := range node.placeholders {
		parts = append(parts, ph.String())
	}
	return strings.Join(parts, " ")
}

// commandRows lists the commands reachable from node, flattening prefixes
// that were never registered on their own.
func (p *Parser) commandRows(node *commandNode) []helpRow {
	var rows []helpRow
	var walk func(n *commandNode)
	walk = func(n *commandNode) {
		for _, c := range n.children {
			if c.spec.Hidden {
				continue
			}
			if !c.defined {
				walk(c)
				continue
			}
			desc := describeWithAliases(c.spec.Description, c.spec.Aliases)
			if c.spec.Deprecated != "" {
				desc += " [deprecated: " + c.spec.Deprecated + "]"
			}
			rows = append(rows, helpRow{left: p.name + " " + c.usage(), right: desc})
		}
	}
	walk(node)
	return rows
}

// flagNames renders "-p, --port" style names for spec.
func flagNames(s *OptionSpec) string {
	var short, long []string
	for _, n := range append([]string{s.Key}, s.Aliases...) {
		if len([]rune(n)) == 1 {
			short = append(short, "-"+n)
		} else {
			long = append(long, "--"+n)
		}
	}
	names := strings.Join(append(short, long...), ", ")
	if len(short) == 0 {
		names = "    " + names
	}
	switch s.Type {
	case TypeString, TypeNumber:
		names += " <" + s.Type.String() + ">"
	case TypeArray:
		elem := "value"
		if s.Elem == TypeNumber || s.Elem == TypeBoolean {
			elem = s.Elem.String()
		}
		names += " <" + elem + "...>"
	}
	return names
}

func optionDescription(s *OptionSpec) string {
	desc := s.Description
	add := func(format string, args ...any) {
		if desc != "" {
			desc += " "
		}
		desc += fmt.Sprintf(format, args...)
	}
	if len(s.Choices) > 0 {
		choices := make([]string, 0, len(s.Choices))
		for _, c := range s.Choices {
			choices = append(choices, stringify(c))
		}
		add("(choices: %s)", strings.Join(choices, ", "))
	}
	switch {
	case s.DefaultDescription != "":
		add("(default: %s)", s.DefaultDescription)
	case s.HasDefault:
		add("(default: %s)", stringify(s.Default))
	}
	if s.Required {
		add("(required)")
	}
	if s.Deprecated != "" {
		add("[deprecated: %s]", s.Deprecated)
	}
	return desc
}

type optionGroup struct {
	title string
	specs []*OptionSpec
}

// optionGroups splits the visible options into named groups, then local
// options, then inherited ones.
func optionGroups(reg *Registry) []optionGroup {
	var named []optionGroup
	index := make(map[string]int)
	var local, inherited []*OptionSpec
	place := func(s *OptionSpec, fallback *[]*OptionSpec) {
		if s.Hidden || s.positional {
			return
		}
		if s.Group == "" {
			*fallback = append(*fallback, s)
			return
		}
		i, ok := index[s.Group]
		if !ok {
			i = len(named)
			index[s.Group] = i
			named = append(named, optionGroup{title: s.Group})
		}
		named[i].specs = append(named[i].specs, s)
	}
	for _, s := range reg.local() {
		place(s, &local)
	}
	for _, s := range reg.inherited() {
		place(s, &inherited)
	}
	out := named
	if len(local) > 0 {
		out = append(out, optionGroup{title: "OPTIONS", specs: local})
	}
	if len(inherited) > 0 {
		out = append(out, optionGroup{title: "GLOBAL OPTIONS", specs: inherited})
	}
	return out
}

// helpText renders help for node in scope s.
func (p *Parser) helpText(s *scope, node *commandNode) string {
	var b strings.Builder
	c := p.colors
	width := p.width()

	// Header
	switch {
	case len(node.path) == 0:
		b.WriteString(p.name)
		if p.description != "" {
			b.WriteString(" - ")
			b.WriteString(p.description)
		}
		b.WriteString("\n\n")
	case node.spec.Description != "":
		b.WriteString(node.spec.Description)
		b.WriteString("\n\n")
	}
	if node.spec.Deprecated != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Dim("Deprecated: "+node.spec.Deprecated))
	}

	b.WriteString(c.Heading("USAGE:") + "\n")
	fmt.Fprintf(&b, "%s%s\n\n", indent, p.usageLine(s, node))

	if rows := p.commandRows(node); len(rows) > 0 {
		b.WriteString(c.Heading("COMMANDS:") + "\n")
		writeRows(&b, rows, width)
		b.WriteString("\n")
	}

	if len(node.placeholders) > 0 {
		var rows []helpRow
		for _, ph := range node.placeholders {
			desc := ""
			if spec, ok := s.reg.lookup(ph.name); ok {
				desc = optionDescription(spec)
			}
			rows = append(rows, helpRow{left: ph.String(), right: desc})
		}
		b.WriteString(c.Heading("ARGUMENTS:") + "\n")
		writeRows(&b, rows, width)
		b.WriteString("\n")
	}

	for _, g := range optionGroups(s.reg) {
		rows := make([]helpRow, 0, len(g.specs))
		for _, spec := range g.specs {
			rows = append(rows, helpRow{left: flagNames(spec), right: optionDescription(spec)})
		}
		b.WriteString(c.Heading(strings.ToUpper(g.title)+":") + "\n")
		writeRows(&b, rows, width)
		b.WriteString("\n")
	}

	if len(s.examples) > 0 {
		rows := make([]helpRow, 0, len(s.examples))
		for _, ex := range s.examples {
			rows = append(rows, helpRow{left: p.expand(ex.cmd), right: ex.desc})
		}
		b.WriteString(c.Heading("EXAMPLES:") + "\n")
		writeRows(&b, rows, width)
		b.WriteString("\n")
	}

	if s.epilogue != "" {
		b.WriteString(wordwrap.WrapString(p.expand(s.epilogue), uint(width)))
		b.WriteString("\n\n")
	}

	if node.hasChildren() {
		cmd := strings.Join(append([]string{p.name}, node.path...), " ")
		fmt.Fprintf(&b, "Run '%s COMMAND --help' for more information on a specific command.\n", cmd)
	}
	return b.String()
}

// helpMarkdown renders the LLM-oriented reference for node.
func (p *Parser) helpMarkdown(s *scope, node *commandNode) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(strings.Join(append([]string{p.name}, node.path...), " "))
	if len(node.path) == 0 {
		b.WriteString(" CLI Reference\n\n")
	} else {
		b.WriteString(" Command Reference\n\n")
	}
	desc := p.description
	if len(node.path) > 0 {
		desc = node.spec.Description
	}
	if desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	b.WriteString("## Usage\n\n```\n")
	b.WriteString(p.usageLine(s, node))
	b.WriteString("\n```\n\n")

	if rows := p.commandRows(node); len(rows) > 0 {
		b.WriteString("## Commands\n\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "### `%s`\n\n", r.left)
			if r.right != "" {
				b.WriteString(r.right)
				b.WriteString("\n\n")
			}
		}
	}

	if len(node.placeholders) > 0 {
		b.WriteString("## Arguments\n\n")
		for _, ph := range node.placeholders {
			fmt.Fprintf(&b, "### `%s`\n\n", ph.String())
			if spec, ok := s.reg.lookup(ph.name); ok {
				writeSpecMarkdown(&b, spec)
			}
			required := "no"
			if ph.required {
				required = "yes"
			}
			fmt.Fprintf(&b, "- **Required**: %s\n", required)
			if ph.variadic {
				b.WriteString("- **Variadic**: yes\n")
			}
			b.WriteString("\n")
		}
	}

	for _, g := range optionGroups(s.reg) {
		title := strings.ToUpper(g.title[:1]) + strings.ToLower(g.title[1:])
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, spec := range g.specs {
			b.WriteString("### `--")
			b.WriteString(spec.Key)
			b.WriteString("`")
			var shorts []string
			for _, a := range spec.Aliases {
				if len([]rune(a)) == 1 {
					shorts = append(shorts, "`-"+a+"`")
				}
			}
			if len(shorts) > 0 {
				fmt.Fprintf(&b, " (short: %s)", strings.Join(shorts, ", "))
			}
			b.WriteString("\n\n")
			writeSpecMarkdown(&b, spec)
			if spec.Required {
				b.WriteString("- **Required**: yes\n")
			}
			b.WriteString("\n")
		}
	}

	if len(s.examples) > 0 {
		b.WriteString("## Examples\n\n```\n")
		for _, ex := range s.examples {
			b.WriteString(p.expand(ex.cmd))
			if ex.desc != "" {
				b.WriteString("  # ")
				b.WriteString(ex.desc)
			}
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}

func writeSpecMarkdown(b *strings.Builder, spec *OptionSpec) {
	if spec.Description != "" {
		b.WriteString(spec.Description)
		b.WriteString("\n\n")
	}
	if t := spec.Type.String(); t != "" {
		fmt.Fprintf(b, "- **Type**: `%s`\n", t)
	}
	if spec.HasDefault {
		fmt.Fprintf(b, "- **Default**: `%s`\n", stringify(spec.Default))
	}
	if len(spec.Choices) > 0 {
		choices := make([]string, 0, len(spec.Choices))
		for _, c := range spec.Choices {
			choices = append(choices, "`"+stringify(c)+"`")
		}
		fmt.Fprintf(b, "- **Choices**: %s\n", strings.Join(choices, ", "))
	}
	if spec.Deprecated != "" {
		fmt.Fprintf(b, "- **Deprecated**: %s\n", spec.Deprecated)
	}
}
