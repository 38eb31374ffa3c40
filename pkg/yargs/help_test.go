// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func row(left, right string) string {
	return fmt.Sprintf("    %-24s%s\n", left, right)
}

func helpParser() *Parser {
	p, _, _ := newTestParser("app")
	return p.Description("Run things").
		Option("port", OptionSpec{
			Type:        TypeNumber,
			Aliases:     []string{"p"},
			Default:     float64(8080),
			Description: "Port to listen on",
		}).
		Cmd("serve <name>", "Start a server", func(p *Parser) {
			p.Positional("name", OptionSpec{Type: TypeString, Description: "Server name"})
			p.Option("tls", OptionSpec{Type: TypeBoolean, Description: "Serve over TLS"})
		}, nil).
		Example("$0 serve web", "Serve web")
}

func TestHelpText(t *testing.T) {
	p := helpParser()
	want := "app - Run things\n\n" +
		"USAGE:\n    app [OPTIONS] COMMAND\n\n" +
		"COMMANDS:\n" +
		row("app serve <name>", "Start a server") +
		"\n" +
		"OPTIONS:\n" +
		row("-h, --help", "Show help") +
		row("    --help-llm", "Show LLM-optimized help") +
		row("-p, --port <number>", "Port to listen on (default: 8080)") +
		"\n" +
		"EXAMPLES:\n" +
		row("app serve web", "Serve web") +
		"\n" +
		"Run 'app COMMAND --help' for more information on a specific command.\n"
	if diff := cmp.Diff(want, p.HelpText()); diff != "" {
		t.Errorf("HelpText mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandHelp(t *testing.T) {
	p, stdout, _ := newTestParser("app")
	p.Option("port", OptionSpec{Type: TypeNumber, Aliases: []string{"p"}}).
		Cmd("serve <name>", "Start a server", func(p *Parser) {
			p.Positional("name", OptionSpec{Type: TypeString, Description: "Server name"})
			p.Option("tls", OptionSpec{Type: TypeBoolean, Description: "Serve over TLS"})
		}, nil)

	_, err := p.Parse([]string{"serve", "--help"})
	if !errors.Is(err, ErrHelp) {
		t.Fatalf("err = %v, want ErrHelp", err)
	}
	got := stdout.String()
	for _, want := range []string{
		"Start a server\n\n",
		"USAGE:\n    app serve [OPTIONS] <name>\n\n",
		"ARGUMENTS:\n" + row("<name>", "Server name"),
		"OPTIONS:\n" + row("    --tls", "Serve over TLS"),
		"GLOBAL OPTIONS:\n",
		row("-p, --port <number>", ""),
	} {
		if !strings.Contains(got, strings.TrimRight(want, " \n")) {
			t.Errorf("help missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "COMMAND --help") {
		t.Errorf("leaf command help has the subcommand footer:\n%s", got)
	}
}

func TestHelpGroupsAndHidden(t *testing.T) {
	p, _, _ := newTestParser("app")
	p.Option("host", OptionSpec{Type: TypeString, Group: "Network", Description: "Bind host"}).
		Option("secret", OptionSpec{Type: TypeString, Hidden: true}).
		Option("mode", OptionSpec{Choices: []any{"fast", "safe"}, Required: true}).
		Deprecate("host", "use --listen")
	got := p.HelpText()

	network := strings.Index(got, "NETWORK:\n")
	options := strings.Index(got, "OPTIONS:\n")
	if network < 0 || options < 0 || network > options {
		t.Errorf("named group should precede OPTIONS:\n%s", got)
	}
	if !strings.Contains(got, "Bind host [deprecated: use --listen]") {
		t.Errorf("deprecation note missing:\n%s", got)
	}
	if !strings.Contains(got, "(choices: fast, safe) (required)") {
		t.Errorf("choices and required notes missing:\n%s", got)
	}
	if strings.Contains(got, "secret") {
		t.Errorf("hidden option shown:\n%s", got)
	}
}

func TestHelpWrap(t *testing.T) {
	p, _, _ := newTestParser("app")
	p.Wrap(60).Option("long", OptionSpec{
		Type:        TypeString,
		Description: "one two three four five six seven eight nine ten",
	})
	want := row("    --long <string>", "one two three four five six") +
		strings.Repeat(" ", 28) + "seven eight nine ten\n"
	if got := p.HelpText(); !strings.Contains(got, want) {
		t.Errorf("wrapped row missing, want %q in:\n%s", want, got)
	}
}

func TestHelpUsageOverride(t *testing.T) {
	p, _, _ := newTestParser("tool")
	p.Usage("$0 <input> [flags]").Epilogue("See https://example.com/docs for more.")
	got := p.HelpText()
	if !strings.Contains(got, "USAGE:\n    tool <input> [flags]\n") {
		t.Errorf("usage override not applied:\n%s", got)
	}
	if !strings.HasSuffix(got, "See https://example.com/docs for more.\n\n") {
		t.Errorf("epilogue missing:\n%s", got)
	}
}

func TestHelpCommandAliasesAndPrefixes(t *testing.T) {
	p, _, _ := newTestParser("app")
	p.Command(CommandSpec{Pattern: "remote add <url>", Description: "Add a remote", Aliases: []string{"a"}}).
		Command(CommandSpec{Pattern: "remote rm <name>", Description: "Remove a remote", Deprecated: "use prune"}).
		Command(CommandSpec{Pattern: "debug", Hidden: true})
	got := p.HelpText()
	for _, want := range []string{
		row("app remote add <url>", "Add a remote (alias: a)"),
		row("app remote rm <name>", "Remove a remote [deprecated: use prune]"),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("help missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "debug") {
		t.Errorf("hidden command shown:\n%s", got)
	}
}

func TestHelpMarkdown(t *testing.T) {
	p := helpParser()
	stdout := new(strings.Builder)
	p.Output(stdout, new(strings.Builder))

	_, err := p.Parse([]string{"--help-llm"})
	if !errors.Is(err, ErrHelpLLM) {
		t.Fatalf("err = %v, want ErrHelpLLM", err)
	}
	got := stdout.String()
	for _, want := range []string{
		"# app CLI Reference\n\nRun things\n\n",
		"## Usage\n\n```\napp [OPTIONS] COMMAND\n```\n\n",
		"## Commands\n\n### `app serve <name>`\n\nStart a server\n\n",
		"## Options\n\n",
		"### `--port` (short: `-p`)\n\nPort to listen on\n\n- **Type**: `number`\n- **Default**: `8080`\n\n",
		"## Examples\n\n```\napp serve web  # Serve web\n```\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}

	stdout.Reset()
	_, err = p.Parse([]string{"serve", "--help-llm"})
	if !errors.Is(err, ErrHelpLLM) {
		t.Fatalf("err = %v, want ErrHelpLLM", err)
	}
	got = stdout.String()
	for _, want := range []string{
		"# app serve Command Reference\n\nStart a server\n\n",
		"## Arguments\n\n### `<name>`\n\nServer name\n\n- **Type**: `string`\n- **Required**: yes\n",
		"## Options\n\n### `--tls`\n\nServe over TLS\n\n- **Type**: `boolean`\n",
		"## Global options\n\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("command markdown missing %q:\n%s", want, got)
		}
	}
}
