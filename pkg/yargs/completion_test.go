// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func completionParser() *Parser {
	p, _, _ := newTestParser("app")
	return p.Boolean("verbose").
		Option("port", OptionSpec{Type: TypeNumber, Aliases: []string{"p"}}).
		Cmd("serve", "Manage servers", func(p *Parser) {
			p.Cmd("start", "Start", nil, nil).
				Cmd("stop", "Stop", nil, nil).
				Command(CommandSpec{Pattern: "debug", Hidden: true})
		}, nil).
		Cmd("status", "Show status", nil, nil)
}

func TestCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"commands by prefix", []string{"s"}, []string{"serve", "status"}},
		{"long flags", []string{"--v"}, []string{"--verbose"}},
		{"short flags", []string{"-"}, []string{"--help", "--help-llm", "--port", "--verbose", "-h", "-p"}},
		{"subcommands", []string{"serve", ""}, []string{"start", "stop"}},
		{"no match", []string{"x"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := completionParser()
			got, err := p.Completions(context.Background(), tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Completions(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestCompletionCallback(t *testing.T) {
	p := completionParser()
	var sawCommand []string
	p.Completion(func(ctx context.Context, current string, r *Result) ([]string, error) {
		sawCommand = r.Command
		return []string{"start", current + "-custom"}, nil
	})
	got, err := p.Completions(context.Background(), []string{"serve", "st"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"start", "stop", "st-custom"}, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"serve"}, sawCommand); diff != "" {
		t.Errorf("callback result command mismatch (-want +got):\n%s", diff)
	}

	p.Completion(func(context.Context, string, *Result) ([]string, error) {
		return nil, errors.New("boom")
	})
	if _, err := p.Completions(context.Background(), []string{""}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want callback error", err)
	}
}

func TestCompletionsCanceled(t *testing.T) {
	p := completionParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Completions(ctx, []string{""}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseCompletionRequest(t *testing.T) {
	p := completionParser()
	var stdout strings.Builder
	p.Output(&stdout, new(strings.Builder))

	_, err := p.Parse([]string{"--get-yargs-completions", "se"})
	if !errors.Is(err, ErrCompletion) {
		t.Fatalf("err = %v, want ErrCompletion", err)
	}
	if got := stdout.String(); got != "serve\n" {
		t.Errorf("stdout = %q, want serve", got)
	}
	if err := p.Run(context.Background(), []string{"--get-yargs-completions", "serve", "s"}); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestCompletionScript(t *testing.T) {
	p, _, _ := newTestParser("my-app")
	var b strings.Builder
	if err := p.CompletionScript(&b); err != nil {
		t.Fatal(err)
	}
	got := b.String()
	for _, want := range []string{
		"###-begin-my-app-completions-###\n",
		"_my_app_yargs_completions()\n",
		`type_list=$(my-app --get-yargs-completions "${args[@]:1:COMP_CWORD}")`,
		"complete -o bashdefault -o default -F _my_app_yargs_completions my-app\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("script missing %q:\n%s", want, got)
		}
	}
}

type getModule struct {
	got *[]string
}

func (getModule) Command() string   { return "get <key> [fallback]" }
func (getModule) Describe() string  { return "Get a value" }
func (getModule) Aliases() []string { return []string{"g"} }

func (getModule) Build(p *Parser) {
	p.Option("json", OptionSpec{Type: TypeBoolean, Description: "Print JSON"})
}

func (m getModule) Handle(ctx context.Context, r *Result) error {
	*m.got = append(*m.got, r.String("key"), r.String("fallback"), r.String("json"))
	return nil
}

func TestCommandModules(t *testing.T) {
	var got []string
	p, _, _ := newTestParser("kv")
	p.CommandModules(getModule{got: &got}).StrictOptions()

	if err := p.Run(context.Background(), []string{"g", "name", "anon", "--json"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"name", "anon", "true"}, got); diff != "" {
		t.Errorf("handler saw (-want +got):\n%s", diff)
	}
	if _, err := p.Parse([]string{"--json"}); !IsKind(err, KindUnknownOption) {
		t.Errorf("err = %v, want builder option scoped to get", err)
	}
	if !strings.Contains(p.HelpText(), "    kv get <key> [fallback]  Get a value (alias: g)\n") {
		t.Errorf("module missing from help:\n%s", p.HelpText())
	}
}
