// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"tailscale.com/util/set"
)

// CompletionFunc returns extra candidates for the word being completed.
// r holds what was parsed from the preceding words; it is never nil.
type CompletionFunc func(ctx context.Context, current string, r *Result) ([]string, error)

// Completions returns completion candidates for args, whose last element is
// the word under the cursor (possibly empty). Built-in candidates are the
// resolved command's subcommands, or its options when the word starts with
// "-". The Completion callback runs concurrently and its candidates follow
// the built-in ones.
func (p *Parser) Completions(ctx context.Context, args []string) ([]string, error) {
	defer p.freeze()()

	current := ""
	if len(args) > 0 {
		current = args[len(args)-1]
		args = args[:len(args)-1]
	}
	rn := p.resolve(args)

	var builtin, extra []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		builtin = builtinCompletions(rn, current)
		return nil
	})
	if fn := p.completion; fn != nil {
		res, _, err := p.assemble(rn)
		if err != nil {
			p.logger.Debug("completion: partial result unavailable", "err", err)
			res = newResult(p.name)
		}
		g.Go(func() error {
			out, err := fn(gctx, current, res)
			if err != nil {
				return fmt.Errorf("completion callback: %w", err)
			}
			extra = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(set.Set[string])
	var out []string
	for _, c := range append(builtin, extra...) {
		if c == "" || seen.Contains(c) {
			continue
		}
		seen.Add(c)
		out = append(out, c)
	}
	return out, nil
}

func builtinCompletions(rn *run, current string) []string {
	var cands []string
	if strings.HasPrefix(current, "-") {
		for _, s := range rn.scope.reg.snapshot() {
			if s.Hidden || s.positional {
				continue
			}
			for _, n := range append([]string{s.Key}, s.Aliases...) {
				flag := "--" + n
				if len([]rune(n)) == 1 {
					flag = "-" + n
				}
				cands = append(cands, flag)
			}
		}
	} else {
		cands = rn.node.childNames(false)
	}
	out := cands[:0]
	for _, c := range cands {
		if strings.HasPrefix(c, current) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// writeCompletions answers a completion request from the shell script.
func (p *Parser) writeCompletions(args []string) error {
	cands, err := p.Completions(context.Background(), args)
	if err != nil {
		return err
	}
	for _, c := range cands {
		fmt.Fprintln(p.stdout, c)
	}
	return ErrCompletion
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

const bashCompletion = `###-begin-{{name}}-completions-###
#
# {{name}} command completion script
#
# Installation: {{name}} completion >> ~/.bashrc
#
_{{fn}}_yargs_completions()
{
    local cur_word args type_list

    cur_word="${COMP_WORDS[COMP_CWORD]}"
    args=("${COMP_WORDS[@]}")

    type_list=$({{name}} ` + completionFlag + ` "${args[@]:1:COMP_CWORD}")

    COMPREPLY=( $(compgen -W "${type_list}" -- ${cur_word}) )

    if [ ${#COMPREPLY[@]} -eq 0 ]; then
      COMPREPLY=()
    fi

    return 0
}
complete -o bashdefault -o default -F _{{fn}}_yargs_completions {{name}}
###-end-{{name}}-completions-###
`

// CompletionScript writes a bash completion script for the program to w.
func (p *Parser) CompletionScript(w io.Writer) error {
	script := strings.NewReplacer(
		"{{name}}", p.name,
		"{{fn}}", nonIdent.ReplaceAllString(p.name, "_"),
	).Replace(bashCompletion)
	_, err := io.WriteString(w, script)
	return err
}
