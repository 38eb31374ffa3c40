// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import "strings"

type tokenKind int

const (
	tokPositional tokenKind = iota
	tokLong
	tokShort
	tokSeparator
)

// token is one lexed argument.
//
// For tokLong, name is the flag name without dashes. For tokShort, name
// holds the cluster characters. value is set when the argument carried an
// inline "=value".
type token struct {
	kind     tokenKind
	name     string
	value    string
	hasValue bool
	raw      string
	// literal marks positionals that followed "--".
	literal bool
}

// lex splits args into tokens. When numericShorts is false, a dash followed
// by a number ("-5", "-1.5e3") is a positional and not a short cluster.
func lex(args []string, numericShorts bool) []token {
	toks := make([]token, 0, len(args))
	for i, arg := range args {
		switch {
		case arg == "--":
			toks = append(toks, token{kind: tokSeparator, raw: arg})
			for _, rest := range args[i+1:] {
				toks = append(toks, token{kind: tokPositional, value: rest, raw: rest, literal: true})
			}
			return toks
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name, value, ok := strings.Cut(arg[2:], "=")
			toks = append(toks, token{kind: tokLong, name: name, value: value, hasValue: ok, raw: arg})
		case len(arg) > 1 && arg[0] == '-':
			if !numericShorts && isNumber(arg) {
				toks = append(toks, token{kind: tokPositional, value: arg, raw: arg})
				continue
			}
			name, value, ok := strings.Cut(arg[1:], "=")
			toks = append(toks, token{kind: tokShort, name: name, value: value, hasValue: ok, raw: arg})
		default:
			toks = append(toks, token{kind: tokPositional, value: arg, raw: arg})
		}
	}
	return toks
}
