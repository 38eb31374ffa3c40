// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"errors"
	"fmt"
	"strings"

	"tailscale.com/util/set"
)

// ValidationMode selects how many failures a parse reports.
type ValidationMode int

const (
	// FirstError stops at the first failing stage and reports its first
	// failure.
	FirstError ValidationMode = iota
	// AllErrors runs every stage and reports all failures as
	// ValidationErrors.
	AllErrors
)

type demandKind int

const (
	demandKey demandKind = iota + 1
	demandKeys
	demandRange
)

// Demand is a requirement: one key, a list of keys, or a range for the
// number of non-option arguments. Build one with DemandKey, DemandKeys or
// DemandRange.
type Demand struct {
	kind     demandKind
	keys     []string
	min, max int
	msg      string
}

// DemandKey requires key.
func DemandKey(key string) Demand {
	return Demand{kind: demandKey, keys: []string{key}}
}

// DemandKeys requires every key.
func DemandKeys(keys ...string) Demand {
	return Demand{kind: demandKeys, keys: keys}
}

// DemandRange requires between min and max non-option arguments. A
// negative max means no upper bound.
func DemandRange(min, max int) Demand {
	return Demand{kind: demandRange, min: min, max: max}
}

// WithMessage replaces the default failure message.
func (d Demand) WithMessage(msg string) Demand {
	d.msg = msg
	return d
}

// Demand adds a requirement to the current scope.
func (p *Parser) Demand(d Demand) *Parser {
	s := p.mut()
	switch d.kind {
	case demandKey, demandKeys:
		for _, k := range d.keys {
			s.reg.setRequired(k, d.msg)
		}
	case demandRange:
		s.demands = append(s.demands, d)
	}
	return p
}

// validate runs the validation stages in order. coerceErrs are reported
// with the user checks.
func (p *Parser) validate(rn *run, res *Result, coerceErrs []*ValidationError) error {
	stages := []func() []*ValidationError{
		func() []*ValidationError { return p.checkRequired(rn, res) },
		func() []*ValidationError { return checkChoices(rn.scope.reg, res) },
		func() []*ValidationError { return checkRelations(rn.scope.reg, res) },
		func() []*ValidationError { return p.checkStrict(rn) },
		func() []*ValidationError { return append(coerceErrs, runChecks(rn.scope, res)...) },
	}
	var all []*ValidationError
	for _, stage := range stages {
		errs := stage()
		if len(errs) == 0 {
			continue
		}
		if p.mode == FirstError {
			return errs[0]
		}
		all = append(all, errs...)
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return ValidationErrors(all)
}

func (p *Parser) checkRequired(rn *run, res *Result) []*ValidationError {
	errs := append([]*ValidationError(nil), rn.av.errs...)

	if len(rn.bind.missing) > 0 {
		got := len(rn.av.positional) - len(rn.path)
		errs = append(errs, newValidationError(KindArityMismatch, rn.bind.missing,
			"Not enough non-option arguments: got %d, need at least %d", got, requiredPlaceholders(rn.node)))
	}

	var missing, msgs []string
	for _, s := range rn.scope.reg.snapshot() {
		if s.Required && !res.Has(s.Key) {
			missing = append(missing, s.Key)
			if s.RequiredMsg != "" {
				msgs = append(msgs, s.RequiredMsg)
			}
		}
	}
	if len(missing) > 0 {
		msg := "Missing required argument: " + missing[0]
		if len(missing) > 1 {
			msg = "Missing required arguments: " + strings.Join(missing, ", ")
		}
		if len(msgs) > 0 {
			msg += "\n" + strings.Join(msgs, "\n")
		}
		errs = append(errs, &ValidationError{Kind: KindMissingRequired, Keys: missing, Msg: msg})
	}

	n := len(res.Positional) - len(rn.path)
	for _, d := range rn.scope.demands {
		switch {
		case n < d.min:
			msg := d.msg
			if msg == "" {
				msg = fmt.Sprintf("Not enough non-option arguments: got %d, need at least %d", n, d.min)
			}
			errs = append(errs, &ValidationError{Kind: KindArityMismatch, Keys: []string{"_"}, Msg: msg})
		case d.max >= 0 && n > d.max:
			msg := d.msg
			if msg == "" {
				msg = fmt.Sprintf("Too many non-option arguments: got %d, maximum of %d", n, d.max)
			}
			errs = append(errs, &ValidationError{Kind: KindArityMismatch, Keys: []string{"_"}, Msg: msg})
		}
	}
	return errs
}

func checkChoices(reg *Registry, res *Result) []*ValidationError {
	var errs []*ValidationError
	for _, s := range reg.snapshot() {
		if len(s.Choices) == 0 || res.Source(s.Key) <= SourceDefault {
			continue
		}
		v, _ := res.Get(s.Key)
		vals, isList := v.([]any)
		if !isList {
			vals = []any{v}
		}
		var bad []string
		for _, e := range vals {
			if !containsChoice(s.Choices, e) {
				bad = append(bad, quoteValue(e))
			}
		}
		if len(bad) == 0 {
			continue
		}
		choices := make([]string, 0, len(s.Choices))
		for _, c := range s.Choices {
			choices = append(choices, quoteValue(c))
		}
		errs = append(errs, newValidationError(KindInvalidChoice, []string{s.Key},
			"Invalid values:\n  Argument: %s, Given: %s, Choices: %s",
			s.Key, strings.Join(bad, ", "), strings.Join(choices, ", ")))
	}
	return errs
}

func containsChoice(choices []any, v any) bool {
	for _, c := range choices {
		cf, cok := toFloat(c)
		vf, vok := toFloat(v)
		if cok && vok {
			if cf == vf {
				return true
			}
			continue
		}
		if stringify(c) == stringify(v) {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func quoteValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return stringify(v)
}

// isSet reports whether key was given by a source other than its default
// and is not false.
func isSet(res *Result, key string) bool {
	if res.Source(key) <= SourceDefault {
		return false
	}
	v, _ := res.Get(key)
	return v != false
}

func checkRelations(reg *Registry, res *Result) []*ValidationError {
	var errs []*ValidationError
	var pairs []string
	var implied []string
	seen := make(set.Set[string])
	for _, s := range reg.snapshot() {
		if !isSet(res, s.Key) {
			continue
		}
		for _, imp := range s.Implies {
			if v, ok := res.Get(imp); !ok || v == false {
				pairs = append(pairs, fmt.Sprintf(" %s -> %s", s.Key, imp))
				implied = append(implied, s.Key, imp)
			}
		}
		for _, other := range s.Conflicts {
			if !isSet(res, other) {
				continue
			}
			a, b := s.Key, reg.canonical(other)
			id := a + "\x00" + b
			if a > b {
				id = b + "\x00" + a
			}
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)
			errs = append(errs, newValidationError(KindConflictingOptions, []string{a, b},
				"Arguments %s and %s are mutually exclusive", a, b))
		}
	}
	if len(pairs) > 0 {
		errs = append([]*ValidationError{{
			Kind: KindMissingRequired,
			Keys: implied,
			Msg:  "Missing dependent arguments:\n" + strings.Join(pairs, "\n"),
		}}, errs...)
	}
	return errs
}

func (p *Parser) checkStrict(rn *run) []*ValidationError {
	var errs []*ValidationError
	s := rn.scope
	leftover := rn.bind.leftover

	if s.strictCommands && (rn.node.hasChildren() || rn.node.defined) {
		switch {
		case len(leftover) > 0 && rn.node.hasChildren():
			msg := "Unknown command: " + leftover[0]
			if p.recommend {
				if hint := suggest(leftover[0], rn.node.childNames(false)); hint != "" {
					msg += fmt.Sprintf("\nDid you mean %s?", hint)
				}
			}
			errs = append(errs, newValidationError(KindMissingCommand, []string{leftover[0]}, "%s", msg))
			leftover = nil
		case !rn.node.runnable() && rn.node.hasChildren():
			errs = append(errs, newValidationError(KindMissingCommand, nil, "Please specify a command"))
		case !rn.node.runnable():
			name := strings.Join(rn.node.path, " ")
			if name == "" {
				name = p.name
			}
			errs = append(errs, newValidationError(KindMissingCommand, []string{name}, "Command %s cannot be run", name))
		}
	}

	if s.strictOptions {
		var unknown []string
		for _, k := range rn.av.unknown {
			if !s.reg.known(k) {
				unknown = append(unknown, k)
			}
		}
		if rn.node.defined || rn.node.hasChildren() {
			unknown = append(unknown, leftover...)
		}
		if len(unknown) == 1 {
			errs = append(errs, newValidationError(KindUnknownOption, unknown, "Unknown argument: %s", unknown[0]))
		} else if len(unknown) > 1 {
			errs = append(errs, newValidationError(KindUnknownOption, unknown, "Unknown arguments: %s", strings.Join(unknown, ", ")))
		}
	}
	return errs
}

// runChecks runs the checks of every ancestor scope that are global, then
// every check of the final scope.
func runChecks(s *scope, res *Result) []*ValidationError {
	var chain []*scope
	for c := s; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	var errs []*ValidationError
	for i := len(chain) - 1; i >= 0; i-- {
		for _, c := range chain[i].checks {
			if i > 0 && !c.global {
				continue
			}
			if err := runCheck(c.fn, res); err != nil {
				errs = append(errs, &ValidationError{Kind: KindUserCheckFailed, Msg: err.Error(), Err: err})
			}
		}
	}
	return errs
}

func runCheck(fn CheckFunc, res *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.New(fmt.Sprint(r))
		}
	}()
	return fn(res, res.Aliases())
}
