// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"tailscale.com/util/mak"
)

var (
	decimalRE     = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
	hexRE         = regexp.MustCompile(`^[-+]?0[xX][0-9a-fA-F]+$`)
	leadingZeroRE = regexp.MustCompile(`^[-+]?0\d`)
)

// maxSafeDigits is the longest integer literal that survives a round trip
// through float64.
const maxSafeDigits = 15

// isNumber reports whether s is a decimal, scientific or hex literal.
func isNumber(s string) bool {
	return decimalRE.MatchString(s) || hexRE.MatchString(s)
}

// parseNumber parses s as a number. Input that is not a numeric literal
// yields NaN; it never fails.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if hexRE.MatchString(s) {
		// Wide literals round to the nearest float64, or ±Inf past its range.
		n, ok := new(big.Int).SetString(strings.TrimLeft(s, "+-")[2:], 16)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		if strings.HasPrefix(s, "-") {
			f = -f
		}
		return f
	}
	if !decimalRE.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// parseBoolValue reads an explicit boolean value. Anything that is not a
// recognizable false is true, so "--flag=yes" still enables the flag.
func parseBoolValue(s string) bool {
	switch strings.ToLower(s) {
	case "false", "0", "no", "off", "":
		return false
	}
	return true
}

// attempt is one step of implicit coercion.
type attempt func(string) (any, bool)

// implicitAttempts is tried in order for values with no declared type.
var implicitAttempts = []attempt{
	boolLiteral,
	implicitNumber,
}

func boolLiteral(s string) (any, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return nil, false
}

// implicitNumber accepts numeric literals that keep their meaning as a
// float64. Leading-zero integers and very long integers stay strings.
func implicitNumber(s string) (any, bool) {
	if !isNumber(s) || leadingZeroRE.MatchString(s) {
		return nil, false
	}
	digits := strings.TrimLeft(s, "+-")
	if !strings.ContainsAny(digits, ".eExX") && len(digits) > maxSafeDigits {
		return nil, false
	}
	return parseNumber(s), true
}

func coerceImplicit(s string) any {
	for _, try := range implicitAttempts {
		if v, ok := try(s); ok {
			return v
		}
	}
	return s
}

// coerceScalar converts raw according to typ. Counts are parsed as numbers
// and truncated.
func coerceScalar(typ Type, raw string) any {
	switch typ {
	case TypeBoolean:
		return parseBoolValue(raw)
	case TypeNumber:
		return parseNumber(raw)
	case TypeCount:
		n := parseNumber(raw)
		if math.IsNaN(n) {
			return 0
		}
		return int(n)
	case TypeString:
		return raw
	}
	return coerceImplicit(raw)
}

// coerceElems converts array elements per spec.Elem.
func coerceElems(spec *OptionSpec, raw []string) []any {
	elem := TypeString
	if spec != nil && (spec.Elem == TypeNumber || spec.Elem == TypeBoolean) {
		elem = spec.Elem
	}
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		out = append(out, coerceScalar(elem, r))
	}
	return out
}

// coerceRaw converts a string coming from the environment or a config
// file. Array values are split on commas.
func coerceRaw(spec *OptionSpec, raw string) any {
	if spec == nil {
		return coerceImplicit(raw)
	}
	if spec.Type == TypeArray {
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return coerceElems(spec, parts)
	}
	return coerceScalar(spec.Type, raw)
}

// coerceValue normalizes a decoded config value against spec.
func coerceValue(spec *OptionSpec, v any) any {
	switch x := v.(type) {
	case string:
		return coerceRaw(spec, x)
	case []any:
		if spec == nil || spec.Type != TypeArray {
			return x
		}
		raw := make([]string, 0, len(x))
		for _, e := range x {
			raw = append(raw, stringify(e))
		}
		return coerceElems(spec, raw)
	}
	if spec == nil {
		return v
	}
	switch spec.Type {
	case TypeArray:
		return coerceElems(spec, []string{stringify(v)})
	case TypeString:
		return stringify(v)
	case TypeCount:
		if f, ok := v.(float64); ok {
			return int(f)
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return parseNumber(stringify(v))
		}
	}
	return v
}

// argv is the output of coercion for one pass over the tokens.
type argv struct {
	values     map[string]any // canonical key -> value
	order      []string       // canonical keys, first-set order
	positional []string       // unconsumed positionals before "--"
	rest       []string       // tokens after "--"
	unknown    []string       // undeclared flag keys, first-seen order
	errs       []*ValidationError

	// spellings maps an undeclared key to the other spellings that
	// resolved to it, such as fooBar for foo-bar.
	spellings map[string][]string
	byCamel   map[string]string // camelCase(name) -> undeclared key
}

func (a *argv) set(key string, v any) {
	if _, ok := a.values[key]; !ok {
		a.order = append(a.order, key)
	}
	a.values[key] = v
}

func (a *argv) appendValues(key string, vs []any) {
	cur, _ := a.values[key].([]any)
	a.set(key, append(cur, vs...))
}

func (a *argv) increment(key string) {
	n, _ := a.values[key].(int)
	a.set(key, n+1)
}

func (a *argv) markUnknown(key string) {
	for _, k := range a.unknown {
		if k == key {
			return
		}
	}
	a.unknown = append(a.unknown, key)
}

// unknownKey returns the key an undeclared flag name is stored under. With
// camel-case expansion, foo-bar and fooBar share the first-seen spelling.
func (c *coercer) unknownKey(name string) string {
	key := name
	if c.cfg.CamelCaseExpansion {
		camel := camelCase(name)
		if k, ok := c.a.byCamel[camel]; ok {
			key = k
		} else {
			mak.Set(&c.a.byCamel, camel, name)
		}
		if key != name && !slices.Contains(c.a.spellings[key], name) {
			mak.Set(&c.a.spellings, key, append(c.a.spellings[key], name))
		}
	}
	c.a.markUnknown(key)
	return key
}

// coercer walks a token stream against a registry.
type coercer struct {
	reg  *Registry
	cfg  ParserConfig
	toks []token
	a    *argv
}

func coerceTokens(toks []token, reg *Registry, cfg ParserConfig) *argv {
	c := &coercer{reg: reg, cfg: cfg, toks: toks, a: &argv{values: make(map[string]any)}}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokSeparator:
		case tokPositional:
			if t.literal {
				c.a.rest = append(c.a.rest, t.value)
			} else {
				c.a.positional = append(c.a.positional, t.value)
			}
		case tokLong:
			i = c.long(i)
		case tokShort:
			i = c.short(i)
		}
	}
	return c.a
}

func (c *coercer) long(i int) int {
	t := c.toks[i]
	spec, ok := c.reg.lookup(t.name)
	if !ok && c.cfg.BooleanNegation && !t.hasValue && strings.HasPrefix(t.name, "no-") {
		target, declared := c.reg.lookup(t.name[3:])
		switch {
		case declared && target.Type == TypeBoolean:
			c.a.set(target.Key, false)
			return i
		case !declared:
			c.a.set(c.unknownKey(t.name[3:]), false)
			return i
		}
	}
	if !ok {
		if c.cfg.UnknownOptionsAsArgs {
			c.a.positional = append(c.a.positional, t.raw)
			return i
		}
		return c.flag(nil, c.unknownKey(t.name), t.value, t.hasValue, i)
	}
	return c.flag(spec, spec.Key, t.value, t.hasValue, i)
}

func (c *coercer) short(i int) int {
	t := c.toks[i]
	if t.name == "" {
		c.a.positional = append(c.a.positional, t.raw)
		return i
	}
	if !c.cfg.ShortOptionGroups {
		return c.named(t.name, t.value, t.hasValue, t.raw, i)
	}
	chars := []rune(t.name)
	if c.cfg.UnknownOptionsAsArgs && !c.reg.known(string(chars[0])) {
		c.a.positional = append(c.a.positional, t.raw)
		return i
	}
	for k, ch := range chars {
		name := string(ch)
		if k == len(chars)-1 {
			return c.named(name, t.value, t.hasValue, t.raw, i)
		}
		spec, ok := c.reg.lookup(name)
		rest := string(chars[k+1:])
		if t.hasValue {
			rest += "=" + t.value
		}
		if spec.takesValue() || isNumber(rest) {
			rest = strings.TrimPrefix(rest, "=")
			return c.named(name, rest, true, t.raw, i)
		}
		var key string
		if ok {
			key = spec.Key
		} else {
			key = c.unknownKey(name)
		}
		if ok && spec.Type == TypeCount {
			c.a.increment(key)
		} else {
			c.a.set(key, true)
		}
	}
	return i
}

// named handles a single flag name that may consume the next token.
func (c *coercer) named(name, value string, hasValue bool, raw string, i int) int {
	spec, ok := c.reg.lookup(name)
	if !ok {
		if c.cfg.UnknownOptionsAsArgs {
			c.a.positional = append(c.a.positional, raw)
			return i
		}
		return c.flag(nil, c.unknownKey(name), value, hasValue, i)
	}
	return c.flag(spec, spec.Key, value, hasValue, i)
}

// nextValue returns the index of the positional following i, if any.
func (c *coercer) nextValue(i int) (int, bool) {
	j := i + 1
	if j < len(c.toks) && c.toks[j].kind == tokPositional && !c.toks[j].literal {
		return j, true
	}
	return 0, false
}

// flag applies one occurrence of key and returns the index of the last
// token consumed.
func (c *coercer) flag(spec *OptionSpec, key, value string, hasValue bool, i int) int {
	typ := TypeImplicit
	arity := 0
	if spec != nil {
		typ = spec.Type
		arity = spec.Arity
	}
	switch {
	case typ == TypeCount:
		if hasValue {
			c.a.set(key, coerceScalar(TypeCount, value))
			return i
		}
		c.a.increment(key)
		return i

	case typ == TypeBoolean:
		if hasValue {
			c.a.set(key, parseBoolValue(value))
			return i
		}
		if j, ok := c.nextValue(i); ok {
			if v, lit := boolLiteral(c.toks[j].value); lit {
				c.a.set(key, v)
				return j
			}
		}
		c.a.set(key, true)
		return i

	case typ == TypeArray || arity > 1:
		var vals []string
		if hasValue {
			vals = append(vals, value)
		}
		for arity == 0 || len(vals) < arity {
			j, ok := c.nextValue(i)
			if !ok {
				break
			}
			vals = append(vals, c.toks[j].value)
			i = j
		}
		if (arity > 0 && len(vals) < arity) || (len(vals) == 0 && spec.RequiresArg) {
			c.a.errs = append(c.a.errs, notEnoughFollowing(key))
			return i
		}
		if typ == TypeArray {
			c.a.appendValues(key, coerceElems(spec, vals))
			return i
		}
		out := make([]any, 0, len(vals))
		for _, v := range vals {
			out = append(out, coerceScalar(typ, v))
		}
		c.a.set(key, out)
		return i
	}

	if hasValue {
		c.a.set(key, coerceScalar(typ, value))
		return i
	}
	if j, ok := c.nextValue(i); ok {
		c.a.set(key, coerceScalar(typ, c.toks[j].value))
		return j
	}
	if spec != nil && (spec.RequiresArg || arity == 1) {
		c.a.errs = append(c.a.errs, notEnoughFollowing(key))
		return i
	}
	switch typ {
	case TypeString:
		c.a.set(key, "")
	case TypeNumber:
		c.a.set(key, math.NaN())
	default:
		c.a.set(key, true)
	}
	return i
}

func notEnoughFollowing(key string) *ValidationError {
	return newValidationError(KindArityMismatch, []string{key}, "Not enough arguments following: %s", key)
}

// coercePositionals types the "_" values. When "_" is declared string no
// auto-detection happens.
func coercePositionals(reg *Registry, cfg ParserConfig, raw []string) []any {
	asString := !cfg.ParsePositionalNumbers
	if s, ok := reg.lookup("_"); ok && s.Type == TypeString {
		asString = true
	}
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		if asString {
			out = append(out, r)
			continue
		}
		if v, ok := implicitNumber(r); ok {
			out = append(out, v)
			continue
		}
		out = append(out, r)
	}
	return out
}

// stringify renders a value the way it would have been typed.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
