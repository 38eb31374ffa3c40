// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"fmt"
	"maps"
	"slices"

	"github.com/containerd/errdefs"
	"github.com/yeetrun/yargs/pkg/configfile"
	"github.com/yeetrun/yargs/pkg/env"
)

// layered collects values per canonical key; later puts override earlier
// ones, so sources are applied from lowest to highest precedence.
type layered struct {
	reg     *Registry
	values  map[string]any
	sources map[string]Source
}

func (l *layered) put(name string, v any, src Source) {
	key := l.reg.canonical(name)
	l.values[key] = v
	l.sources[key] = src
}

// assemble merges defaults, environment, config and command-line values
// into a Result. Errors from Coerce callbacks are returned separately so
// they can be reported during validation.
func (p *Parser) assemble(rn *run) (*Result, []*ValidationError, error) {
	reg := rn.scope.reg
	l := &layered{reg: reg, values: make(map[string]any), sources: make(map[string]Source)}

	for _, s := range reg.snapshot() {
		if s.HasDefault {
			l.put(s.Key, s.Default, SourceDefault)
		}
	}

	if p.envEnabled {
		vars := env.Collect(p.env(), p.envPrefix, p.envDelim)
		for _, k := range slices.Sorted(maps.Keys(vars)) {
			spec, _ := reg.lookup(k)
			l.put(k, coerceRaw(spec, vars[k]), SourceEnv)
		}
	}

	cfg, err := p.loadConfig(rn, reg)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(cfg)) {
		spec, _ := reg.lookup(k)
		l.put(k, coerceValue(spec, cfg[k]), SourceConfig)
	}

	for _, k := range rn.av.order {
		l.put(k, rn.av.values[k], SourceCLI)
	}
	for _, ph := range rn.node.placeholders {
		raw, ok := rn.bind.values[ph.name]
		if !ok {
			continue
		}
		spec, _ := reg.lookup(ph.name)
		l.put(ph.name, p.placeholderValue(spec, ph, raw), SourceCLI)
	}

	res := newResult(p.name)
	var errs []*ValidationError
	for _, key := range slices.Sorted(maps.Keys(l.values)) {
		v := l.values[key]
		names := []string{key}
		if spec, ok := reg.lookup(key); ok {
			names = spec.names()
			if spec.Coerce != nil {
				cv, err := spec.Coerce(v)
				if err != nil {
					errs = append(errs, &ValidationError{
						Kind: KindUserCheckFailed,
						Keys: []string{key},
						Msg:  fmt.Sprintf("Invalid value for %s: %v", key, err),
						Err:  err,
					})
					continue
				}
				v = cv
			}
		} else if p.cfg.CamelCaseExpansion {
			if c := camelCase(key); c != key {
				names = append(names, c)
			}
			for _, s := range rn.av.spellings[key] {
				if !slices.Contains(names, s) {
					names = append(names, s)
				}
			}
		}
		res.set(key, names, v, l.sources[key])
	}

	res.Command = slices.Clone(rn.path)
	pos := make([]any, 0, len(rn.path)+len(rn.bind.leftover)+len(rn.av.rest))
	for _, w := range rn.path {
		pos = append(pos, w)
	}
	pos = append(pos, coercePositionals(reg, p.cfg, rn.bind.leftover)...)
	for _, r := range rn.av.rest {
		pos = append(pos, r)
	}
	res.Positional = pos
	res.Rest = slices.Clone(rn.av.rest)
	res.aliases = reg.aliasMap()
	res.handler = rn.node.spec.Handler
	return res, errs, nil
}

func (p *Parser) placeholderValue(spec *OptionSpec, ph placeholder, raw []string) any {
	one := func(s string) any {
		if spec != nil && spec.Type != TypeImplicit && spec.Type != TypeArray {
			return coerceScalar(spec.Type, s)
		}
		if spec != nil && spec.Type == TypeArray && spec.Elem != TypeImplicit {
			return coerceScalar(spec.Elem, s)
		}
		if !p.cfg.ParsePositionalNumbers {
			return s
		}
		if v, ok := implicitNumber(s); ok {
			return v
		}
		return s
	}
	if !ph.variadic {
		return one(raw[0])
	}
	out := make([]any, 0, len(raw))
	for _, s := range raw {
		out = append(out, one(s))
	}
	return out
}

// loadConfig returns the flattened config values: config objects first,
// then the config file.
func (p *Parser) loadConfig(rn *run, reg *Registry) (map[string]any, error) {
	out := make(map[string]any)
	for _, obj := range p.configObjects {
		maps.Copy(out, configfile.Flatten(obj))
	}
	if p.configKey == "" {
		return out, nil
	}
	key := reg.canonical(p.configKey)
	var path string
	explicit := false
	if v, ok := rn.av.values[key]; ok {
		path, explicit = stringify(v), true
	} else if spec, ok := reg.lookup(key); ok && spec.HasDefault {
		path = stringify(spec.Default)
	}
	if path == "" {
		return out, nil
	}

	parse := p.configParser
	if parse == nil {
		parse = func(path string) (map[string]any, error) {
			return configfile.Load(path, p.readFile)
		}
	}
	m, err := parse(path)
	if err != nil {
		if !explicit && errdefs.IsNotFound(err) {
			p.logger.Debug("default config file not found", "path", path)
			return out, nil
		}
		if !errdefs.IsNotFound(err) && !errdefs.IsInvalidArgument(err) {
			err = fmt.Errorf("%w: %w", errdefs.ErrInvalidArgument, err)
		}
		return nil, &ConfigError{Key: p.configKey, Msg: fmt.Sprintf("cannot load config file %s: %v", path, err), Err: err}
	}
	p.logger.Debug("loaded config file", "path", path, "keys", len(m))
	maps.Copy(out, configfile.Flatten(m))
	return out, nil
}
