// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/yargs/pkg/coerce"
	"github.com/yeetrun/yargs/pkg/ftdetect"
	"github.com/yeetrun/yargs/pkg/yargs"
	"gopkg.in/yaml.v3"
)

// schema describes a program's options and commands.
type schema struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Description string `toml:"description" yaml:"description" json:"description"`
	Version     string `toml:"version" yaml:"version" json:"version"`
	Usage       string `toml:"usage" yaml:"usage" json:"usage"`
	Epilogue    string `toml:"epilogue" yaml:"epilogue" json:"epilogue"`

	Strict            bool   `toml:"strict" yaml:"strict" json:"strict"`
	RecommendCommands bool   `toml:"recommend_commands" yaml:"recommend_commands" json:"recommend_commands"`
	AllErrors         bool   `toml:"all_errors" yaml:"all_errors" json:"all_errors"`
	EnvPrefix         string `toml:"env_prefix" yaml:"env_prefix" json:"env_prefix"`
	ConfigOption      string `toml:"config_option" yaml:"config_option" json:"config_option"`
	ConfigFile        string `toml:"config_file" yaml:"config_file" json:"config_file"`

	Options  []optionDef  `toml:"options" yaml:"options" json:"options"`
	Commands []commandDef `toml:"commands" yaml:"commands" json:"commands"`
	Examples []exampleDef `toml:"examples" yaml:"examples" json:"examples"`
}

type optionDef struct {
	Key         string   `toml:"key" yaml:"key" json:"key"`
	Type        string   `toml:"type" yaml:"type" json:"type"`
	Elem        string   `toml:"elem" yaml:"elem" json:"elem"`
	Aliases     []string `toml:"aliases" yaml:"aliases" json:"aliases"`
	Description string   `toml:"description" yaml:"description" json:"description"`
	Default     any      `toml:"default" yaml:"default" json:"default"`
	Choices     []any    `toml:"choices" yaml:"choices" json:"choices"`
	Required    bool     `toml:"required" yaml:"required" json:"required"`
	Group       string   `toml:"group" yaml:"group" json:"group"`
	Hidden      bool     `toml:"hidden" yaml:"hidden" json:"hidden"`
	Local       bool     `toml:"local" yaml:"local" json:"local"`
	Deprecated  string   `toml:"deprecated" yaml:"deprecated" json:"deprecated"`
	Implies     []string `toml:"implies" yaml:"implies" json:"implies"`
	Conflicts   []string `toml:"conflicts" yaml:"conflicts" json:"conflicts"`
	Nargs       int      `toml:"nargs" yaml:"nargs" json:"nargs"`
	Positional  bool     `toml:"positional" yaml:"positional" json:"positional"`

	// Coerce names a converter: duration, url, port, semver or path.
	Coerce    string `toml:"coerce" yaml:"coerce" json:"coerce"`
	PortRange string `toml:"port_range" yaml:"port_range" json:"port_range"`
}

type commandDef struct {
	Pattern       string       `toml:"pattern" yaml:"pattern" json:"pattern"`
	Description   string       `toml:"description" yaml:"description" json:"description"`
	Aliases       []string     `toml:"aliases" yaml:"aliases" json:"aliases"`
	Hidden        bool         `toml:"hidden" yaml:"hidden" json:"hidden"`
	Deprecated    string       `toml:"deprecated" yaml:"deprecated" json:"deprecated"`
	DemandCommand int          `toml:"demand_command" yaml:"demand_command" json:"demand_command"`
	Options       []optionDef  `toml:"options" yaml:"options" json:"options"`
	Commands      []commandDef `toml:"commands" yaml:"commands" json:"commands"`
	Examples      []exampleDef `toml:"examples" yaml:"examples" json:"examples"`
}

type exampleDef struct {
	Command     string `toml:"command" yaml:"command" json:"command"`
	Description string `toml:"description" yaml:"description" json:"description"`
}

// decodeSchema decodes a TOML, YAML or JSON schema.
func decodeSchema(path string, data []byte) (*schema, error) {
	var s schema
	switch ft := ftdetect.Detect(path, data); ft {
	case ftdetect.TOML:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("decoding TOML schema %s: %w", path, err)
		}
	case ftdetect.YAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding YAML schema %s: %w", path, err)
		}
	case ftdetect.JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decoding JSON schema %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("schema %s: unsupported format %s", path, ft)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("schema %s: name is required", path)
	}
	return &s, nil
}

var types = map[string]yargs.Type{
	"":        yargs.TypeImplicit,
	"string":  yargs.TypeString,
	"number":  yargs.TypeNumber,
	"boolean": yargs.TypeBoolean,
	"bool":    yargs.TypeBoolean,
	"array":   yargs.TypeArray,
	"count":   yargs.TypeCount,
}

func parseType(name string) (yargs.Type, error) {
	t, ok := types[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

func coercer(d optionDef) (func(any) (any, error), error) {
	switch strings.ToLower(d.Coerce) {
	case "":
		return nil, nil
	case "duration":
		return coerce.Duration(), nil
	case "url":
		return coerce.URL(), nil
	case "port":
		if _, _, err := coerce.ParsePortRange(d.PortRange); err != nil {
			return nil, err
		}
		return coerce.Port(d.PortRange), nil
	case "semver":
		return coerce.Semver(""), nil
	case "path":
		return coerce.Path(), nil
	}
	return nil, fmt.Errorf("unknown coerce %q", d.Coerce)
}

// number converts the integer types the decoders produce to float64, the
// parser's number representation.
func number(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = number(e)
		}
		return out
	}
	return v
}

func (d optionDef) spec() (yargs.OptionSpec, error) {
	t, err := parseType(d.Type)
	if err != nil {
		return yargs.OptionSpec{}, fmt.Errorf("option %s: %w", d.Key, err)
	}
	elem, err := parseType(d.Elem)
	if err != nil {
		return yargs.OptionSpec{}, fmt.Errorf("option %s: %w", d.Key, err)
	}
	fn, err := coercer(d)
	if err != nil {
		return yargs.OptionSpec{}, fmt.Errorf("option %s: %w", d.Key, err)
	}
	spec := yargs.OptionSpec{
		Aliases:     d.Aliases,
		Type:        t,
		Elem:        elem,
		Description: d.Description,
		Required:    d.Required,
		Group:       d.Group,
		Hidden:      d.Hidden,
		Local:       d.Local,
		Deprecated:  d.Deprecated,
		Implies:     d.Implies,
		Conflicts:   d.Conflicts,
		Arity:       d.Nargs,
		Coerce:      fn,
	}
	if d.Default != nil {
		spec.Default = number(d.Default)
		spec.HasDefault = true
	}
	for _, c := range d.Choices {
		spec.Choices = append(spec.Choices, number(c))
	}
	return spec, nil
}

// checkOptions validates every option definition up front. Command
// builders only run once their command is selected.
func checkOptions(opts []optionDef, cmds []commandDef) error {
	for _, d := range opts {
		if _, err := d.spec(); err != nil {
			return err
		}
	}
	for _, c := range cmds {
		if err := checkOptions(c.Options, c.Commands); err != nil {
			return fmt.Errorf("command %q: %w", c.Pattern, err)
		}
	}
	return nil
}

type builder struct {
	logger *slog.Logger
}

func (b *builder) options(p *yargs.Parser, defs []optionDef) {
	for _, d := range defs {
		spec, err := d.spec()
		if err != nil {
			b.logger.Error("skipping invalid option", "key", d.Key, "err", err)
			continue
		}
		if d.Positional {
			p.Positional(d.Key, spec)
		} else {
			p.Option(d.Key, spec)
		}
	}
}

func (b *builder) commands(p *yargs.Parser, defs []commandDef) {
	for _, d := range defs {
		p.Command(yargs.CommandSpec{
			Pattern:     d.Pattern,
			Aliases:     d.Aliases,
			Description: d.Description,
			Hidden:      d.Hidden,
			Deprecated:  d.Deprecated,
			Builder: func(p *yargs.Parser) {
				b.options(p, d.Options)
				b.commands(p, d.Commands)
				for _, ex := range d.Examples {
					p.Example(ex.Command, ex.Description)
				}
				if d.DemandCommand > 0 {
					p.DemandCommand(d.DemandCommand, -1)
				}
			},
			Handler: b.handler(d),
		})
	}
}

// handler makes leaf commands runnable. Commands with subcommands have
// none, so a strict schema asks for a subcommand.
func (b *builder) handler(d commandDef) yargs.Handler {
	if len(d.Commands) > 0 {
		return nil
	}
	return func(ctx context.Context, r *yargs.Result) error {
		b.logger.DebugContext(ctx, "command matched", "pattern", d.Pattern)
		return nil
	}
}

// parser builds the parser described by s. Registration errors surface as
// panics from the yargs package; they are returned as errors here.
func (s *schema) parser(logger *slog.Logger) (p *yargs.Parser, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			p, err = nil, e
		}
	}()

	if err := checkOptions(s.Options, s.Commands); err != nil {
		return nil, err
	}
	b := &builder{logger: logger}
	p = yargs.New(s.Name).Logger(logger)
	if s.Description != "" {
		p.Description(s.Description)
	}
	if s.Version != "" {
		p.Version(s.Version)
	}
	if s.Usage != "" {
		p.Usage(s.Usage)
	}
	if s.Epilogue != "" {
		p.Epilogue(s.Epilogue)
	}
	if s.Strict {
		p.Strict()
	}
	if s.RecommendCommands {
		p.RecommendCommands()
	}
	if s.AllErrors {
		p.Validation(yargs.AllErrors)
	}
	if s.EnvPrefix != "" {
		p.Env(s.EnvPrefix)
	}
	if s.ConfigOption != "" {
		p.Config(s.ConfigOption, "", nil)
	}
	if s.ConfigFile != "" {
		p.ConfigFile(s.ConfigFile)
	}
	b.options(p, s.Options)
	b.commands(p, s.Commands)
	for _, ex := range s.Examples {
		p.Example(ex.Command, ex.Description)
	}
	return p, nil
}
