// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/yeetrun/yargs/pkg/tui"
	"mvdan.cc/sh/v3/shell"
)

// Built-in option keys.
const (
	helpKey        = "help"
	helpLLMKey     = "help-llm"
	versionKey     = "version"
	completionFlag = "--get-yargs-completions"
)

// ParserConfig toggles lexing and coercion behavior.
type ParserConfig struct {
	// CamelCaseExpansion makes "foo-bar" also reachable as "fooBar".
	CamelCaseExpansion bool
	// BooleanNegation reads "--no-foo" as foo=false.
	BooleanNegation bool
	// ParsePositionalNumbers turns numeric positionals into numbers.
	ParsePositionalNumbers bool
	// ShortOptionGroups splits "-abc" into -a -b -c.
	ShortOptionGroups bool
	// UnknownOptionsAsArgs leaves undeclared flags in the positionals.
	UnknownOptionsAsArgs bool
}

// DefaultParserConfig returns the configuration used by New.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		CamelCaseExpansion:     true,
		BooleanNegation:        true,
		ParsePositionalNumbers: true,
		ShortOptionGroups:      true,
	}
}

// ConfigParser loads a config file into a (possibly nested) map.
type ConfigParser func(path string) (map[string]any, error)

// FailFunc receives every parse failure when installed with Parser.Fail.
type FailFunc func(msg string, err error, p *Parser)

// CheckFunc validates a parsed result. Returning an error, or panicking,
// fails the parse.
type CheckFunc func(r *Result, aliases map[string][]string) error

// Middleware runs on the assembled result before validation.
type Middleware func(r *Result) error

type check struct {
	fn     CheckFunc
	global bool
}

type example struct {
	cmd, desc string
}

// scope is the configuration layer for the root or one resolved command.
type scope struct {
	parent     *scope
	reg        *Registry
	node       *commandNode
	checks     []check
	demands    []Demand
	middleware []Middleware
	examples   []example
	usage      string
	epilogue   string

	strictOptions  bool
	strictCommands bool

	frozen bool
}

// Parser is a chainable argument parser. Configuration methods mutate the
// parser and return it. A Parser must not be used by concurrent parses.
type Parser struct {
	name        string
	description string
	version     string
	cfg         ParserConfig

	root *scope
	cur  *scope

	envEnabled bool
	envPrefix  string
	envDelim   string
	environ    []string
	readFile   func(string) ([]byte, error)

	configKey     string
	configParser  ConfigParser
	configObjects []map[string]any

	mode       ValidationMode
	recommend  bool
	completion CompletionFunc

	fail        FailFunc
	exitProcess bool
	exit        func(int)
	stdout      io.Writer
	stderr      io.Writer
	logger      *slog.Logger
	colors      tui.Colorizer
	wrap        int
}

// New returns a parser for the program called name. An empty name uses
// the base name of os.Args[0].
func New(name string) *Parser {
	if name == "" && len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
	}
	cfg := DefaultParserConfig()
	root := &scope{reg: newRegistry(cfg.CamelCaseExpansion), node: &commandNode{}}
	p := &Parser{
		name:        name,
		cfg:         cfg,
		root:        root,
		cur:         root,
		envDelim:    "__",
		readFile:    os.ReadFile,
		exitProcess: true,
		exit:        os.Exit,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		logger:      slog.New(slog.DiscardHandler),
		colors:      tui.NewColorizer(true),
	}
	p.Option(helpKey, OptionSpec{Type: TypeBoolean, Aliases: []string{"h"}, Description: "Show help"})
	p.Option(helpLLMKey, OptionSpec{Type: TypeBoolean, Description: "Show LLM-optimized help"})
	return p
}

// Name returns the script name used for "$0".
func (p *Parser) Name() string {
	return p.name
}

// mut returns the scope configuration calls apply to. It panics while a
// parse is running outside of a command builder.
func (p *Parser) mut() *scope {
	if p.cur.frozen {
		panic(&ConfigError{Msg: "configuration changed while a parse is running", Err: errdefs.ErrFailedPrecondition})
	}
	return p.cur
}

// global guards parser-wide settings, which only the root scope may change.
func (p *Parser) global() {
	if p.cur != p.root || p.root.frozen {
		panic(&ConfigError{Msg: "parser-wide settings cannot change while a parse is running", Err: errdefs.ErrFailedPrecondition})
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Option registers or merges spec under key.
func (p *Parser) Option(key string, spec OptionSpec) *Parser {
	spec.Key = key
	must(p.mut().reg.register(spec))
	return p
}

// Alias binds aliases to key.
func (p *Parser) Alias(key string, aliases ...string) *Parser {
	s := p.mut()
	for _, a := range aliases {
		must(s.reg.alias(key, a))
	}
	return p
}

// Default sets the default value for key.
func (p *Parser) Default(key string, v any) *Parser {
	p.mut().reg.setDefault(key, v)
	return p
}

// Describe sets the help description for key.
func (p *Parser) Describe(key, desc string) *Parser {
	p.mut().reg.ensure(key).Description = desc
	return p
}

func (p *Parser) setType(t Type, keys []string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).Type = t
	}
	return p
}

// Boolean declares keys as booleans.
func (p *Parser) Boolean(keys ...string) *Parser { return p.setType(TypeBoolean, keys) }

// Number declares keys as numbers.
func (p *Parser) Number(keys ...string) *Parser { return p.setType(TypeNumber, keys) }

// String declares keys as strings. Declaring "_" as a string keeps
// positionals from being parsed as numbers.
func (p *Parser) String(keys ...string) *Parser { return p.setType(TypeString, keys) }

// Array declares keys as arrays.
func (p *Parser) Array(keys ...string) *Parser { return p.setType(TypeArray, keys) }

// Count declares keys as counters.
func (p *Parser) Count(keys ...string) *Parser { return p.setType(TypeCount, keys) }

// Choices restricts key to the given values.
func (p *Parser) Choices(key string, vals ...any) *Parser {
	p.mut().reg.setChoices(key, vals...)
	return p
}

// DemandOption marks keys as required.
func (p *Parser) DemandOption(keys ...string) *Parser {
	return p.Demand(DemandKeys(keys...))
}

// DemandCommand requires between min and max non-option arguments after
// the resolved command. A negative max means no upper bound.
func (p *Parser) DemandCommand(min, max int) *Parser {
	return p.Demand(DemandRange(min, max))
}

// Nargs makes key consume exactly n arguments.
func (p *Parser) Nargs(key string, n int) *Parser {
	p.mut().reg.ensure(key).Arity = n
	return p
}

// RequiresArg makes each key fail when given without a value.
func (p *Parser) RequiresArg(keys ...string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).RequiresArg = true
	}
	return p
}

// Group places keys under a help heading.
func (p *Parser) Group(name string, keys ...string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).Group = name
	}
	return p
}

// Hide keeps keys out of help.
func (p *Parser) Hide(keys ...string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).Hidden = true
	}
	return p
}

// Local keeps keys from being inherited by subcommands and lets Reset
// drop them.
func (p *Parser) Local(keys ...string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).Local = true
	}
	return p
}

// Global undoes Local.
func (p *Parser) Global(keys ...string) *Parser {
	s := p.mut()
	for _, k := range keys {
		s.reg.ensure(k).Local = false
	}
	return p
}

// Deprecate marks key deprecated with an optional message.
func (p *Parser) Deprecate(key, msg string) *Parser {
	if msg == "" {
		msg = "deprecated"
	}
	p.mut().reg.ensure(key).Deprecated = msg
	return p
}

// Coerce installs fn to transform the merged value of key.
func (p *Parser) Coerce(key string, fn func(any) (any, error)) *Parser {
	p.mut().reg.ensure(key).Coerce = fn
	return p
}

// Implies requires implied keys whenever key is set.
func (p *Parser) Implies(key string, implied ...string) *Parser {
	s := p.mut().reg.ensure(key)
	s.Implies = appendUnique(s.Implies, implied...)
	return p
}

// Conflicts forbids key together with any of others.
func (p *Parser) Conflicts(key string, others ...string) *Parser {
	s := p.mut().reg.ensure(key)
	s.Conflicts = appendUnique(s.Conflicts, others...)
	return p
}

// Positional describes a command placeholder. It is normally called from a
// command builder.
func (p *Parser) Positional(name string, spec OptionSpec) *Parser {
	s := p.mut()
	spec.Key = name
	must(s.reg.register(spec))
	s.reg.ensure(name).positional = true
	return p
}

// Command registers a command. Commands registered inside a builder become
// subcommands of that builder's command.
func (p *Parser) Command(spec CommandSpec) *Parser {
	s := p.mut()
	node, err := insert(s.node, spec, s != p.root)
	must(err)
	if node == s.node {
		for _, ph := range node.placeholders {
			p.declarePlaceholder(s.reg, ph)
		}
	}
	return p
}

// Cmd is shorthand for Command.
func (p *Parser) Cmd(pattern, desc string, builder func(*Parser), handler Handler) *Parser {
	return p.Command(CommandSpec{Pattern: pattern, Description: desc, Builder: builder, Handler: handler})
}

func (p *Parser) declarePlaceholder(reg *Registry, ph placeholder) {
	spec := OptionSpec{Key: ph.name, Aliases: ph.aliases}
	must(reg.register(spec))
	s := reg.ensure(ph.name)
	s.positional = true
	if ph.variadic && s.Type == TypeImplicit {
		s.Type = TypeArray
	}
}

// Check adds a validation callback. Global checks also run for
// subcommands.
func (p *Parser) Check(fn CheckFunc, global bool) *Parser {
	s := p.mut()
	s.checks = append(s.checks, check{fn: fn, global: global})
	return p
}

// Middleware adds fn to run before validation, for this scope and its
// subcommands.
func (p *Parser) Middleware(fn Middleware) *Parser {
	s := p.mut()
	s.middleware = append(s.middleware, fn)
	return p
}

// Strict rejects unknown options and unknown commands.
func (p *Parser) Strict() *Parser {
	s := p.mut()
	s.strictOptions = true
	s.strictCommands = true
	return p
}

// StrictOptions rejects unknown options only.
func (p *Parser) StrictOptions() *Parser {
	p.mut().strictOptions = true
	return p
}

// StrictCommands rejects unknown or missing commands only.
func (p *Parser) StrictCommands() *Parser {
	p.mut().strictCommands = true
	return p
}

// RecommendCommands adds a "Did you mean" hint to unknown command errors.
func (p *Parser) RecommendCommands() *Parser {
	p.global()
	p.recommend = true
	return p
}

// Usage replaces the usage line for the current scope. "$0" expands to the
// script name.
func (p *Parser) Usage(usage string) *Parser {
	p.mut().usage = usage
	return p
}

// Example adds an example to help.
func (p *Parser) Example(cmd, desc string) *Parser {
	s := p.mut()
	s.examples = append(s.examples, example{cmd: cmd, desc: desc})
	return p
}

// Epilogue sets text printed at the end of help.
func (p *Parser) Epilogue(text string) *Parser {
	p.mut().epilogue = text
	return p
}

// Description sets the one-line program description shown in help.
func (p *Parser) Description(desc string) *Parser {
	p.global()
	p.description = desc
	return p
}

// Version enables --version.
func (p *Parser) Version(v string) *Parser {
	p.global()
	p.version = v
	return p.Option(versionKey, OptionSpec{Type: TypeBoolean, Description: "Show version number"})
}

// Wrap sets the help width. Zero uses the terminal width.
func (p *Parser) Wrap(cols int) *Parser {
	p.global()
	p.wrap = cols
	return p
}

// Env reads options from environment variables starting with prefix and
// an underscore. An empty prefix reads every variable.
func (p *Parser) Env(prefix string) *Parser {
	p.global()
	p.envEnabled = true
	p.envPrefix = prefix
	return p
}

// EnvDelimiter sets the nesting delimiter for environment keys.
func (p *Parser) EnvDelimiter(delim string) *Parser {
	p.global()
	p.envDelim = delim
	return p
}

// Environ replaces the environment snapshot (default os.Environ()).
func (p *Parser) Environ(env []string) *Parser {
	p.global()
	p.environ = env
	return p
}

// ReadFile replaces the file reader used for config files.
func (p *Parser) ReadFile(fn func(string) ([]byte, error)) *Parser {
	p.global()
	p.readFile = fn
	return p
}

// Config registers key as the option naming a config file. A nil parse
// function loads JSON, TOML, YAML or HCL by file type.
func (p *Parser) Config(key, desc string, parse ConfigParser) *Parser {
	p.global()
	if desc == "" {
		desc = "Path to config file"
	}
	p.configKey = key
	p.configParser = parse
	return p.Option(key, OptionSpec{Type: TypeString, Description: desc})
}

// ConfigFile sets a default config path. It registers "config" when
// Config has not been called.
func (p *Parser) ConfigFile(path string) *Parser {
	if p.configKey == "" {
		p.Config("config", "", nil)
	}
	return p.Default(p.configKey, path)
}

// ConfigObject adds a map with config-file precedence. Later objects and
// config files override earlier ones.
func (p *Parser) ConfigObject(m map[string]any) *Parser {
	p.global()
	p.configObjects = append(p.configObjects, m)
	return p
}

// ParserConfiguration replaces the lexing and coercion settings. Camel-case
// expansion applies to keys registered afterwards.
func (p *Parser) ParserConfiguration(cfg ParserConfig) *Parser {
	p.global()
	p.cfg = cfg
	p.root.reg.camel = cfg.CamelCaseExpansion
	return p
}

// Validation sets how many failures are reported.
func (p *Parser) Validation(mode ValidationMode) *Parser {
	p.global()
	p.mode = mode
	return p
}

// Fail installs a failure handler. With a handler installed nothing is
// printed and the process is never exited; Parse returns the error.
func (p *Parser) Fail(fn FailFunc) *Parser {
	p.global()
	p.fail = fn
	return p
}

// ExitProcess controls whether help, version and failures exit the
// process.
func (p *Parser) ExitProcess(enabled bool) *Parser {
	p.global()
	p.exitProcess = enabled
	return p
}

// ExitFunc replaces os.Exit.
func (p *Parser) ExitFunc(fn func(int)) *Parser {
	p.global()
	p.exit = fn
	return p
}

// Output sets the help and error sinks.
func (p *Parser) Output(stdout, stderr io.Writer) *Parser {
	p.global()
	p.stdout = stdout
	p.stderr = stderr
	return p
}

// Logger sets the debug logger.
func (p *Parser) Logger(l *slog.Logger) *Parser {
	p.global()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	p.logger = l
	return p
}

// Color enables or disables colored help headings. NO_COLOR and
// TERM=dumb always disable them.
func (p *Parser) Color(enabled bool) *Parser {
	p.global()
	p.colors = tui.NewColorizer(enabled)
	return p
}

// Completion installs a completion callback.
func (p *Parser) Completion(fn CompletionFunc) *Parser {
	p.global()
	p.completion = fn
	return p
}

// Reset clears per-command state in the current scope: local options,
// commands, non-global checks, demands, examples and usage. Global option
// specs survive.
func (p *Parser) Reset() *Parser {
	s := p.mut()
	s.reg.reset()
	s.node.children = nil
	s.node.placeholders = nil
	s.node.spec.Handler = nil
	kept := s.checks[:0]
	for _, c := range s.checks {
		if c.global {
			kept = append(kept, c)
		}
	}
	s.checks = kept
	s.demands = nil
	s.examples = nil
	s.usage = ""
	s.epilogue = ""
	return p
}

// run is the state of one parse after command resolution.
type run struct {
	scope *scope
	node  *commandNode
	path  []string
	av    *argv
	bind  binding
}

// freeze marks the root scope immutable for the duration of a parse and
// returns the function restoring the previous state.
func (p *Parser) freeze() func() {
	prev, wasFrozen := p.cur, p.root.frozen
	p.root.frozen = true
	p.cur = p.root
	return func() {
		p.cur = prev
		p.root.frozen = wasFrozen
	}
}

func (p *Parser) coerce(args []string, reg *Registry) *argv {
	return coerceTokens(lex(args, reg.numericShorts()), reg, p.cfg)
}

// resolve runs the lex, coerce and command descent loop.
func (p *Parser) resolve(args []string) *run {
	s := p.root
	node := s.node
	av := p.coerce(args, s.reg)
	var path []string
	for len(path) < len(av.positional) {
		child := node.match(av.positional[len(path)])
		if child == nil {
			break
		}
		s = p.enter(s, child)
		node = s.node
		path = append(path, child.name)
		p.logger.Debug("entered command", "command", strings.Join(path, " "))
		av = p.coerce(args, s.reg)
	}
	var rest []string
	if len(path) <= len(av.positional) {
		rest = av.positional[len(path):]
	}
	return &run{scope: s, node: node, path: path, av: av, bind: bindPlaceholders(node, rest)}
}

// enter builds the overlay scope for child and runs its builder.
func (p *Parser) enter(parent *scope, child *commandNode) *scope {
	s := &scope{
		parent:         parent,
		reg:            parent.reg.overlay(),
		node:           child.clone(),
		strictOptions:  parent.strictOptions,
		strictCommands: parent.strictCommands,
	}
	for _, ph := range child.placeholders {
		p.declarePlaceholder(s.reg, ph)
	}
	if b := child.spec.Builder; b != nil {
		func() {
			prev := p.cur
			p.cur = s
			defer func() { p.cur = prev }()
			b(p)
		}()
	}
	s.frozen = true
	return s
}

// Parse parses args (without the program name). On failure the error is
// passed to the failure handler, or printed with usage; unless
// ExitProcess(false) was set the process then exits. Help and version
// requests return ErrHelp, ErrHelpLLM or ErrVersion.
func (p *Parser) Parse(args []string) (*Result, error) {
	rn, res, err := p.parse(args)
	if err != nil {
		return res, p.outcome(rn, err)
	}
	return res, nil
}

// ParseString splits s with shell quoting rules and parses the fields.
// $VAR references expand from the parser's environment snapshot.
func (p *Parser) ParseString(s string) (*Result, error) {
	args, err := shell.Fields(s, p.lookupEnv)
	if err != nil {
		return nil, p.outcome(nil, &ConfigError{
			Msg: fmt.Sprintf("cannot split arguments %q", s),
			Err: fmt.Errorf("%w: %w", errdefs.ErrInvalidArgument, err),
		})
	}
	return p.Parse(args)
}

// Run parses args and invokes the resolved command's handler. Help and
// version output count as success.
func (p *Parser) Run(ctx context.Context, args []string) error {
	res, err := p.Parse(args)
	if err != nil {
		if isShown(err) {
			return nil
		}
		return err
	}
	if res.handler == nil {
		return nil
	}
	return res.handler(ctx, res)
}

func isShown(err error) bool {
	return errors.Is(err, ErrHelp) || errors.Is(err, ErrHelpLLM) || errors.Is(err, ErrVersion) || errors.Is(err, ErrCompletion)
}

func (p *Parser) parse(args []string) (*run, *Result, error) {
	defer p.freeze()()

	if len(args) > 0 && args[0] == completionFlag {
		return nil, nil, p.writeCompletions(args[1:])
	}

	rn := p.resolve(args)
	if rn.av.values[helpKey] == true {
		fmt.Fprint(p.stdout, p.helpText(rn.scope, rn.node))
		return rn, nil, ErrHelp
	}
	if rn.av.values[helpLLMKey] == true {
		fmt.Fprint(p.stdout, p.helpMarkdown(rn.scope, rn.node))
		return rn, nil, ErrHelpLLM
	}
	if p.version != "" && rn.av.values[versionKey] == true {
		fmt.Fprintln(p.stdout, p.version)
		return rn, nil, ErrVersion
	}

	res, coerceErrs, err := p.assemble(rn)
	if err != nil {
		return rn, nil, err
	}
	for _, mw := range p.middlewares(rn.scope) {
		if err := mw(res); err != nil {
			return rn, res, &ValidationError{Kind: KindUserCheckFailed, Msg: err.Error(), Err: err}
		}
	}
	if err := p.validate(rn, res, coerceErrs); err != nil {
		p.logger.Debug("validation failed", "command", strings.Join(rn.path, " "), "err", err)
		return rn, res, err
	}
	return rn, res, nil
}

func (p *Parser) middlewares(s *scope) []Middleware {
	var chain []*scope
	for ; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	var out []Middleware
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].middleware...)
	}
	return out
}

// outcome routes err through the failure channel.
func (p *Parser) outcome(rn *run, err error) error {
	if isShown(err) {
		if p.exitProcess {
			p.exit(0)
		}
		return err
	}
	msg := err.Error()
	if p.fail != nil {
		p.fail(msg, err, p)
		return err
	}
	s, node := p.root, p.root.node
	if rn != nil {
		s, node = rn.scope, rn.node
	}
	fmt.Fprint(p.stderr, p.helpText(s, node))
	fmt.Fprintln(p.stderr)
	fmt.Fprintln(p.stderr, p.colors.Error(msg))
	if p.exitProcess {
		p.exit(1)
	}
	return err
}

func (p *Parser) lookupEnv(name string) string {
	prefix := name + "="
	for _, kv := range p.env() {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}

func (p *Parser) env() []string {
	if p.environ != nil {
		return p.environ
	}
	return os.Environ()
}

// HelpText returns the root help.
func (p *Parser) HelpText() string {
	return p.helpText(p.root, p.root.node)
}

// ShowHelp writes the root help to w.
func (p *Parser) ShowHelp(w io.Writer) error {
	_, err := io.WriteString(w, p.HelpText())
	return err
}
