// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The yargs command parses arguments against a schema file and prints the
// result as JSON. It is useful for trying out parser behavior and for shell
// scripts that want typed, validated arguments:
//
//	yargs --schema app.toml -- serve web --port 8080
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/yeetrun/yargs/pkg/coerce"
	"github.com/yeetrun/yargs/pkg/yargs"
)

const version = "0.1.0"

// errReported means the parser already printed the failure.
var errReported = errors.New("error already reported")

type cliOptions struct {
	Schema     string `flag:"schema" short:"s" help:"Schema file (TOML, YAML or JSON)" required:"true"`
	MinVersion string `flag:"min-version" help:"Fail unless the schema version is at least this"`
	Flat       bool   `flag:"flat" help:"Print flat keys instead of nested objects"`
	Completion bool   `flag:"completion" help:"Print a bash completion script for the schema's program"`
	Debug      bool   `flag:"debug" help:"Log parser decisions to stderr"`
}

func newCLI(stdout, stderr io.Writer) *yargs.Parser {
	return yargs.New("yargs").
		Description("Parse arguments against a schema and print them as JSON").
		Usage("$0 --schema FILE [OPTIONS] -- [ARGS...]").
		Version(version).
		ExitProcess(false).
		Output(stdout, stderr).
		OptionsFrom(&cliOptions{}).
		Coerce("schema", coerce.Path()).
		Coerce("min-version", coerce.Semver("")).
		Example("$0 -s app.toml -- serve web --port 8080", "Parse a command line").
		Example("$0 -s app.yaml --completion >> ~/.bashrc", "Install completions").
		Strict()
}

func shown(err error) bool {
	for _, target := range []error{yargs.ErrHelp, yargs.ErrHelpLLM, yargs.ErrVersion, yargs.ErrCompletion} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *log.Logger) error {
	res, err := newCLI(stdout, stderr).Parse(args)
	if err != nil {
		if shown(err) {
			return nil
		}
		return errReported
	}
	var opts cliOptions
	if err := res.Bind(&opts); err != nil {
		return err
	}
	if opts.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	slogger := slog.New(logger)

	data, err := os.ReadFile(opts.Schema)
	if err != nil {
		return err
	}
	s, err := decodeSchema(opts.Schema, data)
	if err != nil {
		return err
	}
	if v, ok := res.Get("min-version"); ok {
		if err := checkVersion(s, v.(*semver.Version)); err != nil {
			return err
		}
	}
	p, err := s.parser(slogger)
	if err != nil {
		return fmt.Errorf("schema %s: %w", opts.Schema, err)
	}
	p.ExitProcess(false).Output(stdout, stderr)
	if opts.Completion {
		return p.CompletionScript(stdout)
	}

	slogger.DebugContext(ctx, "parsing", "schema", opts.Schema, "args", res.Rest)
	parsed, err := p.Parse(res.Rest)
	if err != nil {
		if shown(err) {
			return nil
		}
		return errReported
	}
	out := parsed.Nested()
	if opts.Flat {
		out = parsed.Map()
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSafe(out))
}

func checkVersion(s *schema, minVersion *semver.Version) error {
	if s.Version == "" {
		return fmt.Errorf("schema %s has no version; --min-version %s needs one", s.Name, minVersion)
	}
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return fmt.Errorf("schema %s: invalid version %q: %w", s.Name, s.Version, err)
	}
	if v.LessThan(minVersion) {
		return fmt.Errorf("schema %s is version %s, need at least %s", s.Name, v, minVersion)
	}
	return nil
}

// jsonSafe rewrites values encoding/json cannot represent: NaN and
// infinities become strings, and coerced values use their String form.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Sprint(x)
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonSafe(e)
		}
		return out
	case fmt.Stringer:
		return x.String()
	}
	return v
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "yargs"})
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		if !errors.Is(err, errReported) {
			logger.Error(err)
		}
		os.Exit(1)
	}
}
