// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yargs is a declarative command-line parser with commands,
// typed options, defaults, environment and config-file layering, and
// validation.
//
// A program describes its interface on a Parser and then parses:
//
//	p := yargs.New("app").
//	    Option("port", yargs.OptionSpec{Type: yargs.TypeNumber, Aliases: []string{"p"}, Default: 8080, HasDefault: true}).
//	    Env("APP").
//	    ConfigFile("app.toml").
//	    Strict()
//	res, err := p.Parse(os.Args[1:])
//	if err != nil {
//	    return err
//	}
//	port := res.Int("port") // also reachable as res.Get("p")
//
// # Commands
//
// Commands are registered with a pattern of literal words followed by
// placeholders. A builder runs only when its command is selected and may
// declare options and further subcommands:
//
//	p.Cmd("serve", "Manage servers", func(p *yargs.Parser) {
//	    p.Cmd("start <name> [port]", "Start a server", func(p *yargs.Parser) {
//	        p.Positional("port", yargs.OptionSpec{Type: yargs.TypeNumber})
//	    }, startHandler)
//	}, nil).StrictCommands()
//
// Run parses and invokes the handler of the resolved command.
//
// # Flag Syntax
//
//   - Long flags: --name value, --name=value, --no-name (boolean negation)
//   - Short flags: -n value, -n=value, -abc (a group of booleans), -vvv (counts)
//   - "--" ends option parsing; what follows is kept raw in Result.Rest
//   - Numeric tokens such as -5 are positionals unless a digit is a
//     registered short option
//
// Repeating an array option accumulates values; repeating any other option
// keeps the last one.
//
// # Precedence
//
// Values are merged from lowest to highest precedence: defaults,
// environment variables, config objects and files, then the command line.
// Result.Source reports which one won.
//
// # Validation
//
// After assembly the result is checked for required keys and arity, then
// choices, then implies/conflicts, then strict mode, then user checks.
// Failures are *ValidationError values, or ValidationErrors when
// Validation(AllErrors) is set. All of them match errdefs.ErrInvalidArgument.
//
// By default a failure prints usage and the message to stderr and exits with
// code 1; install Fail or call ExitProcess(false) to handle it yourself.
//
// # Struct Binding
//
// OptionsFrom registers options from struct tags and Result.Bind fills a
// struct from a result:
//
//	type Flags struct {
//	    Verbose bool          `flag:"verbose" short:"v" help:"Enable verbose output"`
//	    Timeout time.Duration `flag:"timeout" default:"30s"`
//	    Port    yargs.Port    `flag:"port" port:"1-65535" required:"true"`
//	}
//
// Supported field types are string, bool, the integer and float kinds,
// time.Duration, url.URL, Port, slices of these, and pointers to any of
// them.
package yargs
