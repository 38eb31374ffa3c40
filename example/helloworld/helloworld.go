// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// helloworld greets someone on an interval:
//
//	helloworld greet world --times 3 --interval 500ms
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/yeetrun/yargs/pkg/coerce"
	"github.com/yeetrun/yargs/pkg/yargs"
)

var stdout io.Writer = os.Stdout

func greet(ctx context.Context, r *yargs.Result) error {
	msg := fmt.Sprintf("Hello, %s!", r.String("name"))
	if r.Bool("shout") {
		msg = strings.ToUpper(msg)
	}
	v, _ := r.Get("interval")
	interval, ok := v.(time.Duration)
	if !ok {
		return fmt.Errorf("interval: got %T, want a duration", v)
	}
	for i := 0; i < r.Int("times"); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		fmt.Fprintln(stdout, msg)
	}
	return nil
}

func newParser() *yargs.Parser {
	return yargs.New("helloworld").
		Version("1.0.0").
		Env("HELLO").
		Option("shout", yargs.OptionSpec{Type: yargs.TypeBoolean, Description: "Greet loudly"}).
		Cmd("greet [name]", "Greet someone", func(p *yargs.Parser) {
			p.Default("name", "World").
				Option("times", yargs.OptionSpec{Type: yargs.TypeNumber, Aliases: []string{"n"}, Default: float64(1), HasDefault: true}).
				Option("interval", yargs.OptionSpec{Default: "2s", HasDefault: true, Coerce: coerce.Duration()})
		}, greet).
		DemandCommand(1, 1).
		RecommendCommands().
		Strict()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newParser().Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
