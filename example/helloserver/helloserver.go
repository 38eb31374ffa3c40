// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// helloserver is an HTTP server configured from flags, HELLO_* environment
// variables and an optional --config file.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/yeetrun/yargs/pkg/yargs"
)

type flags struct {
	Port     yargs.Port `flag:"port" short:"p" port:"1-65535" default:"8080" help:"Port to listen on"`
	Greeting string     `flag:"greeting" default:"Hello, world!" help:"Response body"`
	ShowEnv  bool       `flag:"show-env" help:"Serve the environment at /env"`
}

func main() {
	res, err := yargs.New("helloserver").
		Env("HELLO").
		Config("config", "Path to a TOML, YAML, HCL or JSON config file", nil).
		OptionsFrom(&flags{}).
		Strict().
		Parse(os.Args[1:])
	if err != nil {
		return
	}
	var f flags
	if err := res.Bind(&f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	addr := fmt.Sprintf(":%d", f.Port)
	http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.ShowEnv && r.URL.Path == "/env" {
			fmt.Fprintln(w, os.Environ())
			return
		}
		fmt.Fprintln(w, f.Greeting)
	}))
}
