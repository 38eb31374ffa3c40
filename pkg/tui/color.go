// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tui holds terminal presentation helpers.
package tui

import (
	"os"

	"github.com/fatih/color"
)

// Colorizer styles help output. The zero value prints plain text.
type Colorizer struct {
	Enabled bool

	heading *color.Color
	err     *color.Color
	dim     *color.Color
}

// NewColorizer returns a Colorizer. NO_COLOR, an unset TERM and TERM=dumb
// disable color regardless of enabled.
func NewColorizer(enabled bool) Colorizer {
	if !enabled || !terminalAllowsColor() {
		return Colorizer{}
	}
	c := Colorizer{
		Enabled: true,
		heading: color.New(color.Bold),
		err:     color.New(color.FgRed),
		dim:     color.New(color.FgHiBlack),
	}
	// Override fatih/color's own stdout tty detection.
	for _, cc := range []*color.Color{c.heading, c.err, c.dim} {
		cc.EnableColor()
	}
	return c
}

func terminalAllowsColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

func (c Colorizer) apply(cc *color.Color, text string) string {
	if !c.Enabled || cc == nil {
		return text
	}
	return cc.Sprint(text)
}

// Heading styles a help section heading.
func (c Colorizer) Heading(text string) string { return c.apply(c.heading, text) }

// Error styles a failure message.
func (c Colorizer) Error(text string) string { return c.apply(c.err, text) }

// Dim styles secondary text.
func (c Colorizer) Dim(text string) string { return c.apply(c.dim, text) }
