// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coerce provides converters for yargs option values. Each
// constructor returns a func(any) (any, error) suitable for
// OptionSpec.Coerce or Parser.Coerce. Array values are converted element by
// element.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Func converts a parsed option value.
type Func func(any) (any, error)

// each applies fn to v, or to every element when v is a list.
func each(fn func(any) (any, error)) Func {
	return func(v any) (any, error) {
		list, ok := v.([]any)
		if !ok {
			return fn(v)
		}
		out := make([]any, 0, len(list))
		for _, e := range list {
			c, err := fn(e)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}
}

// text renders scalars the way they were most likely typed.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Duration parses Go durations ("1m30s"). Bare numbers are seconds.
func Duration() Func {
	return each(func(v any) (any, error) {
		switch x := v.(type) {
		case time.Duration:
			return x, nil
		case float64:
			if math.IsNaN(x) {
				return nil, errors.New("invalid duration")
			}
			return time.Duration(x * float64(time.Second)), nil
		}
		s := text(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return d, nil
	})
}

// URL parses an absolute URL. When schemes are given the URL must use one
// of them.
func URL(schemes ...string) Func {
	return each(func(v any) (any, error) {
		s := text(v)
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", s, err)
		}
		if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
			return nil, fmt.Errorf("invalid URL %q: must be absolute", s)
		}
		if len(schemes) == 0 {
			return u, nil
		}
		for _, sc := range schemes {
			if strings.EqualFold(u.Scheme, sc) {
				return u, nil
			}
		}
		return nil, fmt.Errorf("invalid URL %q: scheme must be one of %s", s, strings.Join(schemes, ", "))
	})
}

// Port parses a TCP/UDP port and checks it against portRange ("1-65535").
// An empty range accepts 0-65535.
func Port(portRange string) Func {
	return each(func(v any) (any, error) {
		p, err := ParsePortInRange(text(v), portRange)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// ParsePortRange parses a port range string like "1-65535" or "8000-9000".
// An empty string returns 0, 0 and no error.
func ParsePortRange(rangeStr string) (min, max uint16, err error) {
	if rangeStr == "" {
		return 0, 0, nil
	}
	lo, hi, ok := strings.Cut(rangeStr, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid port range format %q (expected \"min-max\")", rangeStr)
	}
	minVal, err := strconv.ParseUint(lo, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min port in range %q: %w", rangeStr, err)
	}
	maxVal, err := strconv.ParseUint(hi, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max port in range %q: %w", rangeStr, err)
	}
	if minVal > maxVal {
		return 0, 0, fmt.Errorf("invalid port range %q: min (%d) > max (%d)", rangeStr, minVal, maxVal)
	}
	return uint16(minVal), uint16(maxVal), nil
}

// ParsePort parses a port value with user-facing error messages.
func ParsePort(value string) (uint16, error) {
	return ParsePortInRange(value, "")
}

// ParsePortInRange parses value and checks it against portRange.
func ParsePortInRange(value, portRange string) (uint16, error) {
	bounds := "0 and 65535"
	if portRange != "" {
		bounds = portRange
	}
	portVal, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("port must be between %s, got %q", bounds, value)
		}
		return 0, fmt.Errorf("invalid port value %q", value)
	}
	if portRange == "" {
		return uint16(portVal), nil
	}
	min, max, err := ParsePortRange(portRange)
	if err != nil {
		return 0, err
	}
	if uint16(portVal) < min || uint16(portVal) > max {
		return 0, fmt.Errorf("port must be between %s, got %d", bounds, portVal)
	}
	return uint16(portVal), nil
}

// Semver parses a semantic version. A non-empty constraint such as
// ">= 1.2, < 2" must be satisfied.
func Semver(constraint string) Func {
	var c *semver.Constraints
	if constraint != "" {
		var err error
		c, err = semver.NewConstraint(constraint)
		if err != nil {
			panic(fmt.Sprintf("coerce: invalid semver constraint %q: %v", constraint, err))
		}
	}
	return each(func(v any) (any, error) {
		s := text(v)
		ver, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", s, err)
		}
		if c != nil {
			if ok, errs := c.Validate(ver); !ok {
				return nil, fmt.Errorf("version %s does not satisfy %q: %w", ver, constraint, errors.Join(errs...))
			}
		}
		return ver, nil
	})
}

// Path expands a leading "~" and returns the cleaned absolute path.
func Path() Func {
	return each(func(v any) (any, error) {
		s := text(v)
		if s == "" {
			return nil, errors.New("empty path")
		}
		if s == "~" || strings.HasPrefix(s, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("cannot expand %q: %w", s, err)
			}
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		return abs, nil
	})
}
