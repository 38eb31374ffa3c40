// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/yeetrun/yargs/pkg/coerce"
)

// Port is a uint16 type for IP ports with optional range validation.
//
// A `port:"min-max"` tag restricts the accepted range:
//
//	type Flags struct {
//	    HTTPPort  Port  `flag:"port" port:"1-65535" help:"HTTP port (excludes port 0)"`
//	    AdminPort *Port `flag:"admin" port:"8000-9000" help:"Admin port"`
//	}
type Port uint16

var (
	portType     = reflect.TypeOf(Port(0))
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf(url.URL{})
	urlPtrType   = reflect.TypeOf((*url.URL)(nil))
)

// structField is one bindable field of a flags struct.
type structField struct {
	index     []int
	key       string
	short     string
	help      string
	def       string
	choices   string
	required  bool
	portRange string
	typ       reflect.Type
}

// structFields walks the exported fields of t, descending into embedded
// structs. Fields tagged flag:"-" are skipped.
func structFields(t reflect.Type) []structField {
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for _, sub := range structFields(f.Type) {
				sub.index = append([]int{i}, sub.index...)
				out = append(out, sub)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get("flag")
		if key == "-" {
			continue
		}
		if key == "" {
			key = strings.ToLower(f.Name)
		}
		required, _ := strconv.ParseBool(f.Tag.Get("required"))
		out = append(out, structField{
			index:     []int{i},
			key:       key,
			short:     f.Tag.Get("short"),
			help:      f.Tag.Get("help"),
			def:       f.Tag.Get("default"),
			choices:   f.Tag.Get("choices"),
			required:  required,
			portRange: f.Tag.Get("port"),
			typ:       f.Type,
		})
	}
	return out
}

func structType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &ConfigError{Msg: fmt.Sprintf("expected a struct or pointer to struct, got %T", v), Err: errdefs.ErrInvalidArgument}
	}
	return t, nil
}

// OptionsFrom registers an option for every exported field of the struct
// v points to. Tags: flag (key, "-" to skip), short, help, default,
// choices (comma separated), required and port.
func (p *Parser) OptionsFrom(v any) *Parser {
	t, err := structType(v)
	must(err)
	for _, f := range structFields(t) {
		spec := fieldSpec(f)
		p.Option(f.key, spec)
	}
	return p
}

func fieldSpec(f structField) OptionSpec {
	spec := OptionSpec{Description: f.help, Required: f.required}
	if f.short != "" {
		spec.Aliases = []string{f.short}
	}
	t := f.typ
	if t.Kind() == reflect.Pointer && t != urlPtrType {
		t = t.Elem()
	}
	switch {
	case t == portType:
		spec.Type = TypeNumber
		spec.Coerce = coerce.Port(f.portRange)
	case t == durationType:
		spec.Type = TypeString
		spec.Coerce = coerce.Duration()
	case t == urlType || t == urlPtrType:
		spec.Type = TypeString
		spec.Coerce = coerce.URL()
	default:
		switch t.Kind() {
		case reflect.Bool:
			spec.Type = TypeBoolean
		case reflect.String:
			spec.Type = TypeString
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			spec.Type = TypeNumber
		case reflect.Slice:
			spec.Type = TypeArray
			switch t.Elem().Kind() {
			case reflect.Bool:
				spec.Elem = TypeBoolean
			case reflect.String:
				spec.Elem = TypeString
			case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Float64:
				spec.Elem = TypeNumber
			}
		}
	}
	if f.def != "" {
		spec.Default = coerceRaw(&spec, f.def)
		spec.HasDefault = true
	}
	if f.choices != "" {
		ct := spec.Type
		if ct == TypeArray {
			ct = spec.Elem
		}
		for _, c := range strings.Split(f.choices, ",") {
			c = strings.TrimSpace(c)
			if ct == TypeImplicit {
				spec.Choices = append(spec.Choices, c)
				continue
			}
			spec.Choices = append(spec.Choices, coerceScalar(ct, c))
		}
	}
	return spec
}

// Bind stores the result into the struct v points to, using the same field
// rules as OptionsFrom. Fields without a value keep their default tag, if
// any, or are left untouched.
func (r *Result) Bind(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &ConfigError{Msg: fmt.Sprintf("Bind needs a non-nil pointer to a struct, got %T", v), Err: errdefs.ErrInvalidArgument}
	}
	rv = rv.Elem()
	for _, f := range structFields(rv.Type()) {
		val, ok := r.Get(f.key)
		if !ok && f.short != "" {
			val, ok = r.Get(f.short)
		}
		if !ok {
			if f.def == "" {
				continue
			}
			val = f.def
		}
		field := rv.FieldByIndex(f.index)
		if err := setFieldValue(field, val, f.portRange); err != nil {
			return &FlagValueError{
				FlagName:  f.key,
				FieldName: rv.Type().FieldByIndex(f.index).Name,
				Value:     val,
				UserMsg:   err.Error(),
				Err:       fmt.Errorf("failed to set field %s: %w", rv.Type().FieldByIndex(f.index).Name, err),
			}
		}
	}
	return nil
}

// setFieldValue stores value in field, converting between the parser's
// value shapes (string, float64, bool, []any) and the field's type.
func setFieldValue(field reflect.Value, value any, portRange string) error {
	if value == nil {
		return nil
	}
	vv := reflect.ValueOf(value)
	if field.Type() == portType || (field.Kind() == reflect.Pointer && field.Type().Elem() == portType) {
		return setPort(field, value, portRange)
	}
	if vv.Type().AssignableTo(field.Type()) {
		field.Set(vv)
		return nil
	}

	switch field.Kind() {
	case reflect.Pointer:
		if field.Type() == urlPtrType {
			u, err := url.Parse(stringify(value))
			if err != nil {
				return fmt.Errorf("invalid URL %q: %w", stringify(value), err)
			}
			field.Set(reflect.ValueOf(u))
			return nil
		}
		newValue := reflect.New(field.Type().Elem())
		if err := setFieldValue(newValue.Elem(), value, portRange); err != nil {
			return err
		}
		field.Set(newValue)
		return nil

	case reflect.Struct:
		if field.Type() == urlType {
			if u, ok := value.(*url.URL); ok {
				field.Set(reflect.ValueOf(*u))
				return nil
			}
			u, err := url.Parse(stringify(value))
			if err != nil {
				return fmt.Errorf("invalid URL %q: %w", stringify(value), err)
			}
			field.Set(reflect.ValueOf(*u))
			return nil
		}
		return fmt.Errorf("unsupported struct type %s", field.Type())

	case reflect.Slice:
		list, ok := value.([]any)
		if !ok {
			list = []any{value}
		}
		slice := reflect.MakeSlice(field.Type(), len(list), len(list))
		for i, e := range list {
			if err := setFieldValue(slice.Index(i), e, portRange); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil

	case reflect.String:
		field.SetString(stringify(value))
		return nil

	case reflect.Bool:
		switch x := value.(type) {
		case bool:
			field.SetBool(x)
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return fmt.Errorf("invalid bool value %q: %w", x, err)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("invalid bool value %v", value)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := coerce.Duration()(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d.(time.Duration)))
			return nil
		}
		f, err := toNumber(value)
		if err != nil {
			return fmt.Errorf("invalid int value %q: %w", stringify(value), err)
		}
		if f != math.Trunc(f) || field.OverflowInt(int64(f)) {
			return fmt.Errorf("invalid int value %q", stringify(value))
		}
		field.SetInt(int64(f))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, err := toNumber(value)
		if err != nil {
			return fmt.Errorf("invalid uint value %q: %w", stringify(value), err)
		}
		if f < 0 || f != math.Trunc(f) || field.OverflowUint(uint64(f)) {
			return fmt.Errorf("invalid uint value %q", stringify(value))
		}
		field.SetUint(uint64(f))
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := toNumber(value)
		if err != nil {
			return fmt.Errorf("invalid float value %q: %w", stringify(value), err)
		}
		field.SetFloat(f)
		return nil
	}
	return fmt.Errorf("unsupported field type %s", field.Type())
}

func setPort(field reflect.Value, value any, portRange string) error {
	var port Port
	switch x := value.(type) {
	case uint16:
		port = Port(x)
	case Port:
		port = x
	default:
		p, err := coerce.ParsePortInRange(stringify(value), portRange)
		if err != nil {
			return err
		}
		port = Port(p)
	}
	if field.Kind() == reflect.Pointer {
		field.Set(reflect.ValueOf(&port))
		return nil
	}
	field.Set(reflect.ValueOf(port))
	return nil
}

func toNumber(v any) (float64, error) {
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return 0, fmt.Errorf("not a number")
		}
		return f, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected %T", v)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
