package builtins

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// StrCoerce renders v as a string for concatenation/join purposes.
func StrCoerce(v orgvalue.Value) string {
	switch t := v.(type) {
	case orgvalue.Str:
		return string(t)
	case orgvalue.None:
		return ""
	default:
		return v.String()
	}
}

func coerce1(name string, ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage,
	fn func(orgvalue.Value) (orgvalue.Value, error)) (orgvalue.Stream, error) {
	if err := arityError(name, args, 1); err != nil {
		return nil, err
	}
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		argOut, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		var v orgvalue.Value = orgvalue.None{}
		if len(argOut) > 0 {
			v = argOut[0]
		}
		res, err := fn(v)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// ---- str ----

type strBuiltin struct{}

func (strBuiltin) Name() string { return "str" }
func (strBuiltin) Arity() int   { return 1 }

func (strBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return coerce1("str", ctx, in, args, func(v orgvalue.Value) (orgvalue.Value, error) {
		return orgvalue.Str(StrCoerce(v)), nil
	})
}

// ---- int ----

type intBuiltin struct{}

func (intBuiltin) Name() string { return "int" }
func (intBuiltin) Arity() int   { return 1 }

func (intBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return coerce1("int", ctx, in, args, func(v orgvalue.Value) (orgvalue.Value, error) {
		switch t := v.(type) {
		case orgvalue.Int:
			return t, nil
		case orgvalue.Float:
			return orgvalue.Int(int64(t)), nil
		case orgvalue.Str:
			n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
			if err != nil {
				return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
					fmt.Sprintf("int: cannot parse %q as an integer", string(t)))
			}
			return orgvalue.Int(n), nil
		default:
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("int: cannot coerce %s", v.Kind()))
		}
	})
}

// ---- float ----

type floatBuiltin struct{}

func (floatBuiltin) Name() string { return "float" }
func (floatBuiltin) Arity() int   { return 1 }

func (floatBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return coerce1("float", ctx, in, args, func(v orgvalue.Value) (orgvalue.Value, error) {
		switch t := v.(type) {
		case orgvalue.Float:
			return t, nil
		case orgvalue.Int:
			return orgvalue.Float(float64(t)), nil
		case orgvalue.Str:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
			if err != nil {
				return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
					fmt.Sprintf("float: cannot parse %q as a float", string(t)))
			}
			return orgvalue.Float(f), nil
		default:
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("float: cannot coerce %s", v.Kind()))
		}
	})
}

// ---- bool ----

type boolBuiltin struct{}

func (boolBuiltin) Name() string { return "bool" }
func (boolBuiltin) Arity() int   { return 1 }

func (boolBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return coerce1("bool", ctx, in, args, func(v orgvalue.Value) (orgvalue.Value, error) {
		switch t := v.(type) {
		case orgvalue.Bool:
			return t, nil
		case orgvalue.Str:
			switch strings.ToLower(string(t)) {
			case "true":
				return orgvalue.Bool(true), nil
			case "false":
				return orgvalue.Bool(false), nil
			default:
				return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
					fmt.Sprintf("bool: cannot parse %q as a boolean", string(t)))
			}
		default:
			return orgvalue.Bool(orgvalue.Truthy(v)), nil
		}
	})
}

// ---- ts (parse a timestamp string into an OrgDate) ----

type tsBuiltin struct{}

func (tsBuiltin) Name() string { return "ts" }
func (tsBuiltin) Arity() int   { return 1 }

func (tsBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return coerce1("ts", ctx, in, args, func(v orgvalue.Value) (orgvalue.Value, error) {
		s, ok := v.(orgvalue.Str)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("ts: expected a string, got %s", v.Kind()))
		}
		t, err := parseOrgTime(string(s))
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
		}
		return &orgvalue.OrgDate{Start: t, Active: true}, nil
	})
}

var orgTimeLayouts = []string{
	"2006-01-02 Mon 15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseOrgTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range orgTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an Org timestamp", s)
}
