package builtins

import (
	"fmt"

	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// ArityRange is implemented by builtins whose argument count varies
// within a bounded range (timestamp, clock, repeated_task). The compiler
// checks Min()/Max() instead of a single Arity() for these.
type ArityRange interface {
	Min() int
	Max() int
}

func argValue(ctx *orgvalue.Context, args []orgvalue.Stage, idx int, item orgvalue.Value) (orgvalue.Value, error) {
	if idx >= len(args) {
		return orgvalue.None{}, nil
	}
	out, err := runArg(ctx, args[idx], item)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return orgvalue.None{}, nil
	}
	return out[0], nil
}

func argString(ctx *orgvalue.Context, args []orgvalue.Stage, idx int, item orgvalue.Value, name string) (string, error) {
	v, err := argValue(ctx, args, idx, item)
	if err != nil {
		return "", err
	}
	s, ok := v.(orgvalue.Str)
	if !ok {
		return "", orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("%s: argument %d must be a string, got %s", name, idx+1, v.Kind()))
	}
	return string(s), nil
}

func argBoolDefault(ctx *orgvalue.Context, args []orgvalue.Stage, idx int, item orgvalue.Value, def bool) (bool, error) {
	if idx >= len(args) {
		return def, nil
	}
	v, err := argValue(ctx, args, idx, item)
	if err != nil {
		return false, err
	}
	if orgvalue.IsNone(v) {
		return def, nil
	}
	b, ok := v.(orgvalue.Bool)
	if !ok {
		return false, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("argument %d must be a bool, got %s", idx+1, v.Kind()))
	}
	return bool(b), nil
}

// ---- timestamp(start, end?, active?) ----

type timestampBuiltin struct{}

func (timestampBuiltin) Name() string { return "timestamp" }
func (timestampBuiltin) Arity() int   { return 1 }
func (timestampBuiltin) Min() int     { return 1 }
func (timestampBuiltin) Max() int     { return 3 }

func (timestampBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		startStr, err := argString(ctx, args, 0, item, "timestamp")
		if err != nil {
			return nil, err
		}
		start, err := parseOrgTime(startStr)
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
		}
		date := &orgvalue.OrgDate{Start: start, Active: true}
		if len(args) >= 2 {
			endV, err := argValue(ctx, args, 1, item)
			if err != nil {
				return nil, err
			}
			if !orgvalue.IsNone(endV) {
				endS, ok := endV.(orgvalue.Str)
				if !ok {
					return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
						fmt.Sprintf("timestamp: end must be a string or none, got %s", endV.Kind()))
				}
				end, err := parseOrgTime(string(endS))
				if err != nil {
					return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
				}
				date.End = &end
			}
		}
		active, err := argBoolDefault(ctx, args, 2, item, true)
		if err != nil {
			return nil, err
		}
		date.Active = active
		out[i] = date
	}
	return out, nil
}

// ---- clock(start, end, active?) ----

type clockBuiltin struct{}

func (clockBuiltin) Name() string { return "clock" }
func (clockBuiltin) Arity() int   { return 2 }
func (clockBuiltin) Min() int     { return 2 }
func (clockBuiltin) Max() int     { return 3 }

func (clockBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		startStr, err := argString(ctx, args, 0, item, "clock")
		if err != nil {
			return nil, err
		}
		endStr, err := argString(ctx, args, 1, item, "clock")
		if err != nil {
			return nil, err
		}
		start, err := parseOrgTime(startStr)
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
		}
		end, err := parseOrgTime(endStr)
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
		}
		active, err := argBoolDefault(ctx, args, 2, item, false)
		if err != nil {
			return nil, err
		}
		out[i] = &orgvalue.OrgDateClock{Start: start, End: end, Active: active}
	}
	return out, nil
}

// ---- repeated_task(timestamp, before, after, active?) ----

type repeatedTaskBuiltin struct{}

func (repeatedTaskBuiltin) Name() string { return "repeated_task" }
func (repeatedTaskBuiltin) Arity() int   { return 3 }
func (repeatedTaskBuiltin) Min() int     { return 3 }
func (repeatedTaskBuiltin) Max() int     { return 4 }

func (repeatedTaskBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		tsStr, err := argString(ctx, args, 0, item, "repeated_task")
		if err != nil {
			return nil, err
		}
		before, err := argString(ctx, args, 1, item, "repeated_task")
		if err != nil {
			return nil, err
		}
		after, err := argString(ctx, args, 2, item, "repeated_task")
		if err != nil {
			return nil, err
		}
		ts, err := parseOrgTime(tsStr)
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse, err.Error())
		}
		active, err := argBoolDefault(ctx, args, 3, item, true)
		if err != nil {
			return nil, err
		}
		out[i] = &orgvalue.OrgDateRepeatedTask{Timestamp: ts, Before: before, After: after, Active: active}
	}
	return out, nil
}
