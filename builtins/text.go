package builtins

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// ---- sha256 ----

// sha256Builtin backs the `sha256` built-in using the standard library's
// crypto/sha256: no third-party hashing library appears anywhere in the
// example pack, and crypto/sha256 is the idiomatic choice regardless
// (see DESIGN.md).
type sha256Builtin struct{}

func (sha256Builtin) Name() string { return "sha256" }
func (sha256Builtin) Arity() int   { return 0 }

func (sha256Builtin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, v := range in {
		s, ok := v.(orgvalue.Str)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("sha256: expected a string, got %s", v.Kind()))
		}
		sum := sha256.Sum256([]byte(string(s)))
		out[i] = orgvalue.Str(hex.EncodeToString(sum[:]))
	}
	return out, nil
}

// ---- match ----

type matchBuiltin struct{}

func (matchBuiltin) Name() string { return "match" }
func (matchBuiltin) Arity() int   { return 1 }

func (matchBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("match", args, 1); err != nil {
		return nil, err
	}
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		s, ok := item.(orgvalue.Str)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("match: expected a string, got %s", item.Kind()))
		}
		patOut, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		var pat string
		if len(patOut) > 0 {
			ps, ok := patOut[0].(orgvalue.Str)
			if !ok {
				return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
					fmt.Sprintf("match: pattern must be a string, got %s", patOut[0].Kind()))
			}
			pat = string(ps)
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrInvalidRegex, err.Error())
		}
		groups := re.FindStringSubmatch(string(s))
		if groups == nil {
			out[i] = orgvalue.None{}
			continue
		}
		items := make([]orgvalue.Value, len(groups))
		for j, g := range groups {
			items[j] = orgvalue.Str(g)
		}
		out[i] = orgvalue.NewList(items...)
	}
	return out, nil
}

// ---- uuid ----

// uuidBuiltin backs the `uuid` built-in with google/uuid, the same
// library the example pack's Tangerg-lynx module uses for UUIDv4
// generation (see DESIGN.md).
type uuidBuiltin struct{}

func (uuidBuiltin) Name() string { return "uuid" }
func (uuidBuiltin) Arity() int   { return 0 }

func (uuidBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i := range in {
		out[i] = orgvalue.Str(uuid.New().String())
	}
	return out, nil
}

// ---- debug ----

type debugBuiltin struct{}

func (debugBuiltin) Name() string { return "debug" }
func (debugBuiltin) Arity() int   { return 0 }

func (debugBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	for _, v := range in {
		slog.Default().Debug("debug", "value", v.String(), "kind", v.Kind().String())
	}
	return in, nil
}
