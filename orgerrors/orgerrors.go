// Package orgerrors defines the structured error taxonomy shared by every
// stage of the query pipeline (lex, parse, compile, runtime).
package orgerrors

import (
	"fmt"

	"github.com/Idorobots/org-cli/token"
)

// Error codes, grouped by the pipeline stage that raises them.
const (
	// Lexical errors
	ErrUnterminatedString = "UNTERMINATED_STRING"
	ErrUnknownCharacter   = "UNKNOWN_CHARACTER"

	// Parse errors
	ErrUnexpectedToken    = "UNEXPECTED_TOKEN"
	ErrUnbalancedBrackets = "UNBALANCED_BRACKETS"
	ErrInvalidAssignTarget = "INVALID_ASSIGN_TARGET"

	// Compile errors
	ErrUnknownFunction = "UNKNOWN_FUNCTION"
	ErrArityMismatch   = "ARITY_MISMATCH"
	ErrInvalidRegex    = "INVALID_REGEX"

	// Runtime errors
	ErrTypeMismatch       = "TYPE_MISMATCH"
	ErrNotIterable        = "NOT_ITERABLE"
	ErrNotAssignable      = "NOT_ASSIGNABLE"
	ErrNotHashable        = "NOT_HASHABLE"
	ErrIncomparable       = "INCOMPARABLE"
	ErrBuiltinMisuse      = "BUILTIN_MISUSE"
	ErrUndefinedVariable  = "UNDEFINED_VARIABLE"
)

// Stage identifies which part of the pipeline produced an Error.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageCompile Stage = "compile"
	StageRuntime Stage = "runtime"
)

// Error is a structured error carrying a stage, code, message, optional
// source position, optional cause, and free-form context — modeled on the
// teacher's DevCmdError.
type Error struct {
	Stage   Stage
	Code    string
	Message string
	Pos     *token.Position
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	loc := ""
	if e.Pos != nil {
		loc = fmt.Sprintf(" at %s", e.Pos)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s[%s]%s: %s (caused by: %v)", e.Stage, e.Code, loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s[%s]%s: %s", e.Stage, e.Code, loc, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithContext attaches a context key/value and returns the same error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithPos attaches a source position and returns the same error for chaining.
func (e *Error) WithPos(pos token.Position) *Error {
	e.Pos = &pos
	return e
}

func new(stage Stage, code, message string) *Error {
	return &Error{Stage: stage, Code: code, Message: message}
}

func wrap(stage Stage, code, message string, cause error) *Error {
	return &Error{Stage: stage, Code: code, Message: message, Cause: cause}
}

// NewLexError creates a lexical error.
func NewLexError(code, message string) *Error {
	return new(StageLex, code, message)
}

// NewParseError creates a parse error.
func NewParseError(code, message string) *Error {
	return new(StageParse, code, message)
}

// NewCompileError creates a compile error.
func NewCompileError(code, message string) *Error {
	return new(StageCompile, code, message)
}

// NewCompileErrorWrap creates a compile error wrapping an underlying cause (e.g. an invalid regex).
func NewCompileErrorWrap(code, message string, cause error) *Error {
	return wrap(StageCompile, code, message, cause)
}

// NewRuntimeError creates a runtime error.
func NewRuntimeError(code, message string) *Error {
	return new(StageRuntime, code, message)
}

// NewUnknownFunctionError creates a compile error for a function name the
// registry does not recognize, optionally carrying a "did you mean" suggestion.
func NewUnknownFunctionError(name string, suggestion string) *Error {
	msg := fmt.Sprintf("unknown function %q", name)
	if suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	return NewCompileError(ErrUnknownFunction, msg).WithContext("name", name)
}

// NewArityMismatchError creates a compile error for a function call with the wrong number of arguments.
func NewArityMismatchError(name string, want, got int) *Error {
	return NewCompileError(ErrArityMismatch,
		fmt.Sprintf("function %q expects %d argument(s), got %d", name, want, got)).
		WithContext("name", name).WithContext("want", want).WithContext("got", got)
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}
