package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // binary to model
	PhaseEncode   Phase = "encode"   // model to binary
	PhaseValidate Phase = "validate" // semantic validation
	PhaseParse    Phase = "parse"    // directive text parsing
	PhaseScan     Phase = "scan"     // module section scanning
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedInput Kind = "truncated_input"
	KindOverflow       Kind = "overflow"
	KindNonCanonical   Kind = "non_canonical_varint"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidMagic   Kind = "invalid_magic"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the codec.
// Section names the custom section (or directive) being processed
// and Offset is the byte position within it, -1 when unknown.
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Section sets the custom section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset within the section
func (b *Builder) Offset(pos int) *Builder {
	b.err.Offset = pos
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates a truncated-input error
func Truncated(phase Phase, section string, offset int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTruncatedInput,
		Section: section,
		Offset:  offset,
		Detail:  "input ended mid-field",
	}
}

// Overflow creates a varint overflow error
func Overflow(phase Phase, section string, offset int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Section: section,
		Offset:  offset,
		Detail:  "varint exceeds 32-bit range",
	}
}

// NonCanonical creates a non-minimal varint encoding error
func NonCanonical(phase Phase, section string, offset int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindNonCanonical,
		Section: section,
		Offset:  offset,
		Detail:  "non-minimal varint encoding",
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, section string, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidData,
		Section: section,
		Offset:  -1,
		Detail:  detail,
	}
}

// InvalidMagic creates an invalid module header error
func InvalidMagic(detail string) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindInvalidMagic,
		Offset: -1,
		Detail: detail,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: -1,
		Detail: what,
	}
}

// ParseFailed creates a directive parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Offset: -1,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
