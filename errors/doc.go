// Package errors provides structured error types for the wasm-hints library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the custom section name, the byte offset within
// it, and a cause chain, enough to locate a fault in a raw section body.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
//		Section("metadata.code.instr_freq").
//		Offset(17).
//		Detail("entry count exceeds remaining bytes").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseDecode, name, pos)
//	err := errors.NonCanonical(errors.PhaseDecode, name, pos)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
