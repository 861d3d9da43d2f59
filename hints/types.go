package hints

import "strings"

// Custom section names carrying compilation hints. Hint sections share
// the "metadata.code." namespace; names outside the three known
// families are preserved verbatim as opaque sections.
const (
	SectionPrefix = "metadata.code."

	SectionCompilationOrder = SectionPrefix + "compilation_order"
	SectionInstrFreq        = SectionPrefix + "instr_freq"
	SectionCallTargets      = SectionPrefix + "call_targets"
)

// IsHintSection reports whether name is in the compilation-hints
// custom section namespace.
func IsHintSection(name string) bool {
	return strings.HasPrefix(name, SectionPrefix)
}

// Section is the decoded form of one hint custom section.
//
// For a recognized family, Funcs holds the per-function hint groups in
// encounter order. For an unrecognized section name the entire section
// body is kept in Opaque and Funcs is nil; re-encoding an opaque
// section is byte-exact.
type Section struct {
	Name   string
	Funcs  []FuncHints
	Opaque []byte
}

// Recognized reports whether the section decoded structurally (as
// opposed to being carried as opaque bytes).
func (s *Section) Recognized() bool {
	return s.Opaque == nil
}

// FuncHints owns the ordered hint entries for one function.
// Entry order is encounter order and is meaningful: the instruction
// frequency context is positional within a function body.
type FuncHints struct {
	FuncIndex uint32
	Entries   []Entry
}

// Entry attaches a payload at a byte offset relative to the first byte
// of the function's local-declarations header. Offset 0 addresses the
// function as a whole.
type Entry struct {
	Offset  uint32
	Payload Payload
}

// Payload kind discriminants
const (
	PayloadCompilationOrder byte = iota
	PayloadInstrFreq
	PayloadCallTargets
)

// Payload is the tagged union over the hint families. Exactly one of
// the pointer fields matching Kind is set. Payloads are value-semantic:
// an update builds a new Entry rather than mutating in place.
type Payload struct {
	Kind    byte
	Order   *CompilationOrder
	Freq    *InstrFreq
	Targets *CallTargets
}

// CompilationOrder carries a function compilation priority.
//
// Priority has no upper bound; equal priorities are unordered peers.
// Hotness is optional; the value 0 is valid and means "run once".
// Trailing values beyond the two known fields are retained in Overflow
// for byte-exact round-trips but carry no meaning to consumers.
type CompilationOrder struct {
	Priority uint32
	Hotness  *uint32
	Overflow []uint32
}

// InstrFreq carries a log2-bucketed execution frequency for the
// instruction at the entry's offset. Domain 0..=127; FreqNever and
// FreqAlways are sentinels outside the numeric law. Trailing values
// beyond the first are retained in Overflow for byte-exact
// round-trips but carry no meaning to consumers.
type InstrFreq struct {
	Log2Freq uint8
	Overflow []uint32
}

// CallTargets carries the likely targets of an indirect call, in
// emission order. Duplicate target indices are legal and additive.
type CallTargets struct {
	Targets []Target
}

// Target pairs a function index with an integer percentage 0..100.
type Target struct {
	FuncIndex uint32
	Percent   uint32
}

// NewCompilationOrder builds a compilation-order payload.
func NewCompilationOrder(priority uint32, hotness *uint32) Payload {
	return Payload{
		Kind:  PayloadCompilationOrder,
		Order: &CompilationOrder{Priority: priority, Hotness: hotness},
	}
}

// NewInstrFreq builds an instruction-frequency payload.
func NewInstrFreq(log2Freq uint8) Payload {
	return Payload{
		Kind: PayloadInstrFreq,
		Freq: &InstrFreq{Log2Freq: log2Freq},
	}
}

// NewCallTargets builds a call-targets payload. The slice is copied.
func NewCallTargets(targets []Target) Payload {
	ts := make([]Target, len(targets))
	copy(ts, targets)
	return Payload{
		Kind:    PayloadCallTargets,
		Targets: &CallTargets{Targets: ts},
	}
}

// SectionName returns the custom section name a payload belongs to.
func (p Payload) SectionName() string {
	switch p.Kind {
	case PayloadCompilationOrder:
		return SectionCompilationOrder
	case PayloadInstrFreq:
		return SectionInstrFreq
	case PayloadCallTargets:
		return SectionCallTargets
	}
	return ""
}
