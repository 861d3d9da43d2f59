package hints

import "fmt"

// Diagnostic kinds
const (
	// DiagFrequencyOverflow reports call-target percentages summing
	// past 100 within one entry.
	DiagFrequencyOverflow = "frequency_overflow"
	// DiagFreqOutOfRange reports an instruction frequency outside the
	// 0..=127 domain.
	DiagFreqOutOfRange = "freq_out_of_range"
	// DiagFreqOutOfFormula reports a frequency byte the numeric law
	// cannot produce (1..=7, 120..=126). The format allows such
	// directive-authored values; this is informational.
	DiagFreqOutOfFormula = "freq_out_of_formula"
	// DiagOffsetOrder reports instruction-frequency entries whose
	// offsets decrease within one function.
	DiagOffsetOrder = "offset_order"
	// DiagOffsetOutOfRange reports an entry offset past the end of the
	// function body. Requires a FuncSizer; informational because the
	// codec alone cannot resolve instruction boundaries.
	DiagOffsetOutOfRange = "offset_out_of_range"
)

// Diagnostic severity levels
const (
	LevelError = "error"
	LevelInfo  = "info"
)

// Diagnostic is one non-fatal validation finding. Diagnostics are
// reported, never thrown; a section with diagnostics still encodes and
// round-trips.
type Diagnostic struct {
	Kind      string
	Level     string
	FuncIndex uint32
	Offset    uint32
	Detail    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%s) func %d offset %d: %s", d.Kind, d.Level, d.FuncIndex, d.Offset, d.Detail)
}

// FuncSizer resolves a function index to the byte size of its body
// (locals header through end opcode). Supplied by the module parser;
// ok is false for indices it does not know, typically imports.
type FuncSizer interface {
	FuncBodySize(funcIndex uint32) (size uint32, ok bool)
}

// Validate checks the per-family semantic invariants of a section and
// returns all findings. The input is never mutated and validation never
// aborts: every entry is checked independently of violations elsewhere.
// Opaque sections produce no diagnostics; their structure is unknown.
func Validate(s *Section) []Diagnostic {
	return ValidateIn(s, nil)
}

// ValidateIn is Validate with offset plausibility checks against a
// function-body size oracle. A nil sizer skips those checks.
func ValidateIn(s *Section, sizer FuncSizer) []Diagnostic {
	if s == nil || !s.Recognized() {
		return nil
	}
	fam := families[s.Name]

	var diags []Diagnostic
	for _, fh := range s.Funcs {
		lastFreqOffset := uint32(0)
		seenFreq := false
		for _, e := range fh.Entries {
			if fam != nil {
				diags = append(diags, fam.validate(fh.FuncIndex, e)...)
			}

			// Offset ordering is only an invariant for instr_freq:
			// the frequency context is positional.
			if e.Payload.Kind == PayloadInstrFreq {
				if seenFreq && e.Offset < lastFreqOffset {
					diags = append(diags, Diagnostic{
						Kind:      DiagOffsetOrder,
						Level:     LevelError,
						FuncIndex: fh.FuncIndex,
						Offset:    e.Offset,
						Detail:    fmt.Sprintf("offset %d after offset %d", e.Offset, lastFreqOffset),
					})
				}
				lastFreqOffset = e.Offset
				seenFreq = true
			}

			if sizer != nil {
				if size, ok := sizer.FuncBodySize(fh.FuncIndex); ok && e.Offset > 0 && e.Offset >= size {
					diags = append(diags, Diagnostic{
						Kind:      DiagOffsetOutOfRange,
						Level:     LevelInfo,
						FuncIndex: fh.FuncIndex,
						Offset:    e.Offset,
						Detail:    fmt.Sprintf("offset %d past body size %d", e.Offset, size),
					})
				}
			}
		}
	}
	return diags
}

// ValidateEntry checks one entry against its own family's invariants,
// independent of any section. Useful for vetting a freshly parsed
// directive before it is attached anywhere.
func ValidateEntry(funcIndex uint32, e Entry) []Diagnostic {
	fam, ok := families[e.Payload.SectionName()]
	if !ok {
		return nil
	}
	return fam.validate(funcIndex, e)
}

func validateCompilationOrder(funcIndex uint32, e Entry) []Diagnostic {
	// Priority is unbounded and hotness 0 is the valid "run once"
	// marker; nothing to check numerically.
	return nil
}

func validateInstrFreq(funcIndex uint32, e Entry) []Diagnostic {
	l := e.Payload.Freq.Log2Freq
	if l > 127 {
		return []Diagnostic{{
			Kind:      DiagFreqOutOfRange,
			Level:     LevelError,
			FuncIndex: funcIndex,
			Offset:    e.Offset,
			Detail:    fmt.Sprintf("log2 frequency %d outside 0..=127", l),
		}}
	}
	if (l >= 1 && l <= 7) || (l >= 120 && l <= 126) {
		return []Diagnostic{{
			Kind:      DiagFreqOutOfFormula,
			Level:     LevelInfo,
			FuncIndex: funcIndex,
			Offset:    e.Offset,
			Detail:    fmt.Sprintf("log2 frequency %d is reserved, the numeric formula cannot produce it", l),
		}}
	}
	return nil
}

func validateCallTargets(funcIndex uint32, e Entry) []Diagnostic {
	var sum uint64
	for _, t := range e.Payload.Targets.Targets {
		sum += uint64(t.Percent)
	}
	if sum > 100 {
		return []Diagnostic{{
			Kind:      DiagFrequencyOverflow,
			Level:     LevelError,
			FuncIndex: funcIndex,
			Offset:    e.Offset,
			Detail:    fmt.Sprintf("target percentages sum to %d", sum),
		}}
	}
	return nil
}
