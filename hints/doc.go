// Package hints implements the codec for WebAssembly compilation-hint
// custom sections (the "metadata.code." namespace).
//
// Compilation hints are optional, self-describing metadata records
// attached to functions and individual instructions: compilation order
// priorities, log2-bucketed instruction execution frequencies, and
// likely indirect-call targets. Engines that do not understand them
// ignore them; this package decodes them into a structured model,
// validates their semantic invariants, and re-encodes them
// deterministically.
//
// # Binary layout
//
// All integers are canonical (minimal-length) unsigned LEB128:
//
//	Section   := count FuncHints*
//	FuncHints := funcIndex entryCount HintEntry*
//	HintEntry := byteOffset valueCount value{valueCount}
//
// valueCount counts trailing ULEB128 values, not bytes. Offsets are
// relative to the first byte of the function's local-declarations
// header; offset 0 addresses the function as a whole.
//
// # Decoding
//
//	s, err := hints.DecodeSection(name, body)
//	if err != nil {
//	    // truncated, overflowing or non-canonical input aborts the
//	    // whole section; other sections decode independently
//	}
//
// Unrecognized section names decode to an opaque Section that
// re-encodes byte-exact.
//
// # Encoding
//
// Encoding is the exact inverse and is deterministic:
//
//	body := s.Encode()
//	same, _ := hints.DecodeSection(s.Name, body) // structurally equal to s
//
// # Validation
//
// Validate reports semantic findings without mutating or aborting:
//
//	for _, d := range hints.Validate(s) {
//	    log.Println(d)
//	}
//
// Checked invariants include call-target percentages summing to at
// most 100 per entry and instruction-frequency bytes staying inside
// their 0..=127 domain. Building an inconsistent section is allowed by
// construction so externally produced bytes survive a round trip.
//
// # Frequency law
//
// Instruction frequencies relate a raw execution count n to a call
// count N through clamp(1, 64, floor(log2(n/N)) + 32), with 0 and 127
// reserved as the "never"/"always" sentinels. The context implied by
// frequency entries resets at control-transfer instructions; FreqSpans
// replays that state machine over a decoded entry list given the
// transfer offsets from an instruction decoder.
package hints
