package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-hints/hints"
)

// PrintPayload renders a payload as its directive form, the inverse of
// ParsePayload.
//
// Instruction frequencies print as the ratio at the floor of their
// log2 bucket; the integer-to-ratio direction is lossy, so parse∘print
// is only guaranteed to land in the same bucket, not on the same
// bytes. Sentinels print as "never"/"always" and survive exactly.
func PrintPayload(p hints.Payload) string {
	var b strings.Builder
	b.WriteString("(@")
	b.WriteString(p.SectionName())

	switch p.Kind {
	case hints.PayloadCompilationOrder:
		fmt.Fprintf(&b, " (priority %d)", p.Order.Priority)
		if p.Order.Hotness != nil {
			fmt.Fprintf(&b, " (hotness %d)", *p.Order.Hotness)
		}
		for _, v := range p.Order.Overflow {
			fmt.Fprintf(&b, " %d", v)
		}

	case hints.PayloadInstrFreq:
		b.WriteByte(' ')
		b.WriteString(freqString(p.Freq.Log2Freq))

	case hints.PayloadCallTargets:
		for _, t := range p.Targets.Targets {
			fmt.Fprintf(&b, " (target %d %s)", t.FuncIndex, weightString(t.Percent))
		}
	}

	b.WriteByte(')')
	return b.String()
}

// PrintSection renders every entry of a section as one directive line
// per entry, grouped under its function:
//
//	(func 3
//	  (offset 7)   (@metadata.code.instr_freq 64)
//	  (offset 19)  (@metadata.code.instr_freq never))
//
// Opaque sections print as an escaped byte string.
func PrintSection(s *hints.Section) string {
	var b strings.Builder
	if !s.Recognized() {
		fmt.Fprintf(&b, ";; %s (unrecognized, %d bytes)\n", s.Name, len(s.Opaque))
		b.WriteString(escapeBytes(s.Opaque))
		b.WriteByte('\n')
		return b.String()
	}

	for _, fh := range s.Funcs {
		fmt.Fprintf(&b, "(func %d", fh.FuncIndex)
		for _, e := range fh.Entries {
			fmt.Fprintf(&b, "\n  (offset %d) %s", e.Offset, PrintPayload(e.Payload))
		}
		b.WriteString(")\n")
	}
	return b.String()
}

func freqString(l uint8) string {
	switch l {
	case hints.FreqNever:
		return "never"
	case hints.FreqAlways:
		return "always"
	}
	return strconv.FormatFloat(hints.Ratio(l), 'g', -1, 64)
}

func weightString(percent uint32) string {
	return strconv.FormatFloat(float64(percent)/100, 'g', -1, 64)
}

// escapeBytes renders opaque section bytes in the escaped form used by
// binary payloads in text dumps, e.g. "\de\ad\be\ef".
func escapeBytes(data []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range data {
		fmt.Fprintf(&b, "\\%02x", c)
	}
	b.WriteByte('"')
	return b.String()
}
