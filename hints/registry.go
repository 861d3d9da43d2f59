package hints

import (
	"fmt"
	"sort"
)

// family bundles the per-section decode/encode/validate hooks. New hint
// families plug in here; the section walk in decode.go and encode.go
// never changes.
type family struct {
	name     string
	decode   func(vals []uint32) (Payload, error)
	encode   func(p Payload) []uint32
	validate func(funcIndex uint32, e Entry) []Diagnostic
}

var families = map[string]*family{
	SectionCompilationOrder: {
		name:     SectionCompilationOrder,
		decode:   decodeCompilationOrder,
		encode:   encodeCompilationOrder,
		validate: validateCompilationOrder,
	},
	SectionInstrFreq: {
		name:     SectionInstrFreq,
		decode:   decodeInstrFreq,
		encode:   encodeInstrFreq,
		validate: validateInstrFreq,
	},
	SectionCallTargets: {
		name:     SectionCallTargets,
		decode:   decodeCallTargets,
		encode:   encodeCallTargets,
		validate: validateCallTargets,
	},
}

// RegisteredFamilies returns the recognized hint section names, sorted.
func RegisteredFamilies() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeCompilationOrder maps [priority, hotness?, extra...] to a
// payload. Values past the two known fields are retained so the entry
// re-encodes byte-exact.
func decodeCompilationOrder(vals []uint32) (Payload, error) {
	if len(vals) < 1 {
		return Payload{}, fmt.Errorf("compilation_order entry carries no priority")
	}
	order := &CompilationOrder{Priority: vals[0]}
	if len(vals) >= 2 {
		hotness := vals[1]
		order.Hotness = &hotness
	}
	if len(vals) > 2 {
		order.Overflow = make([]uint32, len(vals)-2)
		copy(order.Overflow, vals[2:])
	}
	return Payload{Kind: PayloadCompilationOrder, Order: order}, nil
}

func encodeCompilationOrder(p Payload) []uint32 {
	o := p.Order
	vals := make([]uint32, 0, 2+len(o.Overflow))
	vals = append(vals, o.Priority)
	if o.Hotness != nil {
		vals = append(vals, *o.Hotness)
	}
	// Overflow is positional after hotness; without a hotness value the
	// extras would shift into its slot on re-decode, so they are only
	// emitted alongside one. Decoder-produced payloads always satisfy this.
	if o.Hotness != nil {
		vals = append(vals, o.Overflow...)
	}
	return vals
}

// decodeInstrFreq expects a single byte-range value. A longer value
// list is tolerated: only the first value is meaningful, the rest are
// retained for byte-exact re-encoding.
func decodeInstrFreq(vals []uint32) (Payload, error) {
	if len(vals) < 1 {
		return Payload{}, fmt.Errorf("instr_freq entry carries no value")
	}
	if vals[0] > 0xff {
		return Payload{}, fmt.Errorf("instr_freq value %d does not fit a byte", vals[0])
	}
	freq := &InstrFreq{Log2Freq: uint8(vals[0])}
	if len(vals) > 1 {
		freq.Overflow = make([]uint32, len(vals)-1)
		copy(freq.Overflow, vals[1:])
	}
	return Payload{Kind: PayloadInstrFreq, Freq: freq}, nil
}

func encodeInstrFreq(p Payload) []uint32 {
	vals := make([]uint32, 0, 1+len(p.Freq.Overflow))
	vals = append(vals, uint32(p.Freq.Log2Freq))
	return append(vals, p.Freq.Overflow...)
}

// decodeCallTargets maps a flat value list to (funcIndex, percent)
// pairs. An odd value count has no pair interpretation.
func decodeCallTargets(vals []uint32) (Payload, error) {
	if len(vals)%2 != 0 {
		return Payload{}, fmt.Errorf("call_targets entry has dangling value (%d values)", len(vals))
	}
	targets := make([]Target, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		targets = append(targets, Target{FuncIndex: vals[i], Percent: vals[i+1]})
	}
	return Payload{Kind: PayloadCallTargets, Targets: &CallTargets{Targets: targets}}, nil
}

func encodeCallTargets(p Payload) []uint32 {
	vals := make([]uint32, 0, 2*len(p.Targets.Targets))
	for _, t := range p.Targets.Targets {
		vals = append(vals, t.FuncIndex, t.Percent)
	}
	return vals
}

// encodePayloadValues dispatches to the family encoder for a payload.
func encodePayloadValues(p Payload) []uint32 {
	switch p.Kind {
	case PayloadCompilationOrder:
		return encodeCompilationOrder(p)
	case PayloadInstrFreq:
		return encodeInstrFreq(p)
	case PayloadCallTargets:
		return encodeCallTargets(p)
	}
	return nil
}
