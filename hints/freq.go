package hints

import (
	"math"
	"math/bits"
	"sort"
)

// Frequency sentinels and the function-entry baseline. The sentinels
// sit outside the numeric law and are only ever produced by explicit
// directives; no transform may alter them.
const (
	FreqNever    uint8 = 0   // never optimize
	FreqAlways   uint8 = 127 // always optimize
	FreqBaseline uint8 = 32  // 1.0x, the implicit context at function entry
)

// Log2Freq maps a raw execution count n observed over N calls to the
// log2-bucketed frequency byte:
//
//	clamp(1, 64, floor(log2(n/N)) + 32)
//
// n == 0 clamps to 1. N == 0 has no ratio; it clamps to 1 for n == 0
// and saturates to 64 otherwise. The computation is exact integer
// arithmetic, never floating point.
func Log2Freq(n, N uint64) uint8 {
	if n == 0 {
		return 1
	}
	if N == 0 {
		return 64
	}

	// floor(log2(n/N)) is k or k-1 for k = bitlen(n) - bitlen(N).
	k := bits.Len64(n) - bits.Len64(N)
	if !ratioAtLeast(n, N, k) {
		k--
	}

	v := k + 32
	if v < 1 {
		return 1
	}
	if v > 64 {
		return 64
	}
	return uint8(v)
}

// ratioAtLeast reports whether n/N >= 2^k without overflow.
func ratioAtLeast(n, N uint64, k int) bool {
	if k >= 0 {
		if k >= 64 || N > math.MaxUint64>>k {
			return false
		}
		return n >= N<<k
	}
	j := -k
	if j >= 64 || n > math.MaxUint64>>j {
		return true
	}
	return n<<j >= N
}

// Log2FreqOfRatio maps a floating-point execution ratio through the
// same law as Log2Freq: clamp(1, 64, floor(log2(r)) + 32). The floor
// is computed from the float's exponent, not a log call, so powers of
// two land exactly on their bucket. Non-positive and NaN ratios clamp
// to 1, +Inf saturates to 64.
func Log2FreqOfRatio(r float64) uint8 {
	if math.IsNaN(r) || r <= 0 {
		return 1
	}
	if math.IsInf(r, 1) {
		return 64
	}
	_, exp := math.Frexp(r) // r = f * 2^exp, f in [0.5, 1)
	v := exp - 1 + 32
	if v < 1 {
		return 1
	}
	if v > 64 {
		return 64
	}
	return uint8(v)
}

// Ratio returns the approximate execution ratio 2^(l-32) for a
// frequency byte. The inverse of Log2Freq is lossy: the bucket floor
// is returned, so Log2Freq(Ratio(l)*N, N) == l but arbitrary ratios
// only survive a round trip within one log2 bucket. The sentinels lie
// outside the law; Ratio(FreqNever) is 0 and Ratio(FreqAlways) is +Inf.
func Ratio(l uint8) float64 {
	switch l {
	case FreqNever:
		return 0
	case FreqAlways:
		return math.Inf(1)
	}
	return math.Ldexp(1, int(l)-32)
}

// FreqSpan is a half-open byte range [Start, End) of a function body
// over which the frequency context is constant. Known is false where a
// control transfer has reset the context and no hint has re-established
// it yet.
type FreqSpan struct {
	Start uint32
	End   uint32
	Log2  uint8
	Known bool
}

// FreqSpans replays the consumption-time frequency state machine over
// a function's decoded entries.
//
// The context starts at FreqBaseline at function entry. Each InstrFreq
// entry installs its value at its offset. Each control-transfer
// instruction offset in ctrl (branches, returns, unreachable, throws)
// invalidates the context from the byte after it until the next
// explicit hint. Non-InstrFreq entries are ignored. ctrl need not be
// sorted; entries are walked in offset order.
func FreqSpans(entries []Entry, ctrl []uint32, bodySize uint32) []FreqSpan {
	type event struct {
		offset uint32
		log2   uint8
		reset  bool
	}

	var events []event
	for _, e := range entries {
		if e.Payload.Kind != PayloadInstrFreq {
			continue
		}
		events = append(events, event{offset: e.Offset, log2: e.Payload.Freq.Log2Freq})
	}
	for _, c := range ctrl {
		// The transfer itself still executes under the old context;
		// the reset takes effect after its first byte.
		events = append(events, event{offset: c + 1, reset: true})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].offset != events[j].offset {
			return events[i].offset < events[j].offset
		}
		// A hint at the instruction right after a transfer re-establishes
		// the context, so resets order before hints at the same offset.
		return events[i].reset && !events[j].reset
	})

	spans := []FreqSpan{{Start: 0, Log2: FreqBaseline, Known: true}}
	for _, ev := range events {
		if ev.offset >= bodySize {
			break
		}
		cur := &spans[len(spans)-1]
		next := FreqSpan{Start: ev.offset, Log2: ev.log2, Known: !ev.reset}
		if cur.Known == next.Known && (!cur.Known || cur.Log2 == next.Log2) {
			continue
		}
		if cur.Start == ev.offset {
			// Same offset, later event wins (hint after reset re-establishes).
			*cur = next
			continue
		}
		cur.End = ev.offset
		spans = append(spans, next)
	}
	spans[len(spans)-1].End = bodySize
	return spans
}
