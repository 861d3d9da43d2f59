package hints_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasm-hints/hints"
)

func TestLog2Freq(t *testing.T) {
	tests := []struct {
		name string
		n, N uint64
		want uint8
	}{
		{"equal counts", 1000, 1000, 32},
		{"never executed", 0, 1000, 1},
		{"256x", 256_000, 1000, 40},
		{"one call one execution", 1, 1, 32},
		{"half", 500, 1000, 31},
		{"third", 333, 1000, 30}, // floor(log2(0.333)) = -2
		{"double", 2, 1, 33},
		{"saturates high", math.MaxUint64, 1, 64},
		{"saturates low", 1, math.MaxUint64, 1},
		{"zero calls zero runs", 0, 0, 1},
		{"zero calls some runs", 5, 0, 64},
		{"just below a power", 255, 1, 39},
		{"exactly a power", 256, 1, 40},
		{"just above a power", 257, 1, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hints.Log2Freq(tt.n, tt.N); got != tt.want {
				t.Errorf("Log2Freq(%d, %d): got %d, want %d", tt.n, tt.N, got, tt.want)
			}
		})
	}
}

func TestLog2FreqNeverProducesSentinels(t *testing.T) {
	// The formula clamps into 1..=64; 0 and 127 come only from
	// explicit directives.
	cases := []struct{ n, N uint64 }{
		{0, 1}, {1, 0}, {0, 0}, {1, 1}, {math.MaxUint64, 1}, {1, math.MaxUint64},
	}
	for _, c := range cases {
		got := hints.Log2Freq(c.n, c.N)
		if got == hints.FreqNever || got == hints.FreqAlways {
			t.Errorf("Log2Freq(%d, %d) produced sentinel %d", c.n, c.N, got)
		}
		if got < 1 || got > 64 {
			t.Errorf("Log2Freq(%d, %d) = %d outside 1..=64", c.n, c.N, got)
		}
	}
}

func TestLog2FreqOfRatio(t *testing.T) {
	tests := []struct {
		r    float64
		want uint8
	}{
		{1, 32},
		{2, 33},
		{0.5, 31},
		{64, 38},
		{256, 40},
		{0.75, 31}, // floor(log2 0.75) = -1
		{1.5, 32},
		{0, 1},
		{-3, 1},
		{math.NaN(), 1},
		{math.Inf(1), 64},
		{math.Ldexp(1, 100), 64},
		{math.Ldexp(1, -100), 1},
	}
	for _, tt := range tests {
		if got := hints.Log2FreqOfRatio(tt.r); got != tt.want {
			t.Errorf("Log2FreqOfRatio(%v): got %d, want %d", tt.r, got, tt.want)
		}
	}

	// The float law agrees with the integer law on exact ratios.
	for _, c := range []struct{ n, N uint64 }{{1, 1}, {256, 1}, {1, 2}, {3, 4}, {1000, 10}} {
		intLaw := hints.Log2Freq(c.n, c.N)
		floatLaw := hints.Log2FreqOfRatio(float64(c.n) / float64(c.N))
		if intLaw != floatLaw {
			t.Errorf("laws disagree for %d/%d: int %d, float %d", c.n, c.N, intLaw, floatLaw)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		log2 uint8
		want float64
	}{
		{32, 1},
		{33, 2},
		{31, 0.5},
		{38, 64},
		{40, 256},
		{1, math.Ldexp(1, -31)},
		{64, math.Ldexp(1, 32)},
	}
	for _, tt := range tests {
		if got := hints.Ratio(tt.log2); got != tt.want {
			t.Errorf("Ratio(%d): got %v, want %v", tt.log2, got, tt.want)
		}
	}

	if hints.Ratio(hints.FreqNever) != 0 {
		t.Error("Ratio(never) should be 0")
	}
	if !math.IsInf(hints.Ratio(hints.FreqAlways), 1) {
		t.Error("Ratio(always) should be +Inf")
	}
}

func TestRatioLossyWithinBucket(t *testing.T) {
	// Integer -> ratio -> integer lands back in the same bucket.
	for l := uint8(8); l <= 56; l++ {
		ratio := hints.Ratio(l)
		// Scale to integer counts: ratio = n/N with N large enough to
		// keep n integral for the fractional buckets.
		N := uint64(1) << 32
		n := uint64(ratio * float64(N))
		if got := hints.Log2Freq(n, N); got != l {
			t.Errorf("bucket %d: round trip through ratio gave %d", l, got)
		}
	}
}

func TestFreqSpansBaseline(t *testing.T) {
	spans := hints.FreqSpans(nil, nil, 40)
	want := []hints.FreqSpan{{Start: 0, End: 40, Log2: hints.FreqBaseline, Known: true}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestFreqSpansHintThenReset(t *testing.T) {
	entries := []hints.Entry{
		{Offset: 10, Payload: hints.NewInstrFreq(40)},
	}
	ctrl := []uint32{25} // a branch at offset 25
	spans := hints.FreqSpans(entries, ctrl, 60)
	want := []hints.FreqSpan{
		{Start: 0, End: 10, Log2: 32, Known: true},
		{Start: 10, End: 26, Log2: 40, Known: true}, // the branch runs under the old context
		{Start: 26, End: 60, Known: false},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestFreqSpansHintRestoresAfterReset(t *testing.T) {
	entries := []hints.Entry{
		{Offset: 5, Payload: hints.NewInstrFreq(45)},
		{Offset: 20, Payload: hints.NewInstrFreq(30)},
	}
	ctrl := []uint32{12}
	spans := hints.FreqSpans(entries, ctrl, 32)
	want := []hints.FreqSpan{
		{Start: 0, End: 5, Log2: 32, Known: true},
		{Start: 5, End: 13, Log2: 45, Known: true},
		{Start: 13, End: 20, Known: false},
		{Start: 20, End: 32, Log2: 30, Known: true},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestFreqSpansHintAtResetBoundary(t *testing.T) {
	// A hint attached to the instruction right after the transfer wins
	// over the reset at the same offset.
	entries := []hints.Entry{
		{Offset: 13, Payload: hints.NewInstrFreq(50)},
	}
	ctrl := []uint32{12}
	spans := hints.FreqSpans(entries, ctrl, 20)
	want := []hints.FreqSpan{
		{Start: 0, End: 13, Log2: 32, Known: true},
		{Start: 13, End: 20, Log2: 50, Known: true},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestFreqSpansIgnoresOtherFamilies(t *testing.T) {
	entries := []hints.Entry{
		{Offset: 3, Payload: hints.NewCompilationOrder(1, nil)},
		{Offset: 8, Payload: hints.NewCallTargets([]hints.Target{{FuncIndex: 1, Percent: 50}})},
	}
	spans := hints.FreqSpans(entries, nil, 16)
	want := []hints.FreqSpan{{Start: 0, End: 16, Log2: 32, Known: true}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestFreqSpansSentinelsPreserved(t *testing.T) {
	entries := []hints.Entry{
		{Offset: 2, Payload: hints.NewInstrFreq(hints.FreqNever)},
		{Offset: 9, Payload: hints.NewInstrFreq(hints.FreqAlways)},
	}
	spans := hints.FreqSpans(entries, nil, 12)
	want := []hints.FreqSpan{
		{Start: 0, End: 2, Log2: 32, Known: true},
		{Start: 2, End: 9, Log2: hints.FreqNever, Known: true},
		{Start: 9, End: 12, Log2: hints.FreqAlways, Known: true},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}
