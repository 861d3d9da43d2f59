package hints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-hints/hints"
)

func callTargetsSection(targets []hints.Target) *hints.Section {
	return &hints.Section{
		Name: hints.SectionCallTargets,
		Funcs: []hints.FuncHints{
			{FuncIndex: 4, Entries: []hints.Entry{
				{Offset: 11, Payload: hints.NewCallTargets(targets)},
			}},
		},
	}
}

func TestValidateCallTargetSums(t *testing.T) {
	clean := callTargetsSection([]hints.Target{
		{FuncIndex: 1, Percent: 73},
		{FuncIndex: 2, Percent: 21},
	})
	assert.Empty(t, hints.Validate(clean), "sum 94 is within budget")

	over := callTargetsSection([]hints.Target{
		{FuncIndex: 1, Percent: 73},
		{FuncIndex: 2, Percent: 21},
		{FuncIndex: 3, Percent: 10},
	})
	diags := hints.Validate(over)
	require.Len(t, diags, 1)
	assert.Equal(t, hints.DiagFrequencyOverflow, diags[0].Kind)
	assert.Equal(t, hints.LevelError, diags[0].Level)
	assert.Equal(t, uint32(4), diags[0].FuncIndex)
	assert.Equal(t, uint32(11), diags[0].Offset)

	exact := callTargetsSection([]hints.Target{
		{FuncIndex: 1, Percent: 100},
	})
	assert.Empty(t, hints.Validate(exact), "sum of exactly 100 is valid")
}

func TestValidateCallTargetSumNoUint32Wrap(t *testing.T) {
	// 43 billion percent must not wrap around uint32 into a clean sum.
	over := callTargetsSection([]hints.Target{
		{FuncIndex: 1, Percent: 0xFFFFFFFF},
		{FuncIndex: 2, Percent: 0xFFFFFFFF},
	})
	diags := hints.Validate(over)
	require.Len(t, diags, 1)
	assert.Equal(t, hints.DiagFrequencyOverflow, diags[0].Kind)
}

func TestValidateCompilationOrder(t *testing.T) {
	s := &hints.Section{
		Name: hints.SectionCompilationOrder,
		Funcs: []hints.FuncHints{
			{FuncIndex: 0, Entries: []hints.Entry{
				{Payload: hints.NewCompilationOrder(0, u32p(0))}, // hotness 0 = run once, valid
				{Payload: hints.NewCompilationOrder(0xFFFFFFFF, nil)},
			}},
		},
	}
	assert.Empty(t, hints.Validate(s), "priority is unbounded, hotness 0 is valid")
}

func TestValidateInstrFreqFormula(t *testing.T) {
	tests := []struct {
		log2 uint8
		kind string
	}{
		{0, ""},                          // sentinel "never"
		{127, ""},                        // sentinel "always"
		{32, ""},                         // baseline
		{8, ""}, {64, ""},                // formula edges
		{1, hints.DiagFreqOutOfFormula},  // reserved low
		{7, hints.DiagFreqOutOfFormula},  // reserved low edge
		{120, hints.DiagFreqOutOfFormula},
		{126, hints.DiagFreqOutOfFormula},
		{200, hints.DiagFreqOutOfRange},  // outside the domain entirely
	}
	for _, tt := range tests {
		s := &hints.Section{
			Name: hints.SectionInstrFreq,
			Funcs: []hints.FuncHints{
				{FuncIndex: 1, Entries: []hints.Entry{
					{Offset: 3, Payload: hints.NewInstrFreq(tt.log2)},
				}},
			},
		}
		diags := hints.Validate(s)
		if tt.kind == "" {
			assert.Empty(t, diags, "log2 %d", tt.log2)
			continue
		}
		require.Len(t, diags, 1, "log2 %d", tt.log2)
		assert.Equal(t, tt.kind, diags[0].Kind, "log2 %d", tt.log2)
		if tt.kind == hints.DiagFreqOutOfFormula {
			assert.Equal(t, hints.LevelInfo, diags[0].Level, "reserved values are informational")
		}
	}
}

func TestValidateInstrFreqOffsetOrder(t *testing.T) {
	s := &hints.Section{
		Name: hints.SectionInstrFreq,
		Funcs: []hints.FuncHints{
			{FuncIndex: 0, Entries: []hints.Entry{
				{Offset: 4, Payload: hints.NewInstrFreq(40)},
				{Offset: 9, Payload: hints.NewInstrFreq(30)},
				{Offset: 2, Payload: hints.NewInstrFreq(33)}, // out of order
			}},
		},
	}
	var order []hints.Diagnostic
	for _, d := range hints.Validate(s) {
		if d.Kind == hints.DiagOffsetOrder {
			order = append(order, d)
		}
	}
	require.Len(t, order, 1)
	assert.Equal(t, uint32(2), order[0].Offset)
}

type sizerMap map[uint32]uint32

func (m sizerMap) FuncBodySize(funcIndex uint32) (uint32, bool) {
	size, ok := m[funcIndex]
	return size, ok
}

func TestValidateOffsetPlausibility(t *testing.T) {
	s := &hints.Section{
		Name: hints.SectionInstrFreq,
		Funcs: []hints.FuncHints{
			{FuncIndex: 1, Entries: []hints.Entry{
				{Offset: 0, Payload: hints.NewInstrFreq(32)},   // function-level, always fine
				{Offset: 10, Payload: hints.NewInstrFreq(40)},  // inside the body
				{Offset: 500, Payload: hints.NewInstrFreq(40)}, // past the end
			}},
			{FuncIndex: 7, Entries: []hints.Entry{
				{Offset: 999, Payload: hints.NewInstrFreq(40)}, // unknown function, no finding
			}},
		},
	}
	sizer := sizerMap{1: 20}

	var outOfRange []hints.Diagnostic
	for _, d := range hints.ValidateIn(s, sizer) {
		if d.Kind == hints.DiagOffsetOutOfRange {
			outOfRange = append(outOfRange, d)
		}
	}
	require.Len(t, outOfRange, 1)
	assert.Equal(t, uint32(500), outOfRange[0].Offset)
	assert.Equal(t, hints.LevelInfo, outOfRange[0].Level)
}

func TestValidateOpaqueProducesNothing(t *testing.T) {
	s := &hints.Section{Name: "metadata.code.unknown_future", Opaque: []byte{1, 2, 3}}
	assert.Empty(t, hints.Validate(s), "unknown structure cannot be validated")
	assert.Empty(t, hints.Validate(nil))
}

func TestValidateDoesNotMutate(t *testing.T) {
	s := callTargetsSection([]hints.Target{{FuncIndex: 1, Percent: 200}})
	before := s.Encode()
	_ = hints.Validate(s)
	assert.Equal(t, before, s.Encode(), "validation must never mutate its input")
}
