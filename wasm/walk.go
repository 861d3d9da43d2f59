package wasm

import (
	herrors "github.com/wippyai/wasm-hints/errors"
	"github.com/wippyai/wasm-hints/internal/binary"
)

// controlOffsets walks one function body (locals vector plus
// expression) and returns the byte offsets of control-transfer
// instructions, relative to the start of the body. Immediates are
// skipped, not decoded.
func controlOffsets(body []byte) ([]uint32, error) {
	r := binary.NewReader(body)

	// Locals vector
	localGroups, err := r.ReadVarU32()
	if err != nil {
		return nil, herrors.Truncated(herrors.PhaseScan, "locals", r.Position())
	}
	for i := uint32(0); i < localGroups; i++ {
		if err := r.SkipVar(); err != nil {
			return nil, herrors.Truncated(herrors.PhaseScan, "locals", r.Position())
		}
		if err := skipValType(r); err != nil {
			return nil, err
		}
	}

	var offsets []uint32
	for r.Remaining() > 0 {
		at := r.Position()
		op, err := r.ReadByte()
		if err != nil {
			return nil, herrors.Truncated(herrors.PhaseScan, "instruction", at)
		}
		if isControlTransfer(op) {
			offsets = append(offsets, uint32(at))
		}
		if err := skipImmediates(r, op, at); err != nil {
			return nil, err
		}
	}
	return offsets, nil
}

// skipImmediates consumes the immediates of op. Unknown opcodes are
// an error so a misparse cannot silently produce bogus offsets.
func skipImmediates(r *binary.Reader, op byte, at int) error {
	var err error
	switch op {
	case OpUnreachable, OpNop, OpElse, OpEnd, OpReturn,
		OpThrowRef, OpCatchAll, OpDrop, OpSelect,
		OpRefIsNull, OpRefAsNonNull, OpRefEq:
		// no immediates

	case OpBlock, OpLoop, OpIf, OpTry:
		err = r.SkipVar() // block type, s33

	case OpCatch, OpThrow, OpRethrow, OpDelegate,
		OpBr, OpBrIf, OpCall, OpReturnCall, OpCallRef, OpReturnCallRef,
		OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet,
		OpTableGet, OpTableSet, OpMemorySize, OpMemoryGrow,
		OpI32Const, OpI64Const,
		OpRefNull, OpRefFunc, OpBrOnNull, OpBrOnNonNull:
		err = r.SkipVar()

	case OpCallIndirect, OpReturnCallIndirect:
		err = skipVars(r, 2)

	case OpBrTable:
		var n uint32
		n, err = r.ReadVarU32()
		if err == nil {
			err = skipVars(r, int(n)+1) // labels plus default
		}

	case OpTryTable:
		err = skipTryTable(r)

	case OpSelectType:
		var n uint32
		n, err = r.ReadVarU32()
		for i := uint32(0); err == nil && i < n; i++ {
			err = skipValType(r)
		}

	case OpF32Const:
		err = r.Skip(4)
	case OpF64Const:
		err = r.Skip(8)

	case OpGCPrefix:
		err = skipGCImmediates(r)
	case OpMiscPrefix:
		err = skipMiscImmediates(r)
	case OpSIMDPrefix:
		err = skipSIMDImmediates(r)
	case OpAtomicPrefix:
		err = skipAtomicImmediates(r)

	default:
		// Plain numeric, comparison, load and store opcodes occupy
		// contiguous ranges; everything else is unknown.
		switch {
		case op >= 0x28 && op <= 0x3E: // loads and stores: memarg
			err = skipVars(r, 2)
		case op >= 0x45 && op <= 0xC4: // numeric ops
			// no immediates
		default:
			return herrors.New(herrors.PhaseScan, herrors.KindUnsupported).
				Offset(at).
				Detail("opcode 0x%02x", op).
				Build()
		}
	}
	if err != nil {
		return herrors.Truncated(herrors.PhaseScan, "instruction immediates", r.Position())
	}
	return nil
}

func skipVars(r *binary.Reader, n int) error {
	for i := 0; i < n; i++ {
		if err := r.SkipVar(); err != nil {
			return err
		}
	}
	return nil
}

func skipTryTable(r *binary.Reader) error {
	if err := r.SkipVar(); err != nil { // block type
		return err
	}
	n, err := r.ReadVarU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind == CatchKindCatch || kind == CatchKindCatchRef {
			if err := r.SkipVar(); err != nil { // tag index
				return err
			}
		}
		if err := r.SkipVar(); err != nil { // label
			return err
		}
	}
	return nil
}

func skipGCImmediates(r *binary.Reader) error {
	sub, err := r.ReadVarU32()
	if err != nil {
		return err
	}
	switch sub {
	case 0, 1, 6, 7, 11, 12, 13, 14, 16:
		// struct.new(_default), array.new(_default), array.get
		// variants, array.set, array.fill: one type index
		return r.SkipVar()
	case 2, 3, 4, 5: // struct.get variants, struct.set: type, field
		return skipVars(r, 2)
	case 8, 9, 10, 17, 18, 19:
		// array.new_fixed, array.new_data/elem, array.copy,
		// array.init_data/elem: two indices
		return skipVars(r, 2)
	case 15, 26, 27, 28, 29, 30:
		// array.len, extern conversions, ref.i31, i31.get variants
		return nil
	case 20, 21, 22, 23: // ref.test, ref.cast and null variants
		return r.SkipVar() // heap type
	case GCBrOnCast, GCBrOnCastFail:
		if _, err := r.ReadByte(); err != nil { // cast flags
			return err
		}
		return skipVars(r, 3) // label, two heap types
	}
	return binary.ErrTruncated
}

func skipMiscImmediates(r *binary.Reader) error {
	sub, err := r.ReadVarU32()
	if err != nil {
		return err
	}
	switch {
	case sub <= 7: // saturating truncations
		return nil
	case sub == 9 || sub == 11 || sub == 13 || sub >= 15 && sub <= 17:
		// data.drop, memory.fill, elem.drop, table.grow/size/fill
		return r.SkipVar()
	case sub == 8 || sub == 10 || sub == 12 || sub == 14:
		// memory.init, memory.copy, table.init, table.copy
		return skipVars(r, 2)
	}
	return binary.ErrTruncated
}

func skipSIMDImmediates(r *binary.Reader) error {
	sub, err := r.ReadVarU32()
	if err != nil {
		return err
	}
	switch {
	case sub <= 11 || sub == 92 || sub == 93: // loads, store, load zero
		return skipVars(r, 2) // memarg
	case sub == 12 || sub == 13: // v128.const, i8x16.shuffle
		return r.Skip(16)
	case sub >= 21 && sub <= 34: // extract and replace lane
		return r.Skip(1)
	case sub >= 84 && sub <= 91: // load and store lane
		if err := skipVars(r, 2); err != nil {
			return err
		}
		return r.Skip(1)
	}
	return nil
}

func skipAtomicImmediates(r *binary.Reader) error {
	sub, err := r.ReadVarU32()
	if err != nil {
		return err
	}
	if sub == 0x03 { // atomic.fence
		return r.Skip(1)
	}
	return skipVars(r, 2) // memarg
}
