package wasm

// WebAssembly binary format constants
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
	SectionTag       byte = 13
)

// Import/export kinds
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
	KindTag    byte = 4
)

// Control and call opcodes
const (
	OpUnreachable        byte = 0x00
	OpNop                byte = 0x01
	OpBlock              byte = 0x02
	OpLoop               byte = 0x03
	OpIf                 byte = 0x04
	OpElse               byte = 0x05
	OpTry                byte = 0x06 // Exception handling
	OpCatch              byte = 0x07 // Exception handling
	OpThrow              byte = 0x08 // Exception handling
	OpRethrow            byte = 0x09 // Exception handling
	OpThrowRef           byte = 0x0A // Exception handling
	OpEnd                byte = 0x0B
	OpBr                 byte = 0x0C
	OpBrIf               byte = 0x0D
	OpBrTable            byte = 0x0E
	OpReturn             byte = 0x0F
	OpCall               byte = 0x10
	OpCallIndirect       byte = 0x11
	OpReturnCall         byte = 0x12 // Tail call proposal
	OpReturnCallIndirect byte = 0x13 // Tail call proposal
	OpCallRef            byte = 0x14 // Typed function references
	OpReturnCallRef      byte = 0x15 // Typed function references
	OpDelegate           byte = 0x18 // Exception handling
	OpCatchAll           byte = 0x19 // Exception handling
	OpTryTable           byte = 0x1F // Exception handling (new)
)

// Parametric and variable opcodes
const (
	OpDrop       byte = 0x1A
	OpSelect     byte = 0x1B
	OpSelectType byte = 0x1C
	OpLocalGet   byte = 0x20
	OpLocalSet   byte = 0x21
	OpLocalTee   byte = 0x22
	OpGlobalGet  byte = 0x23
	OpGlobalSet  byte = 0x24
	OpTableGet   byte = 0x25
	OpTableSet   byte = 0x26
)

// Memory and constant opcodes
const (
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
	OpI32Const   byte = 0x41
	OpI64Const   byte = 0x42
	OpF32Const   byte = 0x43
	OpF64Const   byte = 0x44
)

// Reference opcodes
const (
	OpRefNull      byte = 0xD0
	OpRefIsNull    byte = 0xD1
	OpRefFunc      byte = 0xD2
	OpRefAsNonNull byte = 0xD3 // Typed function references
	OpRefEq        byte = 0xD4 // GC proposal
	OpBrOnNull     byte = 0xD5 // Typed function references
	OpBrOnNonNull  byte = 0xD6 // Typed function references
)

// Prefix opcodes
const (
	OpGCPrefix     byte = 0xFB
	OpMiscPrefix   byte = 0xFC
	OpSIMDPrefix   byte = 0xFD
	OpAtomicPrefix byte = 0xFE
)

// GC prefix sub-opcodes that transfer control
const (
	GCBrOnCast     uint32 = 24
	GCBrOnCastFail uint32 = 25
)

// Catch clause kinds for try_table
const (
	CatchKindCatch       byte = 0
	CatchKindCatchRef    byte = 1
	CatchKindCatchAll    byte = 2
	CatchKindCatchAllRef byte = 3
)

// isControlTransfer reports whether op unconditionally or conditionally
// diverts execution away from the fall-through path. These are the
// points where an established instruction frequency stops applying.
func isControlTransfer(op byte) bool {
	switch op {
	case OpUnreachable, OpThrow, OpRethrow, OpThrowRef,
		OpBr, OpBrIf, OpBrTable, OpReturn,
		OpReturnCall, OpReturnCallIndirect, OpReturnCallRef,
		OpDelegate, OpBrOnNull, OpBrOnNonNull:
		return true
	}
	return false
}
