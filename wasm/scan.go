package wasm

import (
	"sort"

	"go.uber.org/zap"

	herrors "github.com/wippyai/wasm-hints/errors"
	"github.com/wippyai/wasm-hints/hints"
	"github.com/wippyai/wasm-hints/internal/binary"
)

// CustomSection is one custom section found in a module, with the
// byte range of its full frame (id byte through payload end) so a
// splice can cut it out exactly.
type CustomSection struct {
	Name  string
	Data  []byte
	Start int
	End   int
}

// FuncInfo describes one function body from the code section.
type FuncInfo struct {
	FuncIndex uint32
	BodySize  uint32
	// ControlOffsets holds byte offsets of control-transfer
	// instructions, relative to the start of the body (the locals
	// vector). Sorted ascending. Nil when the body contained an
	// opcode the scanner does not know.
	ControlOffsets []uint32
}

// ModuleInfo is the result of scanning a module: its custom sections
// and enough code-section shape to sanity-check hint offsets against.
type ModuleInfo struct {
	Customs []CustomSection

	funcs map[uint32]*FuncInfo
}

// Scan walks a WebAssembly binary and collects the information hint
// tooling needs. It does not validate the module beyond section
// framing; a module wazero would reject can still scan cleanly.
func Scan(data []byte) (*ModuleInfo, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, herrors.Truncated(herrors.PhaseScan, "module header", -1)
	}
	if magic != Magic {
		return nil, herrors.InvalidMagic("not a wasm module")
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, herrors.Truncated(herrors.PhaseScan, "module header", -1)
	}
	if version != Version {
		return nil, herrors.Unsupported(herrors.PhaseScan, "binary format version")
	}

	m := &ModuleInfo{funcs: make(map[uint32]*FuncInfo)}
	var importedFuncs uint32

	for r.Remaining() > 0 {
		frameStart := r.Position()
		id, err := r.ReadByte()
		if err != nil {
			return nil, herrors.Truncated(herrors.PhaseScan, "section header", frameStart)
		}
		size, err := readScanU32(r, "section size")
		if err != nil {
			return nil, err
		}
		if int(size) > r.Remaining() {
			return nil, herrors.Truncated(herrors.PhaseScan, "section data", r.Position())
		}
		body, _ := r.ReadBytes(int(size))

		switch id {
		case SectionCustom:
			cs, err := scanCustomSection(body)
			if err != nil {
				return nil, err
			}
			cs.Start = frameStart
			cs.End = r.Position()
			m.Customs = append(m.Customs, cs)
		case SectionImport:
			n, err := scanImportSection(body)
			if err != nil {
				return nil, err
			}
			importedFuncs = n
		case SectionCode:
			if err := scanCodeSection(body, importedFuncs, m); err != nil {
				return nil, err
			}
		}
	}

	log().Debug("scanned module",
		zap.Int("size", len(data)),
		zap.Int("custom_sections", len(m.Customs)),
		zap.Int("functions", len(m.funcs)))
	return m, nil
}

// HintSections returns the custom sections whose names carry the
// compilation hint prefix.
func (m *ModuleInfo) HintSections() []CustomSection {
	var out []CustomSection
	for _, cs := range m.Customs {
		if hints.IsHintSection(cs.Name) {
			out = append(out, cs)
		}
	}
	return out
}

// FuncBodySize reports the body size of funcIndex from the code
// section. Imported functions and indices past the code section
// report false.
func (m *ModuleInfo) FuncBodySize(funcIndex uint32) (uint32, bool) {
	f, ok := m.funcs[funcIndex]
	if !ok {
		return 0, false
	}
	return f.BodySize, true
}

// ControlOffsets returns the control-transfer instruction offsets of
// funcIndex, or nil when the function is unknown or its body could
// not be walked.
func (m *ModuleInfo) ControlOffsets(funcIndex uint32) []uint32 {
	f, ok := m.funcs[funcIndex]
	if !ok {
		return nil
	}
	return f.ControlOffsets
}

// Funcs returns the scanned function bodies ordered by index.
func (m *ModuleInfo) Funcs() []FuncInfo {
	out := make([]FuncInfo, 0, len(m.funcs))
	for _, f := range m.funcs {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FuncIndex < out[j].FuncIndex })
	return out
}

func scanCustomSection(body []byte) (CustomSection, error) {
	r := binary.NewReader(body)
	name, err := r.ReadName()
	if err != nil {
		return CustomSection{}, herrors.Truncated(herrors.PhaseScan, "custom section name", r.Position())
	}
	return CustomSection{Name: name, Data: r.ReadRemaining()}, nil
}

// scanImportSection counts function imports. Hint function indices
// start after them.
func scanImportSection(body []byte) (uint32, error) {
	r := binary.NewReader(body)
	count, err := readScanU32(r, "import count")
	if err != nil {
		return 0, err
	}
	var funcs uint32
	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadName(); err != nil {
			return 0, herrors.Truncated(herrors.PhaseScan, "import module", r.Position())
		}
		if _, err := r.ReadName(); err != nil {
			return 0, herrors.Truncated(herrors.PhaseScan, "import name", r.Position())
		}
		kind, err := r.ReadByte()
		if err != nil {
			return 0, herrors.Truncated(herrors.PhaseScan, "import kind", r.Position())
		}
		switch kind {
		case KindFunc:
			funcs++
			if err := r.SkipVar(); err != nil {
				return 0, herrors.Truncated(herrors.PhaseScan, "import type index", r.Position())
			}
		case KindTable:
			if err := skipRefType(r); err != nil {
				return 0, err
			}
			if err := skipLimits(r); err != nil {
				return 0, err
			}
		case KindMemory:
			if err := skipLimits(r); err != nil {
				return 0, err
			}
		case KindGlobal:
			if err := skipValType(r); err != nil {
				return 0, err
			}
			if _, err := r.ReadByte(); err != nil { // mutability
				return 0, herrors.Truncated(herrors.PhaseScan, "global mutability", r.Position())
			}
		case KindTag:
			if _, err := r.ReadByte(); err != nil { // attribute
				return 0, herrors.Truncated(herrors.PhaseScan, "tag attribute", r.Position())
			}
			if err := r.SkipVar(); err != nil {
				return 0, herrors.Truncated(herrors.PhaseScan, "tag type index", r.Position())
			}
		default:
			return 0, herrors.Unsupported(herrors.PhaseScan, "import kind")
		}
	}
	return funcs, nil
}

func scanCodeSection(body []byte, importedFuncs uint32, m *ModuleInfo) error {
	r := binary.NewReader(body)
	count, err := readScanU32(r, "code count")
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		size, err := readScanU32(r, "body size")
		if err != nil {
			return err
		}
		if int(size) > r.Remaining() {
			return herrors.Truncated(herrors.PhaseScan, "function body", r.Position())
		}
		funcIndex := importedFuncs + i
		bodyBytes := body[r.Position() : r.Position()+int(size)]
		if err := r.Skip(int(size)); err != nil {
			return herrors.Truncated(herrors.PhaseScan, "function body", r.Position())
		}

		f := &FuncInfo{FuncIndex: funcIndex, BodySize: size}
		offsets, err := controlOffsets(bodyBytes)
		if err != nil {
			// Leave offsets nil rather than failing the scan: hint
			// tooling still works, it just cannot place frequency
			// resets for this body.
			log().Debug("body walk failed",
				zap.Uint32("func", funcIndex), zap.Error(err))
		} else {
			f.ControlOffsets = offsets
		}
		m.funcs[funcIndex] = f
	}
	return nil
}

func readScanU32(r *binary.Reader, what string) (uint32, error) {
	v, err := r.ReadVarU32()
	if err != nil {
		if err == binary.ErrOverflow {
			return 0, herrors.Overflow(herrors.PhaseScan, what, r.Position())
		}
		return 0, herrors.Truncated(herrors.PhaseScan, what, r.Position())
	}
	return v, nil
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return herrors.Truncated(herrors.PhaseScan, "limits", r.Position())
	}
	if err := r.SkipVar(); err != nil {
		return herrors.Truncated(herrors.PhaseScan, "limits min", r.Position())
	}
	if flags&0x01 != 0 {
		if err := r.SkipVar(); err != nil {
			return herrors.Truncated(herrors.PhaseScan, "limits max", r.Position())
		}
	}
	return nil
}

// skipValType consumes one value type. Shortened reference types are
// a single byte; (ref ht) forms carry a heap type.
func skipValType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return herrors.Truncated(herrors.PhaseScan, "value type", r.Position())
	}
	if b == 0x63 || b == 0x64 { // ref null / ref
		if err := r.SkipVar(); err != nil {
			return herrors.Truncated(herrors.PhaseScan, "heap type", r.Position())
		}
	}
	return nil
}

func skipRefType(r *binary.Reader) error {
	return skipValType(r)
}
