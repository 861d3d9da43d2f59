package wasm

import (
	"bytes"
	"errors"
	"testing"

	herrors "github.com/wippyai/wasm-hints/errors"
)

// Test module building helpers. All counts and sizes in these fixtures
// fit a single LEB128 byte.

func header() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
}

func section(id byte, body []byte) []byte {
	out := []byte{id, byte(len(body))}
	return append(out, body...)
}

func customSection(name string, payload []byte) []byte {
	body := []byte{byte(len(name))}
	body = append(body, name...)
	body = append(body, payload...)
	return section(SectionCustom, body)
}

func buildModule(sections ...[]byte) []byte {
	out := header()
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// typeFuncVoid is a type section with a single []->[] function type.
var typeFuncVoid = section(SectionType, []byte{0x01, 0x60, 0x00, 0x00})

// importOneFunc imports env.f of type 0, shifting defined function
// indices up by one.
var importOneFunc = section(SectionImport, []byte{
	0x01,
	0x03, 'e', 'n', 'v',
	0x01, 'f',
	KindFunc, 0x00,
})

var funcOne = section(SectionFunction, []byte{0x01, 0x00})

// codeBody wraps raw body bytes (locals vector plus expression) into
// a one-function code section.
func codeBody(body []byte) []byte {
	sec := []byte{0x01, byte(len(body))}
	return section(SectionCode, append(sec, body...))
}

func TestScanCustomSections(t *testing.T) {
	mod := buildModule(
		customSection("metadata.code.instr_freq", []byte{0x01, 0x02, 0x01, 0x00, 0x01, 0x20}),
		typeFuncVoid,
		customSection("name", []byte{0xAA}),
	)

	m, err := Scan(mod)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(m.Customs) != 2 {
		t.Fatalf("got %d custom sections, want 2", len(m.Customs))
	}
	if m.Customs[0].Name != "metadata.code.instr_freq" {
		t.Errorf("first section name = %q", m.Customs[0].Name)
	}
	if !bytes.Equal(m.Customs[0].Data, []byte{0x01, 0x02, 0x01, 0x00, 0x01, 0x20}) {
		t.Errorf("first section data = % x", m.Customs[0].Data)
	}

	hs := m.HintSections()
	if len(hs) != 1 || hs[0].Name != "metadata.code.instr_freq" {
		t.Errorf("HintSections = %v", hs)
	}
}

func TestScanCodeSection(t *testing.T) {
	// locals: none; block (void), br 0, end, end
	body := []byte{0x00, OpBlock, 0x40, OpBr, 0x00, OpEnd, OpEnd}
	mod := buildModule(typeFuncVoid, importOneFunc, funcOne, codeBody(body))

	m, err := Scan(mod)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// The one defined function sits after the import.
	size, ok := m.FuncBodySize(1)
	if !ok || size != uint32(len(body)) {
		t.Errorf("FuncBodySize(1) = %d,%v want %d,true", size, ok, len(body))
	}
	if _, ok := m.FuncBodySize(0); ok {
		t.Error("imported function should have no body size")
	}
	if _, ok := m.FuncBodySize(9); ok {
		t.Error("out-of-range function should have no body size")
	}

	// br sits after the locals byte and the two-byte block header.
	want := []uint32{3}
	got := m.ControlOffsets(1)
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("ControlOffsets(1) = %v want %v", got, want)
	}

	funcs := m.Funcs()
	if len(funcs) != 1 || funcs[0].FuncIndex != 1 {
		t.Errorf("Funcs() = %v", funcs)
	}
}

func TestScanControlTransfers(t *testing.T) {
	// if (void) return else unreachable end; br_table 1 0 0; end
	body := []byte{
		0x00,
		OpI32Const, 0x01,
		OpIf, 0x40,
		OpReturn,
		OpElse,
		OpUnreachable,
		OpEnd,
		OpBlock, 0x40,
		OpI32Const, 0x00,
		OpBrTable, 0x01, 0x00, 0x00,
		OpEnd,
		OpEnd,
	}
	mod := buildModule(typeFuncVoid, funcOne, codeBody(body))

	m, err := Scan(mod)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []uint32{5, 7, 13} // return, unreachable, br_table
	got := m.ControlOffsets(0)
	if len(got) != len(want) {
		t.Fatalf("ControlOffsets = %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offset[%d] = %d want %d", i, got[i], want[i])
		}
	}
}

func TestScanUnknownOpcodeDegrades(t *testing.T) {
	// 0x27 is unassigned; the walk gives up but the scan succeeds.
	body := []byte{0x00, 0x27, OpEnd}
	mod := buildModule(typeFuncVoid, funcOne, codeBody(body))

	m, err := Scan(mod)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if size, ok := m.FuncBodySize(0); !ok || size != 3 {
		t.Errorf("FuncBodySize = %d,%v", size, ok)
	}
	if off := m.ControlOffsets(0); off != nil {
		t.Errorf("ControlOffsets = %v, want nil", off)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind herrors.Kind
	}{
		{"empty", nil, herrors.KindTruncatedInput},
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}, herrors.KindInvalidMagic},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, herrors.KindUnsupported},
		{"truncated section", append(header(), 0x00, 0x05, 0x01), herrors.KindTruncatedInput},
		{"section size cut off", append(header(), 0x01), herrors.KindTruncatedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			want := &herrors.Error{Phase: herrors.PhaseScan, Kind: tt.kind}
			if !errors.Is(err, want) {
				t.Errorf("got %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestScanImportKinds(t *testing.T) {
	// One import of every kind; only the function import counts
	// toward the index space.
	imports := []byte{
		0x05,
		0x01, 'm', 0x01, 'f', KindFunc, 0x00,
		0x01, 'm', 0x01, 't', KindTable, 0x70, 0x00, 0x01,
		0x01, 'm', 0x01, 'M', KindMemory, 0x01, 0x01, 0x02,
		0x01, 'm', 0x01, 'g', KindGlobal, 0x7F, 0x00,
		0x01, 'm', 0x01, 'e', KindTag, 0x00, 0x00,
	}
	body := []byte{0x00, OpEnd}
	mod := buildModule(
		typeFuncVoid,
		section(SectionImport, imports),
		funcOne,
		codeBody(body),
	)

	m, err := Scan(mod)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := m.FuncBodySize(1); !ok {
		t.Error("defined function should be at index 1")
	}
	if _, ok := m.FuncBodySize(0); ok {
		t.Error("index 0 is imported")
	}
}
