package wasm

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-hints/internal/binary"
)

// AppendCustomSection returns a copy of module with a custom section
// named name holding payload appended at the end. The input must be a
// scannable module; it is not otherwise validated.
func AppendCustomSection(module []byte, name string, payload []byte) ([]byte, error) {
	if _, err := Scan(module); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(module) + len(name) + len(payload) + 16)
	buf.Write(module)
	writeCustomFrame(&buf, name, payload)
	return buf.Bytes(), nil
}

// ReplaceCustomSection returns a copy of module where every custom
// section named name is removed and a single section with payload
// takes the place of the first one. When the module has no such
// section the new one is appended at the end.
func ReplaceCustomSection(module []byte, name string, payload []byte) ([]byte, error) {
	m, err := Scan(module)
	if err != nil {
		return nil, err
	}

	var matches []CustomSection
	for _, cs := range m.Customs {
		if cs.Name == name {
			matches = append(matches, cs)
		}
	}
	if len(matches) == 0 {
		return AppendCustomSection(module, name, payload)
	}

	log().Debug("replacing custom section",
		zap.String("name", name),
		zap.Int("occurrences", len(matches)))

	var buf bytes.Buffer
	buf.Grow(len(module) + len(payload))
	pos := 0
	for i, cs := range matches {
		buf.Write(module[pos:cs.Start])
		if i == 0 {
			writeCustomFrame(&buf, name, payload)
		}
		pos = cs.End
	}
	buf.Write(module[pos:])
	return buf.Bytes(), nil
}

// writeCustomFrame emits a full custom section frame: id byte, size,
// name, payload.
func writeCustomFrame(buf *bytes.Buffer, name string, payload []byte) {
	body := binary.NewWriter()
	body.WriteName(name)
	body.WriteBytes(payload)

	w := binary.NewWriter()
	w.Byte(SectionCustom)
	w.WriteU32(uint32(body.Len()))
	buf.Write(w.Bytes())
	buf.Write(body.Bytes())
}
