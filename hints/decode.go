package hints

import (
	stderrors "errors"

	"github.com/wippyai/wasm-hints/errors"
	"github.com/wippyai/wasm-hints/internal/binary"
)

// DecodeSection decodes one custom section body into a Section.
//
// name is the declared custom section name; data is the section body
// after the name field. Unrecognized names bypass structural decoding
// entirely and are carried as opaque bytes, never dropped. For
// recognized families a fatal framing error (truncation, overflow,
// non-canonical varint) aborts the whole section: offsets are not
// self-synchronizing, so partial recovery is not attempted.
func DecodeSection(name string, data []byte) (*Section, error) {
	fam, ok := families[name]
	if !ok {
		raw := make([]byte, len(data))
		copy(raw, data)
		return &Section{Name: name, Opaque: raw}, nil
	}

	r := binary.NewReader(data)

	groupCount, err := readU32(r, name)
	if err != nil {
		return nil, err
	}
	// Every group needs at least two bytes (index, entry count), so a
	// count beyond the remaining length is a framing lie.
	if int64(groupCount)*2 > int64(r.Remaining()) {
		return nil, errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
			Section(name).
			Offset(0).
			Detail("group count %d exceeds section size", groupCount).
			Build()
	}

	s := &Section{Name: name, Funcs: make([]FuncHints, 0, groupCount)}

	for g := uint32(0); g < groupCount; g++ {
		funcIndex, err := readU32(r, name)
		if err != nil {
			return nil, err
		}
		entryCount, err := readU32(r, name)
		if err != nil {
			return nil, err
		}
		if int64(entryCount)*2 > int64(r.Remaining()) {
			return nil, errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
				Section(name).
				Offset(r.Position()).
				Detail("entry count %d for function %d exceeds section size", entryCount, funcIndex).
				Build()
		}

		fh := FuncHints{FuncIndex: funcIndex, Entries: make([]Entry, 0, entryCount)}

		for e := uint32(0); e < entryCount; e++ {
			entryStart := r.Position()

			offset, err := readU32(r, name)
			if err != nil {
				return nil, err
			}
			// hintLength counts trailing ULEB128 values, not bytes.
			valueCount, err := readU32(r, name)
			if err != nil {
				return nil, err
			}
			if int64(valueCount) > int64(r.Remaining()) {
				return nil, errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
					Section(name).
					Offset(r.Position()).
					Detail("value count %d exceeds section size", valueCount).
					Build()
			}

			vals := make([]uint32, valueCount)
			for v := uint32(0); v < valueCount; v++ {
				vals[v], err = readU32(r, name)
				if err != nil {
					return nil, err
				}
			}

			payload, err := fam.decode(vals)
			if err != nil {
				return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
					Section(name).
					Offset(entryStart).
					Detail("function %d: %v", funcIndex, err).
					Cause(err).
					Build()
			}
			fh.Entries = append(fh.Entries, Entry{Offset: offset, Payload: payload})
		}

		s.Funcs = append(s.Funcs, fh)
	}

	if r.Remaining() != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Section(name).
			Offset(r.Position()).
			Detail("%d trailing bytes after last hint group", r.Remaining()).
			Build()
	}

	return s, nil
}

// readU32 reads a canonical varint, translating the reader's sentinel
// errors into structured decode errors with section context.
func readU32(r *binary.Reader, section string) (uint32, error) {
	pos := r.Position()
	v, err := r.ReadU32()
	if err == nil {
		return v, nil
	}
	switch {
	case stderrors.Is(err, binary.ErrTruncated):
		return 0, errors.Truncated(errors.PhaseDecode, section, pos)
	case stderrors.Is(err, binary.ErrOverflow):
		return 0, errors.Overflow(errors.PhaseDecode, section, pos)
	case stderrors.Is(err, binary.ErrNonCanonical):
		return 0, errors.NonCanonical(errors.PhaseDecode, section, pos)
	}
	return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "read varint")
}
