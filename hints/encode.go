package hints

import "github.com/wippyai/wasm-hints/internal/binary"

// Encode serializes the section body back to its binary form.
//
// The encoding is canonical: all varints are minimal-length and the
// output depends only on the in-memory value, so two calls over the
// same section produce identical bytes. An opaque section re-emits its
// stored bytes unchanged.
func (s *Section) Encode() []byte {
	if s.Opaque != nil {
		out := make([]byte, len(s.Opaque))
		copy(out, s.Opaque)
		return out
	}

	w := binary.NewWriter()
	w.WriteU32(uint32(len(s.Funcs)))
	for _, fh := range s.Funcs {
		w.WriteU32(fh.FuncIndex)
		w.WriteU32(uint32(len(fh.Entries)))
		for _, e := range fh.Entries {
			w.WriteU32(e.Offset)
			vals := encodePayloadValues(e.Payload)
			w.WriteU32(uint32(len(vals)))
			for _, v := range vals {
				w.WriteU32(v)
			}
		}
	}
	return w.Bytes()
}

// EncodedSize returns the byte length Encode will produce without
// building the buffer.
func (s *Section) EncodedSize() int {
	if s.Opaque != nil {
		return len(s.Opaque)
	}
	n := binary.SizeU32(uint32(len(s.Funcs)))
	for _, fh := range s.Funcs {
		n += binary.SizeU32(fh.FuncIndex)
		n += binary.SizeU32(uint32(len(fh.Entries)))
		for _, e := range fh.Entries {
			n += binary.SizeU32(e.Offset)
			vals := encodePayloadValues(e.Payload)
			n += binary.SizeU32(uint32(len(vals)))
			for _, v := range vals {
				n += binary.SizeU32(v)
			}
		}
	}
	return n
}
