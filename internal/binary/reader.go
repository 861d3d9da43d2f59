package binary

import "errors"

// Sentinel errors for varint decoding. Callers wrap these with section
// name and offset context.
var (
	ErrTruncated    = errors.New("leb128: truncated input")
	ErrOverflow     = errors.New("leb128: overflow")
	ErrNonCanonical = errors.New("leb128: non-canonical encoding")
)

// Reader walks a byte slice with position tracking and hint-section
// read methods. Decoding accepts only canonical (minimal-length)
// LEB128 so that encode(decode(b)) == b holds for valid input.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data. The slice is not copied and
// must be treated as read-only for the lifetime of the Reader.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrTruncated
	}
	buf := make([]byte, n)
	copy(buf, r.data[r.pos:r.pos+n])
	r.pos += n
	return buf, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
//
// At most 5 bytes are consumed; a 5th byte with payload bits above
// bit 31 is an overflow. A terminal 0x00 byte after a continuation
// byte would decode fine but is a redundant (non-minimal) encoding
// and is rejected to keep round-trips byte-identical.
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	var n int
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		n++
		if shift == 28 && b&0x70 != 0 {
			return 0, ErrOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if n > 1 && b == 0 {
				return 0, ErrNonCanonical
			}
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrOverflow
		}
	}
}

// ReadS32 reads a signed LEB128 encoded int32. No current hint family
// carries signed values; this exists for future families.
func (r *Reader) ReadS32() (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, ErrOverflow
		}
	}
	// Sign extend
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

// ReadU32LE reads a fixed-width little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrTruncated
	}
	v := uint32(r.data[r.pos]) | uint32(r.data[r.pos+1])<<8 |
		uint32(r.data[r.pos+2])<<16 | uint32(r.data[r.pos+3])<<24
	r.pos += 4
	return v, nil
}

// ReadVarU32 reads an unsigned LEB128 uint32, accepting padded
// (non-minimal) encodings. The core module format permits those, so
// module scanning must not reject them.
func (r *Reader) ReadVarU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 28 && b&0x70 != 0 {
			return 0, ErrOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrOverflow
		}
	}
}

// SkipVar consumes one LEB128 value of at most 10 bytes without
// decoding it. Wide enough for any s64/u64 immediate.
func (r *Reader) SkipVar() error {
	for i := 0; i < 10; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b&0x80 == 0 {
			return nil
		}
	}
	return ErrOverflow
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return ErrTruncated
	}
	r.pos += n
	return nil
}

// ReadName reads a length-prefixed UTF-8 name as used by custom
// sections and imports. The length may be padded.
func (r *Reader) ReadName() (string, error) {
	n, err := r.ReadVarU32()
	if err != nil {
		return "", err
	}
	if int(n) > r.Remaining() {
		return "", ErrTruncated
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadRemaining reads all remaining bytes.
func (r *Reader) ReadRemaining() []byte {
	buf := make([]byte, len(r.data)-r.pos)
	copy(buf, r.data[r.pos:])
	r.pos = len(r.data)
	return buf
}
