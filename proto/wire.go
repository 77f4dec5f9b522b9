package proto

import "encoding/binary"

// reader walks a message body, reporting truncation as *DecodeError.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, decodeErrf(r.off, "unexpected end of message")
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) bool() (bool, error) {
	v, err := r.u8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, decodeErrf(r.off-1, "invalid boolean %#02x", v)
	}
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, decodeErrf(r.off, "unexpected end of message")
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) i16() (int16, error) {
	v, err := r.u16()
	return int16(v), err
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, decodeErrf(r.off, "unexpected end of message")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, decodeErrf(r.off, "unexpected end of message")
	}
	v := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return v, nil
}

// str reads a u8-length-prefixed string.
func (r *reader) str() (string, error) {
	n, err := r.u8()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	return string(b), err
}

// text reads a u16-length-prefixed string.
func (r *reader) text() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	return string(b), err
}

// done reports trailing garbage after a complete body.
func (r *reader) done() error {
	if r.remaining() != 0 {
		return decodeErrf(r.off, "%d trailing bytes after message body", r.remaining())
	}
	return nil
}

// writer builds a message. The encode side cannot fail: sizes are checked by
// the typed setters.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) i16(v int16)  { w.u16(uint16(v)) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) str(s string) {
	w.u8(uint8(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) text(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}
