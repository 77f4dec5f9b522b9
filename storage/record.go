package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Record layout, little-endian:
//
//	[MAGIC u16][FLAGS u8][KEYLEN u8][PAYLOADLEN u32][KEY][PAYLOAD][CRC32 u32]
//
// The CRC32 (IEEE) trailer covers everything before it. The magic is distinct
// from both the erased flash pattern (0xffff) and all-zeroes, so the log scan
// can tell a record head from unused space.
const (
	recordMagic  = 0xaa55
	headerSize   = 8
	trailerSize  = 4
	flagTombstone = 1 << 0

	// MaxKeyLen bounds sprite key length.
	MaxKeyLen = 64

	// MaxPayloadLen bounds a single sprite payload.
	MaxPayloadLen = 1 << 20
)

type record struct {
	key       string
	payload   []byte
	tombstone bool
}

// size is the on-device footprint of the record in bytes.
func (r *record) size() int64 {
	return int64(headerSize + len(r.key) + len(r.payload) + trailerSize)
}

// appendTo serializes the record into buf.
func (r *record) appendTo(buf []byte) []byte {
	start := len(buf)

	var flags byte
	if r.tombstone {
		flags |= flagTombstone
	}

	buf = binary.LittleEndian.AppendUint16(buf, recordMagic)
	buf = append(buf, flags, byte(len(r.key)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.payload)))
	buf = append(buf, r.key...)
	buf = append(buf, r.payload...)
	return binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf[start:]))
}

// readRecord parses the record starting at off. A nil record with a nil error
// marks the end of the log: erased space, a foreign byte pattern, or a record
// that fails its integrity trailer (crash mid-write).
func readRecord(dev BlockDevice, off int64) (*record, error) {
	if off+headerSize+trailerSize > dev.Size() {
		return nil, nil
	}

	var header [headerSize]byte
	if _, err := dev.ReadAt(header[:], off); err != nil {
		return nil, &DeviceError{Op: "read", Err: err}
	}

	if binary.LittleEndian.Uint16(header[0:2]) != recordMagic {
		return nil, nil
	}

	var (
		flags      = header[2]
		keyLen     = int(header[3])
		payloadLen = int64(binary.LittleEndian.Uint32(header[4:8]))
	)
	if keyLen == 0 || keyLen > MaxKeyLen || payloadLen > MaxPayloadLen {
		return nil, nil
	}

	total := headerSize + int64(keyLen) + payloadLen + trailerSize
	if off+total > dev.Size() {
		return nil, nil
	}

	buf := make([]byte, total)
	if _, err := dev.ReadAt(buf, off); err != nil {
		return nil, &DeviceError{Op: "read", Err: err}
	}

	body := buf[:total-trailerSize]
	want := binary.LittleEndian.Uint32(buf[total-trailerSize:])
	if crc32.ChecksumIEEE(body) != want {
		return nil, nil
	}

	return &record{
		key:       string(body[headerSize : headerSize+keyLen]),
		payload:   body[headerSize+keyLen:],
		tombstone: flags&flagTombstone != 0,
	}, nil
}

// ValidateKey checks sprite key constraints: 1–64 bytes of letters, digits,
// '.', '_' or '-'.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > MaxKeyLen {
		return fmt.Errorf("%w: length %d not in 1..%d", ErrInvalidKey, len(key), MaxKeyLen)
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return fmt.Errorf("%w: byte %#02x at %d", ErrInvalidKey, c, i)
		}
	}
	return nil
}
