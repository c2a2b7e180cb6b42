package codec

import (
	"encoding/binary"
	"math"
)

// Buffer accumulates one encoded message. The zero value is ready to
// use. All multi-byte values are big-endian.
type Buffer struct {
	buf []byte
}

// Bytes returns the encoded bytes accumulated so far.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of encoded bytes accumulated so far.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// PutBool appends a canonical one-byte 0/1.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

func (b *Buffer) PutU8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *Buffer) PutU16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

func (b *Buffer) PutU32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}

func (b *Buffer) PutU64(v uint64) {
	b.buf = binary.BigEndian.AppendUint64(b.buf, v)
}

func (b *Buffer) PutI8(v int8) {
	b.PutU8(uint8(v))
}

func (b *Buffer) PutI16(v int16) {
	b.PutU16(uint16(v))
}

func (b *Buffer) PutI32(v int32) {
	b.PutU32(uint32(v))
}

func (b *Buffer) PutI64(v int64) {
	b.PutU64(uint64(v))
}

func (b *Buffer) PutF32(v float32) {
	b.PutU32(math.Float32bits(v))
}

func (b *Buffer) PutF64(v float64) {
	b.PutU64(math.Float64bits(v))
}

// PutString appends a 4-byte byte-length prefix followed by the UTF-8
// bytes of s.
func (b *Buffer) PutString(s string) {
	b.PutU32(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

// PutBytes appends a 4-byte count prefix followed by the raw bytes.
// It is the []byte fast path of the generic sequence encoding.
func (b *Buffer) PutBytes(v []byte) {
	b.PutU32(uint32(len(v)))
	b.buf = append(b.buf, v...)
}
