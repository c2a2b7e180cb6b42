package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

type point struct {
	X int32
	Y int32
}

func (p *point) Encode(b *Buffer) {
	b.PutI32(p.X)
	b.PutI32(p.Y)
}

func (p *point) Decode(r *Reader) error {
	var err error
	if p.X, err = r.I32(); err != nil {
		return err
	}
	if p.Y, err = r.I32(); err != nil {
		return err
	}
	return nil
}

type reading struct {
	Device  string
	Active  bool
	Gain    float64
	Samples []uint16
	Path    []point
	Tags    []string
}

func (s *reading) Encode(b *Buffer) {
	b.PutString(s.Device)
	b.PutBool(s.Active)
	b.PutF64(s.Gain)
	PutSlice(b, s.Samples, (*Buffer).PutU16)
	PutValues[point](b, s.Path)
	PutSlice(b, s.Tags, (*Buffer).PutString)
}

func (s *reading) Decode(r *Reader) error {
	var err error
	if s.Device, err = r.String(); err != nil {
		return err
	}
	if s.Active, err = r.Bool(); err != nil {
		return err
	}
	if s.Gain, err = r.F64(); err != nil {
		return err
	}
	if s.Samples, err = GetSlice(r, (*Reader).U16); err != nil {
		return err
	}
	if s.Path, err = GetValues[point](r); err != nil {
		return err
	}
	if s.Tags, err = GetSlice(r, (*Reader).String); err != nil {
		return err
	}
	return nil
}

func TestPrimitiveRoundTrip(t *testing.T) {
	var b Buffer
	b.PutBool(true)
	b.PutBool(false)
	b.PutU8(0xFF)
	b.PutU16(0xBEEF)
	b.PutU32(0xDEADBEEF)
	b.PutU64(math.MaxUint64)
	b.PutI8(-1)
	b.PutI16(-32768)
	b.PutI32(-1 << 30)
	b.PutI64(math.MinInt64)
	b.PutF32(3.5)
	b.PutF64(-0.125)
	b.PutString("héllo")
	b.PutString("")
	b.PutBytes([]byte{1, 2, 3})
	b.PutBytes(nil)

	r := NewReader(b.Bytes())
	if v, err := r.Bool(); err != nil || v != true {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := r.Bool(); err != nil || v != false {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := r.U8(); err != nil || v != 0xFF {
		t.Fatalf("u8: %v %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0xBEEF {
		t.Fatalf("u16: %v %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("u32: %v %v", v, err)
	}
	if v, err := r.U64(); err != nil || v != math.MaxUint64 {
		t.Fatalf("u64: %v %v", v, err)
	}
	if v, err := r.I8(); err != nil || v != -1 {
		t.Fatalf("i8: %v %v", v, err)
	}
	if v, err := r.I16(); err != nil || v != -32768 {
		t.Fatalf("i16: %v %v", v, err)
	}
	if v, err := r.I32(); err != nil || v != -1<<30 {
		t.Fatalf("i32: %v %v", v, err)
	}
	if v, err := r.I64(); err != nil || v != math.MinInt64 {
		t.Fatalf("i64: %v %v", v, err)
	}
	if v, err := r.F32(); err != nil || v != 3.5 {
		t.Fatalf("f32: %v %v", v, err)
	}
	if v, err := r.F64(); err != nil || v != -0.125 {
		t.Fatalf("f64: %v %v", v, err)
	}
	if v, err := r.String(); err != nil || v != "héllo" {
		t.Fatalf("string: %q %v", v, err)
	}
	if v, err := r.String(); err != nil || v != "" {
		t.Fatalf("empty string: %q %v", v, err)
	}
	if v, err := r.Bytes(); err != nil || !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("bytes: %v %v", v, err)
	}
	if v, err := r.Bytes(); err != nil || len(v) != 0 {
		t.Fatalf("empty bytes: %v %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("trailing bytes: %d", r.Remaining())
	}
}

func TestBigEndianLayout(t *testing.T) {
	var b Buffer
	b.PutU32(0x01020304)
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected layout: %v", b.Bytes())
	}
}

func TestEmptySliceEncodesAsZeroCount(t *testing.T) {
	var b Buffer
	PutSlice(&b, []uint16(nil), (*Buffer).PutU16)
	if !bytes.Equal(b.Bytes(), []byte{0, 0, 0, 0}) {
		t.Fatalf("unexpected encoding: %v", b.Bytes())
	}
	got, err := GetSlice(NewReader(b.Bytes()), (*Reader).U16)
	if err != nil {
		t.Fatalf("decode empty slice: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestCompositeRoundTrip(t *testing.T) {
	in := reading{
		Device:  "cam0",
		Active:  true,
		Gain:    1.25,
		Samples: []uint16{0, 1, 65535},
		Path:    []point{{X: -3, Y: 7}, {X: 0, Y: 0}},
		Tags:    []string{"night", ""},
	}
	data := Marshal(&in)
	var out reading
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Device != in.Device || out.Active != in.Active || out.Gain != in.Gain {
		t.Fatalf("scalar mismatch: %+v", out)
	}
	if len(out.Samples) != 3 || out.Samples[2] != 65535 {
		t.Fatalf("samples mismatch: %v", out.Samples)
	}
	if len(out.Path) != 2 || out.Path[0] != in.Path[0] {
		t.Fatalf("path mismatch: %v", out.Path)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "night" || out.Tags[1] != "" {
		t.Fatalf("tags mismatch: %v", out.Tags)
	}
}

func TestZeroValueRoundTrip(t *testing.T) {
	var in reading
	var out reading
	out.Tags = []string{"stale"}
	if err := Unmarshal(Marshal(&in), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Device != "" || out.Active || out.Gain != 0 {
		t.Fatalf("unexpected scalars: %+v", out)
	}
	if len(out.Samples) != 0 || len(out.Path) != 0 || len(out.Tags) != 0 {
		t.Fatalf("unexpected sequences: %+v", out)
	}
}

func TestNestedSliceRoundTrip(t *testing.T) {
	in := [][]uint8{{1, 2}, {}, {3}}
	var b Buffer
	PutSlice(&b, in, func(b *Buffer, inner []uint8) {
		PutSlice(b, inner, (*Buffer).PutU8)
	})
	out, err := GetSlice(NewReader(b.Bytes()), func(r *Reader) ([]uint8, error) {
		return GetSlice(r, (*Reader).U8)
	})
	if err != nil {
		t.Fatalf("decode nested: %v", err)
	}
	if len(out) != 3 || len(out[0]) != 2 || len(out[1]) != 0 || out[2][0] != 3 {
		t.Fatalf("nested mismatch: %v", out)
	}
}

func TestTruncatedInputIsDecodeError(t *testing.T) {
	in := reading{Device: "cam1", Samples: []uint16{9, 9, 9}}
	data := Marshal(&in)
	for cut := 0; cut < len(data); cut++ {
		var out reading
		err := Unmarshal(data[:cut], &out)
		if err == nil {
			t.Fatalf("cut=%d: expected error", cut)
		}
		if !IsDecodeError(err) {
			t.Fatalf("cut=%d: expected decode error, got %v", cut, err)
		}
	}
}

func TestInvalidUTF8(t *testing.T) {
	var b Buffer
	b.PutBytes([]byte{0xFF, 0xFE, 0xFD})
	_, err := NewReader(b.Bytes()).String()
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestInvalidBool(t *testing.T) {
	_, err := NewReader([]byte{2}).Bool()
	if !errors.Is(err, ErrInvalidBool) {
		t.Fatalf("expected ErrInvalidBool, got %v", err)
	}
}

func TestHostileCountDoesNotOverallocate(t *testing.T) {
	// Declares 2^32-1 elements but carries two bytes of input. Decode
	// must fail with ErrUnexpectedEOF, not attempt the full allocation.
	var b Buffer
	b.PutU32(math.MaxUint32)
	b.PutU16(0)
	_, err := GetSlice(NewReader(b.Bytes()), (*Reader).U16)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
