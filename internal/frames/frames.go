// Package frames holds the record types moved by the demo tools and
// integration tests. These schemas belong to the application: the
// messaging layer carries any codec.Value and knows nothing about
// them.
package frames

import (
	"fmt"

	"github.com/des256/deli-sub001/codec"
)

// PixelFormat identifies the layout of VideoFrame.Data.
type PixelFormat uint32

const (
	PixelGray8 PixelFormat = iota
	PixelRGB8
	PixelYUYV
)

func (f *PixelFormat) Encode(b *codec.Buffer) {
	b.PutU32(uint32(*f))
}

func (f *PixelFormat) Decode(r *codec.Reader) error {
	v, err := r.U32()
	if err != nil {
		return err
	}
	if v > uint32(PixelYUYV) {
		return fmt.Errorf("%w: pixel format %d", codec.ErrInvalidVariant, v)
	}
	*f = PixelFormat(v)
	return nil
}

// VideoFrame is one captured image.
type VideoFrame struct {
	Seq    uint64
	Width  uint32
	Height uint32
	Format PixelFormat
	Data   []byte
}

func (f *VideoFrame) Encode(b *codec.Buffer) {
	b.PutU64(f.Seq)
	b.PutU32(f.Width)
	b.PutU32(f.Height)
	f.Format.Encode(b)
	b.PutBytes(f.Data)
}

func (f *VideoFrame) Decode(r *codec.Reader) error {
	var err error
	if f.Seq, err = r.U64(); err != nil {
		return err
	}
	if f.Width, err = r.U32(); err != nil {
		return err
	}
	if f.Height, err = r.U32(); err != nil {
		return err
	}
	if err = f.Format.Decode(r); err != nil {
		return err
	}
	if f.Data, err = r.Bytes(); err != nil {
		return err
	}
	return nil
}

// Ack acknowledges receipt of a frame.
type Ack struct {
	Seq  uint64
	OK   bool
	Note string
}

func (a *Ack) Encode(b *codec.Buffer) {
	b.PutU64(a.Seq)
	b.PutBool(a.OK)
	b.PutString(a.Note)
}

func (a *Ack) Decode(r *codec.Reader) error {
	var err error
	if a.Seq, err = r.U64(); err != nil {
		return err
	}
	if a.OK, err = r.Bool(); err != nil {
		return err
	}
	if a.Note, err = r.String(); err != nil {
		return err
	}
	return nil
}

// PacketKind tags the active variant of a Packet.
type PacketKind uint32

const (
	KindFrame PacketKind = iota
	KindAck
)

// Packet is the tagged union both directions of the demo link carry:
// frames flow publisher to subscriber, acks flow back. Encoded as a
// u32 tag followed by the active variant's fields only.
type Packet struct {
	Kind  PacketKind
	Frame VideoFrame
	Ack   Ack
}

func FramePacket(f VideoFrame) Packet {
	return Packet{Kind: KindFrame, Frame: f}
}

func AckPacket(a Ack) Packet {
	return Packet{Kind: KindAck, Ack: a}
}

func (p *Packet) Encode(b *codec.Buffer) {
	b.PutU32(uint32(p.Kind))
	switch p.Kind {
	case KindFrame:
		p.Frame.Encode(b)
	case KindAck:
		p.Ack.Encode(b)
	}
}

func (p *Packet) Decode(r *codec.Reader) error {
	tag, err := r.U32()
	if err != nil {
		return err
	}
	switch PacketKind(tag) {
	case KindFrame:
		p.Kind = KindFrame
		return p.Frame.Decode(r)
	case KindAck:
		p.Kind = KindAck
		return p.Ack.Decode(r)
	default:
		return fmt.Errorf("%w: packet kind %d", codec.ErrInvalidVariant, tag)
	}
}
