package com

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/des256/deli-sub001/codec"
)

const (
	lengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single frame payload.
	DefaultMaxMessageSize uint32 = 64 << 20
)

// frameMessage encodes v and returns the complete frame: big-endian
// length prefix followed by the payload.
func frameMessage(v codec.Value, maxSize uint32) ([]byte, error) {
	payload := codec.Marshal(v)
	if uint64(len(payload)) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(payload), maxSize)
	}
	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:lengthPrefixSize], uint32(len(payload)))
	copy(buf[lengthPrefixSize:], payload)
	return buf, nil
}

// WriteMessage frames and writes one encoded value as a single write.
func WriteMessage(w io.Writer, v codec.Value, maxSize uint32) error {
	buf, err := frameMessage(v, maxSize)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadMessage reads one frame and decodes it into v. EOF at a frame
// boundary is ErrConnectionClosed; EOF inside a frame is
// ErrClosedMidFrame. A declared length above maxSize fails before the
// payload buffer is allocated.
func ReadMessage(r io.Reader, v codec.Value, maxSize uint32) error {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrConnectionClosed
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrClosedMidFrame
		}
		return err
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxSize {
		return fmt.Errorf("%w: declared %d bytes, limit %d", ErrMessageTooLarge, n, maxSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrClosedMidFrame
		}
		return err
	}

	if err := codec.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("com: decode message: %w", err)
	}
	return nil
}
