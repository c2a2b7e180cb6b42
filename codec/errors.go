package codec

import "errors"

var (
	ErrUnexpectedEOF  = errors.New("codec: unexpected end of buffer")
	ErrInvalidUTF8    = errors.New("codec: invalid utf-8 in string")
	ErrInvalidBool    = errors.New("codec: invalid bool value")
	ErrInvalidVariant = errors.New("codec: invalid variant tag")
)

// IsDecodeError reports whether err originated in payload decoding, as
// opposed to a transport-level failure. Wrapped errors are matched.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrUnexpectedEOF) ||
		errors.Is(err, ErrInvalidUTF8) ||
		errors.Is(err, ErrInvalidBool) ||
		errors.Is(err, ErrInvalidVariant)
}
