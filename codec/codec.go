package codec

// Value is the capability of a type to serialize itself to and from
// the wire format. Encode never fails for a well-formed in-memory
// value; Decode consumes fields in declared order and fails as a unit
// if any field fails.
type Value interface {
	Encode(b *Buffer)
	Decode(r *Reader) error
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Value) []byte {
	var b Buffer
	v.Encode(&b)
	return b.Bytes()
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v Value) error {
	return v.Decode(NewReader(data))
}
