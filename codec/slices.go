package codec

// PutSlice encodes a count-prefixed sequence, applying enc to each
// element in order. An empty or nil slice encodes as a 4-byte zero.
func PutSlice[E any](b *Buffer, s []E, enc func(*Buffer, E)) {
	b.PutU32(uint32(len(s)))
	for _, e := range s {
		enc(b, e)
	}
}

// GetSlice decodes a count-prefixed sequence, applying dec to each
// element in order. The first element failure fails the whole slice.
// Preallocation is capped by the remaining input so a hostile count
// cannot force a huge allocation.
func GetSlice[E any](r *Reader, dec func(*Reader) (E, error)) ([]E, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, min(int(n), r.Remaining()))
	for i := 0; i < int(n); i++ {
		e, err := dec(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// PutValues encodes a sequence whose elements are themselves
// Codec-capable composite types.
func PutValues[E any, PE interface {
	Value
	*E
}](b *Buffer, s []E) {
	b.PutU32(uint32(len(s)))
	for i := range s {
		PE(&s[i]).Encode(b)
	}
}

// GetValues decodes a sequence of Codec-capable composite elements.
func GetValues[E any, PE interface {
	Value
	*E
}](r *Reader) ([]E, error) {
	return GetSlice(r, func(r *Reader) (E, error) {
		var e E
		err := PE(&e).Decode(r)
		return e, err
	})
}
