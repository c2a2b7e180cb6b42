// Package codec owns the deli wire serialization contract.
//
// Ownership boundary:
// - Buffer/Reader primitives (big-endian, closed-world)
// - the Value capability implemented by every transportable type
// - generic sequence helpers
// - decode-error sentinels, distinguishable from transport I/O errors
//
// The schema is implicit: composite types encode their fields in
// declared order with no names or type tags, so encoder and decoder
// must agree out-of-band.
package codec
