// Package com owns the framed messaging layer between one publishing
// process and its subscribers.
//
// Ownership boundary:
// - length-prefixed framing over any byte-stream transport
// - the StreamConn/StreamListener transport seam (TCP built in)
// - Server: accept loop, broadcast with per-peer failure isolation,
//   fair receive fan-in across all connected clients
// - Client: one connection, send/recv, every failure surfaced
//
// Wire format: [4-byte unsigned length, big-endian][payload], payload
// encoded by package codec. The frame carries no version or type tag;
// both ends agree on the message type out-of-band.
package com
