// Package wire implements the DMX frame wire protocol.
//
// Each frame on the stream is a 4-byte big-endian unsigned length followed by
// exactly that many body bytes:
//
//	+----------------+---------------------------+
//	| length (u32 BE)| body (length bytes)       |
//	+----------------+---------------------------+
//
// There is no start marker, trailer or checksum. A header/trailer envelope
// (0x00 bytes before, 0xFF bytes after) is not part of the protocol: clients
// that send one have it delivered as ordinary body bytes.
//
// Zero-length frames are rejected with domain.ErrEmptyFrame, and lengths above
// the configured maximum with domain.ErrFrameTooLarge. In both cases no body
// byte is consumed, so the stream position is well defined when the caller
// closes the connection.
package wire
