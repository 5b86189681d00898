package protocol

import "errors"

var (
	// ErrOutOfData means a field read ran past the available bytes. The
	// packet was truncated somewhere inside a fixed-width field.
	ErrOutOfData = errors.New("read past end of packet")

	// ErrMalformedPacket means a string field has no null terminator
	// before the end of the buffer.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrUnknownResponseType means the response marker byte matches no
	// known info response variant.
	ErrUnknownResponseType = errors.New("unknown response type")
)
