package protocol

import (
	"encoding/binary"
	"fmt"
)

// cursor is a sequential typed reader over one response payload. It tracks
// the read position and is owned by a single decode call; it is never shared
// or reused across packets. All multi-byte reads are little-endian.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// Remaining returns the number of unread bytes.
func (c *cursor) Remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) ReadUint8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, fmt.Errorf("offset %d: %w", c.pos, ErrOutOfData)
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) ReadUint16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, fmt.Errorf("offset %d: %w", c.pos, ErrOutOfData)
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) ReadUint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, fmt.Errorf("offset %d: %w", c.pos, ErrOutOfData)
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadUint64 reads two consecutive little-endian uint32 words, low word
// first, and combines them. Source servers transmit 64-bit ids this way.
func (c *cursor) ReadUint64() (uint64, error) {
	low, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	high, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return uint64(high)<<32 | uint64(low), nil
}

// ReadString reads bytes up to the next null terminator and consumes the
// terminator. The terminator is never part of the returned string.
func (c *cursor) ReadString() (string, error) {
	for i := c.pos; i < len(c.data); i++ {
		if c.data[i] == 0 {
			s := string(c.data[c.pos:i])
			c.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("offset %d: unterminated string: %w", c.pos, ErrMalformedPacket)
}
