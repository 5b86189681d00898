package protocol

import "fmt"

// Info response markers. The marker byte selects the wire format of
// everything after it.
const (
	SourceInfoResponse  = 0x49 // S2A_INFO, Source engine servers
	GoldSrcInfoResponse = 0x6D // S2A_INFO_DETAILED, pre-Steam GoldSrc servers
)

// Decode parses one complete A2S_INFO response payload into a ServerInfo.
// The payload starts with the response marker byte; the 0xFFFFFFFF datagram
// prelude must already be stripped by the transport. Decoding is a pure
// function of the input bytes: independent calls share no state and the
// same buffer always decodes to the same result.
func Decode(payload []byte) (*ServerInfo, error) {
	c := newCursor(payload)

	marker, err := c.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("read response marker: %w", err)
	}

	switch marker {
	case SourceInfoResponse:
		return decodeSourceInfo(c)
	case GoldSrcInfoResponse:
		return decodeGoldSrcInfo(c)
	default:
		return nil, fmt.Errorf("marker 0x%02x: %w", marker, ErrUnknownResponseType)
	}
}
