package query

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xkowalskidev/sourcequery/protocol"
)

// DefaultPort is the standard Source query port.
const DefaultPort = 27015

// Request and framing bytes shared by all info queries.
const (
	infoRequest       = 0x54
	challengeResponse = 0x41

	singlePacket uint32 = 0xFFFFFFFF
	splitPacket  uint32 = 0xFFFFFFFE

	maxChallengeAttempts = 3
)

var infoPayload = []byte("Source Engine Query\x00")

var (
	ErrShortResponse  = errors.New("response too short")
	ErrBadPrelude     = errors.New("bad response prelude")
	ErrSplitPacket    = errors.New("split response packets are not supported")
	ErrTooManyRetries = errors.New("too many challenge retries")
)

// Options configures how queries are performed.
type Options struct {
	Timeout    time.Duration
	Port       int
	BufferSize int
	Logger     zerolog.Logger
}

// Option is a functional option for configuring queries.
type Option func(*Options)

// DefaultOptions returns default query options.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    5 * time.Second,
		Port:       0, // use DefaultPort
		BufferSize: 1400,
		Logger:     zerolog.Nop(),
	}
}

// Timeout sets the query timeout.
func Timeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// Port sets a specific port to query when the address carries none.
func Port(port int) Option {
	return func(o *Options) {
		o.Port = port
	}
}

// BufferSize sets the receive buffer size for a single datagram.
func BufferSize(n int) Option {
	return func(o *Options) {
		o.BufferSize = n
	}
}

// WithLogger routes debug logging to the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Query sends an A2S_INFO request to addr and decodes the response. The
// challenge exchange required by newer servers is handled transparently
// with a bounded number of attempts. The transport delivers exactly one
// datagram per query; split responses are rejected.
func Query(ctx context.Context, addr string, opts ...Option) (*protocol.ServerInfo, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	log := options.Logger

	host, port, err := parseAddress(addr, options.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	target := net.JoinHostPort(host, strconv.Itoa(port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", target)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(options.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	request := buildInfoRequest(0, false)
	buf := make([]byte, options.BufferSize)

	for attempt := 1; attempt <= maxChallengeAttempts; attempt++ {
		log.Debug().Str("addr", target).Int("attempt", attempt).Msg("sending A2S_INFO request")

		if _, err := conn.Write(request); err != nil {
			return nil, fmt.Errorf("write failed: %w", err)
		}

		n, err := conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read failed: %w", err)
		}

		payload, err := stripPrelude(buf[:n])
		if err != nil {
			return nil, err
		}

		if payload[0] == challengeResponse {
			if len(payload) < 5 {
				return nil, fmt.Errorf("challenge response: %w", ErrShortResponse)
			}
			challenge := binary.LittleEndian.Uint32(payload[1:5])
			log.Debug().Str("addr", target).Uint32("challenge", challenge).Msg("received challenge")
			request = buildInfoRequest(challenge, true)
			continue
		}

		info, err := protocol.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode failed: %w", err)
		}

		log.Debug().Str("addr", target).Str("name", info.Name).Str("map", info.Map).
			Uint8("players", info.Players).Msg("query completed")
		return info, nil
	}

	return nil, ErrTooManyRetries
}

// buildInfoRequest assembles the A2S_INFO request datagram. Newer servers
// expect the challenge appended after the query string.
func buildInfoRequest(challenge uint32, withChallenge bool) []byte {
	request := []byte{0xFF, 0xFF, 0xFF, 0xFF, infoRequest}
	request = append(request, infoPayload...)
	if withChallenge {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, challenge)
		request = append(request, b...)
	}
	return request
}

// stripPrelude validates the 4-byte datagram prelude and returns the
// payload after it, marker byte included.
func stripPrelude(data []byte) ([]byte, error) {
	if len(data) < 5 {
		return nil, ErrShortResponse
	}
	switch prelude := binary.LittleEndian.Uint32(data[:4]); prelude {
	case singlePacket:
		return data[4:], nil
	case splitPacket:
		return nil, ErrSplitPacket
	default:
		return nil, fmt.Errorf("prelude 0x%08x: %w", prelude, ErrBadPrelude)
	}
}

// parseAddress parses an address string and returns host, port.
func parseAddress(addr string, optPort int) (string, int, error) {
	if addr == "" {
		return "", 0, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// No port specified - check if it's IPv6 with brackets but no port
		if len(addr) > 2 && addr[0] == '[' && addr[len(addr)-1] == ']' {
			host = addr[1 : len(addr)-1]
		} else {
			host = addr
		}
		port := optPort
		if port == 0 {
			port = DefaultPort
		}
		return host, port, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port: %s", portStr)
	}

	return host, port, nil
}
