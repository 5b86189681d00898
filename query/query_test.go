package query

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/0xkowalskidev/sourcequery/protocol"
)

// mockServer simulates a Source server for testing purposes.
type mockServer struct {
	t        *testing.T
	listener net.PacketConn

	mu               sync.Mutex
	response         []byte
	requireChallenge bool
	challengeValue   uint32
	splitResponse    bool
}

// newMockServer creates and starts a mock server answering with response,
// which must be a full datagram including the prelude.
func newMockServer(t *testing.T, response []byte) *mockServer {
	l, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}

	server := &mockServer{
		t:              t,
		listener:       l,
		response:       response,
		challengeValue: 0x12345678,
	}

	go server.handleRequests()
	return server
}

func (s *mockServer) Addr() string {
	return s.listener.LocalAddr().String()
}

func (s *mockServer) Close() {
	s.listener.Close()
}

func (s *mockServer) setResponse(response []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = response
}

func (s *mockServer) setRequireChallenge(require bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireChallenge = require
}

func (s *mockServer) setSplitResponse(split bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitResponse = split
}

func (s *mockServer) handleRequests() {
	buffer := make([]byte, 1400)
	for {
		n, addr, err := s.listener.ReadFrom(buffer)
		if err != nil {
			return // Listener closed
		}
		s.handlePacket(buffer[:n], addr)
	}
}

func (s *mockServer) handlePacket(data []byte, addr net.Addr) {
	if len(data) < 5 || data[4] != infoRequest {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.splitResponse {
		var response bytes.Buffer
		binary.Write(&response, binary.LittleEndian, splitPacket)
		response.Write([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
		s.listener.WriteTo(response.Bytes(), addr)
		return
	}

	// A challenged request carries the challenge after the query string.
	baseLen := 5 + len(infoPayload)
	if s.requireChallenge && len(data) == baseLen {
		var response bytes.Buffer
		binary.Write(&response, binary.LittleEndian, singlePacket)
		response.WriteByte(challengeResponse)
		binary.Write(&response, binary.LittleEndian, s.challengeValue)
		s.listener.WriteTo(response.Bytes(), addr)
		return
	}
	if s.requireChallenge {
		got := binary.LittleEndian.Uint32(data[baseLen:])
		if got != s.challengeValue {
			return // wrong challenge, stay silent
		}
	}

	s.listener.WriteTo(s.response, addr)
}

// sourceResponse builds a full info response datagram with the prelude.
func sourceResponse(name, mapName string, players, maxPlayers uint8) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, singlePacket)
	b.WriteByte(protocol.SourceInfoResponse)
	b.WriteByte(0x11)
	writeCString(&b, name)
	writeCString(&b, mapName)
	writeCString(&b, "csgo")
	writeCString(&b, "Counter-Strike: Global Offensive")
	binary.Write(&b, binary.LittleEndian, uint16(730))
	b.WriteByte(players)
	b.WriteByte(maxPlayers)
	b.WriteByte(0)
	b.WriteByte('d')
	b.WriteByte('l')
	b.WriteByte(0)
	b.WriteByte(1)
	writeCString(&b, "1.38.7.9")
	return b.Bytes()
}

func goldSrcResponse(name string) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, singlePacket)
	b.WriteByte(protocol.GoldSrcInfoResponse)
	writeCString(&b, "127.0.0.1:27015")
	writeCString(&b, name)
	writeCString(&b, "crossfire")
	writeCString(&b, "valve")
	writeCString(&b, "Half-Life")
	b.WriteByte(3)
	b.WriteByte(12)
	b.WriteByte(47)
	b.WriteByte('d')
	b.WriteByte('l')
	b.WriteByte(0)
	b.WriteByte(0)
	b.WriteByte(0)
	b.WriteByte(0)
	return b.Bytes()
}

func writeCString(b *bytes.Buffer, s string) {
	b.WriteString(s)
	b.WriteByte(0)
}

func TestQuery(t *testing.T) {
	server := newMockServer(t, sourceResponse("Test CS:GO Server", "de_dust2", 16, 32))
	defer server.Close()

	info, err := Query(context.Background(), server.Addr(), Timeout(5*time.Second))

	assert.NoError(t, err)
	assert.Equal(t, protocol.EngineSource, info.Engine)
	assert.Equal(t, "Test CS:GO Server", info.Name)
	assert.Equal(t, "de_dust2", info.Map)
	assert.Equal(t, uint16(730), info.AppID)
	assert.Equal(t, uint8(16), info.Players)
	assert.Equal(t, uint8(32), info.MaxPlayers)
	assert.True(t, info.Secure)
}

func TestQuery_WithChallenge(t *testing.T) {
	server := newMockServer(t, sourceResponse("Challenged Server", "gm_construct", 10, 50))
	server.setRequireChallenge(true)
	defer server.Close()

	info, err := Query(context.Background(), server.Addr(), Timeout(5*time.Second))

	assert.NoError(t, err)
	assert.Equal(t, "Challenged Server", info.Name)
	assert.Equal(t, "gm_construct", info.Map)
}

func TestQuery_GoldSrcServer(t *testing.T) {
	server := newMockServer(t, goldSrcResponse("HLDM Classic"))
	defer server.Close()

	info, err := Query(context.Background(), server.Addr(), Timeout(5*time.Second))

	assert.NoError(t, err)
	assert.Equal(t, protocol.EngineGoldSrc, info.Engine)
	assert.Equal(t, "HLDM Classic", info.Name)
	assert.Equal(t, "127.0.0.1:27015", info.Address)
}

func TestQuery_SplitPacketRejected(t *testing.T) {
	server := newMockServer(t, nil)
	server.setSplitResponse(true)
	defer server.Close()

	info, err := Query(context.Background(), server.Addr(), Timeout(5*time.Second))

	assert.ErrorIs(t, err, ErrSplitPacket)
	assert.Nil(t, info)
}

func TestQuery_Timeout(t *testing.T) {
	// A listener that never answers.
	l, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer l.Close()

	info, err := Query(context.Background(), l.LocalAddr().String(), Timeout(100*time.Millisecond))

	assert.Error(t, err)
	assert.Nil(t, info)
}

func TestStripPrelude(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
		wantErr error
	}{
		{
			name: "single packet",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x49, 0x02},
			want: []byte{0x49, 0x02},
		},
		{
			name:    "split packet",
			data:    []byte{0xFE, 0xFF, 0xFF, 0xFF, 0x49, 0x02},
			wantErr: ErrSplitPacket,
		},
		{
			name:    "garbage prelude",
			data:    []byte{0x00, 0x01, 0x02, 0x03, 0x49},
			wantErr: ErrBadPrelude,
		},
		{
			name:    "too short",
			data:    []byte{0xFF, 0xFF},
			wantErr: ErrShortResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripPrelude(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		optPort  int
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "host with port",
			addr:     "192.168.1.100:27016",
			wantHost: "192.168.1.100",
			wantPort: 27016,
		},
		{
			name:     "host without port uses default",
			addr:     "play.example.net",
			wantHost: "play.example.net",
			wantPort: DefaultPort,
		},
		{
			name:     "host without port uses option port",
			addr:     "play.example.net",
			optPort:  28015,
			wantHost: "play.example.net",
			wantPort: 28015,
		},
		{
			name:     "ipv6 with brackets and port",
			addr:     "[::1]:27015",
			wantHost: "::1",
			wantPort: 27015,
		},
		{
			name:     "ipv6 with brackets no port",
			addr:     "[::1]",
			wantHost: "::1",
			wantPort: DefaultPort,
		},
		{
			name:    "empty address",
			addr:    "",
			wantErr: true,
		},
		{
			name:    "bad port",
			addr:    "host:abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := parseAddress(tt.addr, tt.optPort)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}
