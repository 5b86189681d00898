package protocol

import "fmt"

// Extra data flags gating the optional trailer of a Source info response.
const (
	edfPort     = 0x80
	edfSteamID  = 0x10
	edfSourceTV = 0x40
	edfKeywords = 0x20
	edfGameID   = 0x01
)

// decodeSourceInfo parses the current-variant (0x49) response body: the
// fourteen fixed fields, then an optional flags-gated trailer.
func decodeSourceInfo(c *cursor) (*ServerInfo, error) {
	info := &ServerInfo{Engine: EngineSource}
	var err error

	if info.Protocol, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read protocol version: %w", err)
	}
	if info.Name, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read server name: %w", err)
	}
	if info.Map, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read map name: %w", err)
	}
	if info.Folder, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read game folder: %w", err)
	}
	if info.Game, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read game description: %w", err)
	}
	if info.AppID, err = c.ReadUint16(); err != nil {
		return nil, fmt.Errorf("read app id: %w", err)
	}
	if info.Players, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}
	if info.MaxPlayers, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read max players: %w", err)
	}
	if info.Bots, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read bots: %w", err)
	}
	if info.ServerType, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read server type: %w", err)
	}
	if info.Environment, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	var b uint8
	if b, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read visibility: %w", err)
	}
	info.Password = b == 1

	if b, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read vac: %w", err)
	}
	info.Secure = b == 1

	if info.Version, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read game version: %w", err)
	}

	// Older servers end the response here. An empty remainder is a normal
	// terminal state, not a truncation.
	if c.Remaining() == 0 {
		return info, nil
	}

	if info.EDF, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read extra data flags: %w", err)
	}

	// The optional sections are positional: each one's offset is defined
	// only by every earlier-enabled section having been consumed, so these
	// flag checks must stay in exactly this order.
	if info.EDF&edfPort != 0 {
		if info.Port, err = c.ReadUint16(); err != nil {
			return nil, fmt.Errorf("read game port: %w", err)
		}
	}
	if info.EDF&edfSteamID != 0 {
		if info.SteamID, err = c.ReadUint64(); err != nil {
			return nil, fmt.Errorf("read server steam id: %w", err)
		}
	}
	if info.EDF&edfSourceTV != 0 {
		tv := &SourceTV{}
		if tv.Port, err = c.ReadUint16(); err != nil {
			return nil, fmt.Errorf("read sourcetv port: %w", err)
		}
		if tv.Name, err = c.ReadString(); err != nil {
			return nil, fmt.Errorf("read sourcetv name: %w", err)
		}
		info.SourceTV = tv
	}
	if info.EDF&edfKeywords != 0 {
		if info.Keywords, err = c.ReadString(); err != nil {
			return nil, fmt.Errorf("read keywords: %w", err)
		}
	}
	if info.EDF&edfGameID != 0 {
		if info.GameID, err = c.ReadUint64(); err != nil {
			return nil, fmt.Errorf("read game id: %w", err)
		}
	}

	return info, nil
}
