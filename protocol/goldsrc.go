package protocol

import "fmt"

// decodeGoldSrcInfo parses the legacy (0x6D) response body. The format
// predates the app id field and the extra data flags trailer entirely; the
// only conditional section is the mod sub-record.
func decodeGoldSrcInfo(c *cursor) (*ServerInfo, error) {
	info := &ServerInfo{Engine: EngineGoldSrc}
	var err error

	if info.Address, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read server address: %w", err)
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
	if info.Players, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}
	if info.MaxPlayers, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read max players: %w", err)
	}
	if info.Protocol, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read protocol version: %w", err)
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
		return nil, fmt.Errorf("read mod flag: %w", err)
	}
	if b == 1 {
		// The mod sub-record sits between the mod flag and the VAC byte,
		// so it has to be consumed even by callers that ignore it.
		mod := &ModInfo{}
		if mod.URL, err = c.ReadString(); err != nil {
			return nil, fmt.Errorf("read mod url: %w", err)
		}
		if mod.DownloadURL, err = c.ReadString(); err != nil {
			return nil, fmt.Errorf("read mod download url: %w", err)
		}
		// Always-null spacer byte between the strings and the version.
		if _, err = c.ReadUint8(); err != nil {
			return nil, fmt.Errorf("read mod spacer: %w", err)
		}
		if mod.Version, err = c.ReadUint32(); err != nil {
			return nil, fmt.Errorf("read mod version: %w", err)
		}
		if mod.Size, err = c.ReadUint32(); err != nil {
			return nil, fmt.Errorf("read mod size: %w", err)
		}
		if b, err = c.ReadUint8(); err != nil {
			return nil, fmt.Errorf("read mod type: %w", err)
		}
		mod.MultiplayerOnly = b == 1
		if b, err = c.ReadUint8(); err != nil {
			return nil, fmt.Errorf("read mod dll: %w", err)
		}
		mod.CustomDLL = b == 1
		info.Mod = mod
	}

	if b, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read vac: %w", err)
	}
	info.Secure = b == 1

	if info.Bots, err = c.ReadUint8(); err != nil {
		return nil, fmt.Errorf("read bots: %w", err)
	}

	return info, nil
}
