package protocol

// Engine identifies which wire format a response was decoded from.
const (
	EngineSource  = "source"
	EngineGoldSrc = "goldsrc"
)

// ServerInfo is the decoded result of a single A2S_INFO response. It is
// built incrementally during decode and never returned partially: a decode
// either yields a fully populated ServerInfo or an error.
type ServerInfo struct {
	Engine      string `json:"engine"`
	Protocol    uint8  `json:"protocol"`
	Name        string `json:"name"`
	Map         string `json:"map"`
	Folder      string `json:"folder"`
	Game        string `json:"game"`
	AppID       uint16 `json:"app_id,omitempty"`
	Players     uint8  `json:"players"`
	MaxPlayers  uint8  `json:"max_players"`
	Bots        uint8  `json:"bots"`
	ServerType  byte   `json:"server_type"` // 'd' dedicated, 'l' listen, 'p' SourceTV relay
	Environment byte   `json:"environment"` // 'l' linux, 'w' windows, 'm'/'o' mac
	Password    bool   `json:"password"`
	Secure      bool   `json:"secure"`
	Version     string `json:"version,omitempty"`

	// EDF records which optional trailing sections were present in a
	// Source response. Zero for plain responses and for GoldSrc.
	EDF      uint8     `json:"edf,omitempty"`
	Port     uint16    `json:"port,omitempty"`
	SteamID  uint64    `json:"steam_id,omitempty"`
	SourceTV *SourceTV `json:"source_tv,omitempty"`
	Keywords string    `json:"keywords,omitempty"`
	GameID   uint64    `json:"game_id,omitempty"`

	// GoldSrc-only fields.
	Address string   `json:"address,omitempty"`
	Mod     *ModInfo `json:"mod,omitempty"`
}

// SourceTV describes the spectator relay advertised by a Source server.
type SourceTV struct {
	Port uint16 `json:"port"`
	Name string `json:"name"`
}

// ModInfo is the embedded mod sub-record of a GoldSrc info response,
// present only when the server runs a HL mod.
type ModInfo struct {
	URL             string `json:"url"`
	DownloadURL     string `json:"download_url"`
	Version         uint32 `json:"version"`
	Size            uint32 `json:"size"`
	MultiplayerOnly bool   `json:"multiplayer_only"`
	CustomDLL       bool   `json:"custom_dll"`
}
