package protocol

import "strings"

// IdentifyGame maps a decoded response to a game slug for display. The app
// id is the most reliable signal; games whose ids exceed the 16-bit wire
// field report 0 there and carry the real id in the 64-bit GameID trailer
// instead. Falls back to matching the game description.
func IdentifyGame(info *ServerInfo) string {
	if info == nil {
		return ""
	}

	appID := uint64(info.AppID)
	if appID == 0 && info.GameID != 0 {
		// The low 24 bits of GameID hold the app id.
		appID = info.GameID & 0xFFFFFF
	}
	if game := gameByAppID(appID); game != "" {
		return game
	}

	return gameByDescription(info.Game)
}

func gameByAppID(appID uint64) string {
	switch appID {
	case 10:
		return "counter-strike"
	case 20:
		return "team-fortress-classic"
	case 70:
		return "half-life"
	case 240:
		return "counter-strike-source"
	case 300:
		return "day-of-defeat-source"
	case 320:
		return "half-life-2-deathmatch"
	case 440:
		return "team-fortress-2"
	case 500:
		return "left-4-dead"
	case 550:
		return "left-4-dead-2"
	case 730:
		return "counter-strike-2"
	case 4000:
		return "garrys-mod"
	case 107410:
		return "arma-3"
	case 108600:
		return "project-zomboid"
	case 221100:
		return "dayz"
	case 222880:
		return "insurgency"
	case 251570:
		return "7-days-to-die"
	case 252490:
		return "rust"
	case 346110:
		return "ark-survival-evolved"
	}
	return ""
}

func gameByDescription(desc string) string {
	if desc == "" {
		return ""
	}

	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "counter-strike 2"):
		return "counter-strike-2"
	case strings.Contains(lower, "counter-strike: source"):
		return "counter-strike-source"
	case strings.Contains(lower, "counter-strike"):
		return "counter-strike"
	case strings.Contains(lower, "team fortress"):
		return "team-fortress-2"
	case strings.Contains(lower, "garry"), strings.Contains(lower, "gmod"):
		return "garrys-mod"
	case strings.Contains(lower, "left 4 dead 2"):
		return "left-4-dead-2"
	case strings.Contains(lower, "left 4 dead"):
		return "left-4-dead"
	case strings.Contains(lower, "day of defeat"):
		return "day-of-defeat"
	case strings.Contains(lower, "half-life"):
		return "half-life"
	case strings.Contains(lower, "rust"):
		return "rust"
	}
	return ""
}
