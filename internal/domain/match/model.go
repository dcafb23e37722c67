package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
	StatusUnknown   Status = "UNKNOWN"
)

// DefaultLiveGrace is how far before kickoff a match already counts as live.
// A product decision, overridable through config.
const DefaultLiveGrace = 5 * time.Minute

const UnknownTeamName = "Unknown"

// Summary is the canonical representation of one upstream match record.
type Summary struct {
	ID             int64
	LeagueShortcut string
	LeagueSeason   int
	GroupOrderID   int
	Team1Name      string
	Team2Name      string
	KickoffUTC     time.Time
	Status         Status
	ScoreTeam1     *int
	ScoreTeam2     *int
}

func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusScheduled:
		return StatusScheduled, true
	case StatusLive:
		return StatusLive, true
	case StatusFinished:
		return StatusFinished, true
	case StatusUnknown:
		return StatusUnknown, true
	default:
		return "", false
	}
}
