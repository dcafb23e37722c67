package usecase

import (
	"context"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/match"
)

// UpstreamLeague is one entry of the feed's league catalog. The catalog
// carries one entry per league and season.
type UpstreamLeague struct {
	Shortcut string `json:"shortcut"`
	Name     string `json:"name"`
	Season   int    `json:"season"`
	Sport    string `json:"sport"`
}

// UpstreamGroup is one matchday/group of a league season.
type UpstreamGroup struct {
	Name    string `json:"name"`
	OrderID int    `json:"orderId"`
}

// SportsFeed is the upstream match data source.
type SportsFeed interface {
	GetLeagues(ctx context.Context, shortcuts []string) ([]UpstreamLeague, error)
	GetSeasonRaw(ctx context.Context, leagueShortcut string, season int) ([]match.RawMatch, error)
	GetMatchesForDate(ctx context.Context, leagueShortcut string, date time.Time, season *int) ([]match.Summary, error)
	GetAvailableGroups(ctx context.Context, leagueShortcut string, season int) ([]UpstreamGroup, error)
}
