package archive

import (
	"context"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/league"
	"github.com/sporthub/sporthub-api/internal/domain/match"
)

// Entry is one normalized match together with the original upstream payload
// stored in the raw_payload column.
type Entry struct {
	Summary match.Summary
	Raw     match.RawMatch
}

// Query filters the stored match archive. League is required, everything else
// is optional. Page is 1-based.
type Query struct {
	League   string
	Season   *int
	DateFrom *time.Time
	DateTo   *time.Time
	Status   match.Status
	Page     int
	PageSize int
}

// LeagueSeasons pairs a stored league with its known season years.
type LeagueSeasons struct {
	League league.League `json:"league"`
	Years  []int         `json:"years"`
}

// Repository persists synced match data. Writes are idempotent: a match is
// keyed by (external_match_id, season_id) and later syncs update it in place.
type Repository interface {
	GetOrCreateLeague(ctx context.Context, shortcut, name, country, sport string) (league.League, error)
	GetOrCreateSeason(ctx context.Context, leagueID int64, year int, isCurrent bool) (league.Season, error)
	UpsertMatch(ctx context.Context, leagueID, seasonID int64, entry Entry) (skipped bool, err error)
	BulkUpsertFromBoard(ctx context.Context, shortcut, leagueName string, seasonYear int, entries []Entry) (stored, skipped int, err error)
	ListMatches(ctx context.Context, q Query) (total int, items []match.Summary, err error)
	Meta(ctx context.Context) ([]LeagueSeasons, error)
}
