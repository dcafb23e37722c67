package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/domain/league"
	"github.com/sporthub/sporthub-api/internal/domain/match"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type seasonKey struct {
	leagueID int64
	year     int
}

type matchKey struct {
	externalID int64
	seasonID   int64
}

type storedMatch struct {
	leagueID int64
	seasonID int64
	summary  match.Summary
	raw      match.RawMatch
}

// ArchiveRepository keeps the archive in process memory with the same
// contract as the Postgres implementation: get-or-create league/season,
// last-write-wins match upsert keyed by (external id, season), paginated
// listing newest first.
type ArchiveRepository struct {
	mu      sync.RWMutex
	nextID  int64
	leagues map[string]league.League
	seasons map[seasonKey]league.Season
	matches map[matchKey]storedMatch
}

func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{
		leagues: make(map[string]league.League),
		seasons: make(map[seasonKey]league.Season),
		matches: make(map[matchKey]storedMatch),
	}
}

func (r *ArchiveRepository) GetOrCreateLeague(_ context.Context, shortcut, name, country, sport string) (league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLeagueLocked(shortcut, name, country, sport)
}

func (r *ArchiveRepository) getOrCreateLeagueLocked(shortcut, name, country, sport string) (league.League, error) {
	shortcut = strings.ToLower(strings.TrimSpace(shortcut))
	if shortcut == "" {
		return league.League{}, fmt.Errorf("league shortcut is required")
	}
	if lg, ok := r.leagues[shortcut]; ok {
		return lg, nil
	}

	if name == "" {
		name = shortcut
	}
	if country == "" {
		country = "Germany"
	}
	if sport == "" {
		sport = "Football"
	}

	r.nextID++
	lg := league.League{
		ID:       r.nextID,
		Shortcut: shortcut,
		Name:     name,
		Country:  country,
		Sport:    sport,
	}
	r.leagues[shortcut] = lg
	return lg, nil
}

func (r *ArchiveRepository) GetOrCreateSeason(_ context.Context, leagueID int64, year int, isCurrent bool) (league.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateSeasonLocked(leagueID, year, isCurrent)
}

func (r *ArchiveRepository) getOrCreateSeasonLocked(leagueID int64, year int, isCurrent bool) (league.Season, error) {
	key := seasonKey{leagueID: leagueID, year: year}
	if season, ok := r.seasons[key]; ok {
		if isCurrent && !season.IsCurrent {
			season.IsCurrent = true
			r.seasons[key] = season
		}
		return r.seasons[key], nil
	}

	r.nextID++
	season := league.Season{
		ID:        r.nextID,
		LeagueID:  leagueID,
		Year:      year,
		IsCurrent: isCurrent,
	}
	r.seasons[key] = season
	return season, nil
}

func (r *ArchiveRepository) UpsertMatch(_ context.Context, leagueID, seasonID int64, entry archive.Entry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertMatchLocked(leagueID, seasonID, entry)
}

func (r *ArchiveRepository) upsertMatchLocked(leagueID, seasonID int64, entry archive.Entry) (bool, error) {
	s := entry.Summary
	if s.ID == 0 || s.KickoffUTC.IsZero() {
		return true, nil
	}

	r.matches[matchKey{externalID: s.ID, seasonID: seasonID}] = storedMatch{
		leagueID: leagueID,
		seasonID: seasonID,
		summary:  s,
		raw:      entry.Raw,
	}
	return false, nil
}

func (r *ArchiveRepository) BulkUpsertFromBoard(_ context.Context, shortcut, leagueName string, seasonYear int, entries []archive.Entry) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lg, err := r.getOrCreateLeagueLocked(shortcut, leagueName, "", "")
	if err != nil {
		return 0, 0, err
	}
	season, err := r.getOrCreateSeasonLocked(lg.ID, seasonYear, true)
	if err != nil {
		return 0, 0, err
	}

	stored, skipped := 0, 0
	for _, entry := range entries {
		wasSkipped, err := r.upsertMatchLocked(lg.ID, season.ID, entry)
		if err != nil {
			return 0, 0, err
		}
		if wasSkipped {
			skipped++
			continue
		}
		stored++
	}

	return stored, skipped, nil
}

func (r *ArchiveRepository) ListMatches(_ context.Context, q archive.Query) (int, []match.Summary, error) {
	shortcut := strings.ToLower(strings.TrimSpace(q.League))
	if shortcut == "" {
		return 0, nil, fmt.Errorf("league shortcut is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	lg, ok := r.leagues[shortcut]
	if !ok {
		return 0, []match.Summary{}, nil
	}

	yearBySeasonID := make(map[int64]int, len(r.seasons))
	for _, season := range r.seasons {
		yearBySeasonID[season.ID] = season.Year
	}

	var rows []match.Summary
	for _, stored := range r.matches {
		if stored.leagueID != lg.ID {
			continue
		}
		year := yearBySeasonID[stored.seasonID]
		if q.Season != nil && year != *q.Season {
			continue
		}
		kickoff := stored.summary.KickoffUTC.UTC()
		if q.DateFrom != nil && kickoff.Before(dayStartUTC(*q.DateFrom)) {
			continue
		}
		// Exclusive next-day boundary keeps the full dateTo day in range.
		if q.DateTo != nil && !kickoff.Before(dayStartUTC(*q.DateTo).Add(24*time.Hour)) {
			continue
		}
		if q.Status != "" && stored.summary.Status != q.Status {
			continue
		}

		row := stored.summary
		row.LeagueShortcut = lg.Shortcut
		row.LeagueSeason = year
		row.KickoffUTC = kickoff
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].KickoffUTC.Equal(rows[j].KickoffUTC) {
			return rows[i].KickoffUTC.After(rows[j].KickoffUTC)
		}
		return rows[i].ID > rows[j].ID
	})

	total := len(rows)
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := clampPageSize(q.PageSize)

	offset := (page - 1) * pageSize
	if offset >= total {
		return total, []match.Summary{}, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	items := make([]match.Summary, 0, end-offset)
	items = append(items, rows[offset:end]...)
	return total, items, nil
}

func (r *ArchiveRepository) Meta(_ context.Context) ([]archive.LeagueSeasons, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shortcuts := make([]string, 0, len(r.leagues))
	for shortcut := range r.leagues {
		shortcuts = append(shortcuts, shortcut)
	}
	sort.Strings(shortcuts)

	out := make([]archive.LeagueSeasons, 0, len(shortcuts))
	for _, shortcut := range shortcuts {
		lg := r.leagues[shortcut]
		years := []int{}
		for key := range r.seasons {
			if key.leagueID == lg.ID {
				years = append(years, key.year)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))
		out = append(out, archive.LeagueSeasons{League: lg, Years: years})
	}

	return out, nil
}

func clampPageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

func dayStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
