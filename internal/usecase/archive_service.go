package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/domain/match"
)

// ArchiveQuery carries the parsed archive search parameters.
type ArchiveQuery struct {
	League   string
	Season   *int
	DateFrom string
	DateTo   string
	Status   string
	Page     int
	PageSize int
}

// ArchivePage is one page of stored matches.
type ArchivePage struct {
	Page     int
	PageSize int
	Total    int
	Items    []match.Summary
}

type ArchiveService struct {
	feed  SportsFeed
	repo  archive.Repository
	grace time.Duration
}

func NewArchiveService(feed SportsFeed, repo archive.Repository, grace time.Duration) *ArchiveService {
	if grace <= 0 {
		grace = match.DefaultLiveGrace
	}
	return &ArchiveService{
		feed:  feed,
		repo:  repo,
		grace: grace,
	}
}

// Meta lists the stored leagues with their known season years.
func (s *ArchiveService) Meta(ctx context.Context) ([]archive.LeagueSeasons, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArchiveService.Meta")
	defer span.End()

	meta, err := s.repo.Meta(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive meta: %w", err)
	}

	return meta, nil
}

// Query searches the stored match archive.
func (s *ArchiveService) Query(ctx context.Context, q ArchiveQuery) (ArchivePage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArchiveService.Query")
	defer span.End()

	q.League = strings.ToLower(strings.TrimSpace(q.League))
	if q.League == "" {
		return ArchivePage{}, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if q.Page < 0 || q.PageSize < 0 {
		return ArchivePage{}, fmt.Errorf("%w: page and page_size must not be negative", ErrInvalidInput)
	}

	repoQuery := archive.Query{
		League:   q.League,
		Season:   q.Season,
		Page:     q.Page,
		PageSize: q.PageSize,
	}

	if q.Status = strings.TrimSpace(q.Status); q.Status != "" {
		status, ok := match.ParseStatus(q.Status)
		if !ok {
			return ArchivePage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
		}
		repoQuery.Status = status
	}

	dateFrom, err := parseOptionalDate(q.DateFrom)
	if err != nil {
		return ArchivePage{}, err
	}
	repoQuery.DateFrom = dateFrom

	dateTo, err := parseOptionalDate(q.DateTo)
	if err != nil {
		return ArchivePage{}, err
	}
	repoQuery.DateTo = dateTo

	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		return ArchivePage{}, fmt.Errorf("%w: date_to is before date_from", ErrInvalidInput)
	}

	total, items, err := s.repo.ListMatches(ctx, repoQuery)
	if err != nil {
		return ArchivePage{}, fmt.Errorf("query archive: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	return ArchivePage{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	}, nil
}

// SeasonsForLeague returns the distinct catalog season years of one league,
// newest first.
func (s *ArchiveService) SeasonsForLeague(ctx context.Context, shortcut string) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArchiveService.SeasonsForLeague")
	defer span.End()

	shortcut = strings.ToLower(strings.TrimSpace(shortcut))
	if shortcut == "" {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}

	entries, err := s.feed.GetLeagues(ctx, []string{shortcut})
	if err != nil {
		return nil, fmt.Errorf("seasons for league: %w", err)
	}

	seen := make(map[int]struct{}, len(entries))
	years := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.Season <= 0 {
			continue
		}
		if _, ok := seen[entry.Season]; ok {
			continue
		}
		seen[entry.Season] = struct{}{}
		years = append(years, entry.Season)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, shortcut)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// MatchesForSeason returns one whole upstream season sorted by kickoff. The
// display path keeps records with broken kickoffs rather than dropping them.
func (s *ArchiveService) MatchesForSeason(ctx context.Context, shortcut string, year int) ([]match.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArchiveService.MatchesForSeason")
	defer span.End()

	shortcut = strings.ToLower(strings.TrimSpace(shortcut))
	if shortcut == "" {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if year <= 0 {
		return nil, fmt.Errorf("%w: season year must be positive", ErrInvalidInput)
	}

	raws, err := s.feed.GetSeasonRaw(ctx, shortcut, year)
	if err != nil {
		return nil, fmt.Errorf("matches for season: %w", err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: league=%s season=%d", ErrNotFound, shortcut, year)
	}

	now := time.Now().UTC()
	items := make([]match.Summary, 0, len(raws))
	for _, raw := range raws {
		summary := match.ClassifyLenient(raw, now, s.grace)
		if summary.LeagueShortcut == "" {
			summary.LeagueShortcut = shortcut
		}
		if summary.LeagueSeason == 0 {
			summary.LeagueSeason = year
		}
		items = append(items, summary)
	}

	sortByKickoffAsc(items)
	return items, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, value)
	}
	return &parsed, nil
}
