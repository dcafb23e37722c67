package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/match"
)

type SportsService struct {
	feed    SportsFeed
	leagues []string
	season  int
}

func NewSportsService(feed SportsFeed, leagues []string, season int) *SportsService {
	return &SportsService{
		feed:    feed,
		leagues: leagues,
		season:  season,
	}
}

// ListLeagues returns the catalog entries for the configured leagues.
func (s *SportsService) ListLeagues(ctx context.Context) ([]UpstreamLeague, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SportsService.ListLeagues")
	defer span.End()

	leagues, err := s.feed.GetLeagues(ctx, s.leagues)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

// ListMatchesForDate returns the matches of one league on one calendar day.
// An empty league falls back to the first configured one, an empty date means
// today.
func (s *SportsService) ListMatchesForDate(ctx context.Context, leagueShortcut, dateStr string, season *int) ([]match.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SportsService.ListMatchesForDate")
	defer span.End()

	leagueShortcut = strings.ToLower(strings.TrimSpace(leagueShortcut))
	if leagueShortcut == "" {
		if len(s.leagues) == 0 {
			return nil, fmt.Errorf("%w: no leagues configured", ErrInvalidInput)
		}
		leagueShortcut = s.leagues[0]
	}

	date := time.Now().UTC()
	if dateStr = strings.TrimSpace(dateStr); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, dateStr)
		}
		date = parsed
	}

	matches, err := s.feed.GetMatchesForDate(ctx, leagueShortcut, date, season)
	if err != nil {
		return nil, fmt.Errorf("list matches for date: %w", err)
	}

	return matches, nil
}

// PingUpstream checks feed reachability by counting the groups of the first
// configured league's season.
func (s *SportsService) PingUpstream(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SportsService.PingUpstream")
	defer span.End()

	if len(s.leagues) == 0 {
		return 0, fmt.Errorf("%w: no leagues configured", ErrInvalidInput)
	}

	groups, err := s.feed.GetAvailableGroups(ctx, s.leagues[0], s.season)
	if err != nil {
		return 0, fmt.Errorf("ping upstream: %w", err)
	}

	return len(groups), nil
}
