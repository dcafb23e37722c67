package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/domain/match"
	"github.com/sporthub/sporthub-api/internal/platform/logging"
)

// Board is the live/upcoming/recent view over the configured leagues.
type Board struct {
	DateFrom time.Time
	DateTo   time.Time
	Leagues  []string
	Recent   []match.Summary
	Live     []match.Summary
	Upcoming []match.Summary
}

type BoardConfig struct {
	Leagues   []string
	Season    int
	LiveGrace time.Duration
	DaysBack  int
	DaysAhead int
}

type BoardService struct {
	feed   SportsFeed
	repo   archive.Repository
	logger *logging.Logger
	cfg    BoardConfig
}

func NewBoardService(feed SportsFeed, repo archive.Repository, logger *logging.Logger, cfg BoardConfig) *BoardService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LiveGrace <= 0 {
		cfg.LiveGrace = match.DefaultLiveGrace
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = 3
	}
	if cfg.DaysAhead <= 0 {
		cfg.DaysAhead = 3
	}
	return &BoardService{
		feed:   feed,
		repo:   repo,
		logger: logger,
		cfg:    cfg,
	}
}

// GetBoard fetches the current season of every configured league, classifies
// each match against a single captured now, persists the batches best-effort
// and buckets the results. A failed upstream fetch aborts the whole board, a
// failed persist does not.
func (s *BoardService) GetBoard(ctx context.Context, daysBack, daysAhead int) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.GetBoard")
	defer span.End()

	if daysBack < 0 || daysAhead < 0 {
		return Board{}, fmt.Errorf("%w: day windows must not be negative", ErrInvalidInput)
	}
	if daysBack == 0 {
		daysBack = s.cfg.DaysBack
	}
	if daysAhead == 0 {
		daysAhead = s.cfg.DaysAhead
	}

	now := time.Now().UTC()

	type leagueBatch struct {
		raws []match.RawMatch
		err  error
	}
	batches := make([]leagueBatch, len(s.cfg.Leagues))

	var wg conc.WaitGroup
	for i, shortcut := range s.cfg.Leagues {
		i, shortcut := i, shortcut
		wg.Go(func() {
			raws, err := s.feed.GetSeasonRaw(ctx, shortcut, s.cfg.Season)
			batches[i] = leagueBatch{raws: raws, err: err}
		})
	}
	wg.Wait()

	for i, batch := range batches {
		if batch.err != nil {
			return Board{}, fmt.Errorf("%w: fetch season for %s: %v", ErrUpstream, s.cfg.Leagues[i], batch.err)
		}
	}

	board := Board{
		DateFrom: now.AddDate(0, 0, -daysBack),
		DateTo:   now.AddDate(0, 0, daysAhead),
		Leagues:  append([]string(nil), s.cfg.Leagues...),
		Recent:   []match.Summary{},
		Live:     []match.Summary{},
		Upcoming: []match.Summary{},
	}

	for i, batch := range batches {
		shortcut := s.cfg.Leagues[i]
		entries := make([]archive.Entry, 0, len(batch.raws))
		for _, raw := range batch.raws {
			summary, err := match.Classify(raw, now, s.cfg.LiveGrace)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping match without parseable kickoff",
					"league", shortcut,
					"error", err,
				)
				continue
			}
			if summary.LeagueShortcut == "" {
				summary.LeagueShortcut = shortcut
			}
			if summary.LeagueSeason == 0 {
				summary.LeagueSeason = s.cfg.Season
			}
			entries = append(entries, archive.Entry{Summary: summary, Raw: raw})
		}

		s.persistBatch(ctx, shortcut, entries)

		for _, entry := range entries {
			s.bucket(&board, entry.Summary, now)
		}
	}

	sortByKickoffAsc(board.Live)
	sortByKickoffAsc(board.Upcoming)
	sortByKickoffDesc(board.Recent)

	return board, nil
}

// persistBatch is write-through caching, not the source of the response, so
// failures are only logged.
func (s *BoardService) persistBatch(ctx context.Context, shortcut string, entries []archive.Entry) {
	if s.repo == nil || len(entries) == 0 {
		return
	}

	leagueName := shortcut
	seasonYear := s.cfg.Season
	if entries[0].Summary.LeagueSeason != 0 {
		seasonYear = entries[0].Summary.LeagueSeason
	}

	stored, skipped, err := s.repo.BulkUpsertFromBoard(ctx, shortcut, leagueName, seasonYear, entries)
	if err != nil {
		s.logger.ErrorContext(ctx, "persist board batch failed",
			"league", shortcut,
			"season", seasonYear,
			"error", err,
		)
		return
	}

	s.logger.DebugContext(ctx, "persisted board batch",
		"league", shortcut,
		"season", seasonYear,
		"stored", stored,
		"skipped", skipped,
	)
}

func (s *BoardService) bucket(board *Board, summary match.Summary, now time.Time) {
	switch summary.Status {
	case match.StatusLive:
		board.Live = append(board.Live, summary)
	case match.StatusScheduled:
		if !summary.KickoffUTC.After(board.DateTo) {
			board.Upcoming = append(board.Upcoming, summary)
		}
	case match.StatusFinished:
		// Recent means finished within [now - daysBack, now]. The feed can
		// flag a rescheduled match finished with a kickoff still ahead of
		// now; that row is archived but kept out of the recent bucket.
		if !summary.KickoffUTC.Before(board.DateFrom) && !summary.KickoffUTC.After(now) {
			board.Recent = append(board.Recent, summary)
		}
	}
}

func sortByKickoffAsc(items []match.Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].KickoffUTC.Before(items[j].KickoffUTC)
	})
}

func sortByKickoffDesc(items []match.Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].KickoffUTC.After(items[j].KickoffUTC)
	})
}
