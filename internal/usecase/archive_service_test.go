package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sporthub/sporthub-api/internal/domain/match"
)

func TestArchiveQueryRequiresLeague(t *testing.T) {
	svc := NewArchiveService(&stubFeed{}, &stubArchiveRepo{}, 0)

	_, err := svc.Query(context.Background(), ArchiveQuery{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestArchiveQueryValidatesStatusAndDates(t *testing.T) {
	svc := NewArchiveService(&stubFeed{}, &stubArchiveRepo{}, 0)

	_, err := svc.Query(context.Background(), ArchiveQuery{League: "bl1", Status: "halftime"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad status, got %v", err)
	}

	_, err = svc.Query(context.Background(), ArchiveQuery{League: "bl1", DateFrom: "14.09.2024"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}

	_, err = svc.Query(context.Background(), ArchiveQuery{
		League:   "bl1",
		DateFrom: "2024-09-14",
		DateTo:   "2024-09-01",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}

func TestArchiveQueryPassesFiltersToRepository(t *testing.T) {
	repo := &stubArchiveRepo{listTotal: 7, listItems: []match.Summary{{ID: 1}}}
	svc := NewArchiveService(&stubFeed{}, repo, 0)
	season := 2023

	page, err := svc.Query(context.Background(), ArchiveQuery{
		League:   " BL1 ",
		Season:   &season,
		DateFrom: "2024-09-01",
		DateTo:   "2024-09-14",
		Status:   "finished",
		Page:     2,
		PageSize: 25,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if repo.lastQuery.League != "bl1" {
		t.Fatalf("league should be lowercased, got %q", repo.lastQuery.League)
	}
	if repo.lastQuery.Season == nil || *repo.lastQuery.Season != 2023 {
		t.Fatalf("season filter lost: %+v", repo.lastQuery.Season)
	}
	if repo.lastQuery.Status != match.StatusFinished {
		t.Fatalf("status filter lost: %q", repo.lastQuery.Status)
	}
	if repo.lastQuery.DateFrom == nil || repo.lastQuery.DateTo == nil {
		t.Fatal("date filters lost")
	}
	if page.Total != 7 || page.Page != 2 || page.PageSize != 25 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestSeasonsForLeagueSortsUniqueYearsDescending(t *testing.T) {
	feed := &stubFeed{
		leagues: []UpstreamLeague{
			{Shortcut: "bl1", Season: 2022},
			{Shortcut: "bl1", Season: 2024},
			{Shortcut: "bl1", Season: 2022},
			{Shortcut: "bl1", Season: 0}, // unknown year, dropped
			{Shortcut: "bl1", Season: 2023},
		},
	}
	svc := NewArchiveService(feed, &stubArchiveRepo{}, 0)

	years, err := svc.SeasonsForLeague(context.Background(), "BL1")
	if err != nil {
		t.Fatalf("seasons for league: %v", err)
	}

	want := []int{2024, 2023, 2022}
	if len(years) != len(want) {
		t.Fatalf("expected %v, got %v", want, years)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, years)
		}
	}
}

func TestSeasonsForLeagueEmptyIsNotFound(t *testing.T) {
	svc := NewArchiveService(&stubFeed{}, &stubArchiveRepo{}, 0)

	_, err := svc.SeasonsForLeague(context.Background(), "bl9")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchesForSeasonKeepsBrokenKickoffs(t *testing.T) {
	now := time.Now().UTC()
	broken := rawSeasonMatch(9, now, false)
	broken["matchDateTimeUTC"] = "garbage"

	feed := &stubFeed{
		seasons: map[string][]match.RawMatch{
			"bl1": {rawSeasonMatch(2, now.Add(time.Hour), false), broken},
		},
	}
	svc := NewArchiveService(feed, &stubArchiveRepo{}, 0)

	items, err := svc.MatchesForSeason(context.Background(), "bl1", 2024)
	if err != nil {
		t.Fatalf("matches for season: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("display path must keep broken records, got %d", len(items))
	}
	// Ascending by kickoff: the broken record reads as now.
	if items[0].ID != 9 || items[1].ID != 2 {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestMatchesForSeasonEmptyIsNotFound(t *testing.T) {
	svc := NewArchiveService(&stubFeed{}, &stubArchiveRepo{}, 0)

	_, err := svc.MatchesForSeason(context.Background(), "bl1", 2024)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
