package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/domain/league"
	"github.com/sporthub/sporthub-api/internal/domain/match"
	"github.com/sporthub/sporthub-api/internal/platform/logging"
	"github.com/sporthub/sporthub-api/internal/usecase"
)

type feedStub struct {
	leagues []usecase.UpstreamLeague
	seasons map[string][]match.RawMatch
	byDate  []match.Summary
	groups  []usecase.UpstreamGroup
}

func (f *feedStub) GetLeagues(_ context.Context, _ []string) ([]usecase.UpstreamLeague, error) {
	return f.leagues, nil
}

func (f *feedStub) GetSeasonRaw(_ context.Context, leagueShortcut string, _ int) ([]match.RawMatch, error) {
	return f.seasons[leagueShortcut], nil
}

func (f *feedStub) GetMatchesForDate(_ context.Context, _ string, _ time.Time, _ *int) ([]match.Summary, error) {
	return f.byDate, nil
}

func (f *feedStub) GetAvailableGroups(_ context.Context, _ string, _ int) ([]usecase.UpstreamGroup, error) {
	return f.groups, nil
}

type repoStub struct {
	listTotal int
	listItems []match.Summary
	lastQuery archive.Query
	meta      []archive.LeagueSeasons
}

func (r *repoStub) GetOrCreateLeague(_ context.Context, shortcut, name, country, sport string) (league.League, error) {
	return league.League{ID: 1, Shortcut: shortcut, Name: name, Country: country, Sport: sport}, nil
}

func (r *repoStub) GetOrCreateSeason(_ context.Context, leagueID int64, year int, isCurrent bool) (league.Season, error) {
	return league.Season{ID: 1, LeagueID: leagueID, Year: year, IsCurrent: isCurrent}, nil
}

func (r *repoStub) UpsertMatch(_ context.Context, _, _ int64, _ archive.Entry) (bool, error) {
	return false, nil
}

func (r *repoStub) BulkUpsertFromBoard(_ context.Context, _, _ string, _ int, entries []archive.Entry) (int, int, error) {
	return len(entries), 0, nil
}

func (r *repoStub) ListMatches(_ context.Context, q archive.Query) (int, []match.Summary, error) {
	r.lastQuery = q
	return r.listTotal, r.listItems, nil
}

func (r *repoStub) Meta(_ context.Context) ([]archive.LeagueSeasons, error) {
	return r.meta, nil
}

func newTestRouter(t *testing.T, feed *feedStub, repo *repoStub) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	sports := usecase.NewSportsService(feed, []string{"bl1"}, 2024)
	board := usecase.NewBoardService(feed, repo, logger, usecase.BoardConfig{
		Leagues: []string{"bl1"},
		Season:  2024,
	})
	archiveSvc := usecase.NewArchiveService(feed, repo, match.DefaultLiveGrace)
	handler := NewHandler(sports, board, archiveSvc, logger)

	return NewRouter(handler, logger, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body for %s: %v", path, err)
	}
	return rec, body
}

func sampleSummary(id int64, kickoff time.Time) match.Summary {
	return match.Summary{
		ID:             id,
		LeagueShortcut: "bl1",
		LeagueSeason:   2024,
		GroupOrderID:   3,
		Team1Name:      "FC Example",
		Team2Name:      "SV Sample",
		KickoffUTC:     kickoff,
		Status:         match.StatusFinished,
	}
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, &feedStub{}, &repoStub{})

	rec, body := doRequest(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Fatalf("unexpected healthz payload: %v", body)
	}
}

func TestRouterListMatches(t *testing.T) {
	kickoff := time.Date(2024, 9, 14, 13, 30, 0, 0, time.UTC)
	feed := &feedStub{byDate: []match.Summary{sampleSummary(7, kickoff)}}
	router := newTestRouter(t, feed, &repoStub{})

	rec, body := doRequest(t, router, "/v1/matches?league=bl1&date=2024-09-14")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 match, got %v", body["data"])
	}
	item, _ := items[0].(map[string]any)
	if item["kickoffUtc"] != "2024-09-14T13:30:00Z" {
		t.Fatalf("unexpected kickoff encoding: %v", item["kickoffUtc"])
	}
	if item["status"] != "FINISHED" {
		t.Fatalf("unexpected status: %v", item["status"])
	}
}

func TestRouterListMatchesRejectsNonNumericSeason(t *testing.T) {
	router := newTestRouter(t, &feedStub{}, &repoStub{})

	rec, body := doRequest(t, router, "/v1/matches?league=bl1&season=abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", rec.Code, body)
	}
}

func TestRouterLegacyMatchesAlias(t *testing.T) {
	kickoff := time.Date(2024, 9, 14, 13, 30, 0, 0, time.UTC)
	feed := &feedStub{byDate: []match.Summary{sampleSummary(7, kickoff)}}
	router := newTestRouter(t, feed, &repoStub{})

	recV1, bodyV1 := doRequest(t, router, "/v1/matches?league=bl1&date=2024-09-14")
	recLegacy, bodyLegacy := doRequest(t, router, "/matches?league=bl1&date=2024-09-14")

	if recV1.Code != http.StatusOK || recLegacy.Code != http.StatusOK {
		t.Fatalf("expected both routes to succeed, got %d and %d", recV1.Code, recLegacy.Code)
	}

	v1JSON, _ := sonic.ConfigStd.Marshal(bodyV1["data"])
	legacyJSON, _ := sonic.ConfigStd.Marshal(bodyLegacy["data"])
	if string(v1JSON) != string(legacyJSON) {
		t.Fatalf("legacy alias must match versioned route:\n%s\n%s", v1JSON, legacyJSON)
	}
}

func TestRouterBoard(t *testing.T) {
	now := time.Now().UTC()
	feed := &feedStub{
		seasons: map[string][]match.RawMatch{
			"bl1": {
				{
					"matchID":          float64(1),
					"matchDateTimeUTC": now.Add(-24 * time.Hour).Format(time.RFC3339),
					"matchIsFinished":  true,
				},
				{
					"matchID":          float64(2),
					"matchDateTimeUTC": now.Add(24 * time.Hour).Format(time.RFC3339),
					"matchIsFinished":  false,
				},
			},
		},
	}
	router := newTestRouter(t, feed, &repoStub{})

	rec, body := doRequest(t, router, "/v1/board")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	data, _ := body["data"].(map[string]any)
	recent, _ := data["recent"].([]any)
	upcoming, _ := data["upcoming"].([]any)
	if len(recent) != 1 || len(upcoming) != 1 {
		t.Fatalf("unexpected board buckets: %v", data)
	}
}

func TestRouterBoardRejectsNegativeWindow(t *testing.T) {
	router := newTestRouter(t, &feedStub{}, &repoStub{})

	rec, _ := doRequest(t, router, "/v1/board?days_back=-1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouterArchiveMatchesRequiresLeague(t *testing.T) {
	router := newTestRouter(t, &feedStub{}, &repoStub{})

	rec, body := doRequest(t, router, "/v1/archive/matches")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", rec.Code, body)
	}
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", errorObj)
	}
}

func TestRouterArchiveMatchesPageEnvelope(t *testing.T) {
	kickoff := time.Date(2024, 5, 18, 13, 30, 0, 0, time.UTC)
	repo := &repoStub{listTotal: 12, listItems: []match.Summary{sampleSummary(42, kickoff)}}
	router := newTestRouter(t, &feedStub{}, repo)

	rec, body := doRequest(t, router, "/v1/archive/matches?league=BL1&season=2023&status=FINISHED&page=2&page_size=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	data, _ := body["data"].(map[string]any)
	if data["total"] != float64(12) || data["page"] != float64(2) || data["pageSize"] != float64(5) {
		t.Fatalf("unexpected page envelope: %v", data)
	}
	if repo.lastQuery.League != "bl1" {
		t.Fatalf("league must be lowercased for the repository, got %q", repo.lastQuery.League)
	}
	if repo.lastQuery.Season == nil || *repo.lastQuery.Season != 2023 {
		t.Fatalf("season filter missing: %+v", repo.lastQuery)
	}
}

func TestRouterArchiveSeasons(t *testing.T) {
	feed := &feedStub{leagues: []usecase.UpstreamLeague{
		{Shortcut: "bl1", Name: "1. Bundesliga", Season: 2024, Sport: "Fußball"},
		{Shortcut: "bl1", Name: "1. Bundesliga", Season: 2023, Sport: "Fußball"},
	}}
	router := newTestRouter(t, feed, &repoStub{})

	rec, body := doRequest(t, router, "/v1/archive/BL1/seasons")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	data, _ := body["data"].(map[string]any)
	if data["league"] != "bl1" {
		t.Fatalf("unexpected league in payload: %v", data)
	}
	seasons, _ := data["seasons"].([]any)
	if len(seasons) != 2 || seasons[0] != float64(2024) {
		t.Fatalf("expected descending seasons, got %v", seasons)
	}
}

func TestRouterArchiveSeasonMatchesRejectsBadSeason(t *testing.T) {
	router := newTestRouter(t, &feedStub{}, &repoStub{})

	rec, _ := doRequest(t, router, "/v1/archive/bl1/latest/matches")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouterArchiveMeta(t *testing.T) {
	repo := &repoStub{meta: []archive.LeagueSeasons{
		{
			League: league.League{ID: 1, Shortcut: "bl1", Name: "1. Bundesliga", Country: "Germany", Sport: "Football"},
			Years:  []int{2024, 2023},
		},
		{
			League: league.League{ID: 2, Shortcut: "dfb", Name: "DFB-Pokal", Country: "Germany", Sport: "Football"},
			Years:  []int{},
		},
	}}
	router := newTestRouter(t, &feedStub{}, repo)

	rec, body := doRequest(t, router, "/v1/archive/meta")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	items, _ := body["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 meta entries, got %v", body["data"])
	}
	second, _ := items[1].(map[string]any)
	years, ok := second["years"].([]any)
	if !ok || len(years) != 0 {
		t.Fatalf("season-less league must keep an empty years array: %v", second)
	}
}

func TestRouterPingUpstream(t *testing.T) {
	feed := &feedStub{groups: []usecase.UpstreamGroup{{Name: "1. Spieltag", OrderID: 1}, {Name: "2. Spieltag", OrderID: 2}}}
	router := newTestRouter(t, feed, &repoStub{})

	rec, body := doRequest(t, router, "/debug/upstream/ping")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	data, _ := body["data"].(map[string]any)
	if data["groups"] != float64(2) {
		t.Fatalf("expected 2 groups, got %v", data)
	}
}
