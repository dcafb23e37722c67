package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/domain/league"
	"github.com/sporthub/sporthub-api/internal/domain/match"
	qb "github.com/sporthub/sporthub-api/internal/platform/querybuilder"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

const matchUpsertSuffix = `ON CONFLICT (external_match_id, season_id) DO UPDATE SET
	group_order_id = EXCLUDED.group_order_id,
	kickoff_utc = EXCLUDED.kickoff_utc,
	status = EXCLUDED.status,
	team1_name = EXCLUDED.team1_name,
	team2_name = EXCLUDED.team2_name,
	score_team1 = EXCLUDED.score_team1,
	score_team2 = EXCLUDED.score_team2,
	raw_payload = EXCLUDED.raw_payload,
	updated_at = NOW()`

const matchJoinedTables = "match m JOIN season s ON s.id = m.season_id JOIN league l ON l.id = m.league_id"

type ArchiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

func (r *ArchiveRepository) GetOrCreateLeague(ctx context.Context, shortcut, name, country, sport string) (league.League, error) {
	return getOrCreateLeague(ctx, r.db, shortcut, name, country, sport)
}

// getOrCreateLeague selects first and only inserts on a miss, with ON
// CONFLICT DO NOTHING plus a tolerated unique violation so concurrent
// callers converge on the same row via the re-select.
func getOrCreateLeague(ctx context.Context, ext sqlx.ExtContext, shortcut, name, country, sport string) (league.League, error) {
	shortcut = strings.ToLower(strings.TrimSpace(shortcut))
	if shortcut == "" {
		return league.League{}, fmt.Errorf("league shortcut is required")
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

	row, err := selectLeagueByShortcut(ctx, ext, shortcut)
	if err == nil {
		return leagueFromRow(row), nil
	}
	if !isNotFound(err) {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}

	query, args, err := qb.InsertModel("league", leagueInsertModel{
		Shortcut: shortcut,
		Name:     name,
		Country:  country,
		Sport:    sport,
	}, "ON CONFLICT (shortcut) DO NOTHING")
	if err != nil {
		return league.League{}, fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := ext.ExecContext(ctx, query, args...); err != nil && !isUniqueViolation(err) {
		return league.League{}, fmt.Errorf("insert league: %w", err)
	}

	row, err = selectLeagueByShortcut(ctx, ext, shortcut)
	if err != nil {
		return league.League{}, fmt.Errorf("get league after insert: %w", err)
	}
	return leagueFromRow(row), nil
}

func selectLeagueByShortcut(ctx context.Context, ext sqlx.ExtContext, shortcut string) (leagueTableModel, error) {
	query, args, err := qb.Select("*").From("league").
		Where(qb.Eq("shortcut", shortcut)).
		ToSQL()
	if err != nil {
		return leagueTableModel{}, fmt.Errorf("build select league query: %w", err)
	}

	var row leagueTableModel
	if err := sqlx.GetContext(ctx, ext, &row, query, args...); err != nil {
		return leagueTableModel{}, err
	}
	return row, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:       row.ID,
		Shortcut: row.Shortcut,
		Name:     row.Name,
		Country:  row.Country,
		Sport:    row.Sport,
	}
}

func (r *ArchiveRepository) GetOrCreateSeason(ctx context.Context, leagueID int64, year int, isCurrent bool) (league.Season, error) {
	return getOrCreateSeason(ctx, r.db, leagueID, year, isCurrent)
}

func getOrCreateSeason(ctx context.Context, ext sqlx.ExtContext, leagueID int64, year int, isCurrent bool) (league.Season, error) {
	row, err := selectSeasonByYear(ctx, ext, leagueID, year)
	if err == nil {
		return promoteSeasonIfCurrent(ctx, ext, row, isCurrent)
	}
	if !isNotFound(err) {
		return league.Season{}, fmt.Errorf("get season: %w", err)
	}

	query, args, err := qb.InsertModel("season", seasonInsertModel{
		LeagueID:  leagueID,
		Year:      year,
		IsCurrent: isCurrent,
	}, "ON CONFLICT (league_id, year) DO NOTHING")
	if err != nil {
		return league.Season{}, fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := ext.ExecContext(ctx, query, args...); err != nil && !isUniqueViolation(err) {
		return league.Season{}, fmt.Errorf("insert season: %w", err)
	}

	row, err = selectSeasonByYear(ctx, ext, leagueID, year)
	if err != nil {
		return league.Season{}, fmt.Errorf("get season after insert: %w", err)
	}
	// A concurrent writer may have inserted the row with is_current false.
	return promoteSeasonIfCurrent(ctx, ext, row, isCurrent)
}

func selectSeasonByYear(ctx context.Context, ext sqlx.ExtContext, leagueID int64, year int) (seasonTableModel, error) {
	query, args, err := qb.Select("*").From("season").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("year", year),
		).
		ToSQL()
	if err != nil {
		return seasonTableModel{}, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := sqlx.GetContext(ctx, ext, &row, query, args...); err != nil {
		return seasonTableModel{}, err
	}
	return row, nil
}

// promoteSeasonIfCurrent flips is_current on an existing season when a caller
// syncing the current season finds it stored as a past one.
func promoteSeasonIfCurrent(ctx context.Context, ext sqlx.ExtContext, row seasonTableModel, isCurrent bool) (league.Season, error) {
	if isCurrent && !row.IsCurrent {
		query, args, err := qb.Update("season").
			Set("is_current", true).
			Where(qb.Eq("id", row.ID)).
			ToSQL()
		if err != nil {
			return league.Season{}, fmt.Errorf("build promote season query: %w", err)
		}
		if _, err := ext.ExecContext(ctx, query, args...); err != nil {
			return league.Season{}, fmt.Errorf("promote season %d: %w", row.ID, err)
		}
		row.IsCurrent = true
	}

	return league.Season{
		ID:        row.ID,
		LeagueID:  row.LeagueID,
		Year:      row.Year,
		IsCurrent: row.IsCurrent,
	}, nil
}

func (r *ArchiveRepository) UpsertMatch(ctx context.Context, leagueID, seasonID int64, entry archive.Entry) (bool, error) {
	return upsertMatch(ctx, r.db, leagueID, seasonID, entry)
}

// upsertMatch stores one normalized match keyed by (external_match_id,
// season_id), overwriting mutable fields on re-sync. Entries without an
// external id or kickoff are reported as skipped, not as errors.
func upsertMatch(ctx context.Context, ext sqlx.ExtContext, leagueID, seasonID int64, entry archive.Entry) (bool, error) {
	s := entry.Summary
	if s.ID == 0 || s.KickoffUTC.IsZero() {
		return true, nil
	}

	rawPayload, err := sonic.Marshal(entry.Raw)
	if err != nil {
		return false, fmt.Errorf("marshal raw match payload: %w", err)
	}

	query, args, err := qb.InsertModel("match", matchInsertModel{
		ExternalMatchID: s.ID,
		LeagueID:        leagueID,
		SeasonID:        seasonID,
		GroupOrderID:    s.GroupOrderID,
		KickoffUTC:      s.KickoffUTC,
		Status:          string(s.Status),
		Team1Name:       s.Team1Name,
		Team2Name:       s.Team2Name,
		ScoreTeam1:      ptrToNullInt(s.ScoreTeam1),
		ScoreTeam2:      ptrToNullInt(s.ScoreTeam2),
		RawPayload:      rawPayload,
	}, matchUpsertSuffix)
	if err != nil {
		return false, fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("upsert match %d: %w", s.ID, err)
	}

	return false, nil
}

// BulkUpsertFromBoard stores one league batch in a single transaction.
func (r *ArchiveRepository) BulkUpsertFromBoard(ctx context.Context, shortcut, leagueName string, seasonYear int, entries []archive.Entry) (int, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin board upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lg, err := getOrCreateLeague(ctx, tx, shortcut, leagueName, "", "")
	if err != nil {
		return 0, 0, err
	}
	// Board batches always carry the configured current season.
	season, err := getOrCreateSeason(ctx, tx, lg.ID, seasonYear, true)
	if err != nil {
		return 0, 0, err
	}

	stored, skipped := 0, 0
	for _, entry := range entries {
		wasSkipped, err := upsertMatch(ctx, tx, lg.ID, season.ID, entry)
		if err != nil {
			return 0, 0, err
		}
		if wasSkipped {
			skipped++
			continue
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit board upsert tx: %w", err)
	}

	return stored, skipped, nil
}

func (r *ArchiveRepository) ListMatches(ctx context.Context, q archive.Query) (int, []match.Summary, error) {
	shortcut := strings.ToLower(strings.TrimSpace(q.League))
	if shortcut == "" {
		return 0, nil, fmt.Errorf("league shortcut is required")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := clampPageSize(q.PageSize)

	conditions := []qb.Condition{qb.Eq("l.shortcut", shortcut)}
	if q.Season != nil {
		conditions = append(conditions, qb.Eq("s.year", *q.Season))
	}
	if q.DateFrom != nil {
		conditions = append(conditions, qb.Gte("m.kickoff_utc", dayStartUTC(*q.DateFrom)))
	}
	if q.DateTo != nil {
		// Exclusive next-day boundary keeps the full dateTo day in range.
		conditions = append(conditions, qb.Lt("m.kickoff_utc", dayStartUTC(*q.DateTo).Add(24*time.Hour)))
	}
	if q.Status != "" {
		conditions = append(conditions, qb.Eq("m.status", string(q.Status)))
	}

	query, args, err := qb.Select("COUNT(*)").From(matchJoinedTables).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return 0, nil, fmt.Errorf("build count matches query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, nil, fmt.Errorf("count matches: %w", err)
	}

	query, args, err = qb.Select(
		"m.external_match_id",
		"l.shortcut AS league_shortcut",
		"s.year AS season_year",
		"m.group_order_id",
		"m.team1_name",
		"m.team2_name",
		"m.kickoff_utc",
		"m.status",
		"m.score_team1",
		"m.score_team2",
	).From(matchJoinedTables).
		Where(conditions...).
		OrderBy("m.kickoff_utc DESC", "m.external_match_id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		ToSQL()
	if err != nil {
		return 0, nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchListRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return 0, nil, fmt.Errorf("select matches: %w", err)
	}

	items := make([]match.Summary, 0, len(rows))
	for _, row := range rows {
		items = append(items, match.Summary{
			ID:             row.ExternalMatchID,
			LeagueShortcut: row.LeagueShortcut,
			LeagueSeason:   row.SeasonYear,
			GroupOrderID:   row.GroupOrderID,
			Team1Name:      row.Team1Name,
			Team2Name:      row.Team2Name,
			KickoffUTC:     row.KickoffUTC.UTC(),
			Status:         match.Status(row.Status),
			ScoreTeam1:     nullIntToPtr(row.ScoreTeam1),
			ScoreTeam2:     nullIntToPtr(row.ScoreTeam2),
		})
	}

	return total, items, nil
}

func (r *ArchiveRepository) Meta(ctx context.Context) ([]archive.LeagueSeasons, error) {
	query, args, err := qb.Select(
		"l.id",
		"l.shortcut",
		"l.name",
		"l.country",
		"l.sport",
		"s.year",
	).From("league l LEFT JOIN season s ON s.league_id = l.id").
		OrderBy("l.shortcut", "s.year DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build archive meta query: %w", err)
	}

	var rows []metaRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select archive meta: %w", err)
	}

	out := make([]archive.LeagueSeasons, 0, len(rows))
	index := make(map[int64]int, len(rows))
	for _, row := range rows {
		pos, ok := index[row.ID]
		if !ok {
			pos = len(out)
			index[row.ID] = pos
			out = append(out, archive.LeagueSeasons{
				League: league.League{
					ID:       row.ID,
					Shortcut: row.Shortcut,
					Name:     row.Name,
					Country:  row.Country,
					Sport:    row.Sport,
				},
				Years: []int{},
			})
		}
		if row.Year.Valid {
			out[pos].Years = append(out[pos].Years, int(row.Year.Int64))
		}
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
