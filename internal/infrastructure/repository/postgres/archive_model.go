package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID       int64  `db:"id"`
	Shortcut string `db:"shortcut"`
	Name     string `db:"name"`
	Country  string `db:"country"`
	Sport    string `db:"sport"`
}

type leagueInsertModel struct {
	Shortcut string `db:"shortcut"`
	Name     string `db:"name"`
	Country  string `db:"country"`
	Sport    string `db:"sport"`
}

type seasonTableModel struct {
	ID        int64 `db:"id"`
	LeagueID  int64 `db:"league_id"`
	Year      int   `db:"year"`
	IsCurrent bool  `db:"is_current"`
}

type seasonInsertModel struct {
	LeagueID  int64 `db:"league_id"`
	Year      int   `db:"year"`
	IsCurrent bool  `db:"is_current"`
}

type matchInsertModel struct {
	ExternalMatchID int64         `db:"external_match_id"`
	LeagueID        int64         `db:"league_id"`
	SeasonID        int64         `db:"season_id"`
	GroupOrderID    int           `db:"group_order_id"`
	KickoffUTC      time.Time     `db:"kickoff_utc"`
	Status          string        `db:"status"`
	Team1Name       string        `db:"team1_name"`
	Team2Name       string        `db:"team2_name"`
	ScoreTeam1      sql.NullInt64 `db:"score_team1"`
	ScoreTeam2      sql.NullInt64 `db:"score_team2"`
	RawPayload      []byte        `db:"raw_payload"`
}

type matchListRow struct {
	ExternalMatchID int64         `db:"external_match_id"`
	LeagueShortcut  string        `db:"league_shortcut"`
	SeasonYear      int           `db:"season_year"`
	GroupOrderID    int           `db:"group_order_id"`
	Team1Name       string        `db:"team1_name"`
	Team2Name       string        `db:"team2_name"`
	KickoffUTC      time.Time     `db:"kickoff_utc"`
	Status          string        `db:"status"`
	ScoreTeam1      sql.NullInt64 `db:"score_team1"`
	ScoreTeam2      sql.NullInt64 `db:"score_team2"`
}

type metaRow struct {
	ID       int64         `db:"id"`
	Shortcut string        `db:"shortcut"`
	Name     string        `db:"name"`
	Country  string        `db:"country"`
	Sport    string        `db:"sport"`
	Year     sql.NullInt64 `db:"year"`
}
