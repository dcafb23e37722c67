package league

// League is one competition tracked in the archive, keyed by its upstream
// shortcut (bl1, bl2, dfb, ...).
type League struct {
	ID       int64  `db:"id" json:"id"`
	Shortcut string `db:"shortcut" json:"shortcut"`
	Name     string `db:"name" json:"name"`
	Country  string `db:"country" json:"country"`
	Sport    string `db:"sport" json:"sport"`
}

// Season is one year of a league. Year is the starting year of the season.
type Season struct {
	ID        int64 `db:"id" json:"id"`
	LeagueID  int64 `db:"league_id" json:"leagueId"`
	Year      int   `db:"year" json:"year"`
	IsCurrent bool  `db:"is_current" json:"isCurrent"`
}
