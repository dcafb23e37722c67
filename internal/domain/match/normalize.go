package match

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// RawMatch is one upstream match payload as decoded JSON. Field names vary
// between feed versions, so extraction walks candidate keys in order.
type RawMatch = map[string]any

// ErrNoKickoff marks a raw match whose kickoff timestamp is missing or
// unparseable. It is the only hard normalization failure.
var ErrNoKickoff = errors.New("match: no parseable kickoff time")

var kickoffKeys = []string{"matchDateTimeUTC", "matchDateTime", "kickoff_utc", "kickoff"}

var matchIDKeys = []string{"matchID", "match_id", "id", "external_match_id"}

var groupOrderKeys = []string{"groupOrderID", "group_order_id", "group_order"}

var leagueShortcutKeys = []string{"leagueShortcut", "league_shortcut", "league"}

var leagueSeasonKeys = []string{"leagueSeason", "league_season", "season"}

var finishedKeys = []string{"matchIsFinished", "is_finished", "finished"}

var nestedTeamNameKeys = []string{"teamName", "name", "shortName"}

var kickoffLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Classify normalizes one raw match into a Summary and derives its status:
// finished matches are FINISHED regardless of kickoff, otherwise a match more
// than grace before kickoff is SCHEDULED and anything else is LIVE.
func Classify(raw RawMatch, now time.Time, grace time.Duration) (Summary, error) {
	kickoff, ok := extractKickoff(raw)
	if !ok {
		return Summary{}, errors.WithDetail(ErrNoKickoff, "tried matchDateTimeUTC, matchDateTime, kickoff_utc, kickoff")
	}
	return build(raw, kickoff, now, grace), nil
}

// ClassifyLenient is Classify for display paths that must not drop rows: a
// missing kickoff is substituted with now and the match reads as LIVE unless
// finished.
func ClassifyLenient(raw RawMatch, now time.Time, grace time.Duration) Summary {
	kickoff, ok := extractKickoff(raw)
	if !ok {
		kickoff = now.UTC()
	}
	return build(raw, kickoff, now, grace)
}

func build(raw RawMatch, kickoff, now time.Time, grace time.Duration) Summary {
	if grace <= 0 {
		grace = DefaultLiveGrace
	}
	now = now.UTC()

	s := Summary{
		ID:             firstInt64(raw, matchIDKeys),
		LeagueShortcut: firstString(raw, leagueShortcutKeys),
		LeagueSeason:   firstInt(raw, leagueSeasonKeys),
		GroupOrderID:   extractGroupOrder(raw),
		Team1Name:      extractTeamName(raw, "team1_name", "team1"),
		Team2Name:      extractTeamName(raw, "team2_name", "team2"),
		KickoffUTC:     kickoff,
	}
	s.ScoreTeam1, s.ScoreTeam2 = ExtractFinalScore(raw)

	switch {
	case firstBool(raw, finishedKeys):
		s.Status = StatusFinished
	case kickoff.After(now.Add(grace)):
		s.Status = StatusScheduled
	default:
		s.Status = StatusLive
	}

	return s
}

func extractKickoff(raw RawMatch) (time.Time, bool) {
	for _, key := range kickoffKeys {
		value, ok := raw[key].(string)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for _, layout := range kickoffLayouts {
			t, err := time.Parse(layout, value)
			if err != nil {
				continue
			}
			// Naive timestamps carry no zone and parse as UTC already,
			// offset timestamps get converted.
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func extractGroupOrder(raw RawMatch) int {
	if group, ok := raw["group"].(map[string]any); ok {
		if n, ok := intValue(group["groupOrderID"]); ok {
			return n
		}
	}
	return firstInt(raw, groupOrderKeys)
}

func extractTeamName(raw RawMatch, flatKey, nestedKey string) string {
	if name, ok := stringValue(raw[flatKey]); ok {
		return name
	}
	if team, ok := raw[nestedKey].(map[string]any); ok {
		for _, key := range nestedTeamNameKeys {
			if name, ok := stringValue(team[key]); ok {
				return name
			}
		}
	}
	return UnknownTeamName
}

// ExtractFinalScore reads the final score from the matchResults list. The
// end-result entry (resultTypeID 2) wins over intermediate results, with the
// last entry as fallback. Both scores are nil when no result is present.
func ExtractFinalScore(raw RawMatch) (*int, *int) {
	results, ok := raw["matchResults"].([]any)
	if !ok || len(results) == 0 {
		return nil, nil
	}

	chosen, ok := results[len(results)-1].(map[string]any)
	if !ok {
		chosen = nil
	}
	for _, r := range results {
		entry, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if typeID, ok := intValue(entry["resultTypeID"]); ok && typeID == 2 {
			chosen = entry
			break
		}
	}
	if chosen == nil {
		return nil, nil
	}

	s1, ok1 := intValue(chosen["pointsTeam1"])
	s2, ok2 := intValue(chosen["pointsTeam2"])
	if !ok1 || !ok2 {
		return nil, nil
	}
	return &s1, &s2
}

func firstString(raw RawMatch, keys []string) string {
	for _, key := range keys {
		if v, ok := stringValue(raw[key]); ok {
			return v
		}
	}
	return ""
}

func firstInt(raw RawMatch, keys []string) int {
	for _, key := range keys {
		if n, ok := intValue(raw[key]); ok {
			return n
		}
	}
	return 0
}

func firstInt64(raw RawMatch, keys []string) int64 {
	for _, key := range keys {
		if n, ok := int64Value(raw[key]); ok {
			return n
		}
	}
	return 0
}

func firstBool(raw RawMatch, keys []string) bool {
	for _, key := range keys {
		if b, ok := raw[key].(bool); ok {
			return b
		}
	}
	return false
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func intValue(v any) (int, bool) {
	n, ok := int64Value(v)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func int64Value(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
