package match

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFixture(overrides map[string]any) RawMatch {
	raw := RawMatch{
		"matchID":          float64(74521),
		"leagueShortcut":   "bl1",
		"leagueSeason":     float64(2024),
		"matchDateTimeUTC": "2024-09-14T13:30:00Z",
		"matchIsFinished":  false,
		"team1": map[string]any{
			"teamName": "FC Bayern München",
		},
		"team2": map[string]any{
			"teamName": "Holstein Kiel",
		},
		"group": map[string]any{
			"groupOrderID": float64(3),
		},
	}
	for k, v := range overrides {
		raw[k] = v
	}
	return raw
}

func TestClassifyScheduledBeforeGraceWindow(t *testing.T) {
	now := time.Date(2024, 9, 14, 13, 0, 0, 0, time.UTC)

	s, err := Classify(rawFixture(nil), now, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, s.Status)
	assert.Equal(t, int64(74521), s.ID)
	assert.Equal(t, "bl1", s.LeagueShortcut)
	assert.Equal(t, 2024, s.LeagueSeason)
	assert.Equal(t, 3, s.GroupOrderID)
	assert.Equal(t, "FC Bayern München", s.Team1Name)
	assert.Equal(t, "Holstein Kiel", s.Team2Name)
	assert.Nil(t, s.ScoreTeam1)
	assert.Nil(t, s.ScoreTeam2)
}

func TestClassifyLiveInsideGraceWindow(t *testing.T) {
	// Kickoff is 4 minutes away, inside the 5 minute grace window.
	now := time.Date(2024, 9, 14, 13, 26, 0, 0, time.UTC)

	s, err := Classify(rawFixture(nil), now, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StatusLive, s.Status)
}

func TestClassifyLiveAfterKickoff(t *testing.T) {
	now := time.Date(2024, 9, 14, 14, 15, 0, 0, time.UTC)

	s, err := Classify(rawFixture(nil), now, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StatusLive, s.Status)
}

func TestClassifyFinishedWinsOverKickoff(t *testing.T) {
	// Finished flag dominates even with a kickoff far in the future.
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	raw := rawFixture(map[string]any{
		"matchIsFinished": true,
		"matchResults": []any{
			map[string]any{"resultTypeID": float64(2), "pointsTeam1": float64(2), "pointsTeam2": float64(0)},
		},
	})

	s, err := Classify(raw, now, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, s.Status)
	require.NotNil(t, s.ScoreTeam1)
	require.NotNil(t, s.ScoreTeam2)
	assert.Equal(t, 2, *s.ScoreTeam1)
	assert.Equal(t, 0, *s.ScoreTeam2)
}

func TestClassifyNaiveKickoffTreatedAsUTC(t *testing.T) {
	now := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)
	raw := rawFixture(map[string]any{})
	delete(raw, "matchDateTimeUTC")
	raw["matchDateTime"] = "2024-09-14T13:30:00"

	s, err := Classify(raw, now, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 14, 13, 30, 0, 0, time.UTC), s.KickoffUTC)
}

func TestClassifyOffsetKickoffConvertedToUTC(t *testing.T) {
	now := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)
	raw := rawFixture(map[string]any{
		"matchDateTimeUTC": "2024-09-14T15:30:00+02:00",
	})

	s, err := Classify(raw, now, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 14, 13, 30, 0, 0, time.UTC), s.KickoffUTC)
}

func TestClassifyMissingKickoffFails(t *testing.T) {
	raw := rawFixture(nil)
	delete(raw, "matchDateTimeUTC")

	_, err := Classify(raw, time.Now(), 5*time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoKickoff))
}

func TestClassifyGarbageKickoffFails(t *testing.T) {
	raw := rawFixture(map[string]any{
		"matchDateTimeUTC": "not a timestamp",
	})

	_, err := Classify(raw, time.Now(), 5*time.Minute)
	assert.True(t, errors.Is(err, ErrNoKickoff))
}

func TestClassifyLenientSubstitutesNow(t *testing.T) {
	raw := rawFixture(nil)
	delete(raw, "matchDateTimeUTC")
	now := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)

	s := ClassifyLenient(raw, now, 5*time.Minute)
	assert.Equal(t, now, s.KickoffUTC)
	assert.Equal(t, StatusLive, s.Status)
}

func TestClassifyTeamNameFallbacks(t *testing.T) {
	t.Run("flat key wins", func(t *testing.T) {
		raw := rawFixture(map[string]any{"team1_name": "Flat FC"})
		s, err := Classify(raw, time.Now(), 0)
		require.NoError(t, err)
		assert.Equal(t, "Flat FC", s.Team1Name)
	})

	t.Run("nested name order", func(t *testing.T) {
		raw := rawFixture(map[string]any{
			"team1": map[string]any{"shortName": "Short", "name": "Long Name"},
		})
		s, err := Classify(raw, time.Now(), 0)
		require.NoError(t, err)
		assert.Equal(t, "Long Name", s.Team1Name)
	})

	t.Run("unknown fallback", func(t *testing.T) {
		raw := rawFixture(nil)
		delete(raw, "team2")
		s, err := Classify(raw, time.Now(), 0)
		require.NoError(t, err)
		assert.Equal(t, UnknownTeamName, s.Team2Name)
	})
}

func TestExtractFinalScorePrefersEndResult(t *testing.T) {
	raw := rawFixture(map[string]any{
		"matchResults": []any{
			map[string]any{"resultTypeID": float64(1), "pointsTeam1": float64(1), "pointsTeam2": float64(0)},
			map[string]any{"resultTypeID": float64(2), "pointsTeam1": float64(2), "pointsTeam2": float64(0)},
		},
	})

	s1, s2 := ExtractFinalScore(raw)
	require.NotNil(t, s1)
	require.NotNil(t, s2)
	assert.Equal(t, 2, *s1)
	assert.Equal(t, 0, *s2)
}

func TestExtractFinalScoreFallsBackToLastEntry(t *testing.T) {
	raw := rawFixture(map[string]any{
		"matchResults": []any{
			map[string]any{"resultTypeID": float64(1), "pointsTeam1": float64(1), "pointsTeam2": float64(0)},
		},
	})

	s1, s2 := ExtractFinalScore(raw)
	require.NotNil(t, s1)
	require.NotNil(t, s2)
	assert.Equal(t, 1, *s1)
	assert.Equal(t, 0, *s2)
}

func TestExtractFinalScoreAbsent(t *testing.T) {
	s1, s2 := ExtractFinalScore(rawFixture(map[string]any{"matchResults": []any{}}))
	assert.Nil(t, s1)
	assert.Nil(t, s2)

	s1, s2 = ExtractFinalScore(rawFixture(nil))
	assert.Nil(t, s1)
	assert.Nil(t, s2)
}

func TestParseStatus(t *testing.T) {
	got, ok := ParseStatus(" live ")
	assert.True(t, ok)
	assert.Equal(t, StatusLive, got)

	_, ok = ParseStatus("halftime")
	assert.False(t, ok)
}

func TestClassifyDefaultsMissingFields(t *testing.T) {
	raw := RawMatch{"matchDateTimeUTC": "2024-09-14T13:30:00Z"}

	s, err := Classify(raw, time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), s.ID)
	assert.Equal(t, 0, s.GroupOrderID)
	assert.Equal(t, "", s.LeagueShortcut)
	assert.Equal(t, UnknownTeamName, s.Team1Name)
	assert.Equal(t, UnknownTeamName, s.Team2Name)
}
