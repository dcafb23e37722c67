package openligadb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sporthub/sporthub-api/internal/domain/match"
	"github.com/sporthub/sporthub-api/internal/platform/cache"
	"github.com/sporthub/sporthub-api/internal/platform/logging"
	"github.com/sporthub/sporthub-api/internal/platform/resilience"
	"github.com/sporthub/sporthub-api/internal/usecase"
)

const (
	defaultBaseURL    = "https://api.openligadb.de"
	catalogCacheKey   = "openligadb:availableleagues"
	responseSizeLimit = 16 << 20
)

var errFeedTransient = crerr.New("openligadb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	LiveGrace      time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Catalog        *cache.Store
}

// Client talks to the OpenLigaDB JSON feed. All failures surface as
// usecase.ErrUpstream so callers map them uniformly.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	liveGrace      time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	catalog        *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	liveGrace := cfg.LiveGrace
	if liveGrace <= 0 {
		liveGrace = match.DefaultLiveGrace
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		liveGrace:      liveGrace,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		catalog:        cfg.Catalog,
	}
}

// GetLeagues fetches the league catalog and keeps only the requested
// shortcuts, in request order. The catalog carries one entry per league and
// season.
func (c *Client) GetLeagues(ctx context.Context, shortcuts []string) ([]usecase.UpstreamLeague, error) {
	entries, err := c.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.UpstreamLeague, 0, len(entries))
	for _, shortcut := range shortcuts {
		wanted := strings.ToLower(strings.TrimSpace(shortcut))
		if wanted == "" {
			continue
		}
		for _, entry := range entries {
			if strings.ToLower(entry.Shortcut) == wanted {
				out = append(out, entry)
			}
		}
	}

	return out, nil
}

// GetSeasonRaw fetches one whole league season without filtering.
func (c *Client) GetSeasonRaw(ctx context.Context, leagueShortcut string, season int) ([]match.RawMatch, error) {
	leagueShortcut = strings.ToLower(strings.TrimSpace(leagueShortcut))
	if leagueShortcut == "" {
		return nil, fmt.Errorf("league shortcut is required")
	}

	path := fmt.Sprintf("/getmatchdata/%s/%d", leagueShortcut, season)
	var raws []match.RawMatch
	if err := c.doJSON(ctx, path, &raws); err != nil {
		return nil, fmt.Errorf("fetch season league=%s season=%d: %w", leagueShortcut, season, err)
	}

	return raws, nil
}

// GetMatchesForDate returns the matches of one UTC calendar day, kickoff
// ascending. A nil season is inferred from the date with the July cutoff of
// European football seasons. Records without a parseable kickoff cannot be
// assigned to a day and are skipped.
func (c *Client) GetMatchesForDate(ctx context.Context, leagueShortcut string, date time.Time, season *int) ([]match.Summary, error) {
	seasonYear := 0
	if season != nil {
		seasonYear = *season
	}
	if seasonYear <= 0 {
		seasonYear = InferSeason(date)
	}

	raws, err := c.GetSeasonRaw(ctx, leagueShortcut, seasonYear)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	day := date.UTC()
	out := make([]match.Summary, 0, 16)
	for _, raw := range raws {
		summary, err := match.Classify(raw, now, c.liveGrace)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping match without parseable kickoff",
				"league", leagueShortcut,
				"season", seasonYear,
				"error", err,
			)
			continue
		}
		if !sameUTCDay(summary.KickoffUTC, day) {
			continue
		}
		if summary.LeagueShortcut == "" {
			summary.LeagueShortcut = strings.ToLower(strings.TrimSpace(leagueShortcut))
		}
		if summary.LeagueSeason == 0 {
			summary.LeagueSeason = seasonYear
		}
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KickoffUTC.Before(out[j].KickoffUTC)
	})

	return out, nil
}

// GetAvailableGroups lists the matchdays of one league season.
func (c *Client) GetAvailableGroups(ctx context.Context, leagueShortcut string, season int) ([]usecase.UpstreamGroup, error) {
	leagueShortcut = strings.ToLower(strings.TrimSpace(leagueShortcut))
	if leagueShortcut == "" {
		return nil, fmt.Errorf("league shortcut is required")
	}

	path := fmt.Sprintf("/getavailablegroups/%s/%d", leagueShortcut, season)
	var rows []map[string]any
	if err := c.doJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("fetch groups league=%s season=%d: %w", leagueShortcut, season, err)
	}

	out := make([]usecase.UpstreamGroup, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.UpstreamGroup{
			Name:    getString(row, "groupName"),
			OrderID: getInt(row, "groupOrderID"),
		})
	}

	return out, nil
}

// InferSeason maps a date to the season that contains it. European football
// seasons start in July, so January through June belong to the previous
// year's season.
func InferSeason(date time.Time) int {
	date = date.UTC()
	if date.Month() < time.July {
		return date.Year() - 1
	}
	return date.Year()
}

func (c *Client) fetchCatalog(ctx context.Context) ([]usecase.UpstreamLeague, error) {
	load := func(ctx context.Context) (any, error) {
		var rows []map[string]any
		if err := c.doJSON(ctx, "/getavailableleagues", &rows); err != nil {
			return nil, fmt.Errorf("fetch league catalog: %w", err)
		}

		entries := make([]usecase.UpstreamLeague, 0, len(rows))
		for _, row := range rows {
			shortcut := strings.ToLower(getString(row, "leagueShortcut"))
			if shortcut == "" {
				continue
			}
			sportName := ""
			if sport, ok := row["sport"].(map[string]any); ok {
				sportName = getString(sport, "sportName")
			}
			entries = append(entries, usecase.UpstreamLeague{
				Shortcut: shortcut,
				Name:     getString(row, "leagueName"),
				Season:   getInt(row, "leagueSeason"),
				Sport:    sportName,
			})
		}
		return entries, nil
	}

	if c.catalog == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]usecase.UpstreamLeague), nil
	}

	value, err := c.catalog.GetOrLoad(ctx, catalogCacheKey, load)
	if err != nil {
		return nil, err
	}

	entries, ok := value.([]usecase.UpstreamLeague)
	if !ok {
		return nil, fmt.Errorf("unexpected catalog cache payload type %T", value)
	}
	return entries, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "openligadb circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: feed is temporarily unavailable", usecase.ErrUpstream)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrUpstream, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode feed payload: %v", usecase.ErrUpstream, err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFeedTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, responseSizeLimit))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errFeedTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "openligadb request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	value, ok := src[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// getInt tolerates numeric and string-typed values, the catalog serves the
// season year as a string.
func getInt(src map[string]any, key string) int {
	if src == nil {
		return 0
	}
	switch value := src[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
