package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sporthub/sporthub-api/internal/domain/match"
	"github.com/sporthub/sporthub-api/internal/platform/logging"
	"github.com/sporthub/sporthub-api/internal/usecase"
)

type Handler struct {
	sportsService  *usecase.SportsService
	boardService   *usecase.BoardService
	archiveService *usecase.ArchiveService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	sportsService *usecase.SportsService,
	boardService *usecase.BoardService,
	archiveService *usecase.ArchiveService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		sportsService:  sportsService,
		boardService:   boardService,
		archiveService: archiveService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.sportsService.ListLeagues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]upstreamLeagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, upstreamLeagueToDTO(ctx, l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	league := strings.TrimSpace(r.URL.Query().Get("league"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	season, err := optionalIntQuery(ctx, r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.sportsService.ListMatchesForDate(ctx, league, date, season)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "league", league, "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(ctx, matches))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	daysBack, err := intQueryOrZero(ctx, r, "days_back")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	daysAhead, err := intQueryOrZero(ctx, r, "days_ahead")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.boardService.GetBoard(ctx, daysBack, daysAhead)
	if err != nil {
		h.logger.WarnContext(ctx, "get board failed", "days_back", daysBack, "days_ahead", daysAhead, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(ctx, board))
}

func (h *Handler) PingUpstream(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PingUpstream")
	defer span.End()

	groups, err := h.sportsService.PingUpstream(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "upstream ping failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"status": "ok",
		"groups": groups,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func optionalIntQuery(ctx context.Context, r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: query parameter %q must be an integer", usecase.ErrInvalidInput, name)
	}
	return &value, nil
}

func intQueryOrZero(ctx context.Context, r *http.Request, name string) (int, error) {
	value, err := optionalIntQuery(ctx, r, name)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	return *value, nil
}

type upstreamLeagueDTO struct {
	Shortcut string `json:"shortcut"`
	Name     string `json:"name"`
	Season   int    `json:"season"`
	Sport    string `json:"sport"`
}

type matchDTO struct {
	ID             int64  `json:"id"`
	LeagueShortcut string `json:"leagueShortcut"`
	LeagueSeason   int    `json:"leagueSeason"`
	GroupOrderID   int    `json:"groupOrderId"`
	Team1Name      string `json:"team1Name"`
	Team2Name      string `json:"team2Name"`
	KickoffUTC     string `json:"kickoffUtc"`
	Status         string `json:"status"`
	ScoreTeam1     *int   `json:"scoreTeam1"`
	ScoreTeam2     *int   `json:"scoreTeam2"`
}

type boardDTO struct {
	DateFrom string     `json:"dateFrom"`
	DateTo   string     `json:"dateTo"`
	Leagues  []string   `json:"leagues"`
	Recent   []matchDTO `json:"recent"`
	Live     []matchDTO `json:"live"`
	Upcoming []matchDTO `json:"upcoming"`
}

func upstreamLeagueToDTO(ctx context.Context, v usecase.UpstreamLeague) upstreamLeagueDTO {
	ctx, span := startSpan(ctx, "httpapi.upstreamLeagueToDTO")
	defer span.End()

	return upstreamLeagueDTO{
		Shortcut: v.Shortcut,
		Name:     v.Name,
		Season:   v.Season,
		Sport:    v.Sport,
	}
}

func matchToDTO(ctx context.Context, v match.Summary) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:             v.ID,
		LeagueShortcut: v.LeagueShortcut,
		LeagueSeason:   v.LeagueSeason,
		GroupOrderID:   v.GroupOrderID,
		Team1Name:      v.Team1Name,
		Team2Name:      v.Team2Name,
		KickoffUTC:     v.KickoffUTC.UTC().Format(time.RFC3339),
		Status:         string(v.Status),
		ScoreTeam1:     v.ScoreTeam1,
		ScoreTeam2:     v.ScoreTeam2,
	}
}

func matchesToDTO(ctx context.Context, items []match.Summary) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(ctx, item))
	}
	return out
}

func boardToDTO(ctx context.Context, v usecase.Board) boardDTO {
	ctx, span := startSpan(ctx, "httpapi.boardToDTO")
	defer span.End()

	return boardDTO{
		DateFrom: v.DateFrom.UTC().Format(time.RFC3339),
		DateTo:   v.DateTo.UTC().Format(time.RFC3339),
		Leagues:  append([]string(nil), v.Leagues...),
		Recent:   matchesToDTO(ctx, v.Recent),
		Live:     matchesToDTO(ctx, v.Live),
		Upcoming: matchesToDTO(ctx, v.Upcoming),
	}
}
