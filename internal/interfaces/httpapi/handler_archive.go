package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sporthub/sporthub-api/internal/domain/archive"
	"github.com/sporthub/sporthub-api/internal/usecase"
)

type archiveMatchesRequest struct {
	League   string `validate:"required"`
	Status   string `validate:"omitempty,oneof=SCHEDULED LIVE FINISHED UNKNOWN scheduled live finished unknown"`
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0,lte=1000"`
}

type archivePageDTO struct {
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int        `json:"total"`
	Items    []matchDTO `json:"items"`
}

type leagueSeasonsDTO struct {
	Shortcut string `json:"shortcut"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Sport    string `json:"sport"`
	Years    []int  `json:"years"`
}

type seasonsDTO struct {
	League  string `json:"league"`
	Seasons []int  `json:"seasons"`
}

func (h *Handler) GetArchiveMeta(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetArchiveMeta")
	defer span.End()

	meta, err := h.archiveService.Meta(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "archive meta failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueSeasonsDTO, 0, len(meta))
	for _, entry := range meta {
		items = append(items, leagueSeasonsToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) QueryArchiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueryArchiveMatches")
	defer span.End()

	query := r.URL.Query()
	season, err := optionalIntQuery(ctx, r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	page, err := intQueryOrZero(ctx, r, "page")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	pageSize, err := intQueryOrZero(ctx, r, "page_size")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := archiveMatchesRequest{
		League:   strings.TrimSpace(query.Get("league")),
		Status:   strings.TrimSpace(query.Get("status")),
		Page:     page,
		PageSize: pageSize,
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.archiveService.Query(ctx, usecase.ArchiveQuery{
		League:   req.League,
		Season:   season,
		DateFrom: strings.TrimSpace(query.Get("date_from")),
		DateTo:   strings.TrimSpace(query.Get("date_to")),
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "archive query failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, archivePageDTO{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
		Items:    matchesToDTO(ctx, result.Items),
	})
}

func (h *Handler) GetArchiveSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetArchiveSeasons")
	defer span.End()

	league := strings.TrimSpace(r.PathValue("league"))
	seasons, err := h.archiveService.SeasonsForLeague(ctx, league)
	if err != nil {
		h.logger.WarnContext(ctx, "archive seasons failed", "league", league, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonsDTO{
		League:  strings.ToLower(league),
		Seasons: seasons,
	})
}

func (h *Handler) GetArchiveSeasonMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetArchiveSeasonMatches")
	defer span.End()

	league := strings.TrimSpace(r.PathValue("league"))
	rawSeason := strings.TrimSpace(r.PathValue("season"))
	season, err := strconv.Atoi(rawSeason)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: season path segment %q must be an integer", usecase.ErrInvalidInput, rawSeason))
		return
	}

	matches, err := h.archiveService.MatchesForSeason(ctx, league, season)
	if err != nil {
		h.logger.WarnContext(ctx, "archive season matches failed", "league", league, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(ctx, matches))
}

func leagueSeasonsToDTO(ctx context.Context, v archive.LeagueSeasons) leagueSeasonsDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueSeasonsToDTO")
	defer span.End()

	years := v.Years
	if years == nil {
		years = []int{}
	}

	return leagueSeasonsDTO{
		Shortcut: v.League.Shortcut,
		Name:     v.League.Name,
		Country:  v.League.Country,
		Sport:    v.League.Sport,
		Years:    years,
	}
}
