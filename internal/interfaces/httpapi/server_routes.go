package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /debug/upstream/ping", handler.PingUpstream)
}

func registerSportsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/board", handler.GetBoard)
}

func registerArchiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/archive/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/archive/meta", handler.GetArchiveMeta)
	mux.HandleFunc("GET /v1/archive/matches", handler.QueryArchiveMatches)
	mux.HandleFunc("GET /v1/archive/{league}/seasons", handler.GetArchiveSeasons)
	mux.HandleFunc("GET /v1/archive/{league}/{season}/matches", handler.GetArchiveSeasonMatches)
}

// Legacy unversioned routes predate the /v1 prefix and are still used by the
// deployed frontend.
func registerLegacyRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /leagues", handler.ListLeagues)
	mux.HandleFunc("GET /matches", handler.ListMatches)
}
