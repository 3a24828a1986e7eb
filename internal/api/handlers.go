package api

import (
	"io"
	"net/http"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/export"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/query"
	"github.com/tomerk/chessmetrics/internal/stats"
	"github.com/tomerk/chessmetrics/internal/worker"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"games":  len(s.AnalysisService.Universe()),
	})
}

// handleImport ingests raw PGN text from the request body synchronously and
// adds the games to the analysis universe.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = s.Username
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, r, errors.NewParseError("cannot read request body: %v", err))
		return
	}

	res, err := s.IngestService.IngestText(r.Context(), string(body), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.AnalysisService.AddGames(res.Games...)
	writeJSON(w, http.StatusOK, res)
}

// handleImportFile queues background ingestion of a server-side PGN file.
func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, errors.NewContractError("path query parameter is required"))
		return
	}
	username := r.URL.Query().Get("username")
	if username == "" {
		username = s.Username
	}

	s.IngestPool.Submit(&worker.IngestFileJob{
		Ingest:   s.IngestService,
		Analysis: s.AnalysisService,
		Path:     path,
		Username: username,
	})
	// Pre-analyze the enlarged universe so the first query after an import
	// does not pay the full engine cost.
	s.IngestPool.Submit(&worker.WarmupJob{Analysis: s.AnalysisService})
	log.Info("queued ingestion of %s", path)
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": path})
}

// view runs the filter pipeline for the request's query parameters.
func (s *Server) view(r *http.Request) (*query.FilteredView, error) {
	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	return s.AnalysisService.Query(r.Context(), criteria)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": view.Size(),
		"games": toGameJSONList(view.Games()),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="games.csv"`)
	if err := export.WriteCSV(w, view.Games()); err != nil {
		logger.FromContext(r.Context()).Error("csv export failed: %v", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := view.Summarize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	record, err := view.Record()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleRecordByElo(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bands, err := view.RecordByElo(intParam(r.URL.Query(), "gap", 100))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := map[string]stats.Record{}
	for band, record := range bands {
		out[band.String()] = record
	}
	writeJSON(w, http.StatusOK, out)
}

type openingJSON struct {
	Name        string       `json:"name"`
	Games       int          `json:"games"`
	Record      stats.Record `json:"record"`
	AvgError    float64      `json:"avg_error"`
	PlyLeftBook int          `json:"avg_ply_left_book"`
}

// handleOpenings ranks openings by the requested metric: "common" (default),
// "accurate", or "score".
func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	top := intParam(r.URL.Query(), "top", 5)
	minGames := intParam(r.URL.Query(), "min_games", 0)

	var nodes []*stats.OpeningNode
	switch metric := r.URL.Query().Get("metric"); metric {
	case "", "common":
		nodes, err = view.MostCommonOpenings(top, minGames)
	case "accurate":
		nodes, err = view.MostAccurateOpenings(top, minGames)
	case "score":
		nodes, err = view.BestScoringOpenings(top, minGames)
	default:
		err = errors.NewContractError("unknown metric %q, want common, accurate or score", metric)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]openingJSON, len(nodes))
	for i, node := range nodes {
		out[i] = openingJSON{
			Name:        node.Name(),
			Games:       node.TotalGames(),
			Record:      node.Record(),
			AvgError:    node.AvgError(),
			PlyLeftBook: node.AvgPlyLeftBook(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleErrorPerMove(w http.ResponseWriter, r *http.Request) {
	opening := r.URL.Query().Get("opening")
	if opening == "" {
		writeError(w, r, errors.NewContractError("opening query parameter is required"))
		return
	}
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	series, err := view.ErrorPerMove(opening)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opening": opening, "error_per_move": series})
}

func (s *Server) handleTimePerMove(w http.ResponseWriter, r *http.Request) {
	opening := r.URL.Query().Get("opening")
	if opening == "" {
		writeError(w, r, errors.NewContractError("opening query parameter is required"))
		return
	}
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	series, err := view.AvgTimePerMove(opening, intParam(r.URL.Query(), "move_bound", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opening": opening, "time_per_move": series})
}

func (s *Server) handleByDate(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	byDate, err := view.GamesByDate()
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make(map[string][]gameJSON, len(byDate))
	for day, games := range byDate {
		out[day] = toGameJSONList(games)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleByTimeControl(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	byTC, err := view.GamesByTimeControl()
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make(map[string][]gameJSON, len(byTC))
	for tc, games := range byTC {
		out[tc] = toGameJSONList(games)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTopGames returns the n best (lowest-error) or worst games, keeping
// boundary ties.
func (s *Server) handleTopGames(w http.ResponseWriter, r *http.Request) {
	view, err := s.view(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ascending := r.URL.Query().Get("order") != "desc"
	top, err := view.TopGamesByError(intParam(r.URL.Query(), "top", 3), ascending)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameJSONList(top))
}
