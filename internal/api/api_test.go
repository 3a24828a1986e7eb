package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/services"
	"github.com/tomerk/chessmetrics/internal/testutil"
	"github.com/tomerk/chessmetrics/internal/worker"
)

const importPGN = `[Event "Live Chess"]
[Date "2024.03.15"]
[White "me"]
[Black "rival"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1480"]
[TimeControl "300+2"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. b4 1-0
`

func newTestServer() *Server {
	return &Server{
		IngestService:   services.NewIngestService(nil, book.New()),
		AnalysisService: services.NewAnalysisService(&testutil.FlatEvaluator{}),
		Username:        "me",
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestImportAndSummary(t *testing.T) {
	srv := newTestServer()
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodPost, "/games/import", importPGN)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var imported map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, float64(1), imported["parsed"])

	rec = doRequest(t, routes, http.MethodGet, "/stats/summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, float64(1), summary["games"])
}

func TestEmptyDomainMapsTo409(t *testing.T) {
	srv := newTestServer()
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/stats/record", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var payload map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "EMPTY_DOMAIN", payload["error"]["code"])
}

func TestContractViolationMapsTo400(t *testing.T) {
	srv := newTestServer()
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/stats/summary?results=victory", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, routes, http.MethodGet, "/stats/error-per-move", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, routes, http.MethodGet, "/stats/record-by-elo?gap=10", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpeningsEndpoint(t *testing.T) {
	srv := newTestServer()
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodPost, "/games/import", importPGN)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, routes, http.MethodGet, "/stats/openings?metric=common&top=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var openings []openingJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &openings))
	require.Len(t, openings, 1)
	assert.Equal(t, "Italian Game", openings[0].Name)
	assert.Equal(t, 1, openings[0].Games)

	rec = doRequest(t, routes, http.MethodGet, "/stats/openings?metric=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportFileQueuesIngestAndWarmup(t *testing.T) {
	srv := newTestServer()
	pool := worker.NewPool(1, 8)
	pool.Start(context.Background())
	defer pool.Stop()
	srv.IngestPool = pool
	routes := srv.Routes()

	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(importPGN), 0o644))

	rec := doRequest(t, routes, http.MethodPost,
		"/games/import-file?path="+url.QueryEscape(path), "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// The queued ingest lands the game in the universe and the warmup job
	// analyzes it, so the summary needs no further engine work.
	assert.Eventually(t, func() bool {
		universe := srv.AnalysisService.Universe()
		return len(universe) == 1 && universe[0].Analyzed()
	}, time.Second, 10*time.Millisecond)
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer()
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodPost, "/games/import", importPGN)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, routes, http.MethodGet, "/games/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Italian Game")
}
