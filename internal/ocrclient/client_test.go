package ocrclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robostock/catalog-ingest/internal/entity"
)

func newServer(t *testing.T, pollsUntilDone int, terminal string) *httptest.Server {
	t.Helper()
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"documents": []map[string]string{
				{"key": "catalogs/abb-2026.pdf", "file_name": "abb-2026.pdf"},
			},
		})
	})
	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1"})
	})
	mux.HandleFunc("GET /jobs/job-1", func(w http.ResponseWriter, _ *http.Request) {
		polls++
		if polls < pollsUntilDone {
			_ = json.NewEncoder(w).Encode(jobState{Status: "running"})
			return
		}
		state := jobState{Status: terminal}
		if terminal == "succeeded" {
			state.Pages = []entity.PageText{
				{Page: 3, Text: "page three"},
				{Page: 1, Text: "page one"},
			}
		} else {
			state.Error = "table detection crashed"
		}
		_ = json.NewEncoder(w).Encode(state)
	})
	return httptest.NewServer(mux)
}

func testClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL, PollInterval: time.Millisecond}, nil)
}

func TestList(t *testing.T) {
	srv := newServer(t, 1, "succeeded")
	defer srv.Close()

	docs, err := testClient(srv.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "abb-2026.pdf", docs[0].FileName)
	assert.Equal(t, "catalogs/abb-2026.pdf", docs[0].OriginKey)
	assert.Equal(t, entity.SourcePDFExtract, docs[0].Kind)
}

func TestFetchText_PollsUntilSucceeded(t *testing.T) {
	srv := newServer(t, 3, "succeeded")
	defer srv.Close()

	ex, err := testClient(srv.URL).FetchText(context.Background(),
		entity.SourceDocument{OriginKey: "catalogs/abb-2026.pdf", FileName: "abb-2026.pdf"})
	require.NoError(t, err)

	// pages come back ordered by page number
	require.Len(t, ex.PageMap, 2)
	assert.Equal(t, 1, ex.PageMap[0].Page)
	assert.Equal(t, 3, ex.PageMap[1].Page)
	assert.Equal(t, "page one\n\npage three", ex.FullText)
}

func TestFetchText_FailedJob(t *testing.T) {
	srv := newServer(t, 1, "failed")
	defer srv.Close()

	_, err := testClient(srv.URL).FetchText(context.Background(),
		entity.SourceDocument{OriginKey: "catalogs/abb-2026.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table detection crashed")
}

func TestFetchText_ContextCanceled(t *testing.T) {
	srv := newServer(t, 1000, "succeeded")
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).FetchText(ctx,
		entity.SourceDocument{OriginKey: "catalogs/abb-2026.pdf"})
	assert.Error(t, err)
}
