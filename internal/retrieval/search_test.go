package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSearcher(t *testing.T, handler http.Handler) (*Searcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Searcher{
		baseURL: srv.URL,
		index:   "sec_filings",
		client:  srv.Client(),
		logger:  zap.NewNop().Sugar(),
	}, srv
}

func TestNormalizeCIK(t *testing.T) {
	assert.Equal(t, "0000033185", NormalizeCIK("33185"))
	assert.Equal(t, "0000033185", NormalizeCIK(" 33185 "))
	assert.Equal(t, "0000731766", NormalizeCIK("0000731766"))
}

func TestSearchFilings(t *testing.T) {
	var captured map[string]any
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sec_filings/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"hits": []map[string]any{
					{
						"_id":    "hd-10k-2023_4",
						"_score": 7.3,
						"_source": map[string]any{
							"content": "We experienced a data breach involving payment card data.",
							"metadata": map[string]any{
								"cik":           "0000354950",
								"filing_date":   "2023-03-15",
								"form":          "10-K",
								"section_title": "Item 1A",
							},
						},
					},
				},
			},
		})
	}))

	chunks, err := searcher.SearchFilings(context.Background(), SearchParams{
		CIK:       "354950",
		Query:     "data breach",
		From:      "2021-01-01",
		To:        "2024-12-31",
		FormTypes: []string{"10-K"},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hd-10k-2023_4", chunks[0].ID)
	assert.Equal(t, "10-K", chunks[0].Metadata.Form)
	assert.Equal(t, 7.3, chunks[0].Score)

	// The request must carry the CIK term filter with the normalized CIK, the
	// date range, and the form terms filter.
	must := captured["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 4)
	assert.Equal(t, float64(20), captured["size"])

	term := must[1].(map[string]any)["term"].(map[string]any)
	assert.Equal(t, "0000354950", term["metadata.cik"])

	rng := must[2].(map[string]any)["range"].(map[string]any)["metadata.filing_date"].(map[string]any)
	assert.Equal(t, "2021-01-01", rng["gte"])
	assert.Equal(t, "2024-12-31", rng["lte"])
}

func TestSearchFilingsEmptyQueryOmitsMatchClause(t *testing.T) {
	var captured map[string]any
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": []any{}}})
	}))

	_, err := searcher.SearchFilings(context.Background(), SearchParams{
		CIK:  "33185",
		From: "2017-01-01",
		To:   "2017-12-31",
	})
	require.NoError(t, err)

	must := captured["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	assert.Len(t, must, 2) // term + range only
}

func TestSearchFilingsInvalidDate(t *testing.T) {
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid dates")
	}))

	_, err := searcher.SearchFilings(context.Background(), SearchParams{
		CIK:  "33185",
		From: "01/01/2017",
		To:   "2017-12-31",
	})
	assert.Error(t, err)
}

func TestSearchFilingsUpstreamError(t *testing.T) {
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"index_not_found_exception"}`, http.StatusNotFound)
	}))

	_, err := searcher.SearchFilings(context.Background(), SearchParams{
		CIK:  "33185",
		From: "2017-01-01",
		To:   "2017-12-31",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSearchDisclosures(t *testing.T) {
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// Combined search requests double the page size for filtering headroom.
		assert.Equal(t, float64(4), body["size"])

		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"hits": []map[string]any{
					{"_id": "a", "_score": 4.0, "_source": map[string]any{
						"content":  "cybersecurity incident response",
						"metadata": map[string]any{"section_title": "Item 1A"},
					}},
					{"_id": "b", "_score": 3.0, "_source": map[string]any{
						"content":  "we lease office space",
						"metadata": map[string]any{"section_title": "Item 2"},
					}},
					{"_id": "c", "_score": 2.0, "_source": map[string]any{
						"content":  "ransomware disclosure",
						"metadata": map[string]any{"section_title": "Item 1B"},
					}},
				},
			},
		})
	}))

	chunks, err := searcher.SearchDisclosures(context.Background(), SearchParams{
		CIK:  "354950",
		From: "2021-01-01",
		To:   "2024-12-31",
		Size: 2,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a", chunks[0].ID)
	assert.Equal(t, "c", chunks[1].ID)
}

func TestFilingSummary(t *testing.T) {
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": 42}},
			"aggregations": map[string]any{
				"forms": map[string]any{"buckets": []map[string]any{
					{"key": "10-K", "doc_count": 30},
					{"key": "8-K", "doc_count": 12},
				}},
				"sections": map[string]any{"buckets": []map[string]any{
					{"key": "Item 1A", "doc_count": 20},
					{"key": "Item 7", "doc_count": 10},
				}},
			},
		})
	}))

	summary, err := searcher.FilingSummary(context.Background(), "354950", "2021-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, "0000354950", summary.CIK)
	assert.Equal(t, 42, summary.TotalChunks)
	assert.Equal(t, map[string]int{"10-K": 30, "8-K": 12}, summary.ChunksByForm)
	assert.Equal(t, []string{"Item 1A", "Item 7"}, summary.Sections)
}

func TestIndexChunksCreatesIndexAndCounts(t *testing.T) {
	var indexCreated bool
	var mapping map[string]any
	var docs []string
	searcher, _ := testSearcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/sec_filings":
			indexCreated = true
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapping))
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut:
			docs = append(docs, r.URL.Path)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected request %v %v", r.Method, r.URL.Path)
		}
	}))

	n, err := searcher.IndexChunks(context.Background(), []Chunk{
		{ID: "doc_0", Content: "chunk one", Metadata: ChunkMetadata{CIK: "0000354950"}},
		{Content: "chunk two", Metadata: ChunkMetadata{DocumentName: "hd-10k.htm"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, indexCreated)
	assert.Equal(t, []string{"/sec_filings/_doc/doc_0", "/sec_filings/_doc/hd-10k.htm_1"}, docs)

	// The section title mapping carries a keyword subfield; the summary
	// aggregation depends on it.
	properties := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
	sectionTitle := properties["metadata.section_title"].(map[string]any)
	fields := sectionTitle["fields"].(map[string]any)
	assert.Equal(t, "keyword", fields["keyword"].(map[string]any)["type"])
}
