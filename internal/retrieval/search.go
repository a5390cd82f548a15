// Package retrieval finds cybersecurity-relevant filing chunks in the search
// index and turns them into answers.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ChunkMetadata is the metadata indexed alongside each filing chunk.
type ChunkMetadata struct {
	CIK          string `json:"cik"`
	FilingDate   string `json:"filing_date"`
	Form         string `json:"form"`
	SectionTitle string `json:"section_title"`
	DocumentName string `json:"document_name,omitempty"`
	ChunkIndex   int    `json:"chunk_index,omitempty"`
}

// Chunk is a bounded excerpt of an SEC filing with its metadata. Score is the
// relevance score assigned by the search engine.
type Chunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float64       `json:"score"`
}

// SearchParams filter a filing search. From and To are inclusive dates in
// YYYY-MM-DD form. FormTypes is optional; Size defaults to 20.
type SearchParams struct {
	CIK       string
	Query     string
	From      string
	To        string
	FormTypes []string
	Size      int
}

// Summary describes what the index holds for a company and date range.
type Summary struct {
	CIK          string         `json:"cik"`
	From         string         `json:"from"`
	To           string         `json:"to"`
	TotalChunks  int            `json:"total_chunks"`
	ChunksByForm map[string]int `json:"chunks_by_form"`
	Sections     []string       `json:"sections"`
}

// Searcher queries the filing-chunk index over its HTTP search API.
type Searcher struct {
	baseURL string
	index   string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewSearcher builds a Searcher from SEARCH_URL and SEARCH_INDEX.
func NewSearcher(logger *zap.SugaredLogger) *Searcher {
	baseURL := os.Getenv("SEARCH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9200"
	}
	index := os.Getenv("SEARCH_INDEX")
	if index == "" {
		index = "sec_filings"
	}

	client := retryablehttp.NewClient()
	client.Logger = nil

	return &Searcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   index,
		client:  client.StandardClient(),
		logger:  logger,
	}
}

// NormalizeCIK pads a CIK to the canonical 10 digits.
func NormalizeCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return nil
}

// SearchFilings runs a filtered full-text search over filing chunks: boosted
// match on content, term filter on CIK, range filter on filing date, optional
// terms filter on form type. Results come back sorted by relevance, then by
// filing date descending.
func (s *Searcher) SearchFilings(ctx context.Context, params SearchParams) ([]Chunk, error) {
	if err := validateDate(params.From); err != nil {
		return nil, err
	}
	if err := validateDate(params.To); err != nil {
		return nil, err
	}
	size := params.Size
	if size <= 0 {
		size = 20
	}

	must := []map[string]any{}
	if params.Query != "" {
		must = append(must, map[string]any{
			"match": map[string]any{
				"content": map[string]any{
					"query": params.Query,
					"boost": 2.0,
				},
			},
		})
	}
	must = append(must, map[string]any{
		"term": map[string]any{"metadata.cik": NormalizeCIK(params.CIK)},
	})
	must = append(must, map[string]any{
		"range": map[string]any{
			"metadata.filing_date": map[string]any{
				"gte":    params.From,
				"lte":    params.To,
				"format": "yyyy-MM-dd",
			},
		},
	})
	if len(params.FormTypes) > 0 {
		must = append(must, map[string]any{
			"terms": map[string]any{"metadata.form": params.FormTypes},
		})
	}

	body := map[string]any{
		"size":  size,
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"metadata.filing_date": map[string]any{"order": "desc"}},
		},
	}

	var res struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source struct {
					Content  string        `json:"content"`
					Metadata ChunkMetadata `json:"metadata"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := s.do(ctx, "POST", fmt.Sprintf("%v/%v/_search", s.baseURL, s.index), body, &res); err != nil {
		return nil, fmt.Errorf("searching filings: %w", err)
	}

	chunks := make([]Chunk, len(res.Hits.Hits))
	for i, hit := range res.Hits.Hits {
		chunks[i] = Chunk{
			ID:       hit.ID,
			Content:  hit.Source.Content,
			Metadata: hit.Source.Metadata,
			Score:    hit.Score,
		}
	}

	return chunks, nil
}

// SearchDisclosures is the combined search: fetch twice the requested number
// of chunks, keep the cybersecurity-relevant ones, truncate.
func (s *Searcher) SearchDisclosures(ctx context.Context, params SearchParams) ([]Chunk, error) {
	size := params.Size
	if size <= 0 {
		size = 20
	}

	wide := params
	wide.Size = size * 2
	chunks, err := s.SearchFilings(ctx, wide)
	if err != nil {
		return nil, err
	}

	cyber := FilterCybersecuritySections(chunks, nil)
	if len(cyber) > size {
		cyber = cyber[:size]
	}

	return cyber, nil
}

// FilingSummary reports what the index holds for a company in a date range:
// total chunk count, counts by form type, and the section titles present.
func (s *Searcher) FilingSummary(ctx context.Context, cik, from, to string) (*Summary, error) {
	if err := validateDate(from); err != nil {
		return nil, err
	}
	if err := validateDate(to); err != nil {
		return nil, err
	}

	normalized := NormalizeCIK(cik)
	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{"term": map[string]any{"metadata.cik": normalized}},
					{"range": map[string]any{
						"metadata.filing_date": map[string]any{
							"gte":    from,
							"lte":    to,
							"format": "yyyy-MM-dd",
						},
					}},
				},
			},
		},
		"aggs": map[string]any{
			"forms":    map[string]any{"terms": map[string]any{"field": "metadata.form", "size": 20}},
			"sections": map[string]any{"terms": map[string]any{"field": "metadata.section_title.keyword", "size": 50}},
		},
	}

	type bucket struct {
		Key      string `json:"key"`
		DocCount int    `json:"doc_count"`
	}
	var res struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			Forms struct {
				Buckets []bucket `json:"buckets"`
			} `json:"forms"`
			Sections struct {
				Buckets []bucket `json:"buckets"`
			} `json:"sections"`
		} `json:"aggregations"`
	}
	if err := s.do(ctx, "POST", fmt.Sprintf("%v/%v/_search", s.baseURL, s.index), body, &res); err != nil {
		return nil, fmt.Errorf("getting filing summary: %w", err)
	}

	summary := &Summary{
		CIK:          normalized,
		From:         from,
		To:           to,
		TotalChunks:  res.Hits.Total.Value,
		ChunksByForm: map[string]int{},
	}
	for _, b := range res.Aggregations.Forms.Buckets {
		summary.ChunksByForm[b.Key] = b.DocCount
	}
	for _, b := range res.Aggregations.Sections.Buckets {
		summary.Sections = append(summary.Sections, b.Key)
	}

	return summary, nil
}

// IndexChunks indexes filing chunks, creating the index with the canonical
// mapping first if it does not exist. Per-chunk failures are logged and
// skipped; the count of successfully indexed chunks is returned.
func (s *Searcher) IndexChunks(ctx context.Context, chunks []Chunk) (int, error) {
	if err := s.ensureIndex(ctx); err != nil {
		return 0, err
	}

	indexed := 0
	for i, chunk := range chunks {
		id := chunk.ID
		if id == "" {
			id = fmt.Sprintf("%v_%v", chunk.Metadata.DocumentName, i)
		}

		doc := map[string]any{
			"content":  chunk.Content,
			"metadata": chunk.Metadata,
		}
		url := fmt.Sprintf("%v/%v/_doc/%v", s.baseURL, s.index, id)
		if err := s.do(ctx, "PUT", url, doc, nil); err != nil {
			s.logger.Errorw("failed to index chunk", "id", id, "error", err)
			continue
		}
		indexed++
	}

	return indexed, nil
}

func (s *Searcher) ensureIndex(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "HEAD", fmt.Sprintf("%v/%v", s.baseURL, s.index), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"content":                map[string]any{"type": "text", "analyzer": "standard"},
				"metadata.cik":           map[string]any{"type": "keyword"},
				"metadata.filing_date":   map[string]any{"type": "date"},
				"metadata.form":          map[string]any{"type": "keyword"},
				// keyword subfield so FilingSummary can aggregate on it
				"metadata.section_title": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword"},
					},
				},
				"metadata.document_name": map[string]any{"type": "text"},
				"metadata.chunk_index":   map[string]any{"type": "integer"},
			},
		},
	}

	if err := s.do(ctx, "PUT", fmt.Sprintf("%v/%v", s.baseURL, s.index), mapping, nil); err != nil {
		return fmt.Errorf("creating index %v: %w", s.index, err)
	}
	s.logger.Infow("created search index", "index", s.index)
	return nil
}

func (s *Searcher) do(ctx context.Context, method, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("search engine returned %v: %v", resp.StatusCode, string(rb))
	}
	if out == nil {
		return nil
	}

	return json.Unmarshal(rb, out)
}
