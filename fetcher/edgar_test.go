package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEdgarClient(t *testing.T, handler http.Handler) *EdgarClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &EdgarClient{
		baseURL:     srv.URL,
		archivesURL: srv.URL + "/Archives/edgar/data",
		userAgent:   "secwatch test (test@example.com)",
		client:      srv.Client(),
	}
}

func TestFilings(t *testing.T) {
	recentDate := time.Now().AddDate(0, -6, 0).Format("2006-01-02")

	client := testEdgarClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secwatch test (test@example.com)", r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/submissions/CIK0000354950.json":
			json.NewEncoder(w).Encode(map[string]any{
				"cik":  354950,
				"name": "HOME DEPOT, INC.",
				"filings": map[string]any{
					"recent": map[string]any{
						"accessionNumber": []string{"0000354950-24-000001", "0000354950-10-000099"},
						"filingDate":      []string{recentDate, "2010-03-25"},
						"form":            []string{"10-K", "10-K"},
						"primaryDocument": []string{"hd-10k.htm", "hd-10k-2010.htm"},
					},
					"files": []map[string]any{{"name": "CIK0000354950-submissions-001.json"}},
				},
			})
		case "/submissions/CIK0000354950-submissions-001.json":
			json.NewEncoder(w).Encode(map[string]any{
				"filings": map[string]any{
					"recent": map[string]any{
						"accessionNumber": []string{"0000354950-23-000050"},
						"filingDate":      []string{time.Now().AddDate(-1, 0, 0).Format("2006-01-02")},
						"form":            []string{"8-K"},
						"primaryDocument": []string{"hd-8k.htm"},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %v", r.URL.Path)
		}
	}))

	filings, err := client.Filings(context.Background(), "354950", 5)
	require.NoError(t, err)
	require.Len(t, filings, 2)

	assert.Equal(t, "0000354950-24-000001", filings[0].AccessionNumber)
	assert.Equal(t, "10-K", filings[0].Form)
	assert.Equal(t, "0000354950", filings[0].CIK)
	assert.Equal(t, "0000354950-23-000050", filings[1].AccessionNumber)
}

func TestFilingsCutoffExcludesOldFilings(t *testing.T) {
	client := testEdgarClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"filings": map[string]any{
				"recent": map[string]any{
					"accessionNumber": []string{"0000027419-14-000001"},
					"filingDate":      []string{"2014-03-14"},
					"form":            []string{"10-K"},
					"primaryDocument": []string{"tgt-10k.htm"},
				},
			},
		})
	}))

	filings, err := client.Filings(context.Background(), "27419", 2)
	require.NoError(t, err)
	assert.Empty(t, filings)
}

func TestCompanyInfo(t *testing.T) {
	client := testEdgarClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/submissions/CIK0000033185.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"cik":            33185,
			"entityType":     "operating",
			"sic":            "7320",
			"sicDescription": "Services-Consumer Credit Reporting",
			"name":           "EQUIFAX INC",
			"tickers":        []string{"EFX"},
			"exchanges":      []string{"NYSE"},
		})
	}))

	info, err := client.CompanyInfo(context.Background(), "33185")
	require.NoError(t, err)
	assert.Equal(t, "EQUIFAX INC", info.Name)
	assert.Equal(t, []string{"EFX"}, info.Tickers)
}

func TestDownload(t *testing.T) {
	client := testEdgarClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Leading zeros and accession dashes are stripped in archive paths.
		require.Equal(t, "/Archives/edgar/data/354950/000035495024000001/hd-10k.htm", r.URL.Path)
		fmt.Fprint(w, "<html>filing body</html>")
	}))

	body, err := client.Download(context.Background(), "0000354950", "0000354950-24-000001", "hd-10k.htm")
	require.NoError(t, err)
	assert.Contains(t, string(body), "filing body")
}

func TestDownloadErrorStatus(t *testing.T) {
	client := testEdgarClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.Download(context.Background(), "354950", "0000354950-24-000001", "missing.htm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNormalizeCIKPadding(t *testing.T) {
	assert.Equal(t, "0000027419", normalizeCIK("27419"))
	assert.Equal(t, "0000731766", normalizeCIK("0000731766"))
}
