// Package fetcher pulls company filings from SEC EDGAR and prepares them for
// indexing.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const edgarBaseURL = "https://data.sec.gov"
const edgarArchivesURL = "https://www.sec.gov/Archives/edgar/data"

// Filing is one entry from a company's EDGAR submission history.
type Filing struct {
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	Form            string `json:"form"`
	PrimaryDocument string `json:"primary_document"`
	Description     string `json:"primary_doc_description,omitempty"`
	CIK             string `json:"cik"`
}

// CompanyInfo is the registrant metadata EDGAR holds for a CIK.
type CompanyInfo struct {
	CIK            json.Number `json:"cik"`
	EntityType     string      `json:"entityType"`
	SIC            string      `json:"sic"`
	SICDescription string      `json:"sicDescription"`
	Name           string      `json:"name"`
	Tickers        []string    `json:"tickers"`
	Exchanges      []string    `json:"exchanges"`
}

// submissions is the shape of data.sec.gov/submissions/CIK##########.json.
// Filing fields come as parallel arrays.
type submissions struct {
	CIK            json.Number `json:"cik"`
	EntityType     string      `json:"entityType"`
	SIC            string      `json:"sic"`
	SICDescription string      `json:"sicDescription"`
	Name           string      `json:"name"`
	Tickers        []string    `json:"tickers"`
	Exchanges      []string    `json:"exchanges"`
	Filings        struct {
		Recent filingColumns `json:"recent"`
		Files  []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

type filingColumns struct {
	AccessionNumber       []string `json:"accessionNumber"`
	FilingDate            []string `json:"filingDate"`
	Form                  []string `json:"form"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
}

// EdgarClient talks to the SEC EDGAR API. SEC requires a descriptive
// User-Agent of the form "Name (email)" on every request.
type EdgarClient struct {
	baseURL     string
	archivesURL string
	userAgent   string
	client      *http.Client
	// Pause between consecutive archive downloads; EDGAR rate-limits
	// aggressive clients.
	pause time.Duration
}

// NewEdgarClient builds a client using SEC_USER_AGENT.
func NewEdgarClient() *EdgarClient {
	userAgent := os.Getenv("SEC_USER_AGENT")
	if userAgent == "" {
		userAgent = "secwatch (secwatch@example.com)"
	}

	client := retryablehttp.NewClient()
	client.Logger = nil

	return &EdgarClient{
		baseURL:     edgarBaseURL,
		archivesURL: edgarArchivesURL,
		userAgent:   userAgent,
		client:      client.StandardClient(),
		pause:       100 * time.Millisecond,
	}
}

// Filings returns the company's filings from the last N years, newest pages
// first. Historical submission pages referenced by the main document are
// fetched too.
func (e *EdgarClient) Filings(ctx context.Context, cik string, years int) ([]Filing, error) {
	normalized := normalizeCIK(cik)
	cutoff := time.Now().AddDate(0, 0, -years*365)

	var subs submissions
	url := fmt.Sprintf("%v/submissions/CIK%v.json", e.baseURL, normalized)
	if err := e.getJSON(ctx, url, &subs); err != nil {
		return nil, fmt.Errorf("fetching submissions for CIK %v: %w", normalized, err)
	}

	filings := collectFilings(subs.Filings.Recent, normalized, cutoff)

	for _, page := range subs.Filings.Files {
		var hist submissions
		histURL := fmt.Sprintf("%v/submissions/%v", e.baseURL, page.Name)
		if err := e.getJSON(ctx, histURL, &hist); err != nil {
			// Historical pages are best effort; recent filings already cover
			// the common case.
			continue
		}
		filings = append(filings, collectFilings(hist.Filings.Recent, normalized, cutoff)...)
		time.Sleep(e.pause)
	}

	return filings, nil
}

func collectFilings(cols filingColumns, cik string, cutoff time.Time) []Filing {
	var filings []Filing
	for i := range cols.FilingDate {
		filed, err := time.Parse("2006-01-02", cols.FilingDate[i])
		if err != nil || filed.Before(cutoff) {
			continue
		}
		f := Filing{
			FilingDate: cols.FilingDate[i],
			CIK:        cik,
		}
		if i < len(cols.AccessionNumber) {
			f.AccessionNumber = cols.AccessionNumber[i]
		}
		if i < len(cols.Form) {
			f.Form = cols.Form[i]
		}
		if i < len(cols.PrimaryDocument) {
			f.PrimaryDocument = cols.PrimaryDocument[i]
		}
		if i < len(cols.PrimaryDocDescription) {
			f.Description = cols.PrimaryDocDescription[i]
		}
		filings = append(filings, f)
	}
	return filings
}

// CompanyInfo returns registrant metadata for a CIK.
func (e *EdgarClient) CompanyInfo(ctx context.Context, cik string) (*CompanyInfo, error) {
	var subs submissions
	url := fmt.Sprintf("%v/submissions/CIK%v.json", e.baseURL, normalizeCIK(cik))
	if err := e.getJSON(ctx, url, &subs); err != nil {
		return nil, fmt.Errorf("fetching company info: %w", err)
	}

	return &CompanyInfo{
		CIK:            subs.CIK,
		EntityType:     subs.EntityType,
		SIC:            subs.SIC,
		SICDescription: subs.SICDescription,
		Name:           subs.Name,
		Tickers:        subs.Tickers,
		Exchanges:      subs.Exchanges,
	}, nil
}

// Download fetches a filing's primary document from the EDGAR archives. In
// archive URLs the CIK loses its leading zeros and the accession number its
// dashes.
func (e *EdgarClient) Download(ctx context.Context, cik, accessionNumber, primaryDocument string) ([]byte, error) {
	cikInt, err := strconv.Atoi(strings.TrimSpace(cik))
	if err != nil {
		return nil, fmt.Errorf("invalid CIK %q: %w", cik, err)
	}
	accessionDir := strings.ReplaceAll(accessionNumber, "-", "")

	url := fmt.Sprintf("%v/%v/%v/%v", e.archivesURL, cikInt, accessionDir, primaryDocument)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %v: status %v", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (e *EdgarClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %v: status %v", url, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

func normalizeCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}
