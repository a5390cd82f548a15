// Package entities resolves company references -- current names, historical
// names, ticker symbols, and subsidiary names -- to the canonical SEC CIK of
// the filing entity. Resolution runs before any retrieval: searching the
// filing index requires a CIK.
package entities

import "strings"

// Company is a tracked SEC registrant.
type Company struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	CIK    string `json:"cik"`
}

// HistoricalName records a registrant rename. The CIK survives the rename, so
// questions about the old name should resolve to the same filings.
type HistoricalName struct {
	CIK         string `json:"cik"`
	CurrentName string `json:"current_name"`
	ChangedAt   string `json:"name_change_date"`
}

// Match is a company mention found in free text.
type Match struct {
	Name string `json:"name"`
	CIK  string `json:"cik"`
}

// Tracked companies with known cybersecurity incidents. Names are stored
// lowercased with punctuation stripped; lookups normalize the same way.
var companyCIKs = map[string]string{
	// UnitedHealth Group / Change Healthcare
	"unitedhealth group":     "0000731766",
	"unitedhealth group inc": "0000731766",
	"unitedhealth":           "0000731766",
	"change healthcare":      "0000731766",
	"change healthcare inc":  "0000731766",

	// Target
	"target":             "0000027419",
	"target corporation": "0000027419",
	"target corp":        "0000027419",

	// Capital One
	"capital one":                       "0000927628",
	"capital one financial":             "0000927628",
	"capital one financial corp":        "0000927628",
	"capital one financial corporation": "0000927628",

	// Equifax
	"equifax":     "0000033185",
	"equifax inc": "0000033185",

	// Marriott. Starwood was acquired by Marriott.
	"marriott":                   "0001048286",
	"marriott international":     "0001048286",
	"marriott international inc": "0001048286",
	"starwood":                   "0001048286",

	// Home Depot
	"home depot":     "0000354950",
	"home depot inc": "0000354950",
	"the home depot": "0000354950",

	// MGM Resorts
	"mgm":                           "0000789570",
	"mgm resorts":                   "0000789570",
	"mgm resorts international":     "0000789570",
	"mgm resorts international inc": "0000789570",

	// SolarWinds
	"solarwinds":             "0001739942",
	"solarwinds corporation": "0001739942",
	"solarwinds corp":        "0001739942",

	// T-Mobile
	"t-mobile":        "0001283699",
	"t-mobile us":     "0001283699",
	"t-mobile us inc": "0001283699",
	"t-mobile usa":    "0001283699",
	"tmobile":         "0001283699",

	// Uber
	"uber":                  "0001543151",
	"uber technologies":     "0001543151",
	"uber technologies inc": "0001543151",

	// Sony. Sony Pictures is a division of Sony Group.
	"sony":                       "0000313838",
	"sony group":                 "0000313838",
	"sony group corp":            "0000313838",
	"sony group corporation":     "0000313838",
	"sony pictures":               "0000313838",
	"sony pictures entertainment": "0000313838",

	// First American Financial
	"first american":                       "0001472787",
	"first american financial":             "0001472787",
	"first american financial corp":        "0001472787",
	"first american financial corporation": "0001472787",

	// Yahoo renamed itself Altaba in 2017; same CIK.
	"yahoo":      "0001011006",
	"yahoo inc":  "0001011006",
	"altaba":     "0001011006",
	"altaba inc": "0001011006",
}

// Registrant renames: old name -> current identity.
var historicalNames = map[string]HistoricalName{
	"yahoo":     {CIK: "0001011006", CurrentName: "Altaba Inc.", ChangedAt: "2017-06-16"},
	"yahoo inc": {CIK: "0001011006", CurrentName: "Altaba Inc.", ChangedAt: "2017-06-16"},
}

var tickerCIKs = map[string]string{
	"UNH":  "0000731766",
	"TGT":  "0000027419",
	"COF":  "0000927628",
	"EFX":  "0000033185",
	"MAR":  "0001048286",
	"HD":   "0000354950",
	"MGM":  "0000789570",
	"SWI":  "0001739942",
	"TMUS": "0001283699",
	"UBER": "0001543151",
	"SONY": "0000313838",
	"FAF":  "0001472787",
}

// Canonical tracked-company list, used by the companies API and the fetcher.
var trackedCompanies = []Company{
	{Name: "UnitedHealth Group Inc.", Ticker: "UNH", CIK: "0000731766"},
	{Name: "Target Corporation", Ticker: "TGT", CIK: "0000027419"},
	{Name: "Capital One Financial Corporation", Ticker: "COF", CIK: "0000927628"},
	{Name: "Equifax Inc.", Ticker: "EFX", CIK: "0000033185"},
	{Name: "Marriott International Inc.", Ticker: "MAR", CIK: "0001048286"},
	{Name: "The Home Depot, Inc.", Ticker: "HD", CIK: "0000354950"},
	{Name: "MGM Resorts International", Ticker: "MGM", CIK: "0000789570"},
	{Name: "SolarWinds Corporation", Ticker: "SWI", CIK: "0001739942"},
	{Name: "T-Mobile US, Inc.", Ticker: "TMUS", CIK: "0001283699"},
	{Name: "Uber Technologies, Inc.", Ticker: "UBER", CIK: "0001543151"},
	{Name: "Sony Group Corporation", Ticker: "SONY", CIK: "0000313838"},
	{Name: "First American Financial Corporation", Ticker: "FAF", CIK: "0001472787"},
	{Name: "Altaba Inc.", Ticker: "AABA", CIK: "0001011006"},
}

// normalizeName lowercases, trims, and strips the punctuation that corporate
// suffixes drag along ("Inc.", "Corp.", "Yahoo!").
func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(",", "", ".", "", "!", "").Replace(s)
}

// LookupCIK resolves a company name or ticker symbol to a 10-digit CIK. It
// tries, in order: exact current-name match, ticker match, historical-name
// match, then partial matches over names and tickers.
func LookupCIK(name string) (string, bool) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", false
	}

	if cik, ok := companyCIKs[normalized]; ok {
		return cik, true
	}

	if cik, ok := tickerCIKs[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return cik, true
	}

	if info, ok := historicalNames[normalized]; ok {
		return info.CIK, true
	}

	for key, cik := range companyCIKs {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return cik, true
		}
	}

	upper := strings.ToUpper(strings.TrimSpace(name))
	for ticker, cik := range tickerCIKs {
		if strings.Contains(upper, ticker) || strings.Contains(ticker, upper) {
			return cik, true
		}
	}

	return "", false
}

// LookupTicker resolves a ticker symbol to a CIK.
func LookupTicker(ticker string) (string, bool) {
	cik, ok := tickerCIKs[strings.ToUpper(strings.TrimSpace(ticker))]
	return cik, ok
}

// HistoricalNameInfo reports whether name is a former name of a registrant
// and, if so, the current identity.
func HistoricalNameInfo(name string) (HistoricalName, bool) {
	info, ok := historicalNames[normalizeName(name)]
	return info, ok
}

// FindCompaniesInText returns every tracked company mentioned in text,
// de-duplicated by CIK.
func FindCompaniesInText(text string) []Match {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var found []Match
	for name, cik := range companyCIKs {
		if strings.Contains(lower, name) && !seen[cik] {
			seen[cik] = true
			found = append(found, Match{Name: name, CIK: cik})
		}
	}
	return found
}

// Companies returns the tracked-company list.
func Companies() []Company {
	out := make([]Company, len(trackedCompanies))
	copy(out, trackedCompanies)
	return out
}
