package entities

import (
	"strings"
	"time"
)

// Subsidiary maps the commonly used names of a subsidiary or operating
// division to the CIK of its SEC-filing parent. AcquiredAt gates temporal
// correctness: an incident that predates the acquisition is not the parent's
// disclosure.
type Subsidiary struct {
	LegalName   string   `json:"legal_name" yaml:"legal_name"`
	CommonNames []string `json:"common_names" yaml:"common_names"`
	AcquiredAt  string   `json:"acquired_date" yaml:"acquired_date"`
	// "subsidiary" for acquired entities, "division" for long-standing
	// operating units.
	EntityType string `json:"entity_type" yaml:"entity_type"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type parentEntry struct {
	Name         string
	Ticker       string
	Subsidiaries []Subsidiary
}

var subsidiaryMap = map[string]*parentEntry{
	"0000731766": {
		Name:   "UnitedHealth Group Inc.",
		Ticker: "UNH",
		Subsidiaries: []Subsidiary{
			{
				LegalName: "Change Healthcare",
				CommonNames: []string{
					"Change Healthcare",
					"Change Healthcare Inc.",
					"Change Healthcare, Inc.",
					"Change Healthcare LLC",
				},
				AcquiredAt: "2022-10-03",
				EntityType: "subsidiary",
				Notes:      "Acquired from private equity; cybersecurity incidents appear in parent filings.",
			},
		},
	},
	"0000313838": {
		Name:   "Sony Group Corp.",
		Ticker: "SONY",
		Subsidiaries: []Subsidiary{
			{
				LegalName: "Sony Pictures",
				CommonNames: []string{
					"Sony Pictures",
					"Sony Pictures Entertainment",
					"Sony Pictures Entertainment Inc.",
					"Sony Pictures Inc.",
				},
				AcquiredAt: "1989-01-01",
				EntityType: "division",
				Notes:      "Operating division. The 2014 breach was at Sony Pictures.",
			},
		},
	},
}

// ParentCIKForSubsidiary resolves a subsidiary or division name to its
// parent's CIK. When incidentDate is non-nil, the match only holds if the
// subsidiary had been acquired by that date; a pre-acquisition incident
// belongs to the previous owner's filings, not the parent's.
func ParentCIKForSubsidiary(name string, incidentDate *time.Time) (string, Subsidiary, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", Subsidiary{}, false
	}

	for parentCIK, parent := range subsidiaryMap {
		for _, sub := range parent.Subsidiaries {
			if !matchesSubsidiary(needle, sub) {
				continue
			}
			if sub.activeAt(incidentDate) {
				return parentCIK, sub, true
			}
		}
	}

	return "", Subsidiary{}, false
}

func matchesSubsidiary(needle string, sub Subsidiary) bool {
	legal := strings.ToLower(sub.LegalName)
	if needle == legal {
		return true
	}
	for _, common := range sub.CommonNames {
		if needle == strings.ToLower(common) {
			return true
		}
	}
	return strings.Contains(needle, legal) || strings.Contains(legal, needle)
}

// activeAt reports whether the subsidiary had been acquired by the given
// date. An unparseable acquisition date counts as active.
func (s Subsidiary) activeAt(incidentDate *time.Time) bool {
	if incidentDate == nil {
		return true
	}
	acquired, err := time.Parse("2006-01-02", s.AcquiredAt)
	if err != nil {
		return true
	}
	return !incidentDate.Before(acquired)
}

// ParentInfo returns the parent company name and ticker for a CIK present in
// the subsidiary map.
func ParentInfo(parentCIK string) (name, ticker string, ok bool) {
	parent, ok := subsidiaryMap[parentCIK]
	if !ok {
		return "", "", false
	}
	return parent.Name, parent.Ticker, true
}

// Subsidiaries lists the subsidiaries of a parent CIK, or all subsidiaries
// keyed by parent when parentCIK is empty.
func Subsidiaries(parentCIK string) map[string][]Subsidiary {
	out := map[string][]Subsidiary{}
	for cik, parent := range subsidiaryMap {
		if parentCIK != "" && cik != parentCIK {
			continue
		}
		subs := make([]Subsidiary, len(parent.Subsidiaries))
		copy(subs, parent.Subsidiaries)
		out[cik] = subs
	}
	return out
}
