package entities

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// extraMappings is the on-disk shape for additional lookup entries. The
// built-in tables cover the companies the index was seeded with; deployments
// tracking more registrants extend them from a YAML file.
type extraMappings struct {
	Companies []struct {
		Name    string   `yaml:"name"`
		Ticker  string   `yaml:"ticker"`
		CIK     string   `yaml:"cik"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"companies"`
	Subsidiaries []struct {
		ParentCIK    string     `yaml:"parent_cik"`
		ParentName   string     `yaml:"parent_name"`
		ParentTicker string     `yaml:"parent_ticker"`
		Subsidiary   Subsidiary `yaml:",inline"`
	} `yaml:"subsidiaries"`
}

// LoadExtra merges additional company, ticker, and subsidiary mappings from a
// YAML file into the lookup tables.
func LoadExtra(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var extra extraMappings
	if err := yaml.Unmarshal(b, &extra); err != nil {
		return fmt.Errorf("parsing %v: %w", path, err)
	}

	for _, c := range extra.Companies {
		if c.CIK == "" || len(c.CIK) != 10 {
			return fmt.Errorf("company %q: cik must be 10 digits, got %q", c.Name, c.CIK)
		}
		if c.Name != "" {
			companyCIKs[normalizeName(c.Name)] = c.CIK
		}
		for _, alias := range c.Aliases {
			companyCIKs[normalizeName(alias)] = c.CIK
		}
		if c.Ticker != "" {
			tickerCIKs[strings.ToUpper(c.Ticker)] = c.CIK
		}
		trackedCompanies = append(trackedCompanies, Company{Name: c.Name, Ticker: c.Ticker, CIK: c.CIK})
	}

	for _, s := range extra.Subsidiaries {
		if s.ParentCIK == "" || len(s.ParentCIK) != 10 {
			return fmt.Errorf("subsidiary %q: parent_cik must be 10 digits, got %q", s.Subsidiary.LegalName, s.ParentCIK)
		}
		parent, ok := subsidiaryMap[s.ParentCIK]
		if !ok {
			parent = &parentEntry{Name: s.ParentName, Ticker: s.ParentTicker}
			subsidiaryMap[s.ParentCIK] = parent
		}
		parent.Subsidiaries = append(parent.Subsidiaries, s.Subsidiary)
		for _, common := range s.Subsidiary.CommonNames {
			companyCIKs[normalizeName(common)] = s.ParentCIK
		}
	}

	return nil
}
