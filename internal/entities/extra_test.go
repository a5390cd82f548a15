package entities

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExtra(t *testing.T) {
	path := writeMappings(t, `
companies:
  - name: Okta, Inc.
    ticker: okta
    cik: "0001660134"
    aliases:
      - Okta
subsidiaries:
  - parent_cik: "0001660134"
    parent_name: Okta, Inc.
    parent_ticker: OKTA
    legal_name: Auth0
    common_names:
      - Auth0
      - Auth0 Inc.
    acquired_date: "2021-05-03"
    entity_type: subsidiary
`)

	require.NoError(t, LoadExtra(path))

	cik, ok := LookupCIK("Okta")
	require.True(t, ok)
	assert.Equal(t, "0001660134", cik)

	// Tickers are stored upper-cased regardless of how the file spells them.
	cik, ok = LookupTicker("OKTA")
	require.True(t, ok)
	assert.Equal(t, "0001660134", cik)
	cik, ok = LookupTicker("okta")
	require.True(t, ok)
	assert.Equal(t, "0001660134", cik)

	after := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	parentCIK, sub, ok := ParentCIKForSubsidiary("Auth0", &after)
	require.True(t, ok)
	assert.Equal(t, "0001660134", parentCIK)
	assert.Equal(t, "Auth0", sub.LegalName)

	before := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _, ok = ParentCIKForSubsidiary("Auth0", &before)
	assert.False(t, ok)
}

func TestLoadExtraRejectsBadCIK(t *testing.T) {
	path := writeMappings(t, `
companies:
  - name: Okta, Inc.
    ticker: OKTA
    cik: "1660134"
`)

	assert.Error(t, LoadExtra(path))
}
