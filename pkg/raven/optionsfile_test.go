package raven

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raven.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOptionsFromFile_AppliesAllFields(t *testing.T) {
	path := writeOptionsFile(t, `
logger: frontend
site: shop.example.com
transaction: release-7
ignore_errors:
  - "quota exceeded"
ignore_urls:
  - "cdn.example.com"
whitelist_urls:
  - "shop.example.com"
include_paths:
  - "shop.example.com"
tags:
  env: staging
extra:
  build: "1234"
fetch_context: true
lines_of_context: 7
`)

	opts, err := OptionsFromFile(path)
	require.NoError(t, err)

	client, _ := newTestClient(t, opts...)

	client.mu.Lock()
	cfg := client.config
	client.mu.Unlock()

	assert.Equal(t, "frontend", cfg.Logger)
	assert.Equal(t, "shop.example.com", cfg.Site)
	assert.Equal(t, "release-7", cfg.Transaction)
	assert.Equal(t, "staging", cfg.Tags["env"])
	assert.Equal(t, "1234", cfg.Extra["build"])
	assert.True(t, cfg.FetchContext)
	assert.Equal(t, 7, cfg.LinesOfContext)

	assert.True(t, cfg.ignoreErrors.Matches("quota exceeded"),
		"file ignore entry should be compiled in")
	assert.True(t, cfg.ignoreURLs.Matches("http://cdn.example.com/x.js"),
		"file ignore_urls entry should be compiled in")
	assert.True(t, cfg.whitelistURLs.Enabled())
	assert.True(t, cfg.includePaths.Enabled())
}

func TestOptionsFromFile_EmptyFileIsNoOptions(t *testing.T) {
	path := writeOptionsFile(t, "")

	opts, err := OptionsFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestOptionsFromFile_Missing(t *testing.T) {
	_, err := OptionsFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestOptionsFromFile_Malformed(t *testing.T) {
	path := writeOptionsFile(t, "tags: [not, a, map]")

	_, err := OptionsFromFile(path)
	require.Error(t, err)
}
