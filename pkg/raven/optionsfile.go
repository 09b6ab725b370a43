// optionsfile.go loads client options from a YAML file.

package raven

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// fileOptions mirrors the YAML option file. Filter entries from a file are
// literals; pattern entries stay programmatic.
type fileOptions struct {
	Logger         string            `yaml:"logger"`
	Site           string            `yaml:"site"`
	Transaction    string            `yaml:"transaction"`
	IgnoreErrors   []string          `yaml:"ignore_errors"`
	IgnoreURLs     []string          `yaml:"ignore_urls"`
	WhitelistURLs  []string          `yaml:"whitelist_urls"`
	IncludePaths   []string          `yaml:"include_paths"`
	Tags           map[string]string `yaml:"tags"`
	Extra          map[string]any    `yaml:"extra"`
	FetchContext   bool              `yaml:"fetch_context"`
	LinesOfContext int               `yaml:"lines_of_context"`
}

// OptionsFromFile reads a YAML option file and returns the equivalent
// option setters, ready to pass to New or Configure.
func OptionsFromFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	var f fileOptions
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}

	var opts []Option
	if f.Logger != "" {
		opts = append(opts, WithLogger(f.Logger))
	}
	if f.Site != "" {
		opts = append(opts, WithSite(f.Site))
	}
	if f.Transaction != "" {
		opts = append(opts, WithTransaction(f.Transaction))
	}
	if len(f.IgnoreErrors) > 0 {
		opts = append(opts, WithIgnoreErrors(lo.ToAnySlice(f.IgnoreErrors)...))
	}
	if len(f.IgnoreURLs) > 0 {
		opts = append(opts, WithIgnoreURLs(lo.ToAnySlice(f.IgnoreURLs)...))
	}
	if len(f.WhitelistURLs) > 0 {
		opts = append(opts, WithWhitelistURLs(lo.ToAnySlice(f.WhitelistURLs)...))
	}
	if len(f.IncludePaths) > 0 {
		opts = append(opts, WithIncludePaths(lo.ToAnySlice(f.IncludePaths)...))
	}
	if len(f.Tags) > 0 {
		opts = append(opts, WithTags(f.Tags))
	}
	if len(f.Extra) > 0 {
		opts = append(opts, WithExtra(f.Extra))
	}
	if f.FetchContext {
		opts = append(opts, WithContext(f.LinesOfContext))
	}
	return opts, nil
}
