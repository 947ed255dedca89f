package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CacheFile is the on-disk record of every lead seen.
type CacheFile struct {
	LastUpdated          time.Time           `json:"last_updated"`
	PatternDomains       map[string][]string `json:"pattern_domains,omitempty"`
	LeadHashes           []string            `json:"lead_hashes"`
	OrganizationPatterns []string            `json:"organization_patterns"`
}

// ReadCache loads a cache file. A missing file is an empty cache.
func ReadCache(path string) (*CacheFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &CacheFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dedup cache: %w", err)
	}

	var c CacheFile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse dedup cache %s: %w", path, err)
	}
	return &c, nil
}

// WriteCache writes the cache through a temp file and rename so a crash never
// leaves a truncated file behind.
func WriteCache(path string, c *CacheFile) error {
	sort.Strings(c.LeadHashes)
	sort.Strings(c.OrganizationPatterns)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dedup cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dedup-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write dedup cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close dedup cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace dedup cache: %w", err)
	}
	return nil
}
