package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Lead is an identity tuple read from an external record of past leads.
type Lead struct {
	Name         string
	Email        string
	Organization string
}

// RemoteSource lists leads recorded outside the cache file, such as the
// Prospects worksheet.
type RemoteSource interface {
	ExistingLeads(ctx context.Context) ([]Lead, error)
}

// Generator produces candidate prospects.
type Generator interface {
	Next() model.Prospect
}

// Options configures an Engine.
type Options struct {
	Set            HashSet
	Remote         RemoteSource
	Clock          common.Clock
	Logger         *slog.Logger
	CachePath      string
	FuzzyThreshold float64
	Fuzzy          bool
}

// Engine tracks every lead fingerprint ever seen. The set only grows.
type Engine struct {
	set       HashSet
	remote    RemoteSource
	clock     common.Clock
	logger    *slog.Logger
	patterns  map[string]map[string]struct{} // normalized org -> email domains
	cachePath string
	threshold float64
	fuzzy     bool
	mu        sync.Mutex
}

// NewEngine creates an engine. Call Load before checking leads.
func NewEngine(opts Options) *Engine {
	if opts.Set == nil {
		opts.Set = NewMemorySet()
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}

	return &Engine{
		set:       opts.Set,
		remote:    opts.Remote,
		clock:     opts.Clock,
		logger:    opts.Logger,
		patterns:  make(map[string]map[string]struct{}),
		cachePath: opts.CachePath,
		threshold: opts.FuzzyThreshold,
		fuzzy:     opts.Fuzzy,
	}
}

// Load fills the engine from the cache file and the remote source. A remote
// failure is logged and skipped; the cache alone still guards against repeats.
func (e *Engine) Load(ctx context.Context) error {
	if e.cachePath != "" {
		c, err := ReadCache(e.cachePath)
		if err != nil {
			return err
		}
		if err := e.set.Add(ctx, c.LeadHashes...); err != nil {
			return fmt.Errorf("failed to load lead hashes: %w", err)
		}
		e.mu.Lock()
		for _, p := range c.OrganizationPatterns {
			e.addPatternLocked(p, "")
		}
		for p, domains := range c.PatternDomains {
			for _, d := range domains {
				e.addPatternLocked(p, d)
			}
		}
		e.mu.Unlock()

		e.logger.Debug("loaded dedup cache",
			"path", e.cachePath,
			"hashes", len(c.LeadHashes),
			"patterns", len(c.OrganizationPatterns))
	}

	if e.remote != nil {
		leads, err := e.remote.ExistingLeads(ctx)
		if err != nil {
			common.LogError(e.logger, err, "failed to scan remote leads", common.Fields{})
			return nil
		}
		hashes := make([]string, 0, len(leads))
		e.mu.Lock()
		for _, l := range leads {
			hashes = append(hashes, LeadHash(l.Name, l.Email, l.Organization))
			e.addPatternLocked(NormalizeOrganization(l.Organization), model.EmailDomain(l.Email))
		}
		e.mu.Unlock()
		if err := e.set.Add(ctx, hashes...); err != nil {
			return fmt.Errorf("failed to add remote lead hashes: %w", err)
		}
		e.logger.Debug("loaded remote leads", "count", len(leads))
	}

	return nil
}

// IsDuplicate reports whether p was seen before. With fuzzy matching on, a
// lead at the same email domain whose normalized organization is close enough
// to a known one also counts.
func (e *Engine) IsDuplicate(ctx context.Context, p model.Prospect) (bool, error) {
	seen, err := e.set.Contains(ctx, ProspectHash(p))
	if err != nil {
		return false, err
	}
	if seen || !e.fuzzy {
		return seen, nil
	}
	return e.fuzzyMatch(p), nil
}

func (e *Engine) fuzzyMatch(p model.Prospect) bool {
	org := NormalizeOrganization(p.Organization)
	domain := model.EmailDomain(p.Email)
	if org == "" || domain == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for pattern, domains := range e.patterns {
		if _, ok := domains[domain]; !ok {
			continue
		}
		if Jaccard(org, pattern) >= e.threshold {
			e.logger.Debug("fuzzy duplicate",
				"organization", p.Organization,
				"pattern", pattern,
				"domain", domain)
			return true
		}
	}
	return false
}

// Add registers p's fingerprint and organization pattern.
func (e *Engine) Add(ctx context.Context, p model.Prospect) error {
	if err := e.set.Add(ctx, ProspectHash(p)); err != nil {
		return err
	}
	e.mu.Lock()
	e.addPatternLocked(NormalizeOrganization(p.Organization), model.EmailDomain(p.Email))
	e.mu.Unlock()
	return nil
}

func (e *Engine) addPatternLocked(pattern, domain string) {
	if pattern == "" {
		return
	}
	domains, ok := e.patterns[pattern]
	if !ok {
		domains = make(map[string]struct{})
		e.patterns[pattern] = domains
	}
	if domain != "" {
		domains[domain] = struct{}{}
	}
}

// GenerateUnique draws candidates from gen until target new leads are
// accepted or 3×target attempts are spent, registering each accepted lead
// immediately, then saves the cache.
func (e *Engine) GenerateUnique(ctx context.Context, target int, gen Generator) ([]model.Prospect, error) {
	if target <= 0 {
		return nil, nil
	}

	maxAttempts := target * 3
	accepted := make([]model.Prospect, 0, target)
	attempts := 0

	for len(accepted) < target && attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		attempts++

		candidate := gen.Next()
		dup, err := e.IsDuplicate(ctx, candidate)
		if err != nil {
			return accepted, err
		}
		if dup {
			continue
		}
		if err := e.Add(ctx, candidate); err != nil {
			return accepted, err
		}
		accepted = append(accepted, candidate)
	}

	if len(accepted) < target {
		e.logger.Warn("attempt budget exhausted before reaching target",
			"target", target,
			"generated", len(accepted),
			"attempts", attempts)
	}

	if err := e.Save(ctx); err != nil {
		return accepted, err
	}
	return accepted, nil
}

// Save writes the cache file. Without a cache path it is a no-op.
func (e *Engine) Save(ctx context.Context) error {
	if e.cachePath == "" {
		return nil
	}

	hashes, err := e.set.Members(ctx)
	if err != nil {
		return fmt.Errorf("failed to list lead hashes: %w", err)
	}

	e.mu.Lock()
	patterns := make([]string, 0, len(e.patterns))
	domains := make(map[string][]string)
	for p, ds := range e.patterns {
		patterns = append(patterns, p)
		for d := range ds {
			domains[p] = append(domains[p], d)
		}
	}
	e.mu.Unlock()

	for p := range domains {
		sort.Strings(domains[p])
	}

	return WriteCache(e.cachePath, &CacheFile{
		LastUpdated:          e.clock.Now().UTC(),
		LeadHashes:           hashes,
		OrganizationPatterns: patterns,
		PatternDomains:       domains,
	})
}

// Stats reports the number of fingerprints and organization patterns held.
func (e *Engine) Stats(ctx context.Context) (hashes, patterns int, err error) {
	hashes, err = e.set.Len(ctx)
	if err != nil {
		return 0, 0, err
	}
	e.mu.Lock()
	patterns = len(e.patterns)
	e.mu.Unlock()
	return hashes, patterns, nil
}
