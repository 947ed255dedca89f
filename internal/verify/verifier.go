// Package verify decides whether a recipient address is safe to email.
//
// Checks run in a fixed order and the first hard failure wins: address
// format, fake/placeholder patterns, target domain, generic role prefix
// (caution only) and finally DNS. A domain that matches every keyword rule is
// still rejected when it does not resolve.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/style"
)

// Resolver is the subset of *net.Resolver used for the DNS check.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Options configures a Verifier.
type Options struct {
	Resolver     Resolver
	Logger       *slog.Logger
	Campaign     model.Campaign
	AllowDomains []string
	DNSTimeout   time.Duration
	CheckDNS     bool
}

// Verifier runs the recipient checks.
type Verifier struct {
	resolver   Resolver
	logger     *slog.Logger
	allow      map[string]bool
	dnsCache   map[string]bool
	campaign   model.Campaign
	dnsTimeout time.Duration
	checkDNS   bool
	mu         sync.Mutex
}

// New creates a verifier. With CheckDNS set and no Resolver, net.DefaultResolver
// is used.
func New(opts Options) *Verifier {
	if opts.Resolver == nil {
		opts.Resolver = net.DefaultResolver
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DNSTimeout <= 0 {
		opts.DNSTimeout = 5 * time.Second
	}
	if !opts.Campaign.Valid() {
		opts.Campaign = model.CampaignHealthcare
	}

	allow := make(map[string]bool, len(opts.AllowDomains))
	for _, d := range opts.AllowDomains {
		allow[strings.ToLower(strings.TrimSpace(d))] = true
	}

	return &Verifier{
		resolver:   opts.Resolver,
		logger:     opts.Logger,
		allow:      allow,
		dnsCache:   make(map[string]bool),
		campaign:   opts.Campaign,
		dnsTimeout: opts.DNSTimeout,
		checkDNS:   opts.CheckDNS,
	}
}

// Verify checks email for prospect.
func (v *Verifier) Verify(ctx context.Context, email string, prospect model.Prospect) model.VerificationResult {
	addr := model.NormalizeEmail(email)

	if !emailFormat.MatchString(addr) {
		return fail(ReasonInvalidFormat)
	}

	for _, re := range fakePatterns {
		if re.MatchString(addr) {
			v.logger.Debug("fake address pattern", "email", addr, "pattern", re.String())
			return fail(ReasonFakePattern)
		}
	}

	local, domain, _ := strings.Cut(addr, "@")

	if !v.isTargetDomain(domain, prospect) {
		return fail(ReasonNonTargetDomain)
	}

	caution := genericPrefixes[local]

	if v.checkDNS && !v.domainExists(ctx, domain) {
		return fail(ReasonDomainNotFound)
	}

	if caution {
		v.logger.Info("generic role address", "email", addr)
		return model.VerificationResult{Valid: true, Caution: true, Reason: ReasonGenericRole}
	}
	return model.VerificationResult{Valid: true, Reason: ReasonVerified}
}

func fail(reason string) model.VerificationResult {
	return model.VerificationResult{Valid: false, Reason: reason}
}

func (v *Verifier) isTargetDomain(domain string, prospect model.Prospect) bool {
	root, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		root = domain
	}

	if v.allow[domain] || v.allow[root] {
		return true
	}

	for _, tld := range targetTLDs {
		if strings.HasSuffix(root, tld) {
			return true
		}
	}

	campaign := prospect.Campaign
	if !campaign.Valid() {
		campaign = v.campaign
	}
	for _, kw := range campaignKeywords[campaign] {
		if strings.Contains(domain, kw) {
			return true
		}
	}

	compact := strings.ReplaceAll(strings.ReplaceAll(domain, "-", ""), ".", "")
	for _, tok := range orgTokens(prospect.Organization) {
		if strings.Contains(compact, tok) {
			return true
		}
	}
	return false
}

// orgTokens returns the distinctive lower-case words of an organization name.
func orgTokens(org string) []string {
	org = strings.ToLower(style.CleanOrganizationName(org))
	words := strings.FieldsFunc(org, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= minOrgToken && !orgStopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// domainExists tries MX first and falls back to an address lookup. Definitive
// answers are cached for the life of the verifier; timeouts and cancellations
// are not.
func (v *Verifier) domainExists(ctx context.Context, domain string) bool {
	v.mu.Lock()
	cached, ok := v.dnsCache[domain]
	v.mu.Unlock()
	if ok {
		return cached
	}

	exists, definitive := v.lookup(ctx, domain)
	if !definitive {
		return exists
	}

	v.mu.Lock()
	v.dnsCache[domain] = exists
	v.mu.Unlock()
	return exists
}

func (v *Verifier) lookup(ctx context.Context, domain string) (exists, definitive bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, v.dnsTimeout)
	defer cancel()

	mx, err := v.resolver.LookupMX(lookupCtx, domain)
	if err == nil && len(mx) > 0 {
		return true, true
	}

	hosts, hostErr := v.resolver.LookupHost(lookupCtx, domain)
	if hostErr == nil && len(hosts) > 0 {
		return true, true
	}

	definitive = lookupCtx.Err() == nil && !transient(err) && !transient(hostErr)
	v.logger.Debug("domain does not resolve",
		"domain", domain,
		"definitive", definitive,
		"mx_error", errString(err),
		"host_error", errString(hostErr))
	return false, definitive
}

// transient reports lookup errors that say nothing about the domain itself.
func transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprint(err)
}
