package verify

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

type fakeResolver struct {
	mx        map[string][]*net.MX
	hosts     map[string][]string
	timeouts  map[string]bool
	mxCalls   int
	hostCalls int
}

func (r *fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	r.mxCalls++
	if r.timeouts[name] {
		return nil, &net.DNSError{Err: "i/o timeout", Name: name, IsTimeout: true}
	}
	if mx, ok := r.mx[name]; ok {
		return mx, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	r.hostCalls++
	if r.timeouts[host] {
		return nil, &net.DNSError{Err: "i/o timeout", Name: host, IsTimeout: true}
	}
	if h, ok := r.hosts[host]; ok {
		return h, nil
	}
	return nil, errors.New("no such host")
}

func newResolver() *fakeResolver {
	return &fakeResolver{
		mx: map[string][]*net.MX{
			"houstonmethodist.org": {{Host: "mx.houstonmethodist.org", Pref: 10}},
			"questlabs.com":        {{Host: "mx.questlabs.com", Pref: 10}},
		},
		hosts: map[string][]string{
			"harriscountytx.gov": {"192.0.2.10"},
		},
	}
}

func TestVerifyOrder(t *testing.T) {
	hospital := model.Prospect{Organization: "Houston Methodist", Campaign: model.CampaignHealthcare}

	tests := []struct {
		name     string
		email    string
		prospect model.Prospect
		reason   string
		valid    bool
		caution  bool
	}{
		{"valid org address", "jmartinez@houstonmethodist.org", hospital, ReasonVerified, true, false},
		{"upper case normalized", " JMartinez@HoustonMethodist.ORG ", hospital, ReasonVerified, true, false},
		{"bad format", "jmartinez@", hospital, ReasonInvalidFormat, false, false},
		{"missing tld", "jmartinez@houstonmethodist", hospital, ReasonInvalidFormat, false, false},
		{"fake placeholder", "mail2@testpd.com", hospital, ReasonFakePattern, false, false},
		{"fake beats keyword", "fake.hospital@houstonmethodist.org", hospital, ReasonFakePattern, false, false},
		{"example domain", "someone@example.org", hospital, ReasonFakePattern, false, false},
		{"noreply", "noreply@houstonmethodist.org", hospital, ReasonFakePattern, false, false},
		{"non target", "jane@gmail.com", hospital, ReasonNonTargetDomain, false, false},
		{"org token overlap", "lab@questlabs.com", model.Prospect{Organization: "Quest Labs Inc", Campaign: model.CampaignLawEnforcement}, ReasonVerified, true, false},
		{"generic role passes with caution", "info@houstonmethodist.org", hospital, ReasonGenericRole, true, true},
		{"gov via host fallback", "dispatch@harriscountytx.gov", model.Prospect{Campaign: model.CampaignLawEnforcement}, ReasonVerified, true, false},
		{"keyword domain that does not resolve", "director@citymedicalclinic.com", hospital, ReasonDomainNotFound, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(Options{Resolver: newResolver(), CheckDNS: true})
			got := v.Verify(context.Background(), tt.email, tt.prospect)

			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.caution, got.Caution)
		})
	}
}

func TestFakePatternsAlwaysFail(t *testing.T) {
	v := New(Options{Resolver: newResolver(), CheckDNS: false})
	hospital := model.Prospect{Organization: "Test Hospital", Campaign: model.CampaignHealthcare}

	for _, email := range []string{
		"mail2@testpd.com",
		"mail@test.hospital.org",
		"test@hospital.org",
		"john.doe@hospital.org",
		"123@hospital.org",
		"placeholder@health.gov",
		"asdf@clinic.org",
	} {
		got := v.Verify(context.Background(), email, hospital)
		assert.False(t, got.Valid, email)
		assert.Equal(t, ReasonFakePattern, got.Reason, email)
	}
}

func TestDNSSkippedWhenDisabled(t *testing.T) {
	r := newResolver()
	v := New(Options{Resolver: r, CheckDNS: false})

	got := v.Verify(context.Background(), "director@citymedicalclinic.com", model.Prospect{Campaign: model.CampaignHealthcare})
	assert.True(t, got.Valid)
	assert.Zero(t, r.mxCalls)
}

func TestDNSResultsCached(t *testing.T) {
	r := newResolver()
	v := New(Options{Resolver: r, CheckDNS: true})
	p := model.Prospect{Organization: "Houston Methodist"}

	require.True(t, v.Verify(context.Background(), "a@houstonmethodist.org", p).Valid)
	require.True(t, v.Verify(context.Background(), "b@houstonmethodist.org", p).Valid)
	assert.Equal(t, 1, r.mxCalls)
	assert.Zero(t, r.hostCalls)
}

func TestDNSNegativeResultsCached(t *testing.T) {
	r := newResolver()
	v := New(Options{Resolver: r, CheckDNS: true})
	p := model.Prospect{Organization: "Gone Hospital"}

	assert.Equal(t, ReasonDomainNotFound, v.Verify(context.Background(), "a@gonehospital.org", p).Reason)
	assert.Equal(t, ReasonDomainNotFound, v.Verify(context.Background(), "b@gonehospital.org", p).Reason)
	assert.Equal(t, 1, r.mxCalls)
}

func TestDNSTimeoutNotCached(t *testing.T) {
	r := newResolver()
	r.timeouts = map[string]bool{"houstonmethodist.org": true}
	v := New(Options{Resolver: r, CheckDNS: true})
	p := model.Prospect{Organization: "Houston Methodist"}

	got := v.Verify(context.Background(), "a@houstonmethodist.org", p)
	assert.Equal(t, ReasonDomainNotFound, got.Reason)

	r.timeouts = nil
	got = v.Verify(context.Background(), "a@houstonmethodist.org", p)
	assert.True(t, got.Valid)
	assert.Equal(t, 2, r.mxCalls)
}

func TestDNSCanceledContextNotCached(t *testing.T) {
	r := newResolver()
	v := New(Options{Resolver: r, CheckDNS: true})
	p := model.Prospect{Organization: "Gone Hospital"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ReasonDomainNotFound, v.Verify(ctx, "a@gonehospital.org", p).Reason)

	assert.Equal(t, ReasonDomainNotFound, v.Verify(context.Background(), "a@gonehospital.org", p).Reason)
	assert.Equal(t, 2, r.mxCalls)
}

func TestCampaignFallsBackToVerifierDefault(t *testing.T) {
	v := New(Options{Campaign: model.CampaignLawEnforcement})
	got := v.Verify(context.Background(), "chief@springfieldpolice.com", model.Prospect{})
	assert.True(t, got.Valid)

	hc := New(Options{Campaign: model.CampaignHealthcare})
	got = hc.Verify(context.Background(), "chief@springfieldpolice.com", model.Prospect{})
	assert.Equal(t, ReasonNonTargetDomain, got.Reason)
}

func TestAllowDomains(t *testing.T) {
	v := New(Options{AllowDomains: []string{"Partner.com"}})
	got := v.Verify(context.Background(), "buyer@partner.com", model.Prospect{})
	assert.True(t, got.Valid)
}

func TestOrgTokens(t *testing.T) {
	assert.Equal(t, []string{"houston", "methodist"}, orgTokens("The Houston Methodist (AKA Methodist Hospital System)"))
	assert.Equal(t, []string{"harris", "county", "sheriff"}, orgTokens("Harris County Sheriff's Office"))
	assert.Empty(t, orgTokens(""))
}
