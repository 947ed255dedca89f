// Package dedup rejects leads that were already seen, by fingerprint and
// optionally by fuzzy organization match.
package dedup

import (
	"crypto/md5" //nolint:gosec // set key only, not a security boundary
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// LeadHash fingerprints a lead: MD5 of the lower-cased, trimmed name, email
// and organization joined with "|".
func LeadHash(name, email, org string) string {
	key := strings.Join([]string{clean(name), clean(email), clean(org)}, "|")
	sum := md5.Sum([]byte(key)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// ProspectHash is LeadHash over a prospect's identity fields.
func ProspectHash(p model.Prospect) string {
	return LeadHash(p.ContactName, p.Email, p.Organization)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var orgAbbreviations = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`\blaboratories\b`), "labs"},
	{regexp.MustCompile(`\blaboratory\b`), "lab"},
	{regexp.MustCompile(`\bhospital\b`), "hosp"},
	{regexp.MustCompile(`\bmedical\b`), "med"},
	{regexp.MustCompile(`\bcent(?:er|re)\b`), "ctr"},
	{regexp.MustCompile(`\bdepartment\b`), "dept"},
	{regexp.MustCompile(`\buniversity\b`), "univ"},
	{regexp.MustCompile(`\bincorporated\b`), "inc"},
	{regexp.MustCompile(`\bcorporation\b`), "corp"},
	{regexp.MustCompile(`\bcompany\b`), "co"},
	{regexp.MustCompile(`\bassociation\b`), "assn"},
	{regexp.MustCompile(`\bsaint\b`), "st"},
}

var (
	leadingThe  = regexp.MustCompile(`^the\s+`)
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeOrganization reduces an organization name to the variant stored in
// the pattern set: ASCII-folded, lower-cased, punctuation collapsed, common
// suffixes abbreviated and a leading "the" dropped.
func NormalizeOrganization(org string) string {
	folded, _, err := transform.String(asciiFold(), org)
	if err != nil {
		folded = org
	}

	s := strings.ToLower(folded)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimSpace(nonAlnumRun.ReplaceAllString(s, " "))
	s = leadingThe.ReplaceAllString(s, "")
	for _, a := range orgAbbreviations {
		s = a.re.ReplaceAllString(s, a.with)
	}
	return strings.Join(strings.Fields(s), " ")
}

func asciiFold() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
