// Package style normalizes outreach email content: greetings, organization
// names, banned AI-sounding phrases, emoji and bullet glyphs, and tone.
package style

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

const (
	fallbackGreeting = "Hello there,"
	closing          = "Best,"
	newlineToken     = "\x00NL\x00"
)

var honorifics = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "miss": true, "mx": true,
	"prof": true, "professor": true, "rev": true, "sir": true,
	"sgt": true, "lt": true, "capt": true, "cpt": true, "chief": true,
	"officer": true, "det": true, "detective": true, "sheriff": true, "deputy": true,
	"sergeant": true, "lieutenant": true, "captain": true, "commander": true, "cmdr": true,
}

var akaSuffix = regexp.MustCompile(`(?i)\s*\((?:aka\b|fka\b|a\.k\.a\.|f\.k\.a\.)[^)]*\)`)

// replacements maps banned phrases onto professional wording. Matching is
// case-insensitive on word boundaries; longer phrases are applied first.
var replacements = map[string]string{
	"leverage":         "use",
	"leveraging":       "using",
	"utilize":          "use",
	"utilizing":        "using",
	"synergy":          "fit",
	"synergies":        "overlap",
	"cutting-edge":     "modern",
	"cutting edge":     "modern",
	"state-of-the-art": "current",
	"revolutionary":    "new",
	"game-changer":     "improvement",
	"game changer":     "improvement",
	"game-changing":    "useful",
	"seamless":         "smooth",
	"seamlessly":       "smoothly",
	"robust":           "reliable",
	"streamline":       "simplify",
	"streamlined":      "simpler",
	"empower":          "help",
	"empowering":       "helping",
	"unlock":           "open up",
	"elevate":          "improve",
	"delve into":       "look at",
	"delve":            "look",
	"paradigm shift":   "change",
	"best-in-class":    "proven",
	"world-class":      "proven",
	"holistic":         "complete",
	"innovative":       "practical",
	"transformative":   "meaningful",
}

// bannedRemainder is deleted outright wherever it still appears after
// replacement.
var bannedRemainder = []string{
	"in today's fast-paced world",
	"in today's rapidly evolving landscape",
	"at the end of the day",
	"needless to say",
	"rest assured",
	"look no further",
	"without further ado",
	"it's worth noting that",
	"it is worth noting that",
	"as an ai",
	"i hope this email finds you well",
	"i hope this message finds you well",
}

var toneReplacements = map[string]string{
	"i'm excited to":    "I'm writing to",
	"i am excited to":   "I am writing to",
	"we're excited to":  "we'd like to",
	"we are excited to": "we would like to",
	"thrilled to":       "glad to",
	"super excited":     "glad",
	"amazing":           "strong",
	"incredible":        "notable",
	"awesome":           "good",
	"fantastic":         "good",
	"absolutely":        "",
	"don't miss out":    "let me know if this is useful",
	"act now":           "when convenient",
	"limited time":      "current",
}

var (
	replacementPatterns = compileTable(replacements)
	tonePatterns        = compileTable(toneReplacements)
	remainderPatterns   = compileList(bannedRemainder)

	emojiPattern  = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}\x{1F1E6}-\x{1F1FF}]`)
	bulletLine    = regexp.MustCompile(`(?m)^[ \t]*(?:[•◦▪▫►▶✓✔★☆→➤‣⁃]|[-*+](?:[ \t]))[ \t]*`)
	bulletGlyph   = regexp.MustCompile(`[•◦▪▫►▶✓✔★☆➤‣⁃]`)
	repeatedBangs = regexp.MustCompile(`!{2,}`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeP  = regexp.MustCompile(`[ \t]+([,.;:!?])`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
)

type phrase struct {
	re          *regexp.Regexp
	replacement string
}

func compileTable(table map[string]string) []phrase {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	out := make([]phrase, 0, len(keys))
	for _, k := range keys {
		out = append(out, phrase{re: phrasePattern(k), replacement: table[k]})
	}
	return out
}

func compileList(list []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(list))
	for _, p := range list {
		out = append(out, phrasePattern(p))
	}
	return out
}

func phrasePattern(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b[,]?`)
}

// FormatGreeting returns "Hi {first}," using the first personal name token,
// skipping honorifics, or "Hello there," when no name is present.
func FormatGreeting(name string) string {
	for _, tok := range strings.Fields(name) {
		word := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '-' && r != '\''
		})
		if word == "" {
			continue
		}
		if honorifics[strings.ToLower(word)] {
			continue
		}
		// Single initials such as "J." carry no usable first name.
		if len([]rune(word)) == 1 {
			continue
		}
		return "Hi " + titleCase(word) + ","
	}
	return fallbackGreeting
}

func titleCase(word string) string {
	runes := []rune(strings.ToLower(word))
	capNext := true
	for i, r := range runes {
		if capNext {
			runes[i] = unicode.ToUpper(r)
		}
		capNext = r == '-' || r == '\''
	}
	return string(runes)
}

// CleanOrganizationName strips "(AKA ...)" and "(FKA ...)" suffixes.
func CleanOrganizationName(org string) string {
	org = akaSuffix.ReplaceAllString(org, "")
	return strings.Join(strings.Fields(org), " ")
}

// CleanAILanguage replaces banned phrases with plain wording and deletes any
// banned phrase without a replacement. Line breaks survive the pass.
func CleanAILanguage(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", newlineToken)

	for _, p := range replacementPatterns {
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, p.replacement)
		})
	}
	for _, re := range remainderPatterns {
		text = re.ReplaceAllString(text, "")
	}

	text = strings.ReplaceAll(text, newlineToken, "\n")
	return tidy(text)
}

// RemoveEmojisAndBullets strips emoji and bullet glyphs. Bullet-prefixed lines
// keep their content without the prefix.
func RemoveEmojisAndBullets(text string) string {
	text = emojiPattern.ReplaceAllString(text, "")
	text = bulletLine.ReplaceAllString(text, "")
	text = bulletGlyph.ReplaceAllString(text, "")
	return tidy(text)
}

// ApplyProfessionalTone tones down enthusiasm phrases.
func ApplyProfessionalTone(text string) string {
	for _, p := range tonePatterns {
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, p.replacement)
		})
	}
	text = repeatedBangs.ReplaceAllString(text, ".")
	return tidy(text)
}

// CleanBody runs every cleaning pass over an email body.
func CleanBody(body string) string {
	body = CleanAILanguage(body)
	body = RemoveEmojisAndBullets(body)
	body = ApplyProfessionalTone(body)
	return strings.TrimSpace(body)
}

// CleanSubject cleans a subject line and swaps the raw organization name for
// its cleaned form.
func CleanSubject(subject, organization string) string {
	if organization != "" {
		if cleaned := CleanOrganizationName(organization); cleaned != organization {
			subject = strings.ReplaceAll(subject, organization, cleaned)
		}
	}
	subject = akaSuffix.ReplaceAllString(subject, "")
	subject = strings.ReplaceAll(CleanBody(subject), "\n", " ")
	return strings.Join(strings.Fields(subject), " ")
}

// ComposeEmail assembles greeting, cleaned body, closing and signature.
func ComposeEmail(p model.Prospect, body, signature string) string {
	var b strings.Builder
	b.WriteString(FormatGreeting(p.ContactName))
	b.WriteString("\n\n")
	b.WriteString(stripGreetingAndClosing(CleanBody(body)))
	b.WriteString("\n\n")
	b.WriteString(closing)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(signature))
	return b.String()
}

var (
	leadingGreeting = regexp.MustCompile(`(?i)^(?:hi|hello|dear|hey|good (?:morning|afternoon))\b[^\n]*\n+`)
	trailingSignoff = regexp.MustCompile(`(?is)\n+(?:best|best regards|regards|kind regards|sincerely|thanks|thank you|cheers|warm regards),?\s*(?:\n.*)?$`)
)

// stripGreetingAndClosing drops a greeting or sign-off the model added itself so
// the fixed shape is not doubled.
func stripGreetingAndClosing(body string) string {
	body = leadingGreeting.ReplaceAllString(body, "")
	body = trailingSignoff.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}

func matchCase(match, replacement string) string {
	if replacement == "" || match == "" {
		return replacement
	}
	trail := ""
	if strings.HasSuffix(match, ",") {
		trail = ","
	}
	first := []rune(match)[0]
	if unicode.IsUpper(first) {
		r := []rune(replacement)
		r[0] = unicode.ToUpper(r[0])
		return string(r) + trail
	}
	return replacement + trail
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = spaceRun.ReplaceAllString(line, " ")
		line = spaceBeforeP.ReplaceAllString(line, "$1")
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return blankRun.ReplaceAllString(text, "\n\n")
}
