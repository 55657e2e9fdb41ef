package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Sla0ui/siteintel/internal/patterns"
)

const (
	minPhoneLength   = 10
	minAddressLength = 21
	excludedDomain   = "example.com"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	obfuscatedAt  = regexp.MustCompile(`(?i)\s*[\[({]\s*at\s*[\])}]\s*`)
	spacedAt      = regexp.MustCompile(`\s*@\s*`)
	addressLabel  = regexp.MustCompile(`(?i)^(?:address|location|locality|office)\b\s*:?\s*`)
	phoneJoiners  = strings.NewReplacer("-", " ", ".", " ")
)

// orderedSet keeps the first occurrence of each value in insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet) values() []string {
	return s.items
}

// matchAll runs every matcher of a category over text and concatenates the matches.
func matchAll(category, text string) []string {
	var matches []string
	for _, re := range patterns.Lookup(category) {
		matches = append(matches, re.FindAllString(text, -1)...)
	}
	return matches
}

func collect(matches []string, normalize func(string) string) []string {
	set := newOrderedSet()
	for _, m := range matches {
		if v := normalize(m); v != "" {
			set.add(v)
		}
	}
	return set.values()
}

// ExtractPhones returns the normalized, de-duplicated phone numbers in text.
func ExtractPhones(text string) []string {
	return collect(matchAll(patterns.Phone, text), normalizePhone)
}

func normalizePhone(raw string) string {
	p := strings.TrimSpace(raw)
	p = phoneJoiners.Replace(p)
	p = strings.TrimSpace(whitespaceRun.ReplaceAllString(p, " "))
	if utf8.RuneCountInString(p) < minPhoneLength {
		return ""
	}
	return p
}

// ExtractEmails returns the normalized, de-duplicated email addresses in text,
// undoing "(at)" style obfuscation.
func ExtractEmails(text string) []string {
	return collect(matchAll(patterns.Email, text), normalizeEmail)
}

func normalizeEmail(raw string) string {
	e := strings.ToLower(strings.TrimSpace(raw))
	e = obfuscatedAt.ReplaceAllString(e, "@")
	e = spacedAt.ReplaceAllString(e, "@")

	// "name domain.com": the separator was lost, the first gap is where it belongs
	if !strings.Contains(e, "@") {
		if loc := whitespaceRun.FindStringIndex(e); loc != nil {
			e = e[:loc[0]] + "@" + e[loc[1]:]
		}
	}

	if strings.Count(e, "@") != 1 || strings.ContainsAny(e, " \t\r\n") {
		return ""
	}
	if strings.Contains(e, excludedDomain) {
		return ""
	}
	return e
}

// ExtractAddresses returns the normalized, de-duplicated postal addresses in text.
func ExtractAddresses(text string) []string {
	return collect(matchAll(patterns.Address, text), normalizeAddress)
}

func normalizeAddress(raw string) string {
	a := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	for {
		stripped := addressLabel.ReplaceAllString(a, "")
		if stripped == a {
			break
		}
		a = stripped
	}
	a = strings.TrimSpace(a)
	if utf8.RuneCountInString(a) < minAddressLength {
		return ""
	}
	return a
}
