// Package patterns holds the compiled text-matching rules used by the extractor.
//
// The table is read-only once built. Lookup hands out copies of the per-name
// slices, so callers cannot reorder or replace the shared matchers.
package patterns

import (
	"regexp"
	"sync"
)

// Category names.
const (
	Phone    = "phone"
	Email    = "email"
	Address  = "address"
	WhatsApp = "whatsapp"
)

// Platform names.
const (
	Facebook  = "facebook"
	Instagram = "instagram"
	Twitter   = "twitter"
	LinkedIn  = "linkedin"
	YouTube   = "youtube"
	Telegram  = "telegram"
	Pinterest = "pinterest"
	TikTok    = "tiktok"
)

var platforms = []string{Facebook, Instagram, Twitter, LinkedIn, YouTube, Telegram, Pinterest, TikTok}

// Pre-compiled regex patterns, keyed by category or platform
var (
	table     map[string][]*regexp.Regexp
	tableOnce sync.Once
)

// handle matches a bare @mention that starts a line or follows whitespace or "(".
const handle = `(?:^|[\s(])@[A-Za-z0-9._]{3,30}\b`

func initTable() {
	sources := map[string][]string{
		Phone: {
			// Indian mobile: 98765 43210, +91-98765-43210
			`(?:\+91[\-\s]?)?\b[6-9]\d{4}[\-\s]?\d{5}\b`,
			// North American: (415) 555-0100, 415.555.0100, +1 415 555 0100
			`(?:\+1[\-.\s]?)?\(?\b\d{3}\)?[\-.\s]?\d{3}[\-.\s]\d{4}\b`,
			// International with country code
			`\+\d{1,3}[\-.\s]?\(?\d{1,4}\)?[\-.\s]?\d{3,4}[\-.\s]?\d{3,4}\b`,
			// Trunk-prefixed landline: 0172-2345678
			`\b0\d{2,4}[\-\s]\d{6,8}\b`,
			// Generic grouped digits
			`\b\d{3,5}[\-.\s]\d{3,4}[\-.\s]\d{3,5}\b`,
		},
		Email: {
			`(?i)[a-z0-9._%+\-]+(?:\s*@\s*|\s*[\[({]\s*at\s*[\])}]\s*)[a-z0-9.\-]+\.[a-z]{2,}`,
		},
		Address: {
			// US street suffix, optional unit, city, state and ZIP
			`(?i)\b\d{1,5}\s+(?:[A-Za-z0-9.'\-]+\s+){0,4}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl|Parkway|Pkwy|Highway|Hwy|Square|Sq|Terrace)\b\.?(?:,?\s*(?:Suite|Ste|Unit|Apt|Floor|Fl)\.?\s*#?\w+)?(?:,\s*[A-Za-z]+(?:\s+[A-Za-z]+){0,3})?(?:,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?)?`,
			// Plot / Phase / Sector style
			`(?i)(?:(?:Address|Location|Locality|Office)\s*:?\s*)?\b(?:Plot|Shop|House|Flat|Unit|SCO|Office)\s*(?:No\.?\s*)?#?\s*[\w\-/]+(?:,\s*[\w .\-/]+){0,3},?\s*(?:Phase|Sector|Block)\s*[\w\-]+(?:,\s*[A-Za-z][A-Za-z .\-]*){0,3}(?:[\s,\-]*\d{6})?`,
			// Generic city, state, postal code
			`(?i)(?:(?:Address|Location|Locality|Office)\s*:?\s*)?[A-Za-z0-9][A-Za-z0-9\s.,#'\-]{10,120}?,\s*[A-Za-z][A-Za-z ]{1,40},?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`,
		},
		Facebook: {
			`https?://(?:www\.|m\.|web\.)?(?:facebook|fb)\.com/[A-Za-z0-9._\-/?=&%]+`,
		},
		Instagram: {
			`https?://(?:www\.)?instagram\.com/[A-Za-z0-9._\-/]+`,
			handle,
		},
		Twitter: {
			`https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/[A-Za-z0-9_/?=&%]+`,
		},
		LinkedIn: {
			`https?://(?:[a-z]{2,3}\.)?linkedin\.com/(?:company|in|school|showcase)/[A-Za-z0-9_\-%.]+/?`,
		},
		YouTube: {
			`https?://(?:www\.|m\.)?youtube\.com/(?:@[A-Za-z0-9_.\-]+|c/[A-Za-z0-9_\-]+|channel/[A-Za-z0-9_\-]+|user/[A-Za-z0-9_\-]+)`,
			`https?://youtu\.be/[A-Za-z0-9_\-]+`,
		},
		Telegram: {
			`https?://(?:www\.)?(?:t\.me|telegram\.me)/[A-Za-z0-9_+]+`,
			handle,
		},
		Pinterest: {
			`https?://(?:[a-z]{2}\.|www\.)?pinterest\.(?:com|[a-z]{2})/[A-Za-z0-9_\-]+`,
		},
		TikTok: {
			`https?://(?:www\.)?tiktok\.com/@[A-Za-z0-9_.]+`,
		},
		WhatsApp: {
			`(?i)(?:https?://)?wa\.me/(\+?\d{10,15})`,
			`(?i)(?:https?://)?api\.whatsapp\.com/send/?\?phone=(\+?\d{10,15})`,
			`(?i)whats\s?app(?:\s*(?:us|no\.?|number|chat|at))?\s*[:\-]?\s*(\+?\d[\d\s\-()]{8,18}\d)`,
			`(?i)(?:https?://)?wa\.me/message/([A-Za-z0-9]+)`,
		},
	}

	table = make(map[string][]*regexp.Regexp, len(sources))
	for name, exprs := range sources {
		compiled := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			compiled = append(compiled, regexp.MustCompile(expr))
		}
		table[name] = compiled
	}
}

// Lookup returns the matchers registered under name, in priority order.
// Unknown names yield nil.
func Lookup(name string) []*regexp.Regexp {
	tableOnce.Do(initTable)

	src, ok := table[name]
	if !ok {
		return nil
	}
	out := make([]*regexp.Regexp, len(src))
	copy(out, src)
	return out
}

// Platforms returns the social platforms in extraction order.
func Platforms() []string {
	out := make([]string, len(platforms))
	copy(out, platforms)
	return out
}
