package extractor

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/Sla0ui/siteintel/internal/models"
	"github.com/Sla0ui/siteintel/internal/patterns"
)

const (
	minWhatsAppDigits = 10
	chatLinkBase      = "https://wa.me/"
)

// falsePositiveMarkers flag share buttons and auth flows rather than profiles.
var falsePositiveMarkers = []string{"share", "sharer", "intent", "dialog", "login", "signup", "oauth", "auth"}

// handleProfileBase maps platforms that accept bare @handles to their profile URL prefix.
var handleProfileBase = map[string]string{
	patterns.Instagram: "https://instagram.com/",
	patterns.Telegram:  "https://t.me/",
}

// CSS at-rules look like handles inside inline <style> blocks.
var cssAtRules = map[string]bool{
	"media": true, "import": true, "font": true, "keyframes": true, "charset": true,
	"supports": true, "page": true, "layer": true, "container": true, "namespace": true,
}

var nonDialable = regexp.MustCompile(`[^\d+]`)

// ExtractSocial finds one profile per platform and every WhatsApp contact.
// Visible text is searched before markup, so links a visitor can read win
// over links buried in attributes.
func ExtractSocial(text, markup string) models.SocialMedia {
	haystack := text + "\n" + markup

	social := models.SocialMedia{WhatsApp: ExtractWhatsApp(haystack)}
	for _, platform := range patterns.Platforms() {
		link := firstProfile(platform, haystack)
		if link == "" {
			continue
		}
		setProfile(&social, platform, link)
	}
	return social
}

// firstProfile walks the platform's patterns in priority order and returns the
// first match that is not a share/auth link.
func firstProfile(platform, haystack string) string {
	for _, re := range patterns.Lookup(platform) {
		for _, m := range re.FindAllString(haystack, -1) {
			candidate := strings.TrimSpace(m)
			candidate = strings.TrimPrefix(candidate, "(")
			candidate = strings.TrimSuffix(candidate, "/")

			if strings.HasPrefix(candidate, "@") {
				candidate = profileFromHandle(platform, candidate)
				if candidate == "" {
					continue
				}
			}
			if isFalsePositive(candidate) {
				continue
			}
			return candidate
		}
	}
	return ""
}

func profileFromHandle(platform, handle string) string {
	base, ok := handleProfileBase[platform]
	if !ok {
		return ""
	}
	name := strings.TrimSuffix(strings.TrimPrefix(handle, "@"), ".")
	if name == "" || cssAtRules[strings.ToLower(name)] {
		return ""
	}
	return base + name
}

func isFalsePositive(link string) bool {
	lower := strings.ToLower(link)
	for _, marker := range falsePositiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func setProfile(social *models.SocialMedia, platform, link string) {
	v := link
	switch platform {
	case patterns.Facebook:
		social.Facebook = &v
	case patterns.Instagram:
		social.Instagram = &v
	case patterns.Twitter:
		social.Twitter = &v
	case patterns.LinkedIn:
		social.LinkedIn = &v
	case patterns.YouTube:
		social.YouTube = &v
	case patterns.Telegram:
		social.Telegram = &v
	case patterns.Pinterest:
		social.Pinterest = &v
	case patterns.TikTok:
		social.TikTok = &v
	}
}

// ExtractWhatsApp returns every distinct WhatsApp number referenced in haystack,
// keyed by its digits so the same number found via different patterns collapses.
func ExtractWhatsApp(haystack string) []models.WhatsAppContact {
	contacts := []models.WhatsAppContact{}
	seen := make(map[string]struct{})

	for _, re := range patterns.Lookup(patterns.WhatsApp) {
		for _, m := range re.FindAllStringSubmatch(haystack, -1) {
			raw := m[0]
			if len(m) > 1 && m[1] != "" {
				raw = m[1]
			}

			digits := strings.ReplaceAll(nonDialable.ReplaceAllString(raw, ""), "+", "")
			if len(digits) < minWhatsAppDigits {
				continue
			}
			if _, dup := seen[digits]; dup {
				continue
			}
			seen[digits] = struct{}{}

			contacts = append(contacts, models.WhatsAppContact{
				Number:   "+" + digits,
				ChatLink: chatLinkBase + digits,
				Region:   regionOf(digits),
			})
		}
	}
	return contacts
}

func regionOf(digits string) string {
	num, err := phonenumbers.Parse("+"+digits, "")
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(num)
}
