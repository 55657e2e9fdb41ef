package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sla0ui/siteintel/internal/models"
)

const defaultFavicon = "/favicon.ico"

const (
	logoImageSelector = "header [class*='logo'] img, [class*='logo'] img, [id*='logo'] img"
	brandTextSelector = "header [class*='brand'], header [class*='company'], [class*='navbar-brand'], [class*='company-name']"
)

var titleDelimiters = regexp.MustCompile(`\s*[|\-–—]\s*`)

// accessor yields one candidate value for a metadata field.
type accessor func() string

// firstOf returns the first non-empty value produced by the accessors, in order.
func firstOf(accessors ...accessor) string {
	for _, get := range accessors {
		if v := strings.TrimSpace(get()); v != "" {
			return v
		}
	}
	return ""
}

func constant(v string) accessor {
	return func() string { return v }
}

func selectionText(doc *goquery.Document, selector string) accessor {
	return func() string {
		return collapse(doc.Find(selector).First().Text())
	}
}

func attribute(doc *goquery.Document, selector, attr string) accessor {
	return func() string {
		v, _ := doc.Find(selector).First().Attr(attr)
		return v
	}
}

// meta reads the content of a <meta> identified by either name= or property=.
func meta(doc *goquery.Document, key string) accessor {
	return attribute(doc, "meta[name='"+key+"'], meta[property='"+key+"']", "content")
}

// ExtractCompanyInfo reads identity metadata from the page markup. Relative
// logo and favicon references are resolved against the origin of sourceURL.
func ExtractCompanyInfo(markup, sourceURL string) models.CompanyInfo {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.CompanyInfo{}
	}
	origin := originOf(sourceURL)

	info := models.CompanyInfo{}
	info.Title = firstOf(
		selectionText(doc, "title"),
		meta(doc, "og:title"),
		meta(doc, "twitter:title"),
	)
	info.Name = firstOf(
		meta(doc, "og:site_name"),
		attribute(doc, "[class*='logo'] img, [id*='logo'] img", "alt"),
		selectionText(doc, brandTextSelector),
		func() string { return nameFromTitle(info.Title) },
	)
	info.Description = firstOf(
		meta(doc, "description"),
		meta(doc, "og:description"),
		meta(doc, "twitter:description"),
	)
	info.LogoURL = resolveURL(origin, firstOf(
		attribute(doc, logoImageSelector, "src"),
		meta(doc, "og:image"),
	))
	info.FaviconURL = resolveURL(origin, firstOf(
		attribute(doc, "link[rel='icon']", "href"),
		attribute(doc, "link[rel='shortcut icon']", "href"),
		attribute(doc, "link[rel='apple-touch-icon']", "href"),
		constant(defaultFavicon),
	))
	info.Language = firstOf(attribute(doc, "html", "lang"))
	info.ThemeColor = firstOf(meta(doc, "theme-color"))
	info.Keywords = firstOf(meta(doc, "keywords"))
	info.OGImage = firstOf(meta(doc, "og:image"))

	return info
}

// nameFromTitle guesses a brand name from a page title: the shortest segment
// between pipe or dash delimiters, otherwise the first three words.
// Weak: "Contact | Acme Corporation" yields "Contact".
func nameFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	if titleDelimiters.MatchString(title) {
		best := ""
		for _, segment := range titleDelimiters.Split(title, -1) {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			if best == "" || utf8.RuneCountInString(segment) < utf8.RuneCountInString(best) {
				best = segment
			}
		}
		if best != "" {
			return best
		}
	}

	words := strings.Fields(title)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// resolveURL makes ref absolute relative to origin.
func resolveURL(origin, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "data:"):
		return ref
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case origin == "":
		return ref
	case strings.HasPrefix(ref, "/"):
		return origin + ref
	default:
		return origin + "/" + ref
	}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
