// Package detector fingerprints the software stack behind a scanned page.
package detector

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Technology categories.
const (
	CategoryCMS         = "CMS"
	CategoryJavaScript  = "JavaScript"
	CategoryCSS         = "CSS Framework"
	CategoryServer      = "Server"
	CategoryAnalytics   = "Analytics"
	CategoryPayment     = "Payment"
	CategorySecurity    = "Security"
	CategoryFramework   = "Framework"
	CategoryProgramming = "Programming"
	CategoryMisc        = "Miscellaneous"
)

// fingerprint describes one technology. Body is matched against the page
// sample; Header names a response header whose lowercased value must
// contain Keyword.
type fingerprint struct {
	Name     string
	Category string
	Body     string
	Header   string
	Keyword  string
}

var fingerprints = []fingerprint{
	{Name: "WordPress", Category: CategoryCMS, Body: `wp-content/|wp-includes/|/wp-json/`},
	{Name: "Joomla", Category: CategoryCMS, Body: `(?i)/media/jui/|joomla!`},
	{Name: "Drupal", Category: CategoryCMS, Body: `Drupal\.settings|/sites/(?:all|default)/`, Header: "X-Generator", Keyword: "drupal"},
	{Name: "Magento", Category: CategoryCMS, Body: `Mage\.Cookies|/static/version\d+/frontend/`},
	{Name: "Shopify", Category: CategoryCMS, Body: `cdn\.shopify\.com|Shopify\.theme`},
	{Name: "Wix", Category: CategoryCMS, Body: `static\.wixstatic\.com|wix-bolt`},
	{Name: "Squarespace", Category: CategoryCMS, Body: `static1\.squarespace\.com`},
	{Name: "WooCommerce", Category: CategoryCMS, Body: `(?i)woocommerce`},
	{Name: "jQuery", Category: CategoryJavaScript, Body: `(?i)jquery(?:[.-]\d|\.min)?\.js|jquery\.com`},
	{Name: "React", Category: CategoryJavaScript, Body: `data-reactroot|_reactRootContainer|react(?:-dom)?(?:\.production)?(?:\.min)?\.js`},
	{Name: "Next.js", Category: CategoryFramework, Body: `__NEXT_DATA__|/_next/static/`, Header: "X-Powered-By", Keyword: "next.js"},
	{Name: "Vue.js", Category: CategoryJavaScript, Body: `data-v-[0-9a-f]{8}|vue(?:\.runtime)?(?:\.global)?(?:\.min)?\.js|__vue__`},
	{Name: "Nuxt.js", Category: CategoryFramework, Body: `__NUXT__|/_nuxt/`},
	{Name: "Angular", Category: CategoryJavaScript, Body: `ng-version=|ng-app=|angular(?:\.min)?\.js`},
	{Name: "Bootstrap", Category: CategoryCSS, Body: `(?i)bootstrap(?:\.bundle)?(?:\.min)?\.(?:css|js)`},
	{Name: "Tailwind CSS", Category: CategoryCSS, Body: `tailwindcss|tailwind(?:\.min)?\.css`},
	{Name: "Font Awesome", Category: CategoryCSS, Body: `font-awesome|fontawesome`},
	{Name: "Google Fonts", Category: CategoryMisc, Body: `fonts\.googleapis\.com`},
	{Name: "Google Maps", Category: CategoryMisc, Body: `maps\.google\.com|maps\.googleapis\.com`},
	{Name: "Leaflet", Category: CategoryJavaScript, Body: `leaflet(?:\.min)?\.(?:js|css)`},
	{Name: "Google Analytics", Category: CategoryAnalytics, Body: `google-analytics\.com|gtag\(`},
	{Name: "Google Tag Manager", Category: CategoryAnalytics, Body: `googletagmanager\.com`},
	{Name: "Hotjar", Category: CategoryAnalytics, Body: `static\.hotjar\.com|hjSetting`},
	{Name: "Intercom", Category: CategoryAnalytics, Body: `widget\.intercom\.io|intercomSettings`},
	{Name: "Stripe", Category: CategoryPayment, Body: `js\.stripe\.com`},
	{Name: "PayPal", Category: CategoryPayment, Body: `paypalobjects\.com|paypal\.com/sdk`},
	{Name: "Razorpay", Category: CategoryPayment, Body: `checkout\.razorpay\.com`},
	{Name: "Google reCAPTCHA", Category: CategorySecurity, Body: `google\.com/recaptcha|grecaptcha`},
	{Name: "Cloudflare", Category: CategoryServer, Body: `cdnjs\.cloudflare\.com|/cdn-cgi/`, Header: "Server", Keyword: "cloudflare"},
	{Name: "Apache", Category: CategoryServer, Header: "Server", Keyword: "apache"},
	{Name: "Nginx", Category: CategoryServer, Header: "Server", Keyword: "nginx"},
	{Name: "IIS", Category: CategoryServer, Header: "Server", Keyword: "microsoft-iis"},
	{Name: "LiteSpeed", Category: CategoryServer, Header: "Server", Keyword: "litespeed"},
	{Name: "Vercel", Category: CategoryServer, Header: "Server", Keyword: "vercel"},
	{Name: "PHP", Category: CategoryProgramming, Header: "X-Powered-By", Keyword: "php"},
	{Name: "ASP.NET", Category: CategoryFramework, Body: `__VIEWSTATE|__EVENTTARGET`, Header: "X-Powered-By", Keyword: "asp.net"},
	{Name: "Express.js", Category: CategoryFramework, Header: "X-Powered-By", Keyword: "express"},
}

// Pre-compiled body patterns, indexed like fingerprints
var (
	bodyPatterns     []*regexp.Regexp
	bodyPatternsOnce sync.Once
)

func initBodyPatterns() {
	bodyPatterns = make([]*regexp.Regexp, len(fingerprints))
	for i, fp := range fingerprints {
		if fp.Body != "" {
			bodyPatterns[i] = regexp.MustCompile(fp.Body)
		}
	}
}

// Detect identifies technologies from a page body sample and its response
// headers. The result is sorted and free of duplicates.
func Detect(body string, headers http.Header) []string {
	bodyPatternsOnce.Do(initBodyPatterns)

	seen := make(map[string]bool)
	for i, fp := range fingerprints {
		if seen[fp.Name] {
			continue
		}
		if re := bodyPatterns[i]; re != nil && re.MatchString(body) {
			seen[fp.Name] = true
			continue
		}
		if fp.Header != "" && headers != nil {
			if strings.Contains(strings.ToLower(headers.Get(fp.Header)), fp.Keyword) {
				seen[fp.Name] = true
			}
		}
	}

	technologies := make([]string, 0, len(seen))
	for name := range seen {
		technologies = append(technologies, name)
	}
	sort.Strings(technologies)
	return technologies
}

// CategoryOf returns the category of a detected technology name.
func CategoryOf(name string) string {
	for _, fp := range fingerprints {
		if fp.Name == name {
			return fp.Category
		}
	}
	return CategoryMisc
}

// Categorize groups technologies by category. Only non-empty categories appear.
func Categorize(technologies []string) map[string][]string {
	categories := make(map[string][]string)
	for _, tech := range technologies {
		category := CategoryOf(tech)
		categories[category] = append(categories[category], tech)
	}
	return categories
}
