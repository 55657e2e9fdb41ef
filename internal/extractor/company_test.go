package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const richCompanyHTML = `<!DOCTYPE html>
<html lang="en-GB">
<head>
  <title>Acme | Home Page</title>
  <meta property="og:title" content="OG Acme">
  <meta name="description" content="We make anvils.">
  <meta property="og:description" content="OG anvils.">
  <meta name="theme-color" content="#ff0000">
  <meta name="keywords" content="anvils, rockets">
  <meta property="og:image" content="/img/og.png">
  <link rel="icon" href="/static/favicon.png">
</head>
<body>
  <header><div class="site-logo"><img src="img/logo.svg" alt="Acme Corp"></div></header>
  <p>Body</p>
</body>
</html>`

const sparseCompanyHTML = `<html>
<head>
  <meta property="og:title" content="Widgets Ltd - Quality Widgets Since 1990">
  <meta name="twitter:description" content="Twitter description">
  <meta property="og:image" content="//cdn.widgets.test/og.png">
</head>
<body><p>Nothing else</p></body>
</html>`

const brandCompanyHTML = `<html>
<head>
  <title>Welcome to the Foo Bar Store</title>
  <link rel="apple-touch-icon" href="touch.png">
</head>
<body><header><a class="navbar-brand" href="/">  Foo
    Bar </a></header></body>
</html>`

func TestExtractCompanyInfoRich(t *testing.T) {
	info := ExtractCompanyInfo(richCompanyHTML, "https://acme.test/about?x=1")

	assert.Equal(t, "Acme | Home Page", info.Title)
	assert.Equal(t, "Acme Corp", info.Name)
	assert.Equal(t, "We make anvils.", info.Description)
	assert.Equal(t, "https://acme.test/img/logo.svg", info.LogoURL)
	assert.Equal(t, "https://acme.test/static/favicon.png", info.FaviconURL)
	assert.Equal(t, "en-GB", info.Language)
	assert.Equal(t, "#ff0000", info.ThemeColor)
	assert.Equal(t, "anvils, rockets", info.Keywords)
	assert.Equal(t, "/img/og.png", info.OGImage)
}

func TestExtractCompanyInfoFallbacks(t *testing.T) {
	info := ExtractCompanyInfo(sparseCompanyHTML, "https://widgets.test/")

	assert.Equal(t, "Widgets Ltd - Quality Widgets Since 1990", info.Title)
	assert.Equal(t, "Widgets Ltd", info.Name)
	assert.Equal(t, "Twitter description", info.Description)
	assert.Equal(t, "https://cdn.widgets.test/og.png", info.LogoURL)
	assert.Equal(t, "https://widgets.test/favicon.ico", info.FaviconURL)
	assert.Empty(t, info.Language)
}

func TestExtractCompanyInfoBrandText(t *testing.T) {
	info := ExtractCompanyInfo(brandCompanyHTML, "http://foobar.test/shop/")

	assert.Equal(t, "Foo Bar", info.Name)
	assert.Equal(t, "http://foobar.test/touch.png", info.FaviconURL)
	assert.Empty(t, info.LogoURL)
}

func TestExtractCompanyInfoSiteNameWins(t *testing.T) {
	html := `<html><head><title>X | Y</title><meta property="og:site_name" content="Site Name Inc"></head>
<body><div id="logo"><img src="/l.png" alt="Logo Alt"></div></body></html>`

	info := ExtractCompanyInfo(html, "https://s.test")
	assert.Equal(t, "Site Name Inc", info.Name)
	assert.Equal(t, "https://s.test/l.png", info.LogoURL)
}

func TestExtractCompanyInfoEmptyMarkup(t *testing.T) {
	info := ExtractCompanyInfo("", "https://empty.test")

	assert.Empty(t, info.Title)
	assert.Empty(t, info.Name)
	assert.Equal(t, "https://empty.test/favicon.ico", info.FaviconURL)
}

func TestNameFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Acme | Home Page", "Acme"},
		// shortest segment wins even when it is not the brand
		{"Contact | Acme Corporation", "Contact"},
		{"Acme — Tools – Shop", "Acme"},
		{"Welcome to the Acme Store", "Welcome to the"},
		{"Acme", "Acme"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nameFromTitle(tt.title), "title %q", tt.title)
	}
}

func TestResolveURL(t *testing.T) {
	origin := "https://acme.test"
	tests := []struct {
		ref  string
		want string
	}{
		{"", ""},
		{"https://cdn.test/a.png", "https://cdn.test/a.png"},
		{"http://cdn.test/a.png", "http://cdn.test/a.png"},
		{"//cdn.test/a.png", "https://cdn.test/a.png"},
		{"/a.png", "https://acme.test/a.png"},
		{"img/a.png", "https://acme.test/img/a.png"},
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveURL(origin, tt.ref), "ref %q", tt.ref)
	}

	assert.Equal(t, "/a.png", resolveURL("", "/a.png"))
}

func TestFirstOf(t *testing.T) {
	calls := 0
	counted := func(v string) accessor {
		return func() string {
			calls++
			return v
		}
	}

	assert.Equal(t, "second", firstOf(counted(""), counted("  second "), counted("third")))
	assert.Equal(t, 2, calls, "accessors after the first hit must not run")
	assert.Equal(t, "", firstOf())
}
