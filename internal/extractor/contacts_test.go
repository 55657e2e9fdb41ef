package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const contactPageText = "Contact us at 99999-88888 or email admin@site.in. " +
	"Address: 123 Tech Lane, Suite 400, San Francisco, CA 94105"

func assertUnique(t *testing.T, values []string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, v := range values {
		assert.False(t, seen[v], "duplicate entry %q", v)
		seen[v] = true
	}
}

func TestExtractContactScenario(t *testing.T) {
	phones := ExtractPhones(contactPageText)
	emails := ExtractEmails(contactPageText)
	addresses := ExtractAddresses(contactPageText)

	assert.Contains(t, phones, "99999 88888")
	assert.Contains(t, emails, "admin@site.in")

	found := false
	for _, a := range addresses {
		if strings.Contains(a, "123 Tech Lane") {
			found = true
		}
		assert.False(t, strings.HasPrefix(strings.ToLower(a), "address"), "label not stripped: %q", a)
	}
	assert.True(t, found, "expected an address containing 123 Tech Lane, got %v", addresses)
}

func TestExtractPhones(t *testing.T) {
	text := "Call +1 415.555.0100, (415) 555-0100 or 98765 43210. Again: 98765 43210. Ext 12-34."
	phones := ExtractPhones(text)

	assert.Contains(t, phones, "+1 415 555 0100")
	assert.Contains(t, phones, "(415) 555 0100")
	assert.Contains(t, phones, "98765 43210")
	assertUnique(t, phones)
	for _, p := range phones {
		assert.GreaterOrEqual(t, len(p), minPhoneLength)
		assert.NotContains(t, p, "-")
		assert.NotContains(t, p, ".")
	}
}

func TestExtractPhonesEmpty(t *testing.T) {
	assert.Empty(t, ExtractPhones("no digits at all"))
	assert.NotNil(t, ExtractPhones(""))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  99999-88888 ", "99999 88888"},
		{"415.555.0100", "415 555 0100"},
		{"+44  20 - 7946 0958", "+44 20 7946 0958"},
		{"555-0100", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePhone(tt.raw), "input %q", tt.raw)
	}
}

func TestExtractEmails(t *testing.T) {
	text := "Write Admin@Site.in or admin@site.in, sales [AT] acme.io, ops(at)acme.io, " +
		"support { at } acme.io and never noreply@example.com"
	emails := ExtractEmails(text)

	assert.Equal(t, []string{"admin@site.in", "sales@acme.io", "ops@acme.io", "support@acme.io"}, emails)
	for _, e := range emails {
		assert.Equal(t, 1, strings.Count(e, "@"))
		assert.NotContains(t, e, "example.com")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{" Info@Acme.IO ", "info@acme.io"},
		{"info (at) acme.io", "info@acme.io"},
		{"info [at] acme.io", "info@acme.io"},
		{"info @ acme.io", "info@acme.io"},
		{"info acme.io", "info@acme.io"},
		{"user@example.com", ""},
		{"a@b@c.io", ""},
		{"nodomain", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeEmail(tt.raw), "input %q", tt.raw)
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Address:   123 Tech Lane,   Suite 400, San Francisco, CA 94105", "123 Tech Lane, Suite 400, San Francisco, CA 94105"},
		{"LOCATION 77 Harbor Road, Portland, OR 97201", "77 Harbor Road, Portland, OR 97201"},
		{"Locality: Plot No. 12, Phase 2, Mohali", "Plot No. 12, Phase 2, Mohali"},
		{"Office: 12 Main St", ""},
		{"12 Main Street, Town", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAddress(tt.raw), "input %q", tt.raw)
	}
}

func TestExtractAddressesProperties(t *testing.T) {
	text := "Office: Plot No. 12, Industrial Area, Phase 2, Chandigarh 160002. " +
		"HQ at 500 Market Street, San Francisco, CA 94105 and again 500 Market Street, San Francisco, CA 94105."
	addresses := ExtractAddresses(text)

	assert.NotEmpty(t, addresses)
	assertUnique(t, addresses)
	for _, a := range addresses {
		assert.Greater(t, len(a), 20)
		lower := strings.ToLower(a)
		for _, label := range []string{"address:", "location:", "locality:", "office:"} {
			assert.False(t, strings.HasPrefix(lower, label), "address %q starts with %s", a, label)
		}
	}
}
