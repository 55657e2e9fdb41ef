package models

import (
	"time"
)

// Fetch strategies recorded on a FetchResult.
const (
	StrategyHTTP    = "http"
	StrategyBrowser = "browser"
)

// FetchResult is the page content produced by a single fetch.
type FetchResult struct {
	SourceURL string `json:"source_url"`
	PlainText string `json:"plain_text"`
	RawMarkup string `json:"raw_markup"`
	Strategy  string `json:"strategy"`
}

// ExtractionResult contains everything pulled out of one fetched page
type ExtractionResult struct {
	Phones      []string    `json:"phones"`
	Emails      []string    `json:"emails"`
	Addresses   []string    `json:"addresses"`
	CompanyInfo CompanyInfo `json:"company_info"`
	SocialMedia SocialMedia `json:"social_media"`
}

// NewExtractionResult returns a result with every list initialised to empty.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Phones:    []string{},
		Emails:    []string{},
		Addresses: []string{},
		SocialMedia: SocialMedia{
			WhatsApp: []WhatsAppContact{},
		},
	}
}

// CompanyInfo contains page-level identity metadata
type CompanyInfo struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	FaviconURL  string `json:"favicon_url"`
	Language    string `json:"language"`
	ThemeColor  string `json:"theme_color"`
	Keywords    string `json:"keywords"`
	OGImage     string `json:"og_image"`
}

// SocialMedia holds one profile URL per platform, nil when not found
type SocialMedia struct {
	Facebook  *string           `json:"facebook"`
	Instagram *string           `json:"instagram"`
	Twitter   *string           `json:"twitter"`
	LinkedIn  *string           `json:"linkedin"`
	YouTube   *string           `json:"youtube"`
	Telegram  *string           `json:"telegram"`
	Pinterest *string           `json:"pinterest"`
	TikTok    *string           `json:"tiktok"`
	WhatsApp  []WhatsAppContact `json:"whatsapp"`
}

// Profiles returns the platform URLs that were found, keyed by platform name.
func (s SocialMedia) Profiles() map[string]string {
	out := make(map[string]string)
	for name, value := range map[string]*string{
		"facebook":  s.Facebook,
		"instagram": s.Instagram,
		"twitter":   s.Twitter,
		"linkedin":  s.LinkedIn,
		"youtube":   s.YouTube,
		"telegram":  s.Telegram,
		"pinterest": s.Pinterest,
		"tiktok":    s.TikTok,
	} {
		if value != nil {
			out[name] = *value
		}
	}
	return out
}

// WhatsAppContact is a normalized WhatsApp number and its chat link
type WhatsAppContact struct {
	Number   string `json:"number"`
	ChatLink string `json:"chat_link"`
	Region   string `json:"region,omitempty"`
}

// Summary counts the items found for a single URL
type Summary struct {
	Phones    int `json:"phones"`
	Emails    int `json:"emails"`
	Addresses int `json:"addresses"`
	Social    int `json:"social"`
	WhatsApp  int `json:"whatsapp"`
}

// SingleResult is the outcome of one fetch-then-extract run
type SingleResult struct {
	URL      string            `json:"url"`
	Result   *ExtractionResult `json:"result"`
	Summary  Summary           `json:"summary"`
	Strategy string            `json:"strategy"`
	Duration time.Duration     `json:"duration"`
}

// Severity levels used by the security audit.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// SecurityScanResult contains the security posture of a single URL
type SecurityScanResult struct {
	ID                string                 `json:"id"`
	TargetURL         string                 `json:"target_url"`
	Hostname          string                 `json:"hostname"`
	RegistrableDomain string                 `json:"registrable_domain,omitempty"`
	IPAddresses       []string               `json:"ip_addresses,omitempty"`
	StatusCode        int                    `json:"status_code,omitempty"`
	TLS               TLSInfo                `json:"tls"`
	HeaderAudit       map[string]HeaderCheck `json:"header_audit"`
	Vulnerabilities   []Vulnerability        `json:"vulnerabilities"`
	Technologies      []string               `json:"technologies,omitempty"`
	SecurityScore     int                    `json:"security_score"`
	Grade             string                 `json:"grade"`
	ScannedAt         time.Time              `json:"scanned_at"`
}

// TLSInfo contains certificate validity information
type TLSInfo struct {
	Valid         bool      `json:"valid"`
	ValidFrom     time.Time `json:"valid_from,omitempty"`
	ValidTo       time.Time `json:"valid_to,omitempty"`
	DaysRemaining int       `json:"days_remaining"`
	Grade         string    `json:"grade"`
	Issuer        string    `json:"issuer,omitempty"`
	Version       string    `json:"version,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// HeaderCheck is the audit outcome for one header
type HeaderCheck struct {
	Present  bool   `json:"present"`
	Value    string `json:"value,omitempty"`
	Severity string `json:"severity"`
}

// Vulnerability is a single finding of the security audit
type Vulnerability struct {
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Remediation string `json:"remediation"`
}

// Bulk event types.
const (
	EventStart    = "start"
	EventProgress = "progress"
	EventComplete = "complete"
)

// Bulk item statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BulkEvent is one message of a streamed bulk run. Type selects which
// fields are meaningful.
type BulkEvent struct {
	Type      string            `json:"type"`
	Total     int               `json:"total"`
	Completed int               `json:"completed,omitempty"`
	URL       string            `json:"url,omitempty"`
	Status    string            `json:"status,omitempty"`
	Result    *ExtractionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Percent   int               `json:"percent,omitempty"`
	Succeeded int               `json:"succeeded,omitempty"`
	Failed    int               `json:"failed,omitempty"`
}

// BulkRecord is a finished bulk item, kept by reporters
type BulkRecord struct {
	URL      string            `json:"url"`
	Status   string            `json:"status"`
	Result   *ExtractionResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration"`
}
