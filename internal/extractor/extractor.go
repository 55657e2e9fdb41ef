// Package extractor turns fetched pages into contact and identity data.
//
// Extraction is pure text/markup processing: no network access. Each field is
// extracted independently; a failure in one leaves that field at its empty
// default and does not affect the others.
package extractor

import (
	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
)

// Extractor applies the pattern library and markup queries to a FetchResult.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. A nil logger discards diagnostics.
func New(l *zap.Logger) *Extractor {
	return &Extractor{logger: logger.OrNop(l)}
}

// Extract produces the full result shape for page. A nil page yields an empty result.
func (e *Extractor) Extract(page *models.FetchResult) *models.ExtractionResult {
	result := models.NewExtractionResult()
	if page == nil {
		return result
	}

	e.guard("phones", page.SourceURL, func() {
		result.Phones = ExtractPhones(page.PlainText)
	})
	e.guard("emails", page.SourceURL, func() {
		result.Emails = ExtractEmails(page.PlainText)
	})
	e.guard("addresses", page.SourceURL, func() {
		result.Addresses = ExtractAddresses(page.PlainText)
	})
	e.guard("company_info", page.SourceURL, func() {
		result.CompanyInfo = ExtractCompanyInfo(page.RawMarkup, page.SourceURL)
	})
	e.guard("social_media", page.SourceURL, func() {
		result.SocialMedia = ExtractSocial(page.PlainText, page.RawMarkup)
	})

	e.logger.Debug("extraction finished",
		zap.String("url", page.SourceURL),
		zap.Int("phones", len(result.Phones)),
		zap.Int("emails", len(result.Emails)),
		zap.Int("addresses", len(result.Addresses)),
		zap.Int("whatsapp", len(result.SocialMedia.WhatsApp)),
	)
	return result
}

// guard runs fn and converts a panic into a logged warning.
func (e *Extractor) guard(field, url string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("field extraction failed",
				zap.String("field", field),
				zap.String("url", url),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}

// Summarize counts the items in result.
func Summarize(result *models.ExtractionResult) models.Summary {
	if result == nil {
		return models.Summary{}
	}
	return models.Summary{
		Phones:    len(result.Phones),
		Emails:    len(result.Emails),
		Addresses: len(result.Addresses),
		Social:    len(result.SocialMedia.Profiles()),
		WhatsApp:  len(result.SocialMedia.WhatsApp),
	}
}
