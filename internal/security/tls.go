package security

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/Sla0ui/siteintel/internal/models"
)

// Certificates with more than this many days left get the top grade.
const comfortableDaysRemaining = 30

// TLS grades.
const (
	TLSGradeExcellent = "A+"
	TLSGradeValid     = "B"
	TLSGradeFailed    = "F"
)

// CertChecker inspects the certificate served for a host.
type CertChecker interface {
	Check(ctx context.Context, host, port string) models.TLSInfo
}

// DialCertChecker performs a verified TLS handshake and reads the leaf certificate.
type DialCertChecker struct {
	Timeout time.Duration
	// RootCAs overrides the system pool when set.
	RootCAs *x509.CertPool
	Now     func() time.Time
}

// Check dials host:port and verifies the chain against host. Any failure is
// reported in the returned TLSInfo rather than as an error.
func (c *DialCertChecker) Check(ctx context.Context, host, port string) models.TLSInfo {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			ServerName: host,
			RootCAs:    c.RootCAs,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return FailedTLS(fmt.Sprintf("tls handshake failed: %v", err))
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return FailedTLS("no peer certificate presented")
	}
	cert := state.PeerCertificates[0]

	info := models.TLSInfo{
		ValidFrom:     cert.NotBefore,
		ValidTo:       cert.NotAfter,
		DaysRemaining: int(cert.NotAfter.Sub(now()).Hours() / 24),
		Issuer:        issuerName(cert),
		Version:       VersionName(state.Version),
	}
	t := now()
	info.Valid = t.After(cert.NotBefore) && t.Before(cert.NotAfter)
	if !info.Valid {
		info.Reason = "certificate outside its validity window"
	}
	info.Grade = GradeTLS(info)
	return info
}

// FailedTLS is the degraded TLS state used when no certificate could be checked.
func FailedTLS(reason string) models.TLSInfo {
	return models.TLSInfo{Valid: false, Grade: TLSGradeFailed, Reason: reason}
}

// GradeTLS returns A+ for a valid certificate with more than 30 days left,
// B for any other valid certificate and F otherwise.
func GradeTLS(info models.TLSInfo) string {
	switch {
	case !info.Valid:
		return TLSGradeFailed
	case info.DaysRemaining > comfortableDaysRemaining:
		return TLSGradeExcellent
	default:
		return TLSGradeValid
	}
}

// VersionName converts a TLS version constant to its display name
func VersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (%d)", version)
	}
}

func issuerName(cert *x509.Certificate) string {
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	return cert.Issuer.String()
}
