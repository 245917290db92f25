package general

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
)

// expiryWarning is how close to NotAfter a certificate starts being reported.
const expiryWarning = 30 * 24 * time.Hour

type tlsIssue struct {
	severity types.Severity
	detail   string
	fix      string
}

type tlsModule struct {
	cfg  config.ModuleConfig
	host string
	addr string
}

func newTLS(cfg config.ModuleConfig) scan.Module {
	return &tlsModule{cfg: cfg}
}

// Check applies to https URLs.
func (m *tlsModule) Check(ctx context.Context) (bool, error) {
	u, err := url.Parse(m.cfg.GetTarget())
	if err != nil {
		return false, err
	}
	if u.Scheme != "https" {
		return false, nil
	}
	port := u.Port()
	if port == "" {
		port = "443"
	}
	m.host = u.Hostname()
	m.addr = net.JoinHostPort(m.host, port)
	return true, nil
}

func (m *tlsModule) Run(ctx context.Context) (*types.Finding, error) {
	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    &tls.Config{InsecureSkipVerify: true, ServerName: m.host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return nil, fmt.Errorf("TLS handshake with %s: %w", m.addr, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	issues := tlsIssues(state, m.host, time.Now())
	if len(issues) == 0 {
		return nil, nil
	}

	severity := types.SeverityInfo
	details := make([]string, len(issues))
	fixes := make([]string, len(issues))
	for i, issue := range issues {
		severity = types.MaxSeverity(severity, issue.severity)
		details[i] = issue.detail
		fixes[i] = issue.fix
	}

	return &types.Finding{
		Title:       fmt.Sprintf("TLS configuration issues (%d)", len(issues)),
		Description: fmt.Sprintf("The TLS endpoint %s has weaknesses that undermine transport security.", m.addr),
		Severity:    severity,
		Evidence:    strings.Join(details, "; "),
		Remediation: strings.Join(fixes, " "),
		Metadata: map[string]string{
			"address":      m.addr,
			"tls_version":  tlsVersionName(state.Version),
			"cipher_suite": tls.CipherSuiteName(state.CipherSuite),
		},
	}, nil
}

// tlsIssues inspects a completed handshake.
func tlsIssues(state tls.ConnectionState, host string, now time.Time) []tlsIssue {
	var issues []tlsIssue

	if state.Version <= tls.VersionTLS11 {
		issues = append(issues, tlsIssue{
			severity: types.SeverityHigh,
			detail:   "deprecated protocol " + tlsVersionName(state.Version),
			fix:      "Disable TLS 1.0 and 1.1.",
		})
	}
	if isWeakCipher(state.CipherSuite) {
		issues = append(issues, tlsIssue{
			severity: types.SeverityMedium,
			detail:   "weak cipher suite " + tls.CipherSuiteName(state.CipherSuite),
			fix:      "Prefer AES-GCM or ChaCha20-Poly1305 suites.",
		})
	}
	if len(state.PeerCertificates) == 0 {
		return issues
	}

	cert := state.PeerCertificates[0]
	switch {
	case now.After(cert.NotAfter):
		issues = append(issues, tlsIssue{
			severity: types.SeverityHigh,
			detail:   "certificate expired " + cert.NotAfter.Format(time.RFC3339),
			fix:      "Renew the certificate.",
		})
	case cert.NotAfter.Sub(now) <= expiryWarning:
		days := int(cert.NotAfter.Sub(now).Hours() / 24)
		issues = append(issues, tlsIssue{
			severity: types.SeverityMedium,
			detail:   "certificate expires in " + strconv.Itoa(days) + " days",
			fix:      "Renew the certificate before it expires.",
		})
	}
	if err := cert.VerifyHostname(host); err != nil {
		issues = append(issues, tlsIssue{
			severity: types.SeverityHigh,
			detail:   fmt.Sprintf("certificate does not cover %s (CN %q, SANs %v)", host, cert.Subject.CommonName, cert.DNSNames),
			fix:      "Use a certificate that covers the hostname.",
		})
	}
	if isSelfSigned(cert, state.PeerCertificates) {
		issues = append(issues, tlsIssue{
			severity: types.SeverityMedium,
			detail:   "self-signed certificate",
			fix:      "Use a certificate issued by a trusted CA.",
		})
	}
	return issues
}

// isSelfSigned reports a lone certificate issued by its own subject.
func isSelfSigned(cert *x509.Certificate, chain []*x509.Certificate) bool {
	return len(chain) == 1 && bytes.Equal(cert.RawIssuer, cert.RawSubject)
}

func tlsVersionName(version uint16) string {
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
		return fmt.Sprintf("unknown (0x%04x)", version)
	}
}

func isWeakCipher(id uint16) bool {
	for _, suite := range tls.InsecureCipherSuites() {
		if suite.ID == id {
			return true
		}
	}
	return false
}
