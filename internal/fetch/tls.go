package fetch

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// probeTLS inspects the certificate presented by host. A verified handshake
// yields a valid certificate record; a handshake that fails verification is
// retried without verification so issuer and expiry can still be reported.
// Any other failure returns nil, which scorers treat as no data.
func (f *PageFetcher) probeTLS(host string) *domain.TLSInfo {
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "443")
	}

	dialer := &net.Dialer{Timeout: f.cfg.TLSProbeTimeout}

	conn, err := tls.DialWithDialer(dialer, "tcp", host, &tls.Config{MinVersion: tls.VersionTLS12})
	if err == nil {
		defer conn.Close()
		return tlsInfoFromState(conn.ConnectionState(), true)
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	if !errors.As(err, &certErr) && !errors.As(err, &unknownAuth) &&
		!errors.As(err, &hostErr) && !errors.As(err, &invalidErr) {
		f.log.Debug("tls probe failed", "host", host, "error", err)
		return nil
	}

	// Verification failed; gather the details without verifying.
	insecure, dialErr := tls.DialWithDialer(dialer, "tcp", host, &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // inspection of an already-failed cert
		MinVersion:         tls.VersionTLS12,
	})
	if dialErr != nil {
		f.log.Debug("tls probe failed", "host", host, "error", dialErr)
		return nil
	}
	defer insecure.Close()

	return tlsInfoFromState(insecure.ConnectionState(), false)
}

// tlsInfoFromState extracts the reportable fields from a handshake.
func tlsInfoFromState(state tls.ConnectionState, valid bool) *domain.TLSInfo {
	info := &domain.TLSInfo{
		Valid:    valid,
		Protocol: tls.VersionName(state.Version),
	}

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		info.ExpiresAt = cert.NotAfter
		if len(cert.Issuer.Organization) > 0 {
			info.Issuer = cert.Issuer.Organization[0]
		} else {
			info.Issuer = cert.Issuer.CommonName
		}
	}

	return info
}
