package certstore

import (
	"context"
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrNotSupported is returned when the platform has no system
	// certificate store.
	ErrNotSupported = errors.New("system certificate store requires Windows")
	// ErrNotFound is returned when no certificate matches a lookup.
	ErrNotFound = errors.New("certificate not found")
)

// Location identifies which scope of the system store a certificate came
// from.
type Location int

const (
	CurrentUser Location = iota
	LocalMachine
)

func (l Location) String() string {
	switch l {
	case CurrentUser:
		return "CurrentUser"
	case LocalMachine:
		return "LocalMachine"
	default:
		return "Unknown"
	}
}

// Certificate is a code-signing certificate found in a store, together with
// the store-level attributes that do not live inside the X.509 blob.
type Certificate struct {
	Cert         *x509.Certificate
	Thumbprint   string
	Location     Location
	FriendlyName string
}

// Store enumerates code-signing certificates and installs new ones. The
// system implementation talks to the platform store; MemStore backs tests
// and dry runs.
type Store interface {
	// List returns the code-signing certificates from every scope the
	// caller can read.
	List(ctx context.Context) ([]*Certificate, error)
	// ImportSelfSigned installs a freshly generated key pair and
	// certificate into the current user's personal store.
	ImportSelfSigned(ctx context.Context, key crypto.Signer, certDER []byte) (*Certificate, error)
	Close() error
}

// Thumbprint returns the uppercase hex SHA-1 digest of a DER certificate,
// matching how the platform store identifies certificates.
func Thumbprint(der []byte) string {
	digest := sha1.Sum(der)
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

// NormalizeThumbprint strips spaces and uppercases a user-supplied
// thumbprint so it can be compared against store values.
func NormalizeThumbprint(thumbprint string) string {
	return strings.ToUpper(strings.Join(strings.Fields(thumbprint), ""))
}

// FilterByThumbprint returns the certificates whose thumbprint matches.
func FilterByThumbprint(certs []*Certificate, thumbprint string) []*Certificate {
	want := NormalizeThumbprint(thumbprint)
	var matched []*Certificate
	for _, cert := range certs {
		if cert.Thumbprint == want {
			matched = append(matched, cert)
		}
	}
	return matched
}

// FindIssuer locates the certificate whose subject is the issuer of leaf.
// The leaf itself is never returned.
func FindIssuer(certs []*Certificate, leaf *Certificate) (*Certificate, error) {
	issuer := leaf.Cert.Issuer.String()
	for _, cert := range certs {
		if cert.Thumbprint == leaf.Thumbprint {
			continue
		}
		if cert.Cert.Subject.String() == issuer {
			return cert, nil
		}
	}
	return nil, ErrNotFound
}

// IsCodeSigning reports whether the certificate can be used for code
// signing: either it carries the codeSigning extended usage or it carries
// no usage restriction at all.
func IsCodeSigning(cert *x509.Certificate) bool {
	if len(cert.ExtKeyUsage) == 0 && len(cert.UnknownExtKeyUsage) == 0 {
		return true
	}
	for _, usage := range cert.ExtKeyUsage {
		if usage == x509.ExtKeyUsageCodeSigning || usage == x509.ExtKeyUsageAny {
			return true
		}
	}
	return false
}
