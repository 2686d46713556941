package certstore

import (
	"context"
	"crypto"
	"crypto/x509"
)

// MemStore is an in-memory Store. The command layer is written against the
// Store interface so tests can run anywhere; MemStore is the implementation
// they inject.
type MemStore struct {
	certs []*Certificate
	keys  map[string]crypto.Signer
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{keys: make(map[string]crypto.Signer)}
}

// Add places an existing certificate into the store under the given scope.
func (s *MemStore) Add(cert *x509.Certificate, location Location, friendlyName string) *Certificate {
	record := &Certificate{
		Cert:         cert,
		Thumbprint:   Thumbprint(cert.Raw),
		Location:     location,
		FriendlyName: friendlyName,
	}
	s.certs = append(s.certs, record)
	return record
}

func (s *MemStore) List(ctx context.Context) ([]*Certificate, error) {
	listed := make([]*Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		if IsCodeSigning(cert.Cert) {
			listed = append(listed, cert)
		}
	}
	return listed, nil
}

func (s *MemStore) ImportSelfSigned(ctx context.Context, key crypto.Signer, certDER []byte) (*Certificate, error) {
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, err
	}
	record := s.Add(cert, CurrentUser, "")
	s.keys[record.Thumbprint] = key
	return record, nil
}

// Key returns the private key stored for a thumbprint, if any.
func (s *MemStore) Key(thumbprint string) crypto.Signer {
	return s.keys[NormalizeThumbprint(thumbprint)]
}

func (s *MemStore) Close() error { return nil }
