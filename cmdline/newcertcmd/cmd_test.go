package newcertcmd

import (
	"context"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
)

func withMemStore(t *testing.T) *certstore.MemStore {
	t.Helper()
	store := certstore.NewMemStore()
	orig := OpenStore
	OpenStore = func() (certstore.Store, error) { return store, nil }
	t.Cleanup(func() { OpenStore = orig })
	return store
}

func TestCreateDefaultSubject(t *testing.T) {
	store := withMemStore(t)
	cert, err := Create(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Authenticode Test", cert.Cert.Subject.CommonName)
	assert.Equal(t, certstore.CurrentUser, cert.Location)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning}, cert.Cert.ExtKeyUsage)
	assert.NotNil(t, store.Key(cert.Thumbprint), "private key must be stored with the certificate")

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCreateCustomSubject(t *testing.T) {
	withMemStore(t)
	cert, err := Create(context.Background(), "CN=My Test Publisher, O=Example")
	require.NoError(t, err)
	assert.Equal(t, "My Test Publisher", cert.Cert.Subject.CommonName)
}

func TestCreateBlankSubject(t *testing.T) {
	withMemStore(t)
	_, err := Create(context.Background(), "   ")
	var ee *shared.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitBadArgs, ee.Code)
}
