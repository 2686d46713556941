package listcertscmd

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
	"github.com/patrickwbarnes/authenticode-scripts/lib/x509tools"
)

func testCert(t *testing.T, subject string) *x509.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509tools.MakeCodeSigningCert(rand.Reader, key, subject)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestList(t *testing.T) {
	store := certstore.NewMemStore()
	a := store.Add(testCert(t, "CN=First Cert"), certstore.CurrentUser, "first")
	b := store.Add(testCert(t, "CN=Second Cert"), certstore.LocalMachine, "")

	var out strings.Builder
	List(&out, []*certstore.Certificate{a, b})
	text := out.String()

	assert.Contains(t, text, "CN=First Cert")
	assert.Contains(t, text, "CN=Second Cert")
	assert.Contains(t, text, "Thumbprint: "+a.Thumbprint)
	assert.Contains(t, text, "Store: CurrentUser")
	assert.Contains(t, text, "Store: LocalMachine")
	assert.Contains(t, text, "Friendly name: first")
	assert.Contains(t, text, "2 certificate(s) found")
	assert.Equal(t, 2, strings.Count(text, strings.Repeat("-", 40)))
}

func TestListEmpty(t *testing.T) {
	var out strings.Builder
	List(&out, nil)
	assert.Equal(t, "0 certificate(s) found\n", out.String())
}

func TestCommandListsViaStoreHook(t *testing.T) {
	store := certstore.NewMemStore()
	store.Add(testCert(t, "CN=Hooked Cert"), certstore.CurrentUser, "")
	orig := OpenStore
	OpenStore = func() (certstore.Store, error) { return store, nil }
	t.Cleanup(func() { OpenStore = orig })

	var out bytes.Buffer
	Command.SetOut(&out)
	Command.SetArgs([]string{})
	t.Cleanup(func() { Command.SetOut(nil) })
	require.NoError(t, Command.Execute())

	assert.Contains(t, out.String(), "CN=Hooked Cert")
	assert.Contains(t, out.String(), "1 certificate(s) found")
}
