package x509tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubject(t *testing.T) {
	name, err := ParseSubject("CN=Test Driver Publisher, O=Example Corp, C=US")
	require.NoError(t, err)
	assert.Equal(t, "Test Driver Publisher", name.CommonName)
	assert.Equal(t, []string{"Example Corp"}, name.Organization)
	assert.Equal(t, []string{"US"}, name.Country)

	name, err = ParseSubject("Bare Name")
	require.NoError(t, err)
	assert.Equal(t, "Bare Name", name.CommonName)

	_, err = ParseSubject("")
	assert.Error(t, err)
	_, err = ParseSubject("   ")
	assert.Error(t, err)
	_, err = ParseSubject("CN=x, BOGUS=y")
	assert.Error(t, err)
}

func TestMakeSerial(t *testing.T) {
	a := MakeSerial()
	b := MakeSerial()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a, b)
	assert.Positive(t, a.Sign())
}
