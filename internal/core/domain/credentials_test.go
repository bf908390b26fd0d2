package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialBundle_LoginPassword(t *testing.T) {
	bundle, err := NewCredentialBundle("u", "secret", nil)
	require.NoError(t, err)

	assert.Equal(t, "u", bundle.Login())
	assert.Equal(t, "secret", bundle.Password())
	assert.Equal(t, []string{"login", "password"}, bundle.Names())
}

func TestNewCredentialBundle_CustomFields(t *testing.T) {
	bundle, err := NewCredentialBundle("u", "p", []CustomField{
		{Name: "website", Value: "par"},
		{Name: " code ", Value: "1234"},
	})
	require.NoError(t, err)

	v, ok := bundle.Field("website")
	assert.True(t, ok)
	assert.Equal(t, "par", v)

	v, ok = bundle.Field("code")
	assert.True(t, ok)
	assert.Equal(t, "1234", v)

	_, ok = bundle.Field("missing")
	assert.False(t, ok)
}

func TestNewCredentialBundle_UnnamedField(t *testing.T) {
	_, err := NewCredentialBundle("u", "p", []CustomField{{Name: "", Value: "x"}})

	ce, ok := IsConfigError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Detail, "#1")
}

func TestNewCredentialBundle_ReservedField(t *testing.T) {
	_, err := NewCredentialBundle("u", "p", []CustomField{{Name: "password", Value: "x"}})

	ce, ok := IsConfigError(err)
	require.True(t, ok)
	assert.Equal(t, "password", ce.Field)
}

func TestCredentialBundle_MapIsCopy(t *testing.T) {
	bundle, err := NewCredentialBundle("u", "p", nil)
	require.NoError(t, err)

	m := bundle.Map()
	m["login"] = "changed"

	assert.Equal(t, "u", bundle.Login())
}

func TestCredentialBundle_StringRedacts(t *testing.T) {
	bundle, err := NewCredentialBundle("alice", "hunter2", []CustomField{{Name: "pin", Value: "0000"}})
	require.NoError(t, err)

	for _, s := range []string{
		bundle.String(),
		fmt.Sprintf("%v", bundle),
		fmt.Sprintf("%+v", bundle),
		fmt.Sprintf("%#v", bundle),
	} {
		assert.NotContains(t, s, "alice")
		assert.NotContains(t, s, "hunter2")
		assert.NotContains(t, s, "0000")
	}
	assert.Contains(t, bundle.String(), "pin")
}
