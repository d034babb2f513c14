package oanda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	t.Run("Live Variants", func(t *testing.T) {
		assert.Equal(t, Live, ParseEnvironment("live"))
		assert.Equal(t, Live, ParseEnvironment("LIVE"))
		assert.Equal(t, Live, ParseEnvironment("  Live  "))
	})

	t.Run("Unknown Falls Back To Practice", func(t *testing.T) {
		assert.Equal(t, Practice, ParseEnvironment(""))
		assert.Equal(t, Practice, ParseEnvironment("practice"))
		assert.Equal(t, Practice, ParseEnvironment("demo"))
		assert.Equal(t, Practice, ParseEnvironment("production"))
	})
}

func TestEnvironmentBaseURL(t *testing.T) {
	assert.Equal(t, "https://api-fxpractice.oanda.com", Practice.BaseURL())
	assert.Equal(t, "https://api-fxtrade.oanda.com", Live.BaseURL())
}

func TestCredentialSetValidate(t *testing.T) {
	t.Run("Complete Set Passes", func(t *testing.T) {
		creds := CredentialSet{Environment: Practice, AccountID: "001-001-1234567-001", APIToken: "token"}
		assert.NoError(t, creds.Validate())
	})

	t.Run("Missing Account ID", func(t *testing.T) {
		creds := CredentialSet{Environment: Practice, APIToken: "token"}
		err := creds.Validate()
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("Missing Token", func(t *testing.T) {
		creds := CredentialSet{Environment: Live, AccountID: "001-001-1234567-001"}
		err := creds.Validate()
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("Whitespace Only Is Missing", func(t *testing.T) {
		creds := CredentialSet{AccountID: "   ", APIToken: "token"}
		assert.ErrorIs(t, creds.Validate(), ErrMissingCredentials)
	})
}

func TestNewClientRejectsIncompleteCredentials(t *testing.T) {
	client, err := NewClient(CredentialSet{Environment: Practice}, Options{})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
