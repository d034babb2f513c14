package oanda

import (
	"errors"
	"fmt"
	"strings"
)

// Environment selects the broker deployment target. Practice and Live are
// entirely separate accounts with separate hosts and separate credentials.
type Environment int

const (
	Practice Environment = iota
	Live
)

const (
	practiceHost = "https://api-fxpractice.oanda.com"
	liveHost     = "https://api-fxtrade.oanda.com"
)

// ErrMissingCredentials marks a credential set that cannot authenticate:
// empty account id or empty token. Callers map it to a "configure your API
// keys" response, distinct from auth failures reported by the broker itself.
var ErrMissingCredentials = errors.New("oanda credentials missing")

// ParseEnvironment maps the stored environment selector to an Environment.
// Unknown values fall back to Practice; a dashboard pointing at paper money
// by mistake beats one pointing at real funds.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), "live") {
		return Live
	}
	return Practice
}

func (e Environment) String() string {
	if e == Live {
		return "live"
	}
	return "practice"
}

// BaseURL returns the fixed REST host for the environment.
func (e Environment) BaseURL() string {
	if e == Live {
		return liveHost
	}
	return practiceHost
}

// CredentialSet is one environment's account id + API token. A user owns one
// set per environment; the environment selector picks which one is active.
type CredentialSet struct {
	Environment Environment
	AccountID   string
	APIToken    string
}

// Validate fails fast on an unusable set so a client is never built that
// would hit the API unauthenticated.
func (c CredentialSet) Validate() error {
	if strings.TrimSpace(c.AccountID) == "" {
		return fmt.Errorf("%w: account id not set for %s", ErrMissingCredentials, c.Environment)
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return fmt.Errorf("%w: api token not set for %s", ErrMissingCredentials, c.Environment)
	}
	return nil
}
