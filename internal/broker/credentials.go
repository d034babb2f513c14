// Package broker resolves per-user trading credentials and correlates broker
// resources into workspace snapshots.
package broker

import (
	"context"
	"fmt"

	"finboard/internal/gateway/oanda"
)

// UserCredentials is the stored credential pair for one user: an environment
// selector plus one account/token set per environment.
type UserCredentials struct {
	Environment       string
	PracticeAccountID string
	PracticeAPIToken  string
	LiveAccountID     string
	LiveAPIToken      string
}

// ActiveSet picks the credential set matching the environment selector.
func (u UserCredentials) ActiveSet() oanda.CredentialSet {
	env := oanda.ParseEnvironment(u.Environment)
	if env == oanda.Live {
		return oanda.CredentialSet{
			Environment: oanda.Live,
			AccountID:   u.LiveAccountID,
			APIToken:    u.LiveAPIToken,
		}
	}
	return oanda.CredentialSet{
		Environment: oanda.Practice,
		AccountID:   u.PracticeAccountID,
		APIToken:    u.PracticeAPIToken,
	}
}

// CredentialSource loads a user's stored broker credentials.
type CredentialSource interface {
	UserCredentials(ctx context.Context, userID string) (UserCredentials, error)
}

// Resolver builds a broker client from freshly loaded credentials on every
// call. Nothing is cached: credentials may be edited between requests, and a
// cached client would keep authenticating with the old token. The client
// options (timeout, query defaults) come from configuration and are shared by
// every client the resolver builds.
type Resolver struct {
	source CredentialSource
	opts   oanda.Options
}

func NewResolver(source CredentialSource, opts oanda.Options) *Resolver {
	return &Resolver{source: source, opts: opts}
}

// Resolve loads the user's credentials, selects the active set and builds a
// single-use client. An incomplete set fails with oanda.ErrMissingCredentials
// before any broker call is made.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*oanda.Client, error) {
	if r == nil || r.source == nil {
		return nil, fmt.Errorf("credential resolver not initialized")
	}
	creds, err := r.source.UserCredentials(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading credentials failed: %w", err)
	}
	client, err := oanda.NewClient(creds.ActiveSet(), r.opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}
