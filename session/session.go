// Package session resolves AWS credentials into validated account
// sessions. A strategy probes its accounts once with sts:GetCallerIdentity
// and caches the survivors for the lifetime of the process; credential
// refresh is handled inside each session's credential cache.
package session

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/yairfalse/harava/types"
)

// Session binds a validated account identity to AWS credentials.
type Session struct {
	Account types.AccountInfo
	cfg     aws.Config
}

// NewSession wraps an already validated config. Used by strategies and tests.
func NewSession(account types.AccountInfo, cfg aws.Config) Session {
	return Session{Account: account, cfg: cfg}
}

// Config returns the session's aws.Config bound to the given region.
func (s Session) Config(region string) aws.Config {
	cfg := s.cfg.Copy()
	cfg.Region = region
	return cfg
}

// Strategy yields validated account sessions.
type Strategy interface {
	// Healthcheck verifies credentials. A failed probe returns a typed
	// error (ProbeError, ErrNoAccounts) and leaves no partial state.
	Healthcheck(ctx context.Context) error

	// Sessions returns a session per account that passed its probe.
	Sessions(ctx context.Context) ([]Session, error)

	// Session returns the session for one account, or ErrUnknownAccount.
	Session(ctx context.Context, accountID string) (Session, error)
}
