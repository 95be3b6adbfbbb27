package session

import (
	"errors"
	"fmt"
)

// ErrNoAccounts means every configured account failed its credential probe.
var ErrNoAccounts = errors.New("no accounts passed the credential probe")

// ErrUnknownAccount means the requested account is not served by this strategy.
var ErrUnknownAccount = errors.New("account not available in this strategy")

// ProbeError wraps a failed credential probe for one account.
type ProbeError struct {
	RoleARN   string
	AccountID string
	Err       error
}

func (e *ProbeError) Error() string {
	if e.RoleARN != "" {
		return fmt.Sprintf("credential probe failed for %s: %v", e.RoleARN, e.Err)
	}
	return fmt.Sprintf("credential probe failed: %v", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// TokenReadError means the web identity token file could not be read.
type TokenReadError struct {
	Path string
	Err  error
}

func (e *TokenReadError) Error() string {
	return fmt.Sprintf("read web identity token %s: %v", e.Path, e.Err)
}

func (e *TokenReadError) Unwrap() error { return e.Err }

// FederationError means STS rejected the web identity exchange.
type FederationError struct {
	RoleARN string
	Err     error
}

func (e *FederationError) Error() string {
	return fmt.Sprintf("web identity federation for %s rejected: %v", e.RoleARN, e.Err)
}

func (e *FederationError) Unwrap() error { return e.Err }
