package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// DefaultProbeBatch bounds how many role probes run at once.
const DefaultProbeBatch = 5

// MultiOptions configures a strategy spanning many accounts by role ARN.
type MultiOptions struct {
	Region      string
	RoleARNs    []string
	ExternalID  string
	SessionName string

	// ProbeBatch caps concurrent probes. Batches run one after another;
	// inside a batch every probe runs in its own goroutine.
	ProbeBatch int
}

// Multi assumes a role per target account. Accounts whose probe fails
// are skipped with a warning; the strategy fails only when none remain.
type Multi struct {
	base   aws.Config
	opts   MultiOptions
	log    *telemetry.Logger
	stsNew func(aws.Config) awsapi.STSAPI
	assume func(base aws.Config, roleARN string) aws.CredentialsProvider

	mu       sync.Mutex
	probed   bool
	sessions []Session
	failed   map[string]error
}

// NewMulti builds a multi-account strategy on top of the ambient
// credential chain.
func NewMulti(ctx context.Context, opts MultiOptions) (*Multi, error) {
	if len(opts.RoleARNs) == 0 {
		return nil, fmt.Errorf("multi-account strategy needs at least one role ARN")
	}

	base, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewMultiFromConfig(base, opts), nil
}

// NewMultiFromConfig wraps an already-built base config.
func NewMultiFromConfig(base aws.Config, opts MultiOptions) *Multi {
	m := &Multi{
		base:   base,
		opts:   opts,
		log:    telemetry.NewLogger("session"),
		stsNew: func(c aws.Config) awsapi.STSAPI { return sts.NewFromConfig(c) },
		failed: make(map[string]error),
	}
	m.assume = func(base aws.Config, roleARN string) aws.CredentialsProvider {
		stsClient := sts.NewFromConfig(base)
		return stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
			if opts.ExternalID != "" {
				o.ExternalID = aws.String(opts.ExternalID)
			}
			if opts.SessionName != "" {
				o.RoleSessionName = opts.SessionName
			}
		})
	}
	return m
}

// Healthcheck probes every role ARN once. It returns ErrNoAccounts only
// when no probe succeeded.
func (m *Multi) Healthcheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeLocked(ctx)
}

func (m *Multi) probeLocked(ctx context.Context) error {
	if m.probed {
		if len(m.sessions) == 0 {
			return ErrNoAccounts
		}
		return nil
	}

	batch := m.opts.ProbeBatch
	if batch <= 0 {
		batch = DefaultProbeBatch
	}

	var resMu sync.Mutex
	arns := m.opts.RoleARNs
	for start := 0; start < len(arns); start += batch {
		end := min(start+batch, len(arns))

		var wg sync.WaitGroup
		for _, roleARN := range arns[start:end] {
			wg.Add(1)
			go func(roleARN string) {
				defer wg.Done()
				sess, err := m.probeRole(ctx, roleARN)

				resMu.Lock()
				defer resMu.Unlock()
				if err != nil {
					m.failed[roleARN] = err
					m.log.WithContext(ctx).Warn().
						Err(err).
						Str("role_arn", roleARN).
						Msg("account probe failed")
					return
				}
				m.sessions = append(m.sessions, sess)
			}(roleARN)
		}
		wg.Wait()
	}

	sort.Slice(m.sessions, func(i, j int) bool {
		return m.sessions[i].Account.ID < m.sessions[j].Account.ID
	})
	m.probed = true

	m.log.WithContext(ctx).Info().
		Int("healthy", len(m.sessions)).
		Int("failed", len(m.failed)).
		Msg("account probes complete")

	if len(m.sessions) == 0 {
		return ErrNoAccounts
	}
	return nil
}

func (m *Multi) probeRole(ctx context.Context, roleARN string) (Session, error) {
	cfg := m.base.Copy()
	cfg.Credentials = aws.NewCredentialsCache(m.assume(m.base, roleARN))

	out, err := m.stsNew(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Session{}, &ProbeError{
			RoleARN:   roleARN,
			AccountID: accountFromARN(roleARN),
			Err:       err,
		}
	}

	return Session{
		Account: types.AccountInfo{
			ID:  aws.ToString(out.Account),
			ARN: aws.ToString(out.Arn),
		},
		cfg: cfg,
	}, nil
}

// Sessions returns every account that passed its probe, ordered by ID.
func (m *Multi) Sessions(ctx context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.probeLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]Session, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

// Session returns the session for one validated account.
func (m *Multi) Session(ctx context.Context, accountID string) (Session, error) {
	sessions, err := m.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	for _, s := range sessions {
		if s.Account.ID == accountID {
			return s, nil
		}
	}
	return Session{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
}

// Failed reports the probe error per role ARN that was skipped.
func (m *Multi) Failed() map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]error, len(m.failed))
	for k, v := range m.failed {
		out[k] = v
	}
	return out
}

// accountFromARN extracts the account ID so logs can name the account
// even when the assume itself failed.
func accountFromARN(roleARN string) string {
	parsed, err := arn.Parse(roleARN)
	if err != nil {
		return ""
	}
	return parsed.AccountID
}
