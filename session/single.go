package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// SingleOptions configures a single-account strategy.
type SingleOptions struct {
	// Region used for STS and other bootstrap calls.
	Region string

	// Static credentials. Empty uses the ambient default chain.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Optional role assumed on top of the base credentials.
	RoleARN     string
	ExternalID  string
	SessionName string
}

// Single serves exactly one account. The first successful probe caches
// the caller identity; a failed probe caches nothing.
type Single struct {
	cfg    aws.Config
	log    *telemetry.Logger
	stsNew func(aws.Config) awsapi.STSAPI

	mu      sync.Mutex
	account *types.AccountInfo
}

// NewSingle builds a single-account strategy from the ambient credential
// chain, optionally overridden by static credentials or an assumed role.
func NewSingle(ctx context.Context, opts SingleOptions) (*Single, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if opts.AccessKeyID != "" {
		cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken,
		))
	}

	if opts.RoleARN != "" {
		stsClient := sts.NewFromConfig(cfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, opts.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			if opts.ExternalID != "" {
				o.ExternalID = aws.String(opts.ExternalID)
			}
			if opts.SessionName != "" {
				o.RoleSessionName = opts.SessionName
			}
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return NewSingleFromConfig(cfg), nil
}

// NewSingleFromConfig wraps an already-built aws.Config, e.g. one whose
// credentials come from web identity federation.
func NewSingleFromConfig(cfg aws.Config) *Single {
	return &Single{
		cfg:    cfg,
		log:    telemetry.NewLogger("session"),
		stsNew: func(c aws.Config) awsapi.STSAPI { return sts.NewFromConfig(c) },
	}
}

// Healthcheck probes the credentials once and caches the caller identity.
func (s *Single) Healthcheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		return nil
	}

	out, err := s.stsNew(s.cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return &ProbeError{Err: err}
	}

	account := types.AccountInfo{
		ID:  aws.ToString(out.Account),
		ARN: aws.ToString(out.Arn),
	}
	s.account = &account

	s.log.WithContext(ctx).Info().
		Str("account_id", account.ID).
		Msg("credential probe passed")
	return nil
}

// Sessions returns the one validated session.
func (s *Single) Sessions(ctx context.Context) ([]Session, error) {
	if err := s.Healthcheck(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return []Session{{Account: *s.account, cfg: s.cfg}}, nil
}

// Session returns the session when the account matches.
func (s *Single) Session(ctx context.Context, accountID string) (Session, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	if sessions[0].Account.ID != accountID {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	return sessions[0], nil
}
