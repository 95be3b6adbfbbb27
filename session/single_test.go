package session

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/awsapi"
)

// mockSTSClient implements awsapi.STSAPI for tests.
type mockSTSClient struct {
	GetCallerIdentityFunc         func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
	AssumeRoleWithWebIdentityFunc func(ctx context.Context, params *sts.AssumeRoleWithWebIdentityInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithWebIdentityOutput, error)
}

func (m *mockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.GetCallerIdentityFunc(ctx, params, optFns...)
}

func (m *mockSTSClient) AssumeRoleWithWebIdentity(ctx context.Context, params *sts.AssumeRoleWithWebIdentityInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithWebIdentityOutput, error) {
	return m.AssumeRoleWithWebIdentityFunc(ctx, params, optFns...)
}

func TestSingleHealthcheckCachesIdentity(t *testing.T) {
	calls := 0
	s := NewSingleFromConfig(aws.Config{})
	s.stsNew = func(aws.Config) awsapi.STSAPI {
		return &mockSTSClient{
			GetCallerIdentityFunc: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				calls++
				return &sts.GetCallerIdentityOutput{
					Account: aws.String("123456789012"),
					Arn:     aws.String("arn:aws:iam::123456789012:user/exporter"),
				}, nil
			},
		}
	}

	require.NoError(t, s.Healthcheck(context.Background()))
	require.NoError(t, s.Healthcheck(context.Background()))
	assert.Equal(t, 1, calls)

	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "123456789012", sessions[0].Account.ID)
	assert.Equal(t, 1, calls)
}

func TestSingleHealthcheckFailureLeavesNoState(t *testing.T) {
	denied := errors.New("InvalidClientTokenId")
	s := NewSingleFromConfig(aws.Config{})
	s.stsNew = func(aws.Config) awsapi.STSAPI {
		return &mockSTSClient{
			GetCallerIdentityFunc: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				return nil, denied
			},
		}
	}

	err := s.Healthcheck(context.Background())
	require.Error(t, err)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.ErrorIs(t, err, denied)
	assert.Nil(t, s.account)

	_, err = s.Sessions(context.Background())
	assert.Error(t, err)
}

func TestSingleSessionSelector(t *testing.T) {
	s := NewSingleFromConfig(aws.Config{})
	s.stsNew = func(aws.Config) awsapi.STSAPI {
		return &mockSTSClient{
			GetCallerIdentityFunc: func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
				return &sts.GetCallerIdentityOutput{
					Account: aws.String("123456789012"),
					Arn:     aws.String("arn:aws:iam::123456789012:user/exporter"),
				}, nil
			},
		}
	}

	sess, err := s.Session(context.Background(), "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", sess.Account.ID)

	_, err = s.Session(context.Background(), "999999999999")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestSessionConfigBindsRegion(t *testing.T) {
	sess := NewSession(
		awsAccount("123456789012"),
		aws.Config{Region: "us-east-1"},
	)

	cfg := sess.Config("eu-north-1")
	assert.Equal(t, "eu-north-1", cfg.Region)

	// the session's own config is untouched
	assert.Equal(t, "us-east-1", sess.cfg.Region)
}
