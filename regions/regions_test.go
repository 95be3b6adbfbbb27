package regions

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/account"
	accounttypes "github.com/aws/aws-sdk-go-v2/service/account/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccountClient struct {
	ListRegionsFunc func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error)
	calls           int
}

func (m *mockAccountClient) ListRegions(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
	m.calls++
	return m.ListRegionsFunc(ctx, params, optFns...)
}

func regionPage(names []string, nextToken string) *account.ListRegionsOutput {
	out := &account.ListRegionsOutput{}
	for _, n := range names {
		out.Regions = append(out.Regions, accounttypes.Region{RegionName: aws.String(n)})
	}
	if nextToken != "" {
		out.NextToken = aws.String(nextToken)
	}
	return out
}

func TestResolverEnabledPaginatesAndSorts(t *testing.T) {
	client := &mockAccountClient{
		ListRegionsFunc: func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
			assert.Contains(t, params.RegionOptStatusContains, accounttypes.RegionOptStatusEnabled)
			assert.Contains(t, params.RegionOptStatusContains, accounttypes.RegionOptStatusEnabledByDefault)

			if params.NextToken == nil {
				return regionPage([]string{"us-west-2", "eu-west-1"}, "page-2"), nil
			}
			return regionPage([]string{"ap-southeast-1"}, ""), nil
		},
	}

	resolver := NewResolver()
	regions, err := resolver.Enabled(context.Background(), client, "123456789012")
	require.NoError(t, err)

	assert.Equal(t, []string{"ap-southeast-1", "eu-west-1", "us-west-2"}, regions)
	assert.Equal(t, 2, client.calls)
}

func TestResolverCachesPerAccount(t *testing.T) {
	client := &mockAccountClient{
		ListRegionsFunc: func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
			return regionPage([]string{"us-east-1"}, ""), nil
		},
	}

	resolver := NewResolver()
	ctx := context.Background()

	first, err := resolver.Enabled(ctx, client, "123456789012")
	require.NoError(t, err)
	second, err := resolver.Enabled(ctx, client, "123456789012")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls, "second lookup should hit the cache")

	_, err = resolver.Enabled(ctx, client, "999999999999")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls, "different account resolves separately")
}

func TestResolverEnabledError(t *testing.T) {
	client := &mockAccountClient{
		ListRegionsFunc: func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	resolver := NewResolver()
	_, err := resolver.Enabled(context.Background(), client, "123456789012")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "123456789012")

	// Errors are not cached.
	client.ListRegionsFunc = func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
		return regionPage([]string{"us-east-1"}, ""), nil
	}
	regions, err := resolver.Enabled(context.Background(), client, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1"}, regions)
}

func TestPolicyFilter(t *testing.T) {
	enabled := []string{"ap-southeast-1", "eu-west-1", "us-east-1", "us-west-2"}

	tests := []struct {
		name   string
		policy Policy
		want   []string
	}{
		{
			name:   "no policy keeps everything",
			policy: Policy{},
			want:   enabled,
		},
		{
			name:   "allow keeps only listed",
			policy: Policy{Allow: []string{"us-east-1", "eu-west-1"}},
			want:   []string{"eu-west-1", "us-east-1"},
		},
		{
			name:   "deny removes listed",
			policy: Policy{Deny: []string{"us-west-2"}},
			want:   []string{"ap-southeast-1", "eu-west-1", "us-east-1"},
		},
		{
			name:   "deny wins over allow",
			policy: Policy{Allow: []string{"us-east-1", "us-west-2"}, Deny: []string{"us-west-2"}},
			want:   []string{"us-east-1"},
		},
		{
			name:   "allow entry not enabled is ignored",
			policy: Policy{Allow: []string{"mars-north-1"}},
			want:   []string{},
		},
		{
			name:   "no prefix matching",
			policy: Policy{Allow: []string{"us"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Filter(enabled))
		})
	}
}

func TestResolverAllowed(t *testing.T) {
	client := &mockAccountClient{
		ListRegionsFunc: func(ctx context.Context, params *account.ListRegionsInput, optFns ...func(*account.Options)) (*account.ListRegionsOutput, error) {
			return regionPage([]string{"us-east-1", "us-west-2", "eu-west-1"}, ""), nil
		},
	}

	resolver := NewResolver()
	regions, err := resolver.Allowed(context.Background(), client, "123456789012", Policy{Deny: []string{"eu-west-1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "us-west-2"}, regions)
}
