// Package regions resolves which regions an export runs in: the regions
// the account has enabled, narrowed by operator policy.
package regions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/account"
	accounttypes "github.com/aws/aws-sdk-go-v2/service/account/types"

	"github.com/yairfalse/harava/awsapi"
)

// Policy narrows resolved regions by exact name. A non-empty allow list
// keeps only its members; the deny list then removes its members. An
// empty outcome is valid and exports nothing.
type Policy struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// Filter applies the policy to a region list, preserving order.
func (p Policy) Filter(enabled []string) []string {
	allow := make(map[string]bool, len(p.Allow))
	for _, r := range p.Allow {
		allow[r] = true
	}
	deny := make(map[string]bool, len(p.Deny))
	for _, r := range p.Deny {
		deny[r] = true
	}

	out := make([]string, 0, len(enabled))
	for _, r := range enabled {
		if len(allow) > 0 && !allow[r] {
			continue
		}
		if deny[r] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Resolver lists enabled regions per account, cached for the process
// lifetime.
type Resolver struct {
	mu    sync.Mutex
	cache map[string][]string
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string][]string)}
}

// Enabled returns the account's regions with opt status ENABLED or
// ENABLED_BY_DEFAULT, sorted by name.
func (r *Resolver) Enabled(ctx context.Context, client awsapi.AccountAPI, accountID string) ([]string, error) {
	r.mu.Lock()
	if cached, ok := r.cache[accountID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	paginator := account.NewListRegionsPaginator(client, &account.ListRegionsInput{
		RegionOptStatusContains: []accounttypes.RegionOptStatus{
			accounttypes.RegionOptStatusEnabled,
			accounttypes.RegionOptStatusEnabledByDefault,
		},
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list regions for account %s: %w", accountID, err)
		}
		for _, region := range page.Regions {
			names = append(names, aws.ToString(region.RegionName))
		}
	}
	sort.Strings(names)

	r.mu.Lock()
	r.cache[accountID] = names
	r.mu.Unlock()

	return names, nil
}

// Allowed resolves enabled regions and applies the policy.
func (r *Resolver) Allowed(ctx context.Context, client awsapi.AccountAPI, accountID string, policy Policy) ([]string, error) {
	enabled, err := r.Enabled(ctx, client, accountID)
	if err != nil {
		return nil, err
	}
	return policy.Filter(enabled), nil
}
