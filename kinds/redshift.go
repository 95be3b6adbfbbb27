package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshifttypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"

	"github.com/yairfalse/harava/action"
)

type redshiftClusters struct{}

// RedshiftClusters exports AWS::Redshift::Cluster. DescribeClusters
// returns clusters with tags inline.
func RedshiftClusters() Kind { return redshiftClusters{} }

func (redshiftClusters) Type() string         { return "AWS::Redshift::Cluster" }
func (redshiftClusters) Global() bool         { return false }
func (redshiftClusters) Actions() *action.Map { return action.NewMap() }

func (k redshiftClusters) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := redshift.NewDescribeClustersPaginator(sc.Clients.Redshift, &redshift.DescribeClustersInput{})
	fetch := func(ctx context.Context) ([]redshifttypes.Cluster, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.Clusters, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return itemResync(ctx, k.Type(), sc, pager, nil, nil, emit)
}
