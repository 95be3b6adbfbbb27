package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/yairfalse/harava/action"
)

type eksClusters struct{}

// EKSClusters exports AWS::EKS::Cluster.
func EKSClusters() Kind { return eksClusters{} }

func (eksClusters) Type() string { return "AWS::EKS::Cluster" }
func (eksClusters) Global() bool { return false }

func (k eksClusters) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k eksClusters) actions(sc Scope) *action.Map {
	client := sc.Clients.EKS
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.DescribeCluster(ctx, &eks.DescribeClusterInput{
				Name: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			return toResult(out.Cluster)
		}),
	)
}

func (k eksClusters) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := eks.NewListClustersPaginator(sc.Clients.EKS, &eks.ListClustersInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
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
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
