package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/yairfalse/harava/action"
)

// DescribeClusters takes at most 100 cluster ARNs per call.
const maxECSDescribeBatch = 100

type ecsClusters struct{}

// ECSClusters exports AWS::ECS::Cluster.
func ECSClusters() Kind { return ecsClusters{} }

func (ecsClusters) Type() string { return "AWS::ECS::Cluster" }
func (ecsClusters) Global() bool { return false }

func (k ecsClusters) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k ecsClusters) actions(sc Scope) *action.Map {
	client := sc.Clients.ECS
	return action.NewMap(
		action.Batch("Describe", func(ctx context.Context, arns []string) ([]action.Result, error) {
			out, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{
				Clusters: arns,
				Include:  []ecstypes.ClusterField{ecstypes.ClusterFieldTags},
			})
			if err != nil {
				return nil, err
			}
			// Per-ARN failures in the response leave gaps, the same as
			// a resource deleted between list and describe.
			byARN := make(map[string]ecstypes.Cluster, len(out.Clusters))
			for _, cluster := range out.Clusters {
				byARN[aws.ToString(cluster.ClusterArn)] = cluster
			}
			return alignByID(arns, byARN)
		}),
	)
}

func (k ecsClusters) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := ecs.NewListClustersPaginator(sc.Clients.ECS, &ecs.ListClustersInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.ClusterArns, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, maxECSDescribeBatch, fetch)
	return batchResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
