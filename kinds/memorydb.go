package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/memorydb"
	memorydbtypes "github.com/aws/aws-sdk-go-v2/service/memorydb/types"

	"github.com/yairfalse/harava/action"
)

type memoryDBClusters struct{}

// MemoryDBClusters exports AWS::MemoryDB::Cluster.
func MemoryDBClusters() Kind { return memoryDBClusters{} }

func (memoryDBClusters) Type() string { return "AWS::MemoryDB::Cluster" }
func (memoryDBClusters) Global() bool { return false }

func (k memoryDBClusters) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k memoryDBClusters) actions(sc Scope) *action.Map {
	client := sc.Clients.MemoryDB
	return action.NewMap().WithOptions(
		action.Single("Tags", func(ctx context.Context, arn string) (action.Result, error) {
			out, err := client.ListTags(ctx, &memorydb.ListTagsInput{
				ResourceArn: aws.String(arn),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.TagList}, nil
		}),
	)
}

func (k memoryDBClusters) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := memorydb.NewDescribeClustersPaginator(sc.Clients.MemoryDB, &memorydb.DescribeClustersInput{})
	fetch := func(ctx context.Context) ([]memorydbtypes.Cluster, bool, error) {
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
	identify := func(cluster memorydbtypes.Cluster) string { return aws.ToString(cluster.ARN) }
	return itemResync(ctx, k.Type(), sc, pager, k.actions(sc), identify, emit)
}
