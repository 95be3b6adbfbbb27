package kinds

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/yairfalse/harava/action"
)

type logGroups struct{}

// LogGroups exports AWS::Logs::LogGroup.
func LogGroups() Kind { return logGroups{} }

func (logGroups) Type() string { return "AWS::Logs::LogGroup" }
func (logGroups) Global() bool { return false }

func (k logGroups) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k logGroups) actions(sc Scope) *action.Map {
	client := sc.Clients.CloudWatchLogs
	return action.NewMap().WithOptions(
		action.Single("Tags", func(ctx context.Context, arn string) (action.Result, error) {
			out, err := client.ListTagsForResource(ctx, &cloudwatchlogs.ListTagsForResourceInput{
				ResourceArn: aws.String(arn),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
	)
}

func (k logGroups) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := cloudwatchlogs.NewDescribeLogGroupsPaginator(sc.Clients.CloudWatchLogs, &cloudwatchlogs.DescribeLogGroupsInput{})
	fetch := func(ctx context.Context) ([]cwltypes.LogGroup, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.LogGroups, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	// The listed ARN carries a ":*" suffix that the tagging API rejects.
	identify := func(group cwltypes.LogGroup) string {
		return strings.TrimSuffix(aws.ToString(group.Arn), ":*")
	}
	return itemResync(ctx, k.Type(), sc, pager, k.actions(sc), identify, emit)
}
