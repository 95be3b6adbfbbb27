package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	autoscalingtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"

	"github.com/yairfalse/harava/action"
)

type autoScalingGroups struct{}

// AutoScalingGroups exports AWS::AutoScaling::AutoScalingGroup. The
// describe call returns groups with tags inline.
func AutoScalingGroups() Kind { return autoScalingGroups{} }

func (autoScalingGroups) Type() string         { return "AWS::AutoScaling::AutoScalingGroup" }
func (autoScalingGroups) Global() bool         { return false }
func (autoScalingGroups) Actions() *action.Map { return action.NewMap() }

func (k autoScalingGroups) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := autoscaling.NewDescribeAutoScalingGroupsPaginator(sc.Clients.AutoScaling, &autoscaling.DescribeAutoScalingGroupsInput{})
	fetch := func(ctx context.Context) ([]autoscalingtypes.AutoScalingGroup, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.AutoScalingGroups, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return itemResync(ctx, k.Type(), sc, pager, nil, nil, emit)
}
