package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/yairfalse/harava/action"
)

type cloudTrailTrails struct{}

// CloudTrailTrails exports AWS::CloudTrail::Trail.
func CloudTrailTrails() Kind { return cloudTrailTrails{} }

func (cloudTrailTrails) Type() string { return "AWS::CloudTrail::Trail" }
func (cloudTrailTrails) Global() bool { return false }

func (k cloudTrailTrails) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k cloudTrailTrails) actions(sc Scope) *action.Map {
	client := sc.Clients.CloudTrail
	return action.NewMap().WithOptions(
		action.Single("Status", func(ctx context.Context, trailARN string) (action.Result, error) {
			out, err := client.GetTrailStatus(ctx, &cloudtrail.GetTrailStatusInput{
				Name: aws.String(trailARN),
			})
			if err != nil {
				return nil, err
			}
			return toResult(out)
		}),
	)
}

func (k cloudTrailTrails) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	// DescribeTrails is not paginated; one call returns every trail
	// visible in the region.
	listed := false
	fetch := func(ctx context.Context) ([]cloudtrailtypes.Trail, bool, error) {
		if listed {
			return nil, false, nil
		}
		listed = true
		out, err := sc.Clients.CloudTrail.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{})
		if err != nil {
			return nil, false, err
		}
		return out.TrailList, false, nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	identify := func(trail cloudtrailtypes.Trail) string { return aws.ToString(trail.TrailARN) }
	return itemResync(ctx, k.Type(), sc, pager, k.actions(sc), identify, emit)
}
