package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/harava/action"
)

// DescribeInstances accepts up to 100 instance IDs per call when the
// request also carries filters, so batches clamp there.
const maxEC2DescribeBatch = 100

type ec2Instances struct{}

// EC2Instances exports AWS::EC2::Instance.
func EC2Instances() Kind { return ec2Instances{} }

func (ec2Instances) Type() string { return "AWS::EC2::Instance" }
func (ec2Instances) Global() bool { return false }

func (k ec2Instances) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k ec2Instances) actions(sc Scope) *action.Map {
	client := sc.Clients.EC2
	return action.NewMap(
		action.Batch("Describe", func(ctx context.Context, ids []string) ([]action.Result, error) {
			out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids})
			if err != nil {
				return nil, err
			}
			byID := make(map[string]ec2types.Instance)
			for _, reservation := range out.Reservations {
				for _, instance := range reservation.Instances {
					byID[aws.ToString(instance.InstanceId)] = instance
				}
			}
			return alignByID(ids, byID)
		}),
	).WithOptions(
		action.Batch("Status", func(ctx context.Context, ids []string) ([]action.Result, error) {
			out, err := client.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
				InstanceIds:         ids,
				IncludeAllInstances: aws.Bool(true),
			})
			if err != nil {
				return nil, err
			}
			byID := make(map[string]ec2types.InstanceStatus, len(out.InstanceStatuses))
			for _, status := range out.InstanceStatuses {
				byID[aws.ToString(status.InstanceId)] = status
			}
			return alignByID(ids, byID)
		}),
	)
}

func (k ec2Instances) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := ec2.NewDescribeInstancesPaginator(sc.Clients.EC2, &ec2.DescribeInstancesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		var ids []string
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				ids = append(ids, aws.ToString(instance.InstanceId))
			}
		}
		return ids, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, maxEC2DescribeBatch, fetch)
	return batchResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}

type ec2Volumes struct{}

// EC2Volumes exports AWS::EC2::Volume. DescribeVolumes already returns
// the full volume, so documents materialize straight from the listing.
func EC2Volumes() Kind { return ec2Volumes{} }

func (ec2Volumes) Type() string         { return "AWS::EC2::Volume" }
func (ec2Volumes) Global() bool         { return false }
func (ec2Volumes) Actions() *action.Map { return action.NewMap() }

func (k ec2Volumes) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := ec2.NewDescribeVolumesPaginator(sc.Clients.EC2, &ec2.DescribeVolumesInput{})
	fetch := func(ctx context.Context) ([]ec2types.Volume, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.Volumes, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return itemResync(ctx, k.Type(), sc, pager, nil, nil, emit)
}
