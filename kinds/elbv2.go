package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/yairfalse/harava/action"
)

// DescribeLoadBalancers and DescribeTags take at most 20 ARNs per call.
const maxELBV2DescribeBatch = 20

type loadBalancers struct{}

// LoadBalancers exports AWS::ElasticLoadBalancingV2::LoadBalancer.
func LoadBalancers() Kind { return loadBalancers{} }

func (loadBalancers) Type() string { return "AWS::ElasticLoadBalancingV2::LoadBalancer" }
func (loadBalancers) Global() bool { return false }

func (k loadBalancers) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k loadBalancers) actions(sc Scope) *action.Map {
	client := sc.Clients.ELBV2
	return action.NewMap(
		action.Batch("Describe", func(ctx context.Context, arns []string) ([]action.Result, error) {
			out, err := client.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{
				LoadBalancerArns: arns,
			})
			if err != nil {
				return nil, err
			}
			byARN := make(map[string]elbv2types.LoadBalancer, len(out.LoadBalancers))
			for _, lb := range out.LoadBalancers {
				byARN[aws.ToString(lb.LoadBalancerArn)] = lb
			}
			return alignByID(arns, byARN)
		}),
	).WithOptions(
		action.Batch("Tags", func(ctx context.Context, arns []string) ([]action.Result, error) {
			out, err := client.DescribeTags(ctx, &elasticloadbalancingv2.DescribeTagsInput{
				ResourceArns: arns,
			})
			if err != nil {
				return nil, err
			}
			byARN := make(map[string]action.Result, len(out.TagDescriptions))
			for _, td := range out.TagDescriptions {
				byARN[aws.ToString(td.ResourceArn)] = action.Result{"Tags": td.Tags}
			}
			results := make([]action.Result, len(arns))
			for i, arn := range arns {
				results[i] = byARN[arn]
			}
			return results, nil
		}),
	)
}

func (k loadBalancers) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(sc.Clients.ELBV2, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		arns := make([]string, 0, len(page.LoadBalancers))
		for _, lb := range page.LoadBalancers {
			arns = append(arns, aws.ToString(lb.LoadBalancerArn))
		}
		return arns, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, maxELBV2DescribeBatch, fetch)
	return batchResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
