package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/yairfalse/harava/action"
)

type sqsQueues struct{}

// SQSQueues exports AWS::SQS::Queue. ListQueues only returns URLs, so
// all properties come from GetQueueAttributes.
func SQSQueues() Kind { return sqsQueues{} }

func (sqsQueues) Type() string { return "AWS::SQS::Queue" }
func (sqsQueues) Global() bool { return false }

func (k sqsQueues) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k sqsQueues) actions(sc Scope) *action.Map {
	client := sc.Clients.SQS
	return action.NewMap(
		action.Single("Attributes", func(ctx context.Context, url string) (action.Result, error) {
			out, err := client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
				QueueUrl:       aws.String(url),
				AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameAll},
			})
			if err != nil {
				return nil, err
			}
			res := action.Result{"QueueUrl": url}
			for name, value := range out.Attributes {
				res[name] = value
			}
			return res, nil
		}),
	).WithOptions(
		action.Single("Tags", func(ctx context.Context, url string) (action.Result, error) {
			out, err := client.ListQueueTags(ctx, &sqs.ListQueueTagsInput{
				QueueUrl: aws.String(url),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
	)
}

func (k sqsQueues) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := sqs.NewListQueuesPaginator(sc.Clients.SQS, &sqs.ListQueuesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.QueueUrls, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
