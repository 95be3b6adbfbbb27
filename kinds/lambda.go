package kinds

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/yairfalse/harava/action"
)

type lambdaFunctions struct{}

// LambdaFunctions exports AWS::Lambda::Function. ListFunctions already
// returns the full configuration, so documents materialize from the
// listing and only the opt-in actions call back out.
func LambdaFunctions() Kind { return lambdaFunctions{} }

func (lambdaFunctions) Type() string { return "AWS::Lambda::Function" }
func (lambdaFunctions) Global() bool { return false }

func (k lambdaFunctions) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k lambdaFunctions) actions(sc Scope) *action.Map {
	client := sc.Clients.Lambda
	return action.NewMap().WithOptions(
		action.Single("Tags", func(ctx context.Context, arn string) (action.Result, error) {
			out, err := client.ListTags(ctx, &lambda.ListTagsInput{
				Resource: aws.String(arn),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
		action.Single("Policy", func(ctx context.Context, arn string) (action.Result, error) {
			out, err := client.GetPolicy(ctx, &lambda.GetPolicyInput{
				FunctionName: aws.String(arn),
			})
			if err != nil {
				// Functions with no resource policy are a normal state.
				var notFound *lambdatypes.ResourceNotFoundException
				if errors.As(err, &notFound) {
					return action.Result{}, nil
				}
				return nil, err
			}
			return action.Result{"Policy": aws.ToString(out.Policy)}, nil
		}),
	)
}

func (k lambdaFunctions) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := lambda.NewListFunctionsPaginator(sc.Clients.Lambda, &lambda.ListFunctionsInput{})
	fetch := func(ctx context.Context) ([]lambdatypes.FunctionConfiguration, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.Functions, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	identify := func(fn lambdatypes.FunctionConfiguration) string { return aws.ToString(fn.FunctionArn) }
	return itemResync(ctx, k.Type(), sc, pager, k.actions(sc), identify, emit)
}
