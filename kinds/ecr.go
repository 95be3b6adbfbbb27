package kinds

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"

	"github.com/yairfalse/harava/action"
)

type ecrRepositories struct{}

// ECRRepositories exports AWS::ECR::Repository.
func ECRRepositories() Kind { return ecrRepositories{} }

func (ecrRepositories) Type() string { return "AWS::ECR::Repository" }
func (ecrRepositories) Global() bool { return false }

func (k ecrRepositories) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k ecrRepositories) actions(sc Scope) *action.Map {
	client := sc.Clients.ECR
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
				RepositoryNames: []string{name},
			})
			if err != nil {
				return nil, err
			}
			if len(out.Repositories) == 0 {
				return action.Result{}, nil
			}
			return toResult(out.Repositories[0])
		}),
	).WithOptions(
		action.Single("Tags", func(ctx context.Context, name string) (action.Result, error) {
			arn := fmt.Sprintf("arn:aws:ecr:%s:%s:repository/%s", sc.Region, sc.Account.ID, name)
			out, err := client.ListTagsForResource(ctx, &ecr.ListTagsForResourceInput{
				ResourceArn: aws.String(arn),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
		action.Single("RepositoryPolicy", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetRepositoryPolicy(ctx, &ecr.GetRepositoryPolicyInput{
				RepositoryName: aws.String(name),
			})
			if err != nil {
				// Repositories without a policy are a normal state,
				// not a failure.
				var notFound *ecrtypes.RepositoryPolicyNotFoundException
				if errors.As(err, &notFound) {
					return action.Result{}, nil
				}
				return nil, err
			}
			return action.Result{"RepositoryPolicyText": aws.ToString(out.PolicyText)}, nil
		}),
		action.Single("LifecyclePolicy", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetLifecyclePolicy(ctx, &ecr.GetLifecyclePolicyInput{
				RepositoryName: aws.String(name),
			})
			if err != nil {
				var notFound *ecrtypes.LifecyclePolicyNotFoundException
				if errors.As(err, &notFound) {
					return action.Result{}, nil
				}
				return nil, err
			}
			return action.Result{"LifecyclePolicyText": aws.ToString(out.LifecyclePolicyText)}, nil
		}),
	)
}

func (k ecrRepositories) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := ecr.NewDescribeRepositoriesPaginator(sc.Clients.ECR, &ecr.DescribeRepositoriesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		names := make([]string, 0, len(page.Repositories))
		for _, repo := range page.Repositories {
			names = append(names, aws.ToString(repo.RepositoryName))
		}
		return names, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
