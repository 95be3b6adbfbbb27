package kinds

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/yairfalse/harava/action"
)

type dynamoDBTables struct{}

// DynamoDBTables exports AWS::DynamoDB::Table.
func DynamoDBTables() Kind { return dynamoDBTables{} }

func (dynamoDBTables) Type() string { return "AWS::DynamoDB::Table" }
func (dynamoDBTables) Global() bool { return false }

func (k dynamoDBTables) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k dynamoDBTables) actions(sc Scope) *action.Map {
	client := sc.Clients.DynamoDB
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			return toResult(out.Table)
		}),
	).WithOptions(
		action.Single("Tags", func(ctx context.Context, name string) (action.Result, error) {
			arn := fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", sc.Region, sc.Account.ID, name)
			out, err := client.ListTagsOfResource(ctx, &dynamodb.ListTagsOfResourceInput{
				ResourceArn: aws.String(arn),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
		action.Single("ContinuousBackups", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.DescribeContinuousBackups(ctx, &dynamodb.DescribeContinuousBackupsInput{
				TableName: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"ContinuousBackupsDescription": out.ContinuousBackupsDescription}, nil
		}),
	)
}

func (k dynamoDBTables) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := dynamodb.NewListTablesPaginator(sc.Clients.DynamoDB, &dynamodb.ListTablesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.TableNames, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
