package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/yairfalse/harava/action"
)

type kmsKeys struct{}

// KMSKeys exports AWS::KMS::Key.
func KMSKeys() Kind { return kmsKeys{} }

func (kmsKeys) Type() string { return "AWS::KMS::Key" }
func (kmsKeys) Global() bool { return false }

func (k kmsKeys) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k kmsKeys) actions(sc Scope) *action.Map {
	client := sc.Clients.KMS
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, keyID string) (action.Result, error) {
			out, err := client.DescribeKey(ctx, &kms.DescribeKeyInput{
				KeyId: aws.String(keyID),
			})
			if err != nil {
				return nil, err
			}
			return toResult(out.KeyMetadata)
		}),
	).WithOptions(
		action.Single("Tags", func(ctx context.Context, keyID string) (action.Result, error) {
			out, err := client.ListResourceTags(ctx, &kms.ListResourceTagsInput{
				KeyId: aws.String(keyID),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"Tags": out.Tags}, nil
		}),
	)
}

func (k kmsKeys) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := kms.NewListKeysPaginator(sc.Clients.KMS, &kms.ListKeysInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		ids := make([]string, 0, len(page.Keys))
		for _, key := range page.Keys {
			ids = append(ids, aws.ToString(key.KeyId))
		}
		return ids, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
