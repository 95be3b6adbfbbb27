package kinds

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/yairfalse/harava/action"
)

type s3Buckets struct{}

// S3Buckets exports AWS::S3::Bucket. The service is global: one listing
// covers every region, and the bucket's own region comes from
// GetBucketLocation.
func S3Buckets() Kind { return s3Buckets{} }

func (s3Buckets) Type() string { return "AWS::S3::Bucket" }
func (s3Buckets) Global() bool { return true }

func (k s3Buckets) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k s3Buckets) actions(sc Scope) *action.Map {
	client := sc.Clients.S3
	return action.NewMap(
		action.Single("Location", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
				Bucket: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			// An empty location constraint means us-east-1.
			region := string(out.LocationConstraint)
			if region == "" {
				region = "us-east-1"
			}
			return action.Result{"BucketRegion": region}, nil
		}),
	).WithOptions(
		action.Single("Tags", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
				Bucket: aws.String(name),
			})
			if err != nil {
				if isS3ErrorCode(err, "NoSuchTagSet") {
					return action.Result{}, nil
				}
				return nil, err
			}
			return action.Result{"Tags": out.TagSet}, nil
		}),
		action.Single("Policy", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{
				Bucket: aws.String(name),
			})
			if err != nil {
				if isS3ErrorCode(err, "NoSuchBucketPolicy") {
					return action.Result{}, nil
				}
				return nil, err
			}
			return action.Result{"Policy": aws.ToString(out.Policy)}, nil
		}),
	)
}

// isS3ErrorCode matches unmodeled S3 error codes, which the SDK only
// surfaces through the generic API error.
func isS3ErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

func (k s3Buckets) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	listed := false
	fetch := func(ctx context.Context) ([]s3types.Bucket, bool, error) {
		if listed {
			return nil, false, nil
		}
		listed = true
		out, err := sc.Clients.S3.ListBuckets(ctx, &s3.ListBucketsInput{})
		if err != nil {
			return nil, false, err
		}
		return out.Buckets, false, nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	identify := func(bucket s3types.Bucket) string { return aws.ToString(bucket.Name) }
	return itemResync(ctx, k.Type(), sc, pager, k.actions(sc), identify, emit)
}
