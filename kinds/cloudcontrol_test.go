package kinds

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	cloudcontroltypes "github.com/aws/aws-sdk-go-v2/service/cloudcontrol/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/awsapi"
)

type mockCloudControlClient struct {
	ListResourcesFunc func(ctx context.Context, params *cloudcontrol.ListResourcesInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error)
	GetResourceFunc   func(ctx context.Context, params *cloudcontrol.GetResourceInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.GetResourceOutput, error)
}

func (m *mockCloudControlClient) ListResources(ctx context.Context, params *cloudcontrol.ListResourcesInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error) {
	return m.ListResourcesFunc(ctx, params, optFns...)
}

func (m *mockCloudControlClient) GetResource(ctx context.Context, params *cloudcontrol.GetResourceInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.GetResourceOutput, error) {
	return m.GetResourceFunc(ctx, params, optFns...)
}

func TestCloudControlResync(t *testing.T) {
	var getCalls atomic.Int32
	mock := &mockCloudControlClient{
		ListResourcesFunc: func(_ context.Context, params *cloudcontrol.ListResourcesInput, _ ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error) {
			assert.Equal(t, "AWS::SNS::Topic", aws.ToString(params.TypeName))
			return &cloudcontrol.ListResourcesOutput{
				ResourceDescriptions: []cloudcontroltypes.ResourceDescription{
					{
						Identifier: aws.String("arn:aws:sns:us-east-1:123456789012:alerts"),
						Properties: aws.String(`{"TopicArn":"arn:aws:sns:us-east-1:123456789012:alerts","DisplayName":"alerts"}`),
					},
					{
						// Listing omitted the model, forcing a re-read.
						Identifier: aws.String("arn:aws:sns:us-east-1:123456789012:audit"),
					},
				},
			}, nil
		},
		GetResourceFunc: func(_ context.Context, params *cloudcontrol.GetResourceInput, _ ...func(*cloudcontrol.Options)) (*cloudcontrol.GetResourceOutput, error) {
			getCalls.Add(1)
			assert.Equal(t, "AWS::SNS::Topic", aws.ToString(params.TypeName))
			return &cloudcontrol.GetResourceOutput{
				ResourceDescription: &cloudcontroltypes.ResourceDescription{
					Identifier: params.Identifier,
					Properties: aws.String(`{"TopicArn":"` + aws.ToString(params.Identifier) + `","DisplayName":"audit"}`),
				},
			}, nil
		},
	}

	sink := newSink()
	kind := CloudControl("AWS::SNS::Topic")
	err := kind.Resync(context.Background(), testScope(&awsapi.Registry{CloudControl: mock}), sink.emit)
	require.NoError(t, err)

	assert.Equal(t, int32(1), getCalls.Load(), "only the model-less resource is re-read")
	require.Len(t, sink.docs, 2)

	byName := map[string]map[string]any{}
	for _, doc := range sink.docs {
		assert.Equal(t, "AWS::SNS::Topic", doc.Type)
		byName[doc.Properties["DisplayName"].(string)] = doc.Properties
	}
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:alerts", byName["alerts"]["TopicArn"])
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:audit", byName["audit"]["TopicArn"])
}

func TestCloudControlInjectsIdentifier(t *testing.T) {
	mock := &mockCloudControlClient{
		ListResourcesFunc: func(_ context.Context, _ *cloudcontrol.ListResourcesInput, _ ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error) {
			return &cloudcontrol.ListResourcesOutput{
				ResourceDescriptions: []cloudcontroltypes.ResourceDescription{
					{Identifier: aws.String("dist-123"), Properties: aws.String(`{"Enabled":true}`)},
				},
			}, nil
		},
	}

	sink := newSink()
	kind := CloudControl("AWS::CloudFront::Distribution")
	err := kind.Resync(context.Background(), testScope(&awsapi.Registry{CloudControl: mock}), sink.emit)
	require.NoError(t, err)

	require.Len(t, sink.docs, 1)
	assert.Equal(t, "dist-123", sink.docs[0].Properties["Identifier"])
	assert.Equal(t, true, sink.docs[0].Properties["Enabled"])
}
