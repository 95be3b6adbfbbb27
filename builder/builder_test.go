package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/action"
)

func TestBuildMergesInOrder(t *testing.T) {
	doc := New("AWS::ECR::Repository").
		WithProperties(
			action.Result{"repositoryName": "api", "imageTagMutability": "MUTABLE"},
			action.Result{"imageTagMutability": "IMMUTABLE", "tags": []string{"team:core"}},
		).
		WithAccount("123456789012").
		WithRegion("eu-west-1").
		Build()

	require.NotNil(t, doc)
	assert.Equal(t, "api", doc.Properties["repositoryName"])
	// later result wins the contested key
	assert.Equal(t, "IMMUTABLE", doc.Properties["imageTagMutability"])
	assert.Equal(t, "123456789012", doc.AccountID)
	assert.Equal(t, "eu-west-1", doc.Region)
}

func TestBuildStampsMetadataWithoutProperties(t *testing.T) {
	doc := New("AWS::SQS::Queue").
		WithAccount("123456789012").
		WithRegion("us-east-1").
		Build()

	require.NotNil(t, doc)
	assert.NotNil(t, doc.Properties)
	assert.Empty(t, doc.Properties)
	assert.Equal(t, "123456789012", doc.AccountID)
	assert.Equal(t, "us-east-1", doc.Region)
}

func TestBuildIsIdempotent(t *testing.T) {
	b := New("AWS::EC2::Instance").
		WithProperties(action.Result{"instanceId": "i-1"}).
		WithAccount("123456789012").
		WithRegion("us-west-2")

	first := b.Build()

	// appending after the first build must not change the document
	b.WithProperties(action.Result{"instanceId": "i-2"})
	second := b.Build()

	assert.Same(t, first, second)
	assert.Equal(t, "i-1", second.Properties["instanceId"])
}

func TestBuildSkipsNilResults(t *testing.T) {
	doc := New("AWS::S3::Bucket").
		WithProperties(nil, action.Result{"bucketName": "logs"}).
		Build()

	require.NotNil(t, doc)
	assert.Equal(t, "logs", doc.Properties["bucketName"])
	assert.Len(t, doc.Properties, 1)
}
