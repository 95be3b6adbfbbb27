package kinds

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

func testScope(clients *awsapi.Registry) Scope {
	return Scope{
		Account:   types.AccountInfo{ID: "123456789012", ARN: "arn:aws:iam::123456789012:role/export"},
		Region:    "us-east-1",
		Clients:   clients,
		BatchSize: 10,
		Log:       telemetry.NewLogger("kinds-test"),
	}
}

// docSink gathers every emitted document across batches.
type docSink struct {
	docs []types.Document
}

func newSink() *docSink { return &docSink{} }

func (s *docSink) emit(ctx context.Context, docs []types.Document) error {
	s.docs = append(s.docs, docs...)
	return nil
}

func TestToResultUsesAPIFieldCasing(t *testing.T) {
	instance := ec2types.Instance{
		InstanceId:   aws.String("i-0abc"),
		InstanceType: ec2types.InstanceTypeT3Micro,
	}

	res, err := toResult(instance)
	require.NoError(t, err)

	assert.Equal(t, "i-0abc", res["InstanceId"])
	assert.Equal(t, "t3.micro", res["InstanceType"])
}

func TestToResultDropsNilMembers(t *testing.T) {
	res, err := toResult(ec2types.Instance{InstanceId: aws.String("i-0abc")})
	require.NoError(t, err)

	assert.Contains(t, res, "InstanceId")
	assert.NotContains(t, res, "ImageId")
	assert.NotContains(t, res, "Tags")
}

func TestAlignByID(t *testing.T) {
	byID := map[string]ec2types.Instance{
		"i-1": {InstanceId: aws.String("i-1")},
		"i-3": {InstanceId: aws.String("i-3")},
	}

	results, err := alignByID([]string{"i-1", "i-2", "i-3"}, byID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "i-1", results[0]["InstanceId"])
	assert.Nil(t, results[1], "missing identifier leaves a gap")
	assert.Equal(t, "i-3", results[2]["InstanceId"])
}

func TestClampBatch(t *testing.T) {
	assert.Equal(t, 10, clampBatch(Scope{BatchSize: 10}, 0))
	assert.Equal(t, 10, clampBatch(Scope{BatchSize: 10}, 20))
	assert.Equal(t, 20, clampBatch(Scope{BatchSize: 50}, 20))
	assert.Equal(t, 100, clampBatch(Scope{}, 0), "defaults when unset")
}

func TestDocumentStampsScope(t *testing.T) {
	sc := testScope(nil)
	doc := document("AWS::EC2::Instance", sc, nil)

	assert.Equal(t, "AWS::EC2::Instance", doc.Type)
	assert.Equal(t, "123456789012", doc.AccountID)
	assert.Equal(t, "us-east-1", doc.Region)
	assert.NotNil(t, doc.Properties)
}
