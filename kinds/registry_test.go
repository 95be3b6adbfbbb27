package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrdersByTypeName(t *testing.T) {
	r := NewRegistry(SQSQueues(), EC2Instances(), IAMRoles())

	assert.Equal(t, []string{
		"AWS::EC2::Instance",
		"AWS::IAM::Role",
		"AWS::SQS::Queue",
	}, r.Types())
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(EC2Instances(), EC2Volumes())

	k, ok := r.Get("AWS::EC2::Volume")
	require.True(t, ok)
	assert.Equal(t, "AWS::EC2::Volume", k.Type())

	_, ok = r.Get("AWS::EC2::Snapshot")
	assert.False(t, ok)
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry(EC2Instances())
	r.Register(EC2Instances())

	assert.Equal(t, 1, r.Len())
}

func TestDefaultRegistryCatalog(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, 19, r.Len())

	for _, typeName := range []string{
		"AWS::EC2::Instance",
		"AWS::ECR::Repository",
		"AWS::S3::Bucket",
		"AWS::Lambda::Function",
		"AWS::DynamoDB::Table",
		"AWS::Route53::HostedZone",
	} {
		_, ok := r.Get(typeName)
		assert.True(t, ok, "missing kind %s", typeName)
	}

	s3, _ := r.Get("AWS::S3::Bucket")
	assert.True(t, s3.Global())
	iam, _ := r.Get("AWS::IAM::Role")
	assert.True(t, iam.Global())
	ec2, _ := r.Get("AWS::EC2::Instance")
	assert.False(t, ec2.Global())
}

func TestDefaultRegistryCloudControlExtras(t *testing.T) {
	r := DefaultRegistry("AWS::CloudFront::Distribution", "AWS::SNS::Topic")

	assert.Equal(t, 21, r.Len())

	k, ok := r.Get("AWS::CloudFront::Distribution")
	require.True(t, ok)
	assert.Equal(t, "AWS::CloudFront::Distribution", k.Type())
	assert.False(t, k.Global())
}

func TestRegistryAscendStops(t *testing.T) {
	r := DefaultRegistry()

	var seen int
	r.Ascend(func(k Kind) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestCatalogActionNames(t *testing.T) {
	tests := []struct {
		typeName string
		defaults []string
		options  []string
	}{
		{"AWS::EC2::Instance", []string{"Describe"}, []string{"Status"}},
		{"AWS::ECR::Repository", []string{"Describe"}, []string{"Tags", "RepositoryPolicy", "LifecyclePolicy"}},
		{"AWS::S3::Bucket", []string{"Location"}, []string{"Tags", "Policy"}},
		{"AWS::Lambda::Function", []string{}, []string{"Tags", "Policy"}},
		{"AWS::RDS::DBInstance", []string{}, []string{}},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		k, ok := r.Get(tt.typeName)
		require.True(t, ok, tt.typeName)

		m := k.Actions()
		assert.Equal(t, tt.defaults, m.DefaultNames(), "%s defaults", tt.typeName)
		assert.Equal(t, tt.options, m.OptionNames(), "%s options", tt.typeName)
	}
}
