package awsapi

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/account"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/memorydb"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Registry bundles the service clients for one account and region scope.
// The engine builds one per scope and passes it by reference; kinds never
// construct clients themselves.
type Registry struct {
	STS            STSAPI
	Account        AccountAPI
	EC2            EC2API
	ECR            ECRAPI
	ECS            ECSAPI
	ELBV2          ELBV2API
	SQS            SQSAPI
	S3             S3API
	Lambda         LambdaAPI
	DynamoDB       DynamoDBAPI
	RDS            RDSAPI
	IAM            IAMAPI
	EKS            EKSAPI
	KMS            KMSAPI
	AutoScaling    AutoScalingAPI
	Route53        Route53API
	CloudTrail     CloudTrailAPI
	CloudWatchLogs CloudWatchLogsAPI
	Redshift       RedshiftAPI
	MemoryDB       MemoryDBAPI
	CloudControl   CloudControlAPI
}

// NewRegistry constructs every client from one regional config.
func NewRegistry(cfg aws.Config) *Registry {
	return &Registry{
		STS:            sts.NewFromConfig(cfg),
		Account:        account.NewFromConfig(cfg),
		EC2:            ec2.NewFromConfig(cfg),
		ECR:            ecr.NewFromConfig(cfg),
		ECS:            ecs.NewFromConfig(cfg),
		ELBV2:          elasticloadbalancingv2.NewFromConfig(cfg),
		SQS:            sqs.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
		Lambda:         lambda.NewFromConfig(cfg),
		DynamoDB:       dynamodb.NewFromConfig(cfg),
		RDS:            rds.NewFromConfig(cfg),
		IAM:            iam.NewFromConfig(cfg),
		EKS:            eks.NewFromConfig(cfg),
		KMS:            kms.NewFromConfig(cfg),
		AutoScaling:    autoscaling.NewFromConfig(cfg),
		Route53:        route53.NewFromConfig(cfg),
		CloudTrail:     cloudtrail.NewFromConfig(cfg),
		CloudWatchLogs: cloudwatchlogs.NewFromConfig(cfg),
		Redshift:       redshift.NewFromConfig(cfg),
		MemoryDB:       memorydb.NewFromConfig(cfg),
		CloudControl:   cloudcontrol.NewFromConfig(cfg),
	}
}
