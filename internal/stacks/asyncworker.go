package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// 非同期ワーカーのリソース設定
// バケット名とTTL属性名はS3/DynamoDBの命名規則に違反している
const (
	UserUploadsBucketName = "My-Company-User-Uploads-BUCKET"
	AppDataBucketName     = "application-data-storage-bucket-for-our-microservices-architecture-system"
	SessionTTLAttribute   = "expires-at!"
	imageProcessorMemory  = 64
)

// NewAsyncWorkerStack はアップロード用バケット・画像処理関数・セッションテーブルを作成する
// バケット名の検証はコンストラクト生成時に行われるため、この関数はpanicする
// 呼び出し側は Build を経由してエラーとして受け取ること
func NewAsyncWorkerStack(scope constructs.Construct, id string, props *awscdk.StackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = *props
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	awss3.NewBucket(stack, jsii.String("UserUploadsBucket"), &awss3.BucketProps{
		BucketName:    jsii.String(UserUploadsBucketName),
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	awss3.NewBucket(stack, jsii.String("AppDataBucket"), &awss3.BucketProps{
		BucketName:    jsii.String(AppDataBucketName),
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	awslambda.NewFunction(stack, jsii.String("ImageProcessor"), &awslambda.FunctionProps{
		Runtime:    awslambda.Runtime_NODEJS_18_X(),
		Handler:    jsii.String("index.handler"),
		Code:       awslambda.Code_FromInline(jsii.String("exports.handler = async () => {};")),
		MemorySize: jsii.Number(imageProcessorMemory),
	})

	awsdynamodb.NewTable(stack, jsii.String("SessionTable"), &awsdynamodb.TableProps{
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("sessionId"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		BillingMode:         awsdynamodb.BillingMode_PAY_PER_REQUEST,
		RemovalPolicy:       awscdk.RemovalPolicy_DESTROY,
		PointInTimeRecovery: jsii.Bool(true),
		Stream:              awsdynamodb.StreamViewType_KEYS_ONLY,
		TimeToLiveAttribute: jsii.String(SessionTTLAttribute),
	})

	return stack
}
