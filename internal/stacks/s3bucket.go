package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// BucketNameParameter はバケット名を受け取るパラメータの論理ID
const BucketNameParameter = "BucketName"

// NewS3BucketStack はデフォルト値のないパラメータからバケット名を決めるスタックを作成する
// パラメータを渡さずにデプロイすると失敗する
func NewS3BucketStack(scope constructs.Construct, id string, props *awscdk.StackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = *props
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	bucketName := awscdk.NewCfnParameter(stack, jsii.String(BucketNameParameter), &awscdk.CfnParameterProps{
		Type:        jsii.String("String"),
		Description: jsii.String("Name for the S3 bucket"),
	})

	awss3.NewBucket(stack, jsii.String("DemoBucket"), &awss3.BucketProps{
		BucketName:    bucketName.ValueAsString(),
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	return stack
}
