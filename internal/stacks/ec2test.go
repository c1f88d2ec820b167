package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// t2.micro が提供されていないAZに固定してキャパシティエラーを再現する
const (
	Ec2TestInstanceType     = "t2.micro"
	Ec2TestAvailabilityZone = "us-west-2d"
	Ec2TestDescription      = "EC2 test stack to reproduce t2.micro availability error in us-west-2d"
)

// Ec2TestInstanceId はインスタンスのコンストラクトID
const Ec2TestInstanceId = "TestInstance"

// NewEc2TestStack はデフォルトVPC上にAZ固定のEC2インスタンスを1台作成する
// VPCのルックアップにはアカウントとリージョンの指定が必要
// ルックアップ結果がコンテキストにない間はダミーVPCで合成されるため、
// テンプレートのAZはダミー値になる。指定したAZは Placements に残す
func NewEc2TestStack(scope constructs.Construct, id string, props *awscdk.StackProps) *Ec2TestStack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = *props
	}
	if sprops.Description == nil {
		sprops.Description = jsii.String(Ec2TestDescription)
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	vpc := awsec2.Vpc_FromLookup(stack, jsii.String("DefaultVpc"), &awsec2.VpcLookupOptions{
		IsDefault: jsii.Bool(true),
	})

	placement := InstancePlacement{
		Resource:         Ec2TestInstanceId,
		InstanceType:     Ec2TestInstanceType,
		AvailabilityZone: Ec2TestAvailabilityZone,
	}
	instance := awsec2.NewInstance(stack, jsii.String(placement.Resource), &awsec2.InstanceProps{
		Vpc:              vpc,
		InstanceType:     awsec2.NewInstanceType(jsii.String(placement.InstanceType)),
		MachineImage:     awsec2.MachineImage_LatestAmazonLinux2(nil),
		AvailabilityZone: jsii.String(placement.AvailabilityZone),
	})

	return &Ec2TestStack{
		Stack:      stack,
		Instance:   instance,
		Placements: []InstancePlacement{placement},
	}
}
