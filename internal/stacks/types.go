package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecspatterns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
)

// BackendInfraStackProps はBackendInfraStackのプロパティ
type BackendInfraStackProps struct {
	awscdk.StackProps
	Prefix string
}

// BackendInfraStack はネットワーク・コンテナサービス・監視をまとめたスタック
type BackendInfraStack struct {
	awscdk.Stack
	Network    *NetworkResources
	Container  *ContainerResources
	Monitoring *MonitoringResources
}

// NetworkResources はVPC関連のリソース
type NetworkResources struct {
	Vpc awsec2.Vpc
}

// ContainerResources はECR・ECS・ALB関連のリソース
type ContainerResources struct {
	Repository awsecr.Repository
	Cluster    awsecs.Cluster
	LogGroup   awslogs.LogGroup
	Service    awsecspatterns.ApplicationLoadBalancedFargateService
}

// MonitoringResources はアラームと通知先トピック
type MonitoringResources struct {
	Topic  awssns.Topic
	Alarms []awscloudwatch.Alarm
}

// InstancePlacement はEC2インスタンスに指定したタイプと配置先AZ
type InstancePlacement struct {
	Resource         string // コンストラクトID
	InstanceType     string
	AvailabilityZone string
}

// Ec2TestStack はAZ固定のEC2インスタンスを持つスタック
type Ec2TestStack struct {
	awscdk.Stack
	Instance   awsec2.Instance
	Placements []InstancePlacement
}

// Stacks はBuildで作成されたスタック（未選択のものはnil）
type Stacks struct {
	Backend     *BackendInfraStack
	Ec2Test     *Ec2TestStack
	IamDemo     awscdk.Stack
	S3Bucket    awscdk.Stack
	AsyncWorker awscdk.Stack
}

// All は作成済みのスタックを構築順に返す
func (s *Stacks) All() []awscdk.Stack {
	var all []awscdk.Stack
	if s.Backend != nil {
		all = append(all, s.Backend.Stack)
	}
	if s.Ec2Test != nil {
		all = append(all, s.Ec2Test.Stack)
	}
	for _, st := range []awscdk.Stack{s.IamDemo, s.S3Bucket, s.AsyncWorker} {
		if st != nil {
			all = append(all, st)
		}
	}
	return all
}

// Placements は作成済みスタックのEC2インスタンスの配置指定を返す
func (s *Stacks) Placements() []InstancePlacement {
	if s == nil || s.Ec2Test == nil {
		return nil
	}
	return s.Ec2Test.Placements
}
