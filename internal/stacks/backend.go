package stacks

import (
	"backend-infra/internal/naming"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapplicationautoscaling"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecspatterns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// コンテナとスケーリングの設定値
const (
	containerPort     = 3000
	listenerPort      = 80
	taskCpu           = 512
	taskMemoryMiB     = 1024
	desiredTaskCount  = 2
	minTaskCount      = 1
	maxTaskCount      = 10
	cpuTargetPercent  = 70
	memTargetPercent  = 80
	scalingCooldown   = 300
	imageTag          = "latest"
	healthCheckPath   = "/health"
	logStreamPrefix   = "ecs"
	containerInsights = true
)

// NewBackendInfraStack はVPC・ECR・ECS(Fargate+ALB)・ロググループ・アラームを持つスタックを作成
func NewBackendInfraStack(scope constructs.Construct, id string, props *BackendInfraStackProps) *BackendInfraStack {
	sprops := props.StackProps
	if sprops.Description == nil {
		sprops.Description = jsii.String(naming.StackDescription(props.Prefix))
	}
	stack := awscdk.NewStack(scope, &id, &sprops)
	prefix := props.Prefix

	network := createNetworkResources(stack, prefix)
	container := createContainerResources(stack, prefix, network)
	monitoring := createMonitoringResources(stack, prefix, container)

	createOutputs(stack, prefix, container, monitoring)

	return &BackendInfraStack{
		Stack:      stack,
		Network:    network,
		Container:  container,
		Monitoring: monitoring,
	}
}

// createNetworkResources はパブリック/プライベートサブネットを持つVPCを作成
func createNetworkResources(stack awscdk.Stack, prefix string) *NetworkResources {
	vpc := awsec2.NewVpc(stack, jsii.String(prefix+"-VPC"), &awsec2.VpcProps{
		IpAddresses: awsec2.IpAddresses_Cidr(jsii.String("10.0.0.0/16")),
		MaxAzs:      jsii.Number(2),
		NatGateways: jsii.Number(1),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				CidrMask:   jsii.Number(24),
				Name:       jsii.String(prefix + "-Public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
			},
			{
				CidrMask:   jsii.Number(24),
				Name:       jsii.String(prefix + "-Private"),
				SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
			},
		},
	})

	return &NetworkResources{Vpc: vpc}
}

// createContainerResources はECRリポジトリ・ECSクラスター・ロググループ・Fargateサービスを作成
func createContainerResources(stack awscdk.Stack, prefix string, network *NetworkResources) *ContainerResources {
	repository := awsecr.NewRepository(stack, jsii.String(prefix+"-ECR-Repository"), &awsecr.RepositoryProps{
		RepositoryName:     jsii.String(naming.RepositoryName(prefix)),
		RemovalPolicy:      awscdk.RemovalPolicy_DESTROY,
		ImageTagMutability: awsecr.TagMutability_MUTABLE,
		ImageScanOnPush:    jsii.Bool(true),
	})

	// サービスのCloud Map登録にはクラスター側の名前空間が必要
	cluster := awsecs.NewCluster(stack, jsii.String(prefix+"-ECS-Cluster"), &awsecs.ClusterProps{
		ClusterName:       jsii.String(naming.ClusterName(prefix)),
		Vpc:               network.Vpc,
		ContainerInsights: jsii.Bool(containerInsights),
		DefaultCloudMapNamespace: &awsecs.CloudMapNamespaceOptions{
			Name: jsii.String(naming.CloudMapNamespace(prefix)),
		},
	})

	logGroup := awslogs.NewLogGroup(stack, jsii.String(prefix+"-Log-Group"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String(naming.LogGroupName(prefix)),
		Retention:     awslogs.RetentionDays_ONE_MONTH,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	service := awsecspatterns.NewApplicationLoadBalancedFargateService(
		stack,
		jsii.String(prefix+"-Fargate-Service"),
		&awsecspatterns.ApplicationLoadBalancedFargateServiceProps{
			ServiceName:        jsii.String(naming.ServiceName(prefix)),
			Cluster:            cluster,
			Cpu:                jsii.Number(taskCpu),
			MemoryLimitMiB:     jsii.Number(taskMemoryMiB),
			DesiredCount:       jsii.Number(desiredTaskCount),
			ListenerPort:       jsii.Number(listenerPort),
			PublicLoadBalancer: jsii.Bool(true),
			TaskImageOptions: &awsecspatterns.ApplicationLoadBalancedTaskImageOptions{
				Image:         awsecs.ContainerImage_FromEcrRepository(repository, jsii.String(imageTag)),
				ContainerName: jsii.String(naming.ContainerName(prefix)),
				ContainerPort: jsii.Number(containerPort),
				LogDriver: awsecs.LogDriver_AwsLogs(&awsecs.AwsLogDriverProps{
					StreamPrefix: jsii.String(logStreamPrefix),
					LogGroup:     logGroup,
				}),
				Environment: &map[string]*string{
					"NODE_ENV": jsii.String("production"),
					"PORT":     jsii.String("3000"),
				},
			},
			LoadBalancerName: jsii.String(naming.LoadBalancerName(prefix)),
			CloudMapOptions: &awsecs.CloudMapOptions{
				Name: jsii.String(naming.CloudMapName(prefix)),
			},
		},
	)

	service.TargetGroup().ConfigureHealthCheck(&awselasticloadbalancingv2.HealthCheck{
		Path:                    jsii.String(healthCheckPath),
		Port:                    jsii.String("3000"),
		Protocol:                awselasticloadbalancingv2.Protocol_HTTP,
		HealthyHttpCodes:        jsii.String("200"),
		Interval:                awscdk.Duration_Seconds(jsii.Number(30)),
		Timeout:                 awscdk.Duration_Seconds(jsii.Number(5)),
		HealthyThresholdCount:   jsii.Number(2),
		UnhealthyThresholdCount: jsii.Number(3),
	})

	// Auto Scaling
	scalableTarget := service.Service().AutoScaleTaskCount(&awsapplicationautoscaling.EnableScalingProps{
		MinCapacity: jsii.Number(minTaskCount),
		MaxCapacity: jsii.Number(maxTaskCount),
	})

	scalableTarget.ScaleOnCpuUtilization(jsii.String(prefix+"-CPU-Scaling"), &awsecs.CpuUtilizationScalingProps{
		TargetUtilizationPercent: jsii.Number(cpuTargetPercent),
		ScaleInCooldown:          awscdk.Duration_Seconds(jsii.Number(scalingCooldown)),
		ScaleOutCooldown:         awscdk.Duration_Seconds(jsii.Number(scalingCooldown)),
	})

	scalableTarget.ScaleOnMemoryUtilization(jsii.String(prefix+"-Memory-Scaling"), &awsecs.MemoryUtilizationScalingProps{
		TargetUtilizationPercent: jsii.Number(memTargetPercent),
		ScaleInCooldown:          awscdk.Duration_Seconds(jsii.Number(scalingCooldown)),
		ScaleOutCooldown:         awscdk.Duration_Seconds(jsii.Number(scalingCooldown)),
	})

	return &ContainerResources{
		Repository: repository,
		Cluster:    cluster,
		LogGroup:   logGroup,
		Service:    service,
	}
}

// alarmSpec はアラーム1件分の定義
type alarmSpec struct {
	id          string
	suffix      string
	description string
	metric      awscloudwatch.IMetric
	threshold   float64
	periods     float64
	comparison  awscloudwatch.ComparisonOperator
	missingData awscloudwatch.TreatMissingData
}

// createMonitoringResources はSNSトピックとCloudWatchアラームを作成
func createMonitoringResources(stack awscdk.Stack, prefix string, container *ContainerResources) *MonitoringResources {
	topic := awssns.NewTopic(stack, jsii.String(prefix+"-Alarm-Topic"), &awssns.TopicProps{
		TopicName:   jsii.String(naming.TopicName(prefix)),
		DisplayName: jsii.String(naming.TopicDisplayName(prefix)),
	})

	fargate := container.Service
	average := func(minutes float64) *awscloudwatch.MetricOptions {
		return &awscloudwatch.MetricOptions{
			Period:    awscdk.Duration_Minutes(jsii.Number(minutes)),
			Statistic: jsii.String("Average"),
		}
	}

	// RunningTaskCount はパターンにヘルパーがないため直接定義する
	runningTasks := awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
		Namespace:  jsii.String("AWS/ECS"),
		MetricName: jsii.String("RunningTaskCount"),
		DimensionsMap: &map[string]*string{
			"ServiceName": fargate.Service().ServiceName(),
			"ClusterName": container.Cluster.ClusterName(),
		},
		Period:    awscdk.Duration_Minutes(jsii.Number(1)),
		Statistic: jsii.String("Average"),
	})

	specs := []alarmSpec{
		{
			id:          "-High-CPU-Alarm",
			suffix:      naming.AlarmHighCPU,
			description: "Alarm when CPU exceeds 80%",
			metric:      fargate.Service().MetricCpuUtilization(average(5)),
			threshold:   80,
			periods:     2,
			comparison:  awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_NOT_BREACHING,
		},
		{
			id:          "-High-Memory-Alarm",
			suffix:      naming.AlarmHighMemory,
			description: "Alarm when Memory exceeds 85%",
			metric:      fargate.Service().MetricMemoryUtilization(average(5)),
			threshold:   85,
			periods:     2,
			comparison:  awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_NOT_BREACHING,
		},
		{
			id:          "-Unhealthy-Targets-Alarm",
			suffix:      naming.AlarmUnhealthyTargets,
			description: "Alarm when there are unhealthy targets behind the load balancer",
			metric:      fargate.TargetGroup().MetricUnhealthyHostCount(average(1)),
			threshold:   1,
			periods:     2,
			comparison:  awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_NOT_BREACHING,
		},
		{
			id:          "-HTTP-5xx-Alarm",
			suffix:      naming.AlarmHTTP5xx,
			description: "Alarm when HTTP 5xx error rate is high",
			metric: fargate.LoadBalancer().MetricHttpCodeTarget(
				awselasticloadbalancingv2.HttpCodeTarget_TARGET_5XX_COUNT,
				&awscloudwatch.MetricOptions{
					Period:    awscdk.Duration_Minutes(jsii.Number(5)),
					Statistic: jsii.String("Sum"),
				},
			),
			threshold:   10,
			periods:     2,
			comparison:  awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_NOT_BREACHING,
		},
		{
			id:          "-Response-Time-Alarm",
			suffix:      naming.AlarmHighResponseTime,
			description: "Alarm when response time exceeds 2 seconds",
			metric:      fargate.LoadBalancer().MetricTargetResponseTime(average(5)),
			threshold:   2,
			periods:     3,
			comparison:  awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_NOT_BREACHING,
		},
		{
			// サービス停止時はメトリクス自体が欠落するため欠損を異常として扱う
			id:          "-Task-Count-Alarm",
			suffix:      naming.AlarmLowTaskCount,
			description: "Alarm when running task count is below desired",
			metric:      runningTasks,
			threshold:   1,
			periods:     2,
			comparison:  awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
			missingData: awscloudwatch.TreatMissingData_BREACHING,
		},
	}

	action := awscloudwatchactions.NewSnsAction(topic)
	alarms := make([]awscloudwatch.Alarm, 0, len(specs))
	for _, spec := range specs {
		alarm := awscloudwatch.NewAlarm(stack, jsii.String(prefix+spec.id), &awscloudwatch.AlarmProps{
			AlarmName:          jsii.String(naming.AlarmName(prefix, spec.suffix)),
			AlarmDescription:   jsii.String(spec.description),
			Metric:             spec.metric,
			Threshold:          jsii.Number(spec.threshold),
			EvaluationPeriods:  jsii.Number(spec.periods),
			ComparisonOperator: spec.comparison,
			TreatMissingData:   spec.missingData,
		})
		alarm.AddAlarmAction(action)
		alarms = append(alarms, alarm)
	}

	return &MonitoringResources{
		Topic:  topic,
		Alarms: alarms,
	}
}

// createOutputs は後続ツールが参照する出力をエクスポート付きで定義
func createOutputs(stack awscdk.Stack, prefix string, container *ContainerResources, monitoring *MonitoringResources) {
	outputs := []struct {
		key         string
		value       *string
		description string
	}{
		{naming.OutputLoadBalancerDNS, container.Service.LoadBalancer().LoadBalancerDnsName(), "Load Balancer DNS Name"},
		{naming.OutputECRRepositoryURI, container.Repository.RepositoryUri(), "ECR Repository URI"},
		{naming.OutputClusterName, container.Cluster.ClusterName(), "ECS Cluster Name"},
		{naming.OutputServiceName, container.Service.Service().ServiceName(), "ECS Service Name"},
		{naming.OutputLogGroupName, container.LogGroup.LogGroupName(), "CloudWatch Log Group Name"},
		{naming.OutputSNSTopicArn, monitoring.Topic.TopicArn(), "SNS Topic ARN for Alarms"},
	}

	for _, o := range outputs {
		awscdk.NewCfnOutput(stack, jsii.String(o.key), &awscdk.CfnOutputProps{
			Value:       o.value,
			Description: jsii.String(o.description),
			ExportName:  jsii.String(naming.ExportName(prefix, o.key)),
		})
	}
}
