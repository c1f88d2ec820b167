package stacks

import (
	"os"
	"strings"
	"testing"

	"backend-infra/internal/naming"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	jsii.Close()
	os.Exit(code)
}

func newBackendTemplate(t *testing.T) (*BackendInfraStack, assertions.Template) {
	t.Helper()
	app := awscdk.NewApp(nil)
	stack := NewBackendInfraStack(app, "TestStack", &BackendInfraStackProps{Prefix: "test"})
	return stack, assertions.Template_FromStack(stack.Stack, nil)
}

func TestBackendInfraStack_Resources(t *testing.T) {
	_, template := newBackendTemplate(t)

	cases := []struct {
		name     string
		resource string
		props    map[string]interface{}
	}{
		{
			name:     "VPC",
			resource: "AWS::EC2::VPC",
			props:    map[string]interface{}{"CidrBlock": "10.0.0.0/16"},
		},
		{
			name:     "ECRリポジトリ",
			resource: "AWS::ECR::Repository",
			props: map[string]interface{}{
				"RepositoryName":             "test-backend-app",
				"ImageTagMutability":         "MUTABLE",
				"ImageScanningConfiguration": map[string]interface{}{"ScanOnPush": true},
			},
		},
		{
			name:     "ECSクラスター",
			resource: "AWS::ECS::Cluster",
			props: map[string]interface{}{
				"ClusterName": "test-backend-cluster",
				"ClusterSettings": []interface{}{
					map[string]interface{}{"Name": "containerInsights", "Value": "enabled"},
				},
			},
		},
		{
			name:     "ALB",
			resource: "AWS::ElasticLoadBalancingV2::LoadBalancer",
			props: map[string]interface{}{
				"Name":   "test-ALB",
				"Scheme": "internet-facing",
				"Type":   "application",
			},
		},
		{
			name:     "ロググループ",
			resource: "AWS::Logs::LogGroup",
			props: map[string]interface{}{
				"LogGroupName":    "/aws/ecs/test-backend-app",
				"RetentionInDays": 30,
			},
		},
		{
			name:     "ECSサービス",
			resource: "AWS::ECS::Service",
			props: map[string]interface{}{
				"ServiceName":  "test-backend-service",
				"DesiredCount": 2,
				"LaunchType":   "FARGATE",
			},
		},
		{
			name:     "SNSトピック",
			resource: "AWS::SNS::Topic",
			props: map[string]interface{}{
				"TopicName":   "test-backend-alarms",
				"DisplayName": "test Backend Infrastructure Alarms",
			},
		},
		{
			name:     "ターゲットグループのヘルスチェック",
			resource: "AWS::ElasticLoadBalancingV2::TargetGroup",
			props: map[string]interface{}{
				"HealthCheckPath":            "/health",
				"HealthCheckPort":            "3000",
				"HealthCheckIntervalSeconds": 30,
				"HealthCheckTimeoutSeconds":  5,
				"HealthyThresholdCount":      2,
				"UnhealthyThresholdCount":    3,
				"Matcher":                    map[string]interface{}{"HttpCode": "200"},
			},
		},
		{
			name:     "スケーリング範囲",
			resource: "AWS::ApplicationAutoScaling::ScalableTarget",
			props: map[string]interface{}{
				"MinCapacity": 1,
				"MaxCapacity": 10,
			},
		},
		{
			name:     "Cloud Map名前空間",
			resource: "AWS::ServiceDiscovery::PrivateDnsNamespace",
			props:    map[string]interface{}{"Name": "test.local"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			template.HasResourceProperties(jsii.String(tc.resource), tc.props)
		})
	}
}

func TestBackendInfraStack_TaskDefinition(t *testing.T) {
	_, template := newBackendTemplate(t)

	template.HasResourceProperties(jsii.String("AWS::ECS::TaskDefinition"), map[string]interface{}{
		"Cpu":    "512",
		"Memory": "1024",
		"ContainerDefinitions": assertions.Match_ArrayWith(&[]interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"Name":         "test-backend-container",
				"PortMappings": assertions.Match_ArrayWith(&[]interface{}{map[string]interface{}{"ContainerPort": 3000, "Protocol": "tcp"}}),
				"Environment": assertions.Match_ArrayWith(&[]interface{}{
					map[string]interface{}{"Name": "NODE_ENV", "Value": "production"},
				}),
				"LogConfiguration": assertions.Match_ObjectLike(&map[string]interface{}{
					"LogDriver": "awslogs",
				}),
			}),
		}),
	})
}

func TestBackendInfraStack_ScalingPolicies(t *testing.T) {
	_, template := newBackendTemplate(t)

	template.ResourceCountIs(jsii.String("AWS::ApplicationAutoScaling::ScalingPolicy"), jsii.Number(2))
	for _, target := range []float64{70, 80} {
		template.HasResourceProperties(jsii.String("AWS::ApplicationAutoScaling::ScalingPolicy"), map[string]interface{}{
			"PolicyType": "TargetTrackingScaling",
			"TargetTrackingScalingPolicyConfiguration": assertions.Match_ObjectLike(&map[string]interface{}{
				"TargetValue":      target,
				"ScaleInCooldown":  300,
				"ScaleOutCooldown": 300,
			}),
		})
	}
}

func TestBackendInfraStack_Alarms(t *testing.T) {
	_, template := newBackendTemplate(t)

	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(6))

	cases := []struct {
		name       string
		metric     string
		threshold  float64
		periods    float64
		comparison string
		missing    string
	}{
		{"test-HighCPUUtilization", "CPUUtilization", 80, 2, "GreaterThanOrEqualToThreshold", "notBreaching"},
		{"test-HighMemoryUtilization", "MemoryUtilization", 85, 2, "GreaterThanOrEqualToThreshold", "notBreaching"},
		{"test-UnhealthyTargets", "UnHealthyHostCount", 1, 2, "GreaterThanOrEqualToThreshold", "notBreaching"},
		{"test-HTTP5xxErrors", "HTTPCode_Target_5XX_Count", 10, 2, "GreaterThanOrEqualToThreshold", "notBreaching"},
		{"test-HighResponseTime", "TargetResponseTime", 2, 3, "GreaterThanOrEqualToThreshold", "notBreaching"},
		{"test-LowTaskCount", "RunningTaskCount", 1, 2, "LessThanThreshold", "breaching"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]interface{}{
				"AlarmName":          tc.name,
				"MetricName":         tc.metric,
				"Threshold":          tc.threshold,
				"EvaluationPeriods":  tc.periods,
				"ComparisonOperator": tc.comparison,
				"TreatMissingData":   tc.missing,
				"AlarmActions":       assertions.Match_AnyValue(),
			})
		})
	}
}

func TestBackendInfraStack_Outputs(t *testing.T) {
	_, template := newBackendTemplate(t)

	for _, key := range naming.RequiredOutputs {
		t.Run(key, func(t *testing.T) {
			template.HasOutput(jsii.String(key), map[string]interface{}{
				"Export": map[string]interface{}{"Name": "test-" + key},
			})
		})
	}
}

func TestBackendInfraStack_Description(t *testing.T) {
	_, template := newBackendTemplate(t)
	assert.Equal(t, "Backend Infrastructure Stack with prefix: test", (*template.ToJSON())["Description"])
}

func TestBackendInfraStack_ResourceNamesArePrefixed(t *testing.T) {
	_, template := newBackendTemplate(t)

	resources := template.FindResources(jsii.String("AWS::ECR::Repository"), nil)
	require.NotNil(t, resources)

	found := false
	for logicalID := range *resources {
		if strings.Contains(logicalID, "test") {
			found = true
		}
	}
	assert.True(t, found, "ECRリポジトリの論理IDにプレフィックスが含まれていない")
}
