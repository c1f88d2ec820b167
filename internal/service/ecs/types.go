package ecs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
)

// API はサービス状態の取得に使うECSの操作
type API interface {
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	ListTasks(ctx context.Context, params *ecs.ListTasksInput, optFns ...func(*ecs.Options)) (*ecs.ListTasksOutput, error)
	DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error)
}

// AutoScalingAPI はスケーリング設定の取得に使う操作
type AutoScalingAPI interface {
	DescribeScalableTargets(ctx context.Context, params *applicationautoscaling.DescribeScalableTargetsInput, optFns ...func(*applicationautoscaling.Options)) (*applicationautoscaling.DescribeScalableTargetsOutput, error)
}

// TargetHealthAPI はターゲットグループのヘルス取得に使う操作
type TargetHealthAPI interface {
	DescribeTargetHealth(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error)
}

// Clients はサービス状態の取得に必要なクライアント
// AutoScaling と TargetHealth は nil の場合に取得を省略する
type Clients struct {
	Ecs          API
	AutoScaling  AutoScalingAPI
	TargetHealth TargetHealthAPI
}

// ResolveOptions はクラスター名・サービス名の解決に使うパラメータ
type ResolveOptions struct {
	StackName   string
	ClusterName string
	ServiceName string
}

// StatusOptions はECSサービス状態取得のパラメータ
type StatusOptions struct {
	ClusterName string
	ServiceName string
}

// ServiceStatus はECSサービスの状態
type ServiceStatus struct {
	ServiceName    string
	ClusterName    string
	Status         string
	TaskDefinition string
	DesiredCount   int32
	RunningCount   int32
	PendingCount   int32
	Tasks          []TaskInfo
	AutoScaling    *AutoScalingInfo
	Targets        []TargetInfo
}

// TaskInfo はタスクの情報
type TaskInfo struct {
	TaskId       string
	Status       string
	HealthStatus string
	CreatedAt    string
}

// AutoScalingInfo はAuto Scalingのキャパシティ範囲
type AutoScalingInfo struct {
	MinCapacity int32
	MaxCapacity int32
}

// TargetInfo はロードバランサーのターゲットのヘルス
type TargetInfo struct {
	TargetId string
	Port     int32
	State    string
	Reason   string
}
