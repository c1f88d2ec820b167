package cfn

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// API はこのパッケージが使うCloudFormationの操作
type API interface {
	ListStacks(ctx context.Context, params *cloudformation.ListStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
	DescribeStackResources(ctx context.Context, params *cloudformation.DescribeStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackResourcesOutput, error)
}

var (
	// ErrStackNotFound は指定したスタックが存在しないことを示す
	ErrStackNotFound = errors.New("スタックが見つかりません")
	// ErrMissingOutputs は必須の出力が欠けていることを示す
	ErrMissingOutputs = errors.New("必須の出力がありません")
	// ErrStackFailed はスタック操作が失敗状態で終了したことを示す
	ErrStackFailed = errors.New("スタック操作が失敗しました")
)

// Stack CfnStack はCloudFormationスタックの名前とステータスを表す構造体
type Stack struct {
	Name   string
	Status string
}

// Resource はスタック内のリソース
type Resource struct {
	LogicalId  string
	PhysicalId string
	Type       string
	Status     string
}

// FailedEvent はリソースごとの最新の失敗イベント
type FailedEvent struct {
	LogicalId    string
	ResourceType string
	Status       string
	Reason       string
	Timestamp    string
}
