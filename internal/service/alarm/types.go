package alarm

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// API はこのパッケージが使うCloudWatchの操作
type API interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

// Alarm はメトリクスアラーム1件の情報
type Alarm struct {
	Name       string
	State      string
	Metric     string
	Threshold  float64
	Comparison string
	Reason     string
	UpdatedAt  *time.Time
	HasActions bool
}

// ListOptions はアラーム一覧取得のオプション
type ListOptions struct {
	NamePrefix string
	State      string // OK / ALARM / INSUFFICIENT_DATA（空文字はすべて）
}
