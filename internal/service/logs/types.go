package logs

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// API はこのパッケージが使うCloudWatch Logsの操作
type API interface {
	DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// LogGroupInfo はロググループの情報を保持する構造体
type LogGroupInfo struct {
	LogGroupName    string
	StoredBytes     int64
	CreationTime    int64
	RetentionInDays *int32
}

// Event はログイベント1件
type Event struct {
	Id        string
	Stream    string
	Timestamp time.Time
	Message   string
}

// TailOptions はログ表示のオプション
type TailOptions struct {
	LogGroupName string
	Since        time.Duration // 現在時刻から遡る期間
	Pattern      string        // CloudWatch Logsのフィルタパターン
	Follow       bool          // true の場合は新しいイベントを待ち続ける
	Interval     time.Duration // Follow時のポーリング間隔
	Out          io.Writer
}
