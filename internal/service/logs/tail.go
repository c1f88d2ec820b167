package logs

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// FetchEvents は指定時刻以降のログイベントをすべて取得する
func FetchEvents(ctx context.Context, api API, logGroupName, pattern string, start time.Time) ([]Event, error) {
	var events []Event
	var nextToken *string

	for {
		input := &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: awssdk.String(logGroupName),
			StartTime:    awssdk.Int64(start.UnixMilli()),
			NextToken:    nextToken,
		}
		if pattern != "" {
			input.FilterPattern = awssdk.String(pattern)
		}

		result, err := api.FilterLogEvents(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("ログイベント取得エラー (%s): %w", logGroupName, err)
		}

		for _, e := range result.Events {
			events = append(events, Event{
				Id:        awssdk.ToString(e.EventId),
				Stream:    awssdk.ToString(e.LogStreamName),
				Timestamp: time.UnixMilli(awssdk.ToInt64(e.Timestamp)),
				Message:   awssdk.ToString(e.Message),
			})
		}

		if result.NextToken == nil {
			break
		}
		nextToken = result.NextToken
	}

	return events, nil
}

// Tail はロググループのイベントを表示する
// Follow が有効な場合はコンテキストがキャンセルされるまで新しいイベントを表示し続ける
func Tail(ctx context.Context, api API, opts TailOptions) error {
	if opts.Since <= 0 {
		opts.Since = 10 * time.Minute
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}

	start := time.Now().Add(-opts.Since)
	seen := make(map[string]time.Time)

	for {
		events, err := FetchEvents(ctx, api, opts.LogGroupName, opts.Pattern, start)
		if err != nil {
			if opts.Follow && ctx.Err() != nil {
				return nil
			}
			return err
		}

		for _, e := range events {
			if _, ok := seen[e.Id]; ok {
				continue
			}
			seen[e.Id] = e.Timestamp
			fmt.Fprintf(opts.Out, "%s [%s] %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Stream, e.Message)
			// 同じミリ秒のイベントを取りこぼさないよう開始時刻は進めすぎない
			if e.Timestamp.After(start) {
				start = e.Timestamp
			}
		}

		if !opts.Follow {
			return nil
		}
		pruneSeen(seen, start)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.Interval):
		}
	}
}

// pruneSeen は開始時刻より前のイベントIDを捨てる
// StartTime より前のイベントは次回以降の取得結果に含まれない
func pruneSeen(seen map[string]time.Time, start time.Time) {
	// StartTime はミリ秒単位で渡すため、同じミリ秒のイベントは残す
	cutoff := time.UnixMilli(start.UnixMilli())
	for id, ts := range seen {
		if ts.Before(cutoff) {
			delete(seen, id)
		}
	}
}
