package logs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogs struct {
	mu         sync.Mutex
	groups     []types.LogGroup
	prefix     string
	events     [][]types.FilteredLogEvent // 呼び出しごとの応答
	calls      int
	startTimes []int64
}

func (f *fakeLogs) DescribeLogGroups(_ context.Context, in *cloudwatchlogs.DescribeLogGroupsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
	f.prefix = awssdk.ToString(in.LogGroupNamePrefix)
	return &cloudwatchlogs.DescribeLogGroupsOutput{LogGroups: f.groups}, nil
}

func (f *fakeLogs) FilterLogEvents(_ context.Context, in *cloudwatchlogs.FilterLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startTimes = append(f.startTimes, awssdk.ToInt64(in.StartTime))
	i := f.calls
	if i >= len(f.events) {
		i = len(f.events) - 1
	}
	f.calls++
	return &cloudwatchlogs.FilterLogEventsOutput{Events: f.events[i]}, nil
}

func event(id string, ts time.Time, msg string) types.FilteredLogEvent {
	return types.FilteredLogEvent{
		EventId:       awssdk.String(id),
		LogStreamName: awssdk.String("ecs/dev-backend-container/abc"),
		Timestamp:     awssdk.Int64(ts.UnixMilli()),
		Message:       awssdk.String(msg),
	}
}

func TestListLogGroups(t *testing.T) {
	api := &fakeLogs{groups: []types.LogGroup{{
		LogGroupName:    awssdk.String("/aws/ecs/dev-backend-app"),
		StoredBytes:     awssdk.Int64(2048),
		RetentionInDays: awssdk.Int32(30),
	}}}

	groups, err := ListLogGroups(context.Background(), api, "/aws/ecs/dev-")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "/aws/ecs/dev-", api.prefix)

	_, data := LogGroupsToTableData(groups)
	assert.Equal(t, []string{"/aws/ecs/dev-backend-app", "2.0 KiB", "30日"}, data[0][:3])
}

func TestTail_Once(t *testing.T) {
	now := time.Now()
	api := &fakeLogs{events: [][]types.FilteredLogEvent{{
		event("1", now.Add(-time.Minute), "server started"),
		event("2", now, "GET /health 200"),
	}}}

	var buf bytes.Buffer
	err := Tail(context.Background(), api, TailOptions{LogGroupName: "/aws/ecs/dev-backend-app", Since: time.Hour, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "GET /health 200")
	assert.InDelta(t, now.Add(-time.Hour).UnixMilli(), api.startTimes[0], 1000)
}

func TestTail_FollowDeduplicates(t *testing.T) {
	now := time.Now()
	first := event("1", now, "first")
	second := event("2", now.Add(time.Second), "second")
	api := &fakeLogs{events: [][]types.FilteredLogEvent{
		{first},
		{first, second},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := Tail(ctx, api, TailOptions{LogGroupName: "g", Follow: true, Interval: 5 * time.Millisecond, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "first"))
	assert.Equal(t, 1, strings.Count(buf.String(), "second"))
	assert.GreaterOrEqual(t, api.startTimes[1], now.UnixMilli())
}

func TestPruneSeen(t *testing.T) {
	start := time.UnixMilli(time.Now().UnixMilli()).Add(500 * time.Microsecond)
	seen := map[string]time.Time{
		"same-ms":  time.UnixMilli(start.UnixMilli()),
		"old":      start.Add(-time.Second),
		"boundary": start,
		"new":      start.Add(time.Second),
	}

	pruneSeen(seen, start)
	assert.Len(t, seen, 3)
	assert.NotContains(t, seen, "old")
	assert.Contains(t, seen, "same-ms")
	assert.Contains(t, seen, "boundary")
}

func TestTail_FollowAdvancesStart(t *testing.T) {
	now := time.Now()
	var polls [][]types.FilteredLogEvent
	for i := 0; i < 20; i++ {
		polls = append(polls, []types.FilteredLogEvent{
			event(fmt.Sprintf("e%d", i), now.Add(time.Duration(i)*time.Second), fmt.Sprintf("line %d", i)),
		})
	}
	api := &fakeLogs{events: polls}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := Tail(ctx, api, TailOptions{LogGroupName: "g", Follow: true, Interval: time.Millisecond, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, 20, strings.Count(buf.String(), "line "))
	// 各ポーリングの開始時刻は直前に表示したイベントの時刻まで進む
	for i := 1; i < len(api.startTimes) && i < 20; i++ {
		assert.Equal(t, now.Add(time.Duration(i-1)*time.Second).UnixMilli(), api.startTimes[i])
	}
}
