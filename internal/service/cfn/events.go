package cfn

import (
	"context"
	"fmt"
	"io"
	"strings"

	awsx "backend-infra/internal/aws"
	"backend-infra/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// MaxFailedEvents は表示する失敗イベントの上限
const MaxFailedEvents = 5

const (
	reasonWidth = 70
	separator   = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

// GetFailedEvents はスタックの失敗イベントをリソースごとに最新の1件ずつ返す
// イベントは新しい順に返されるため、最初に見つかったものが最新になる
func GetFailedEvents(ctx context.Context, api API, stackName string, limit int) ([]FailedEvent, error) {
	if limit <= 0 {
		limit = MaxFailedEvents
	}

	seenResources := make(map[string]bool)
	var failed []FailedEvent
	var nextToken *string

	for {
		resp, err := api.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
			StackName: awssdk.String(stackName),
			NextToken: nextToken,
		})
		if err != nil {
			if awsx.IsStackNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
			}
			return nil, fmt.Errorf("スタックイベントの取得に失敗: %w", err)
		}

		for _, event := range resp.StackEvents {
			status := string(event.ResourceStatus)
			resourceId := awssdk.ToString(event.LogicalResourceId)

			if seenResources[resourceId] || !strings.HasSuffix(status, "_FAILED") {
				continue
			}
			seenResources[resourceId] = true

			var timestamp string
			if event.Timestamp != nil {
				timestamp = common.FormatTime(*event.Timestamp)
			}
			failed = append(failed, FailedEvent{
				LogicalId:    resourceId,
				ResourceType: awssdk.ToString(event.ResourceType),
				Status:       status,
				Reason:       awssdk.ToString(event.ResourceStatusReason),
				Timestamp:    timestamp,
			})
			if len(failed) >= limit {
				return failed, nil
			}
		}

		nextToken = resp.NextToken
		if nextToken == nil {
			break
		}
	}

	return failed, nil
}

// PrintFailedEvents は失敗イベントを読みやすく表示する
func PrintFailedEvents(w io.Writer, events []FailedEvent) {
	if len(events) == 0 {
		fmt.Fprintf(w, "%s  失敗イベントが見つかりませんでした\n", common.WarningIcon)
		return
	}

	for i, event := range events {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "📍 リソース: %s (%s)\n", event.LogicalId, event.ResourceType)
		fmt.Fprintf(w, "⏰ 時刻: %s\n", event.Timestamp)
		fmt.Fprintf(w, "%s ステータス: %s\n", common.ErrorIcon, event.Status)

		if event.Reason != "" {
			fmt.Fprintln(w, "💬 理由:")
			for _, line := range wrapReason(event.Reason, reasonWidth) {
				fmt.Fprintf(w, "   %s\n", line)
			}
		}
	}
	fmt.Fprintln(w, separator)
}

// wrapReason は空白位置で折り返す（空白がなければ幅で切る）
func wrapReason(reason string, maxWidth int) []string {
	var lines []string
	for len(reason) > 0 {
		if len(reason) <= maxWidth {
			lines = append(lines, reason)
			break
		}
		breakPoint := maxWidth
		for breakPoint > 0 && reason[breakPoint] != ' ' {
			breakPoint--
		}
		if breakPoint == 0 {
			// 空白がない場合は表示幅で切る（マルチバイト文字を分断しない）
			breakPoint = len(common.WrapText(reason, maxWidth)[0])
		}
		lines = append(lines, reason[:breakPoint])
		reason = strings.TrimSpace(reason[breakPoint:])
	}
	return lines
}
