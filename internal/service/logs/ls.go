package logs

import (
	"context"
	"fmt"
	"strconv"

	"backend-infra/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// ListLogGroups は名前が接頭辞に一致するCloudWatch Logsグループの一覧を取得する関数
func ListLogGroups(ctx context.Context, api API, namePrefix string) ([]LogGroupInfo, error) {
	var groups []LogGroupInfo
	var nextToken *string

	for {
		input := &cloudwatchlogs.DescribeLogGroupsInput{NextToken: nextToken}
		if namePrefix != "" {
			input.LogGroupNamePrefix = awssdk.String(namePrefix)
		}

		result, err := api.DescribeLogGroups(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("ロググループ一覧取得エラー: %w", err)
		}

		for _, g := range result.LogGroups {
			groups = append(groups, LogGroupInfo{
				LogGroupName:    awssdk.ToString(g.LogGroupName),
				StoredBytes:     awssdk.ToInt64(g.StoredBytes),
				CreationTime:    awssdk.ToInt64(g.CreationTime),
				RetentionInDays: g.RetentionInDays,
			})
		}

		if result.NextToken == nil {
			break
		}
		nextToken = result.NextToken
	}

	return groups, nil
}

// LogGroupsToTableData はロググループ一覧を表示用のテーブルに変換
func LogGroupsToTableData(groups []LogGroupInfo) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "ロググループ名"},
		{Header: "サイズ"},
		{Header: "保存期間"},
		{Header: "作成日時"},
	}
	data := make([][]string, len(groups))
	for i, g := range groups {
		retention := "無期限"
		if g.RetentionInDays != nil {
			retention = strconv.Itoa(int(*g.RetentionInDays)) + "日"
		}
		created := g.CreationTime
		data[i] = []string{g.LogGroupName, common.FormatBytes(g.StoredBytes), retention, common.FormatTimestamp(&created)}
	}
	return columns, data
}
