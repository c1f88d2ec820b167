// Package alarm はプレフィックス配下のCloudWatchアラームを扱う
package alarm

import (
	"context"
	"fmt"
	"strings"

	"backend-infra/internal/naming"
	"backend-infra/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// ParseState はアラーム状態の指定を検証する（大文字小文字は区別しない）
func ParseState(state string) (types.StateValue, error) {
	if state == "" {
		return "", nil
	}
	upper := types.StateValue(strings.ToUpper(state))
	for _, v := range upper.Values() {
		if v == upper {
			return upper, nil
		}
	}
	return "", fmt.Errorf("不正なアラーム状態 %q (指定可能: %v)", state, upper.Values())
}

// ListAlarms はメトリクスアラームの一覧を取得する
func ListAlarms(ctx context.Context, api API, opts ListOptions) ([]Alarm, error) {
	state, err := ParseState(opts.State)
	if err != nil {
		return nil, err
	}

	var alarms []Alarm
	var nextToken *string

	for {
		input := &cloudwatch.DescribeAlarmsInput{
			AlarmTypes: []types.AlarmType{types.AlarmTypeMetricAlarm},
			NextToken:  nextToken,
		}
		if opts.NamePrefix != "" {
			input.AlarmNamePrefix = aws.String(opts.NamePrefix)
		}
		if state != "" {
			input.StateValue = state
		}

		result, err := api.DescribeAlarms(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("アラーム一覧取得エラー: %w", err)
		}

		for _, a := range result.MetricAlarms {
			alarms = append(alarms, Alarm{
				Name:       aws.ToString(a.AlarmName),
				State:      string(a.StateValue),
				Metric:     aws.ToString(a.MetricName),
				Threshold:  aws.ToFloat64(a.Threshold),
				Comparison: string(a.ComparisonOperator),
				Reason:     aws.ToString(a.StateReason),
				UpdatedAt:  a.StateUpdatedTimestamp,
				HasActions: len(a.AlarmActions) > 0,
			})
		}

		if result.NextToken == nil {
			break
		}
		nextToken = result.NextToken
	}

	return alarms, nil
}

// ExpectedAlarmNames はバックエンドスタックが作成するアラーム名
func ExpectedAlarmNames(prefix string) []string {
	suffixes := []string{
		naming.AlarmHighCPU,
		naming.AlarmHighMemory,
		naming.AlarmUnhealthyTargets,
		naming.AlarmHTTP5xx,
		naming.AlarmHighResponseTime,
		naming.AlarmLowTaskCount,
	}
	names := make([]string, len(suffixes))
	for i, s := range suffixes {
		names[i] = naming.AlarmName(prefix, s)
	}
	return names
}

// MissingAlarms は期待するアラームのうち一覧にないものを返す
func MissingAlarms(alarms []Alarm, expected []string) []string {
	found := make(map[string]bool, len(alarms))
	for _, a := range alarms {
		found[a.Name] = true
	}
	var missing []string
	for _, name := range expected {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// AlarmsToTableData はアラーム一覧を表示用のテーブルに変換
func AlarmsToTableData(alarms []Alarm) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "アラーム名"},
		{Header: "状態"},
		{Header: "メトリクス"},
		{Header: "条件"},
		{Header: "更新日時"},
	}
	data := make([][]string, len(alarms))
	for i, a := range alarms {
		updated := "不明"
		if a.UpdatedAt != nil {
			updated = common.FormatTime(*a.UpdatedAt)
		}
		data[i] = []string{
			a.Name,
			stateLabel(a.State),
			a.Metric,
			fmt.Sprintf("%s %g", comparisonSymbol(a.Comparison), a.Threshold),
			updated,
		}
	}
	return columns, data
}

func stateLabel(state string) string {
	switch types.StateValue(state) {
	case types.StateValueAlarm:
		return "🚨 " + state
	case types.StateValueOk:
		return common.SuccessIcon + " " + state
	default:
		return state
	}
}

func comparisonSymbol(op string) string {
	switch types.ComparisonOperator(op) {
	case types.ComparisonOperatorGreaterThanOrEqualToThreshold:
		return ">="
	case types.ComparisonOperatorGreaterThanThreshold:
		return ">"
	case types.ComparisonOperatorLessThanThreshold:
		return "<"
	case types.ComparisonOperatorLessThanOrEqualToThreshold:
		return "<="
	default:
		return op
	}
}
