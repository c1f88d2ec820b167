package cfn

import (
	"context"
	"fmt"
	"sort"

	"backend-infra/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// activeStatuses は削除済み・処理中を除いたスタックの状態
var activeStatuses = []types.StackStatus{
	types.StackStatusCreateComplete,
	types.StackStatusUpdateComplete,
	types.StackStatusUpdateRollbackComplete,
	types.StackStatusRollbackComplete,
	types.StackStatusImportComplete,
}

// ListOptions はスタック一覧取得のオプション
type ListOptions struct {
	All    bool           // true の場合は状態で絞り込まない
	Filter *common.Filter // スタック名の絞り込み
}

// ListStacks はCloudFormationスタック一覧を名前順で返す
func ListStacks(ctx context.Context, api API, opts ListOptions) ([]Stack, error) {
	var stacks []Stack
	var nextToken *string

	for {
		input := &cloudformation.ListStacksInput{NextToken: nextToken}
		if !opts.All {
			input.StackStatusFilter = activeStatuses
		}

		resp, err := api.ListStacks(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("スタック一覧取得エラー: %w", err)
		}

		for _, summary := range resp.StackSummaries {
			name := awssdk.ToString(summary.StackName)
			if !opts.Filter.Match(name) {
				continue
			}
			stacks = append(stacks, Stack{
				Name:   name,
				Status: string(summary.StackStatus),
			})
		}

		nextToken = resp.NextToken
		if nextToken == nil {
			break
		}
	}

	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Name < stacks[j].Name })
	return stacks, nil
}

// StacksToTableData はスタック一覧を表示用のテーブルに変換
func StacksToTableData(stacks []Stack) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{{Header: "スタック名"}, {Header: "ステータス"}}
	data := make([][]string, len(stacks))
	for i, s := range stacks {
		data[i] = []string{s.Name, s.Status}
	}
	return columns, data
}
