package cfn

import (
	"context"
	"fmt"
	"sort"
	"strings"

	awsx "backend-infra/internal/aws"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// DescribeStack はスタックの詳細を取得する
// 存在しない場合は ErrStackNotFound を返す
func DescribeStack(ctx context.Context, api API, stackName string) (*types.Stack, error) {
	resp, err := api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		if awsx.IsStackNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
		}
		return nil, fmt.Errorf("スタック情報の取得に失敗: %w", err)
	}
	if len(resp.Stacks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
	}
	return &resp.Stacks[0], nil
}

// GetOutputs はスタックの出力をキーと値のマップで返す
func GetOutputs(ctx context.Context, api API, stackName string) (map[string]string, error) {
	stack, err := DescribeStack(ctx, api, stackName)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]string, len(stack.Outputs))
	for _, o := range stack.Outputs {
		outputs[awssdk.ToString(o.OutputKey)] = awssdk.ToString(o.OutputValue)
	}
	return outputs, nil
}

// VerifyRequiredOutputs は必須の出力キーがすべて存在するか検証する
// 欠けている場合は ErrMissingOutputs をキー名付きで返す
func VerifyRequiredOutputs(outputs map[string]string, required []string) error {
	var missing []string
	for _, key := range required {
		if outputs[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingOutputs, strings.Join(missing, ", "))
	}
	return nil
}

// SortedKeys は出力キーを名前順で返す
func SortedKeys(outputs map[string]string) []string {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
