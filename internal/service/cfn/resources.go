package cfn

import (
	"context"
	"fmt"

	awsx "backend-infra/internal/aws"
	"backend-infra/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// GetStackResources はスタックからリソース一覧を取得する関数
func GetStackResources(ctx context.Context, api API, stackName string) ([]Resource, error) {
	resp, err := api.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		if awsx.IsStackNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
		}
		return nil, fmt.Errorf("CloudFormationスタックのリソース取得に失敗: %w", err)
	}

	resources := make([]Resource, 0, len(resp.StackResources))
	for _, r := range resp.StackResources {
		resources = append(resources, Resource{
			LogicalId:  awssdk.ToString(r.LogicalResourceId),
			PhysicalId: awssdk.ToString(r.PhysicalResourceId),
			Type:       awssdk.ToString(r.ResourceType),
			Status:     string(r.ResourceStatus),
		})
	}
	return resources, nil
}

// FilterResourcesByType は指定したリソースタイプのみを返す
func FilterResourcesByType(resources []Resource, resourceType string) []Resource {
	var filtered []Resource
	for _, r := range resources {
		if r.Type == resourceType {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ResourcesToTableData はリソース一覧を表示用のテーブルに変換
func ResourcesToTableData(resources []Resource) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "論理ID"},
		{Header: "タイプ"},
		{Header: "物理ID", Width: 60},
		{Header: "ステータス"},
	}
	data := make([][]string, len(resources))
	for i, r := range resources {
		data[i] = []string{r.LogicalId, r.Type, r.PhysicalId, r.Status}
	}
	return columns, data
}
