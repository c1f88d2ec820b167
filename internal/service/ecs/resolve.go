package ecs

import (
	"context"
	"errors"
	"fmt"

	"backend-infra/internal/naming"
	"backend-infra/internal/service/cfn"
)

// ErrTargetNotSpecified はクラスター・サービスを特定する情報がないことを示す
var ErrTargetNotSpecified = errors.New("スタック名、またはクラスター名とサービス名を指定してください")

// ResolveClusterAndService はオプションからクラスター名とサービス名を決定する
// 直接指定が優先され、なければスタックの出力（ClusterName / ServiceName）から取得する
func ResolveClusterAndService(ctx context.Context, cfnApi cfn.API, opts ResolveOptions) (string, string, error) {
	if opts.ClusterName != "" && opts.ServiceName != "" {
		return opts.ClusterName, opts.ServiceName, nil
	}
	if opts.StackName == "" {
		return "", "", ErrTargetNotSpecified
	}

	outputs, err := cfn.GetOutputs(ctx, cfnApi, opts.StackName)
	if err != nil {
		return "", "", err
	}
	if err := cfn.VerifyRequiredOutputs(outputs, []string{naming.OutputClusterName, naming.OutputServiceName}); err != nil {
		return "", "", fmt.Errorf("スタック '%s' からECSサービスを特定できません: %w", opts.StackName, err)
	}

	cluster := opts.ClusterName
	if cluster == "" {
		cluster = outputs[naming.OutputClusterName]
	}
	service := opts.ServiceName
	if service == "" {
		service = outputs[naming.OutputServiceName]
	}
	return cluster, service, nil
}
