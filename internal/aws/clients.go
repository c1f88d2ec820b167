package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Client はNewClientで生成できるサービスクライアント
type Client interface {
	*applicationautoscaling.Client |
		*cloudformation.Client |
		*cloudwatch.Client |
		*cloudwatchlogs.Client |
		*ec2.Client |
		*ecr.Client |
		*ecs.Client |
		*elasticloadbalancingv2.Client |
		*iam.Client |
		*s3.Client |
		*sts.Client
}

// NewClient はContextの設定から指定した型のサービスクライアントを生成
// 設定は初回呼び出し時に読み込まれ、以降はキャッシュを使う
func NewClient[T Client](c *Context) (T, error) {
	var zero T

	cfg, err := c.GetConfig(context.Background())
	if err != nil {
		return zero, fmt.Errorf("AWS設定の読み込みエラー: %w", err)
	}

	var client any
	switch any(zero).(type) {
	case *applicationautoscaling.Client:
		client = applicationautoscaling.NewFromConfig(cfg)
	case *cloudformation.Client:
		client = cloudformation.NewFromConfig(cfg)
	case *cloudwatch.Client:
		client = cloudwatch.NewFromConfig(cfg)
	case *cloudwatchlogs.Client:
		client = cloudwatchlogs.NewFromConfig(cfg)
	case *ec2.Client:
		client = ec2.NewFromConfig(cfg)
	case *ecr.Client:
		client = ecr.NewFromConfig(cfg)
	case *ecs.Client:
		client = ecs.NewFromConfig(cfg)
	case *elasticloadbalancingv2.Client:
		client = elasticloadbalancingv2.NewFromConfig(cfg)
	case *iam.Client:
		client = iam.NewFromConfig(cfg)
	case *s3.Client:
		client = s3.NewFromConfig(cfg)
	case *sts.Client:
		client = sts.NewFromConfig(cfg)
	default:
		return zero, fmt.Errorf("未対応のクライアント型: %T", zero)
	}
	return client.(T), nil
}
