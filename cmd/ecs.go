package cmd

import (
	"context"
	"fmt"
	"os"

	"backend-infra/internal/aws"
	ecssvc "backend-infra/internal/service/ecs"

	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/spf13/cobra"
)

var (
	clusterName string
	serviceName string
)

var EcsCmd = &cobra.Command{
	Use:   "ecs",
	Short: "ECSサービス確認コマンド",
	Long:  `バックエンドのECSサービスを確認するためのコマンド群です。`,
}

var ecsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "ECSサービスの状態を表示するコマンド",
	Long: `ECSサービスのタスク数、タスクの状態、Auto Scalingの範囲、ロードバランサーのターゲットヘルスを表示します。
クラスター名とサービス名を直接指定しない場合は、スタックの出力（ClusterName / ServiceName）から取得します。

例:
  ` + AppName + ` ecs status -P my-profile
  ` + AppName + ` ecs status -c dev-backend-cluster -s dev-backend-service`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		opts := ecssvc.ResolveOptions{
			ClusterName: clusterName,
			ServiceName: serviceName,
		}
		if clusterName == "" || serviceName == "" {
			opts.StackName = resolveStackName()
		}

		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("CloudFormationクライアント作成エラー: %w", err)
		}
		cluster, service, err := ecssvc.ResolveClusterAndService(ctx, cfnClient, opts)
		if err != nil {
			return fmt.Errorf("❌ エラー: %w", err)
		}

		ecsClient, err := aws.NewClient[*ecs.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("ECSクライアント作成エラー: %w", err)
		}
		autoScalingClient, err := aws.NewClient[*applicationautoscaling.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("ApplicationAutoScalingクライアント作成エラー: %w", err)
		}
		elbClient, err := aws.NewClient[*elasticloadbalancingv2.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("ELBv2クライアント作成エラー: %w", err)
		}

		status, err := ecssvc.GetServiceStatus(ctx, ecssvc.Clients{
			Ecs:          ecsClient,
			AutoScaling:  autoScalingClient,
			TargetHealth: elbClient,
		}, ecssvc.StatusOptions{ClusterName: cluster, ServiceName: service})
		if err != nil {
			return fmt.Errorf("❌ サービス状態の取得でエラー: %w", err)
		}

		ecssvc.ShowServiceStatus(os.Stdout, status)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(EcsCmd)
	EcsCmd.AddCommand(ecsStatusCmd)

	ecsStatusCmd.Flags().StringVarP(&clusterName, "cluster", "c", "", "ECSクラスター名")
	ecsStatusCmd.Flags().StringVarP(&serviceName, "service", "s", "", "ECSサービス名")
}
