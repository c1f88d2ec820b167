package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"backend-infra/internal/aws"
	"backend-infra/internal/naming"
	"backend-infra/internal/service/cfn"
	"backend-infra/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/spf13/cobra"
)

var (
	cfnFilter       string
	cfnAll          bool
	cfnVerify       bool
	cfnWatchTimeout time.Duration
	cfnInterval     time.Duration
	cfnResourceType string
)

// CfnCmd represents the cfn command
var CfnCmd = &cobra.Command{
	Use:   "cfn",
	Short: "CloudFormationスタック確認コマンド",
	Long:  `デプロイ済みのCloudFormationスタックを確認するためのコマンド群です。`,
}

var cfnLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "CloudFormationスタック一覧を表示するコマンド",
	Long: `CloudFormationスタック一覧を表示します。
--filter にはglobパターン（例: "dev-*"）または部分一致の文字列を指定できます。

例:
  ` + AppName + ` cfn ls -P my-profile
  ` + AppName + ` cfn ls --filter "stg-*" --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		filter, err := common.NewFilter(cfnFilter)
		if err != nil {
			return fmt.Errorf("❌ フィルタの指定が不正です: %w", err)
		}

		stacks, err := cfn.ListStacks(context.Background(), cfnClient, cfn.ListOptions{All: cfnAll, Filter: filter})
		if err != nil {
			return common.FormatListError("CloudFormationスタック", err)
		}

		opts := &common.DisplayOptions{
			ShowCount:    true,
			EmptyMessage: common.FormatEmptyMessage("CloudFormationスタック"),
		}
		if cfnFilter != "" {
			opts.FilterMessages = append(opts.FilterMessages, "フィルタ: "+filter.String())
		}
		common.DisplayList(os.Stdout, stacks, "CloudFormationスタック一覧", cfn.StacksToTableData, opts)
		return nil
	},
}

var cfnOutputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "スタックの出力を表示するコマンド",
	Long: `スタックの出力（Outputs）を表示します。
--verify を指定すると、バックエンドスタックに必須の出力がすべて存在するか検証します。

例:
  ` + AppName + ` cfn outputs -P my-profile
  ` + AppName + ` cfn outputs -S dev-BackendInfraStack --verify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := resolveStackName()
		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		outputs, err := cfn.GetOutputs(context.Background(), cfnClient, name)
		if err != nil {
			return fmt.Errorf("❌ スタック出力の取得でエラー: %w", err)
		}

		data := make([][]string, 0, len(outputs))
		for _, key := range cfn.SortedKeys(outputs) {
			data = append(data, []string{key, outputs[key]})
		}
		if len(data) == 0 {
			fmt.Println(common.FormatEmptyMessage("スタックの出力"))
		} else {
			common.PrintTable(os.Stdout, fmt.Sprintf("%s の出力", name), []common.TableColumn{
				{Header: "キー"},
				{Header: "値"},
			}, data)
		}

		if !cfnVerify {
			return nil
		}
		if err := cfn.VerifyRequiredOutputs(outputs, naming.RequiredOutputs); err != nil {
			return fmt.Errorf("❌ %w", err)
		}
		fmt.Printf("\n✅ 必須の出力 %d件がすべて存在します\n", len(naming.RequiredOutputs))
		return nil
	},
}

var cfnFailuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "スタックの失敗イベントを表示するコマンド",
	Long: `スタックのイベントから、リソースごとの最新の失敗理由を表示します。

例:
  ` + AppName + ` cfn failures -S dev-Ec2TestStack`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := resolveStackName()
		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		events, err := cfn.GetFailedEvents(context.Background(), cfnClient, name, cfn.MaxFailedEvents)
		if err != nil {
			return fmt.Errorf("❌ スタックイベントの取得でエラー: %w", err)
		}
		cfn.PrintFailedEvents(os.Stdout, events)
		return nil
	},
}

var cfnWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "スタックの処理完了を待つコマンド",
	Long: `スタックが処理中（*_IN_PROGRESS）でなくなるまで状態をポーリングします。
失敗状態で終了した場合は失敗イベントを表示し、エラー終了します。

例:
  ` + AppName + ` cfn watch -S dev-BackendInfraStack --timeout 30m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := resolveStackName()
		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		ctx := context.Background()
		status, err := cfn.WatchStack(ctx, cfnClient, name, cfn.WatchOptions{
			Interval: cfnInterval,
			Timeout:  cfnWatchTimeout,
			Out:      os.Stderr,
		})
		if errors.Is(err, cfn.ErrStackFailed) {
			fmt.Printf("❌ %s は %s で終了しました\n\n", name, status)
			if events, evErr := cfn.GetFailedEvents(ctx, cfnClient, name, cfn.MaxFailedEvents); evErr == nil {
				cfn.PrintFailedEvents(os.Stdout, events)
			}
			return err
		}
		if err != nil {
			return fmt.Errorf("❌ スタックの監視でエラー: %w", err)
		}

		fmt.Printf("✅ %s: %s\n", name, status)
		return nil
	},
}

var cfnResourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "スタック内のリソースを表示するコマンド",
	Long: `スタック内のリソースを一覧表示します。

例:
  ` + AppName + ` cfn resources
  ` + AppName + ` cfn resources --type AWS::CloudWatch::Alarm`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := resolveStackName()
		cfnClient, err := aws.NewClient[*cloudformation.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		resources, err := cfn.GetStackResources(context.Background(), cfnClient, name)
		if err != nil {
			return fmt.Errorf("❌ スタックリソースの取得でエラー: %w", err)
		}

		opts := &common.DisplayOptions{ShowCount: true}
		if cfnResourceType != "" {
			resources = cfn.FilterResourcesByType(resources, cfnResourceType)
			opts.FilterMessages = append(opts.FilterMessages, "タイプ: "+cfnResourceType)
		}
		common.DisplayList(os.Stdout, resources, name+" のリソース", cfn.ResourcesToTableData, opts)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(CfnCmd)
	CfnCmd.AddCommand(cfnLsCmd)
	CfnCmd.AddCommand(cfnOutputsCmd)
	CfnCmd.AddCommand(cfnFailuresCmd)
	CfnCmd.AddCommand(cfnWatchCmd)
	CfnCmd.AddCommand(cfnResourcesCmd)

	cfnLsCmd.Flags().StringVarP(&cfnFilter, "filter", "f", "", "スタック名のフィルタ（globパターン）")
	cfnLsCmd.Flags().BoolVarP(&cfnAll, "all", "a", false, "削除済み・処理中を含むすべてのスタックを表示")

	cfnOutputsCmd.Flags().BoolVar(&cfnVerify, "verify", false, "必須の出力がすべて存在するか検証")

	cfnWatchCmd.Flags().DurationVar(&cfnWatchTimeout, "timeout", 0, "待機のタイムアウト（0は無制限）")
	cfnWatchCmd.Flags().DurationVar(&cfnInterval, "interval", 10*time.Second, "ポーリング間隔")

	cfnResourcesCmd.Flags().StringVarP(&cfnResourceType, "type", "t", "", "リソースタイプで絞り込み")
}
