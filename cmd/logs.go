package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"backend-infra/internal/aws"
	"backend-infra/internal/naming"
	"backend-infra/internal/service/common"
	logssvc "backend-infra/internal/service/logs"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/spf13/cobra"
)

var (
	logsPrefix  string
	logsGroup   string
	logsSince   time.Duration
	logsFollow  bool
	logsPattern string
)

// LogsCmd represents the logs command
var LogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "CloudWatch Logs確認コマンド",
	Long:  `バックエンドのCloudWatch Logsを確認するためのコマンド群です。`,
}

// logsLsCmd represents the ls command
var logsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "CloudWatch Logsグループ一覧を表示するコマンド",
	Long: `CloudWatch Logsグループの一覧を、サイズと保存期間とともに表示します。
--name-prefix を省略した場合はバックエンドのロググループ名で絞り込みます。

【使い方】
  ` + AppName + ` logs ls                          # バックエンドのロググループを表示
  ` + AppName + ` logs ls --name-prefix /aws/ecs/  # 指定プレフィックスで表示`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logsClient, err := aws.NewClient[*cloudwatchlogs.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		namePrefix := logsPrefix
		if namePrefix == "" {
			namePrefix = naming.LogGroupName(settings.Prefix)
		}

		groups, err := logssvc.ListLogGroups(context.Background(), logsClient, namePrefix)
		if err != nil {
			return common.FormatListError("ロググループ", err)
		}

		common.DisplayList(os.Stdout, groups, "CloudWatch Logsグループ一覧", logssvc.LogGroupsToTableData, &common.DisplayOptions{
			ShowCount:      true,
			EmptyMessage:   common.FormatEmptyMessage("ロググループ"),
			FilterMessages: []string{"プレフィックス: " + namePrefix},
		})
		return nil
	},
}

var logsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "ロググループのイベントを表示するコマンド",
	Long: `ロググループの直近のイベントを表示します。
--follow を指定すると、Ctrl+C で止めるまで新しいイベントを表示し続けます。

例:
  ` + AppName + ` logs tail --since 30m
  ` + AppName + ` logs tail --follow --filter ERROR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logsClient, err := aws.NewClient[*cloudwatchlogs.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		group := logsGroup
		if group == "" {
			group = naming.LogGroupName(settings.Prefix)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(os.Stderr, "%s %s のイベントを表示します\n", common.SearchIcon, group)
		err = logssvc.Tail(ctx, logsClient, logssvc.TailOptions{
			LogGroupName: group,
			Since:        logsSince,
			Pattern:      logsPattern,
			Follow:       logsFollow,
			Out:          os.Stdout,
		})
		if err != nil {
			return fmt.Errorf("❌ ログイベントの取得でエラー: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(LogsCmd)
	LogsCmd.AddCommand(logsLsCmd)
	LogsCmd.AddCommand(logsTailCmd)

	logsLsCmd.Flags().StringVar(&logsPrefix, "name-prefix", "", "ロググループ名のプレフィックス")

	logsTailCmd.Flags().StringVarP(&logsGroup, "group", "g", "", "ロググループ名（未指定時はバックエンドのロググループ）")
	logsTailCmd.Flags().DurationVar(&logsSince, "since", 10*time.Minute, "遡る期間")
	logsTailCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "新しいイベントを待ち続ける")
	logsTailCmd.Flags().StringVar(&logsPattern, "filter", "", "CloudWatch Logsのフィルタパターン")
}
