package cmd

import (
	"context"
	"fmt"
	"os"

	"backend-infra/internal/aws"
	"backend-infra/internal/naming"
	"backend-infra/internal/service/alarm"
	"backend-infra/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/spf13/cobra"
)

var alarmState string

// AlarmCmd represents the alarm command
var AlarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "CloudWatchアラーム確認コマンド",
	Long:  `プレフィックス配下のCloudWatchアラームを確認するためのコマンド群です。`,
}

var alarmLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "アラーム一覧を表示するコマンド",
	Long: `名前が "<prefix>-" で始まるCloudWatchアラームを一覧表示します。
バックエンドスタックが作成するはずのアラームが見つからない場合は警告を表示します。

例:
  ` + AppName + ` alarm ls -P my-profile
  ` + AppName + ` alarm ls --state ALARM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwClient, err := aws.NewClient[*cloudwatch.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		alarms, err := alarm.ListAlarms(context.Background(), cwClient, alarm.ListOptions{
			NamePrefix: naming.AlarmNamePrefix(settings.Prefix),
			State:      alarmState,
		})
		if err != nil {
			return common.FormatListError("アラーム", err)
		}

		opts := &common.DisplayOptions{
			ShowCount:      true,
			EmptyMessage:   common.FormatEmptyMessage("アラーム"),
			FilterMessages: []string{"プレフィックス: " + settings.Prefix},
		}
		if alarmState != "" {
			opts.FilterMessages = append(opts.FilterMessages, "状態: "+alarmState)
		}
		common.DisplayList(os.Stdout, alarms, "CloudWatchアラーム一覧", alarm.AlarmsToTableData, opts)

		// 状態で絞り込んだ場合は欠落の判定ができない
		if alarmState != "" {
			return nil
		}
		if missing := alarm.MissingAlarms(alarms, alarm.ExpectedAlarmNames(settings.Prefix)); len(missing) > 0 {
			fmt.Println("\n⚠️  次のアラームが見つかりません:")
			for _, name := range missing {
				fmt.Printf("  - %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(AlarmCmd)
	AlarmCmd.AddCommand(alarmLsCmd)

	alarmLsCmd.Flags().StringVar(&alarmState, "state", "", "状態で絞り込み (OK, ALARM, INSUFFICIENT_DATA)")
}
