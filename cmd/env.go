package cmd

import (
	"fmt"
	"os"

	"backend-infra/internal/service/env"

	"github.com/spf13/cobra"
)

// EnvCmd represents the env command
var EnvCmd = &cobra.Command{
	Use:   "env",
	Short: "環境変数の管理コマンド",
	Long: `このアプリが参照する環境変数を管理するためのコマンド群です。
プレフィックス(PREFIX)、プロファイル(AWS_PROFILE)、デプロイ先(CDK_DEFAULT_ACCOUNT / CDK_DEFAULT_REGION)などを設定・表示・削除できます。`,
	Annotations: map[string]string{annotationNoConfig: ""},
}

var envSetValues = map[string]*string{}

var envSetCmd = &cobra.Command{
	Use:   "set",
	Short: "環境変数の設定方法を表示",
	Long: `指定した環境変数を設定するためのexportコマンドを表示します。

例:
  ` + AppName + ` env set --prefix stg
  ` + AppName + ` env set --profile my-profile --account 123456789012`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var commands []string
		for _, key := range env.Order {
			if !cmd.Flags().Changed(key) {
				continue
			}
			exportCmd, err := env.GetExportCommand(key, *envSetValues[key])
			if err != nil {
				return err
			}
			commands = append(commands, exportCmd)
		}

		fmt.Println("✅ 以下のコマンドを実行して環境変数を設定してください：")
		for _, c := range commands {
			fmt.Println(c)
		}
		return nil
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show",
	Short: "環境変数の現在値を表示",
	Long: `現在設定されている環境変数を表示します。

例:
  ` + AppName + ` env show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env.ShowAllVariables(os.Stdout, os.Getenv)
		return nil
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "環境変数の削除方法を表示",
	Long: `指定した環境変数を削除するためのunsetコマンドを表示します。

例:
  ` + AppName + ` env unset --prefix
  ` + AppName + ` env unset --profile --account`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var commands []string
		for _, key := range env.Order {
			if unset, _ := cmd.Flags().GetBool(key); !unset {
				continue
			}
			unsetCmd, err := env.GetUnsetCommand(key)
			if err != nil {
				return err
			}
			commands = append(commands, unsetCmd)
		}

		fmt.Println("✅ 以下のコマンドを実行して環境変数を削除してください：")
		for _, c := range commands {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(EnvCmd)
	EnvCmd.AddCommand(envSetCmd)
	EnvCmd.AddCommand(envShowCmd)
	EnvCmd.AddCommand(envUnsetCmd)

	// ルートの永続フラグと同名のフラグはサブコマンド側の定義が優先される
	for _, key := range env.Order {
		v := env.SupportedVariables[key]
		envSetValues[key] = envSetCmd.Flags().String(key, "", fmt.Sprintf("設定する%s (%s)", v.Description, v.Name))
		envUnsetCmd.Flags().Bool(key, false, fmt.Sprintf("%s (%s) を削除", v.Description, v.Name))
	}
	// どれか1つ必須
	envSetCmd.MarkFlagsOneRequired(env.Order...)
	envUnsetCmd.MarkFlagsOneRequired(env.Order...)
}
