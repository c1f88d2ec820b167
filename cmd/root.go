package cmd

import (
	"errors"
	"os"

	"backend-infra/internal/aws"
	"backend-infra/internal/config"
	"backend-infra/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// AppName はコマンド名
const AppName = "backend-infra"

// コマンドのAnnotationsに設定するキー
const (
	annotationNoConfig = "backend-infra/no-config" // 設定の読み込みが不要
	annotationNoAws    = "backend-infra/no-aws"    // AWSの認証情報が不要
)

var (
	region     string
	profile    string
	stackName  string
	prefix     string
	configFile string
	stackKinds []string
	debug      bool

	settings *config.Settings
	awsCtx   *aws.Context
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "バックエンドインフラのCDKアプリと運用コマンド",
	Long: `バックエンドインフラ（VPC、ECS Fargate、ALB、監視）をAWS CDKで定義し、
デプロイ済みスタックの確認・デプロイ前チェックを行うためのコマンドです。

例:
  ` + AppName + ` synth
  PREFIX=stg ` + AppName + ` cfn outputs --verify -P my-profile`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "", "AWSリージョン（未指定時は CDK_DEFAULT_REGION / AWS_REGION / us-west-2）")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル")
	RootCmd.PersistentFlags().StringVarP(&stackName, "stack", "S", "", "CloudFormationスタック名（未指定時はバックエンドスタック）")
	RootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "リソース名のプレフィックス（未指定時は PREFIX 環境変数）")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "設定ファイル (default "+config.DefaultConfigFile+")")
	RootCmd.PersistentFlags().StringSliceVar(&stackKinds, "stacks", nil, "対象のスタック (backend, ec2-test, iam-demo, s3-bucket, async-worker)")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "デバッグログを出力")

	// コマンド実行前に共通で設定の読み込みとプロファイルチェックを行う
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(debug)

		// ヘルプ・補完スクリプト生成の場合はスキップ
		if cmd.Name() == "help" || isCompletion(cmd) || hasAnnotation(cmd, annotationNoConfig) {
			return nil
		}

		var err error
		settings, err = config.Load(configFile, config.Overrides{
			Prefix: prefix,
			Region: region,
			Stacks: stackKinds,
		})
		if err != nil {
			return err
		}
		log.Debug().
			Str("prefix", settings.Prefix).
			Str("account", settings.Account).
			Str("region", settings.Region).
			Msg("settings loaded")

		if hasAnnotation(cmd, annotationNoAws) || offline(cmd) {
			return nil
		}
		if err := checkAndSetProfile(cmd); err != nil {
			return err
		}
		awsCtx = aws.NewContext(profile, settings.Region)
		return nil
	}
}

// checkAndSetProfile はプロファイルの確認と設定を行うプライベート関数
func checkAndSetProfile(cmd *cobra.Command) error {
	// プロファイルがすでに指定されている場合は何もしない
	if profile != "" {
		return nil
	}
	// 環境変数からプロファイル取得を試みる
	envProfile := os.Getenv("AWS_PROFILE")
	if envProfile == "" {
		return errors.New("❌ エラー: プロファイルが指定されていません。-Pオプションまたは AWS_PROFILE 環境変数を指定してください")
	}
	profile = envProfile
	cmd.PrintErrln("🔍 環境変数 AWS_PROFILE の値 '" + profile + "' を使用します")
	return nil
}

// hasAnnotation はコマンドまたは親コマンドに指定のAnnotationがあるか判定
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

func isCompletion(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" || c.Name() == cobra.ShellCompRequestCmd {
			return true
		}
	}
	return false
}

// offline は --offline フラグが指定されているか判定
func offline(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("offline")
	return f != nil && f.Value.String() == "true"
}
