package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"backend-infra/internal/aws"
	"backend-infra/internal/service/preflight"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/jsii-runtime-go"
	"github.com/spf13/cobra"
)

var (
	preflightParameters map[string]string
	preflightOffline    bool
	preflightWorkers    int
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "デプロイ前チェックを行うコマンド",
	Long: `選択されたスタックをその場で合成し、デプロイ時に失敗しやすい設定を事前に検出します。

チェック内容:
  - 合成自体の失敗（不正なバケット名など）
  - デフォルト値がなく、--parameters で指定されていないパラメータ
  - 権限が強すぎるIAMロールと、呼び出し元のロール作成権限
  - 固定のAZで指定インスタンスタイプが提供されているか
  - 固定名のS3バケットが既に使われていないか

--offline を指定するとAWSへの問い合わせを行わず、テンプレートのみを検査します。

例:
  ` + AppName + ` preflight --stacks ec2-test,iam-demo,s3-bucket,async-worker -P my-profile
  ` + AppName + ` preflight --stacks s3-bucket --parameters BucketName=my-bucket --offline`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer jsii.Close()

		var clients preflight.Clients
		if !preflightOffline {
			var err error
			if clients, err = preflightClients(awsCtx); err != nil {
				return err
			}
		}

		report, err := preflight.Run(context.Background(), settings, clients, preflight.Options{
			Parameters: preflightParameters,
			MaxWorkers: preflightWorkers,
		})
		if err != nil {
			return fmt.Errorf("❌ デプロイ前チェックでエラー: %w", err)
		}

		preflight.PrintReport(os.Stdout, report)
		if report.HasErrors() {
			return errors.New("❌ デプロイに失敗する可能性のある問題が見つかりました")
		}
		return nil
	},
}

func preflightClients(c *aws.Context) (preflight.Clients, error) {
	ec2Client, err := aws.NewClient[*ec2.Client](c)
	if err != nil {
		return preflight.Clients{}, fmt.Errorf("EC2クライアント作成エラー: %w", err)
	}
	stsClient, err := aws.NewClient[*sts.Client](c)
	if err != nil {
		return preflight.Clients{}, fmt.Errorf("STSクライアント作成エラー: %w", err)
	}
	iamClient, err := aws.NewClient[*iam.Client](c)
	if err != nil {
		return preflight.Clients{}, fmt.Errorf("IAMクライアント作成エラー: %w", err)
	}
	s3Client, err := aws.NewClient[*s3.Client](c)
	if err != nil {
		return preflight.Clients{}, fmt.Errorf("S3クライアント作成エラー: %w", err)
	}
	return preflight.Clients{Ec2: ec2Client, Sts: stsClient, Iam: iamClient, S3: s3Client}, nil
}

func init() {
	RootCmd.AddCommand(preflightCmd)

	preflightCmd.Flags().StringToStringVar(&preflightParameters, "parameters", nil, "デプロイ時に渡すパラメータ (Key=Value)")
	preflightCmd.Flags().BoolVar(&preflightOffline, "offline", false, "AWSへの問い合わせを行わない")
	preflightCmd.Flags().IntVar(&preflightWorkers, "workers", 4, "チェックの並列数")
}
