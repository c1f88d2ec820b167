package cmd

import (
	"context"
	"fmt"
	"os"

	"backend-infra/internal/aws"
	"backend-infra/internal/naming"
	"backend-infra/internal/service/common"
	ecrsvc "backend-infra/internal/service/ecr"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/spf13/cobra"
)

var ecrRepository string

// EcrCmd represents the ecr command
var EcrCmd = &cobra.Command{
	Use:   "ecr",
	Short: "ECRリポジトリ確認コマンド",
	Long:  `ECR（Elastic Container Registry）のリポジトリを確認するためのコマンド群です。`,
}

var ecrLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "リポジトリのイメージ一覧を表示するコマンド",
	Long: `バックエンドのECRリポジトリ内のイメージを新しい順に表示します。

例:
  ` + AppName + ` ecr ls -P my-profile
  ` + AppName + ` ecr ls -r my-repo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ecrClient, err := aws.NewClient[*ecr.Client](awsCtx)
		if err != nil {
			return fmt.Errorf("AWS設定の読み込みエラー: %w", err)
		}

		repoName := ecrRepository
		if repoName == "" {
			repoName = naming.RepositoryName(settings.Prefix)
		}

		ctx := context.Background()
		repo, err := ecrsvc.DescribeRepository(ctx, ecrClient, repoName)
		if err != nil {
			return fmt.Errorf("❌ リポジトリの取得でエラー: %w", err)
		}
		fmt.Printf("%s リポジトリ: %s\n", common.InfoIcon, repo.RepositoryUri)
		fmt.Printf("  タグの変更: %s / プッシュ時スキャン: %t\n\n", repo.TagMutability, repo.ScanOnPush)

		images, err := ecrsvc.ListImages(ctx, ecrClient, repoName)
		if err != nil {
			return common.FormatListError("イメージ", err)
		}
		common.DisplayList(os.Stdout, images, "イメージ一覧", ecrsvc.ImagesToTableData, &common.DisplayOptions{
			ShowCount:    true,
			EmptyMessage: common.FormatEmptyMessage("イメージ"),
		})
		return nil
	},
}

func init() {
	RootCmd.AddCommand(EcrCmd)
	EcrCmd.AddCommand(ecrLsCmd)

	ecrLsCmd.Flags().StringVarP(&ecrRepository, "repository", "r", "", "リポジトリ名（未指定時はバックエンドのリポジトリ）")
}
