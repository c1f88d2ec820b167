package ecr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"backend-infra/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
)

// DescribeRepository はリポジトリの設定を取得する関数
func DescribeRepository(ctx context.Context, api API, repoName string) (*RepositoryInfo, error) {
	result, err := api.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{repoName},
	})
	if err != nil {
		return nil, fmt.Errorf("リポジトリ情報取得エラー (%s): %w", repoName, err)
	}
	if len(result.Repositories) == 0 {
		return nil, fmt.Errorf("リポジトリ '%s' が見つかりません", repoName)
	}

	repo := result.Repositories[0]
	info := &RepositoryInfo{
		RepositoryName: aws.ToString(repo.RepositoryName),
		RepositoryUri:  aws.ToString(repo.RepositoryUri),
		TagMutability:  string(repo.ImageTagMutability),
		CreatedAt:      repo.CreatedAt,
	}
	if repo.ImageScanningConfiguration != nil {
		info.ScanOnPush = repo.ImageScanningConfiguration.ScanOnPush
	}
	return info, nil
}

// ListImages はリポジトリ内のイメージをプッシュ日時の新しい順で返す関数
func ListImages(ctx context.Context, api API, repoName string) ([]ImageInfo, error) {
	var images []ImageInfo
	var nextToken *string

	for {
		result, err := api.DescribeImages(ctx, &ecr.DescribeImagesInput{
			RepositoryName: aws.String(repoName),
			NextToken:      nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("イメージ一覧取得エラー (%s): %w", repoName, err)
		}

		for _, d := range result.ImageDetails {
			image := ImageInfo{
				Digest:      aws.ToString(d.ImageDigest),
				Tags:        d.ImageTags,
				SizeInBytes: aws.ToInt64(d.ImageSizeInBytes),
				PushedAt:    d.ImagePushedAt,
			}
			if d.ImageScanStatus != nil {
				image.ScanStatus = string(d.ImageScanStatus.Status)
			}
			images = append(images, image)
		}

		if result.NextToken == nil {
			break
		}
		nextToken = result.NextToken
	}

	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i].PushedAt, images[j].PushedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return images, nil
}

// ImagesToTableData はイメージ一覧を表示用のテーブルに変換
func ImagesToTableData(images []ImageInfo) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "タグ"},
		{Header: "ダイジェスト", Width: 19},
		{Header: "サイズ"},
		{Header: "プッシュ日時"},
		{Header: "スキャン"},
	}
	data := make([][]string, len(images))
	for i, img := range images {
		tags := "<untagged>"
		if len(img.Tags) > 0 {
			tags = strings.Join(img.Tags, ",")
		}
		pushed := "不明"
		if img.PushedAt != nil {
			pushed = common.FormatTime(*img.PushedAt)
		}
		data[i] = []string{tags, img.Digest, common.FormatBytes(img.SizeInBytes), pushed, img.ScanStatus}
	}
	return columns, data
}
