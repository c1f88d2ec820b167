package ecr

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
)

// API はこのパッケージが使うECRの操作
type API interface {
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
}

// RepositoryInfo はリポジトリの詳細情報を保持する構造体
type RepositoryInfo struct {
	RepositoryName string
	RepositoryUri  string
	TagMutability  string
	ScanOnPush     bool
	CreatedAt      *time.Time
}

// ImageInfo はイメージ1件の情報
type ImageInfo struct {
	Digest      string
	Tags        []string
	SizeInBytes int64
	PushedAt    *time.Time
	ScanStatus  string
}
