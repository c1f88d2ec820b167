package preflight

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// EC2API はインスタンスタイプの提供状況を確認する操作
type EC2API interface {
	DescribeInstanceTypeOfferings(ctx context.Context, params *ec2.DescribeInstanceTypeOfferingsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error)
}

// STSAPI は呼び出し元の識別情報を取得する操作
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IAMAPI は権限のシミュレーションを行う操作
type IAMAPI interface {
	SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error)
}

// S3API はバケットの存在確認を行う操作
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Clients はチェックに使うAWSクライアント
// nil のクライアントに対応するチェックはスキップされる
type Clients struct {
	Ec2 EC2API
	Sts STSAPI
	Iam IAMAPI
	S3  S3API
}

// Severity は検出結果の重要度
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

// Icon は表示用の絵文字
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️"
	default:
		return "✅"
	}
}

// Finding は1件の検出結果
type Finding struct {
	Check    string
	Stack    string
	Resource string
	Severity Severity
	Message  string
}

// チェック名
const (
	CheckSynth     = "synth"
	CheckParameter = "parameter"
	CheckIamRole   = "iam-role"
	CheckIamCaller = "iam-caller"
	CheckCapacity  = "ec2-capacity"
	CheckBucket    = "s3-bucket"
	CheckCdkError  = "cdk-error"
	CheckAccount   = "account"
)

// Options は事前チェックのオプション
type Options struct {
	Parameters map[string]string // デプロイ時に渡すパラメータ (Key=Value)
	MaxWorkers int
}

// Report は事前チェックの結果
type Report struct {
	Findings []Finding
}

// HasErrors はエラーの検出結果が含まれるか判定
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Template はCloudFormationテンプレートのうちチェックに使う部分
type Template struct {
	Parameters map[string]Parameter `mapstructure:"Parameters"`
	Resources  map[string]Resource  `mapstructure:"Resources"`
}

// Parameter はテンプレートのパラメータ定義
type Parameter struct {
	Type        string `mapstructure:"Type"`
	Default     any    `mapstructure:"Default"`
	Description string `mapstructure:"Description"`
}

// Resource はテンプレートのリソース定義
type Resource struct {
	Type       string         `mapstructure:"Type"`
	Properties map[string]any `mapstructure:"Properties"`
}

type roleProperties struct {
	RoleName                 any            `mapstructure:"RoleName"`
	ManagedPolicyArns        []any          `mapstructure:"ManagedPolicyArns"`
	AssumeRolePolicyDocument policyDocument `mapstructure:"AssumeRolePolicyDocument"`
	Policies                 []inlinePolicy `mapstructure:"Policies"`
}

type inlinePolicy struct {
	PolicyName     string         `mapstructure:"PolicyName"`
	PolicyDocument policyDocument `mapstructure:"PolicyDocument"`
}

type policyDocument struct {
	Statement []statement `mapstructure:"Statement"`
}

type statement struct {
	Effect    string `mapstructure:"Effect"`
	Action    any    `mapstructure:"Action"`
	Resource  any    `mapstructure:"Resource"`
	Principal any    `mapstructure:"Principal"`
}

type bucketProperties struct {
	BucketName any `mapstructure:"BucketName"`
}
