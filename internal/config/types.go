package config

// StackKind はシンセサイズ対象として選択できるスタックの種類
type StackKind string

const (
	StackBackend     StackKind = "backend"
	StackEc2Test     StackKind = "ec2-test"
	StackIamDemo     StackKind = "iam-demo"
	StackS3Bucket    StackKind = "s3-bucket"
	StackAsyncWorker StackKind = "async-worker"
)

// AllStackKinds は選択可能なスタックを構築順に並べたもの
var AllStackKinds = []StackKind{
	StackBackend,
	StackEc2Test,
	StackIamDemo,
	StackS3Bucket,
	StackAsyncWorker,
}

// DefaultStackKinds はスタック指定がない場合にシンセサイズするスタック
var DefaultStackKinds = []StackKind{StackBackend, StackEc2Test}

const (
	DefaultPrefix     = "dev"
	DefaultRegion     = "us-west-2"
	DefaultConfigFile = "backend-infra.yaml"
	ProjectTag        = "backend-infra-cdk"
	ManagedByTag      = "CDK"
)

// Settings はシンセサイズとCLI操作に使う解決済みの設定
type Settings struct {
	Prefix  string
	Account string // 空の場合は環境非依存のスタックになる
	Region  string
	Stacks  []StackKind
	Tags    map[string]string
}

// File は設定ファイル(YAML)の内容
type File struct {
	Prefix  string            `yaml:"prefix"`
	Account string            `yaml:"account"`
	Region  string            `yaml:"region"`
	Stacks  []string          `yaml:"stacks,omitempty"`
	Tags    map[string]string `yaml:"tags,omitempty"`
}

// Overrides はコマンドラインフラグで指定された値（空文字は未指定扱い）
type Overrides struct {
	Prefix string
	Region string
	Stacks []string
}
