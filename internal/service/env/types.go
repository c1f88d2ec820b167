package env

import "backend-infra/internal/config"

// Variable は環境変数の情報を表す構造体
type Variable struct {
	Name        string // 環境変数名 (e.g., PREFIX)
	ShortName   string // 短縮名 (e.g., prefix)
	Description string // 説明
	validate    func(string) error
}

// Order は表示順
var Order = []string{"prefix", "profile", "account", "region", "stacks"}

// SupportedVariables はサポートされている環境変数のマップ
var SupportedVariables = map[string]Variable{
	"prefix": {
		Name:        config.EnvPrefix,
		ShortName:   "prefix",
		Description: "リソース名のプレフィックス",
		validate:    config.ValidatePrefix,
	},
	"profile": {
		Name:        "AWS_PROFILE",
		ShortName:   "profile",
		Description: "プロファイル",
	},
	"account": {
		Name:        config.EnvCdkDefaultAccount,
		ShortName:   "account",
		Description: "デプロイ先アカウント",
	},
	"region": {
		Name:        config.EnvCdkDefaultRegion,
		ShortName:   "region",
		Description: "デプロイ先リージョン",
	},
	"stacks": {
		Name:        config.EnvStacks,
		ShortName:   "stacks",
		Description: "シンセサイズ対象のスタック",
		validate:    validateStacks,
	},
}
