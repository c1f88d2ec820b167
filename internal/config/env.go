package config

import (
	"os"
	"strings"
)

// 参照する環境変数
const (
	EnvPrefix            = "PREFIX"
	EnvCdkDefaultAccount = "CDK_DEFAULT_ACCOUNT"
	EnvAwsAccountId      = "AWS_ACCOUNT_ID"
	EnvCdkDefaultRegion  = "CDK_DEFAULT_REGION"
	EnvAwsRegion         = "AWS_REGION"
	EnvStacks            = "BACKEND_INFRA_STACKS"
)

// Getenv は環境変数の取得関数（テストで差し替える）
type Getenv func(key string) string

// firstEnv は最初に値が入っている環境変数の値を返す
func firstEnv(getenv Getenv, keys ...string) string {
	for _, key := range keys {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// splitList はカンマ区切りの文字列を分割し、空要素を取り除く
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func osGetenv(key string) string {
	return os.Getenv(key)
}
