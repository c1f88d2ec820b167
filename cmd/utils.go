package cmd

import (
	"fmt"
	"os"

	"backend-infra/internal/naming"
)

// resolveStackName はコマンドライン引数または環境変数からスタック名を決定する
// どちらもなければプレフィックスから導出したバックエンドスタック名を使う
func resolveStackName() string {
	if stackName != "" {
		fmt.Fprintln(os.Stderr, "🔍 -Sオプションで指定されたスタック名 '"+stackName+"' を使用します")
		return stackName
	}
	if envStack := os.Getenv("AWS_STACK_NAME"); envStack != "" {
		fmt.Fprintln(os.Stderr, "🔍 環境変数 AWS_STACK_NAME の値 '"+envStack+"' を使用します")
		return envStack
	}
	return naming.BackendStackId(settings.Prefix)
}
