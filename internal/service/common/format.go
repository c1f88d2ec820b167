package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBytes はバイト数を人間が読みやすい形式に変換する関数
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatTimestamp はUnixミリ秒のタイムスタンプをフォーマットする関数
func FormatTimestamp(timestamp *int64) string {
	if timestamp == nil {
		return "不明"
	}
	return FormatTime(time.UnixMilli(*timestamp))
}

// FormatTime は時刻をローカルタイムの表示形式にする（ゼロ値は「不明」）
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "不明"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// GenerateFilteredTitle はフィルタ条件に基づいてタイトルを生成
func GenerateFilteredTitle(resourceType string, conditions ...string) string {
	var validConditions []string
	for _, cond := range conditions {
		if cond != "" {
			validConditions = append(validConditions, cond)
		}
	}

	if len(validConditions) == 0 {
		return fmt.Sprintf("%s一覧", resourceType)
	}

	return fmt.Sprintf("%s%s一覧", strings.Join(validConditions, ""), resourceType)
}

// FormatListError はリスト取得エラーを統一フォーマットで返す
func FormatListError(service string, err error) error {
	return fmt.Errorf(ListErrorFormat, ErrorIcon, service, err)
}

// FormatEmptyMessage は該当リソースがない場合のメッセージを返す
func FormatEmptyMessage(resourceType string) string {
	return fmt.Sprintf("%sが見つかりませんでした", resourceType)
}

// WrapText は表示幅で文字列を折り返す
func WrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(paragraph, width)...)
	}
	return lines
}
