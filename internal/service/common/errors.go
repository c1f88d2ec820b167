package common

// 表示用の絵文字定数
const (
	ErrorIcon   = "❌"
	SuccessIcon = "✅"
	WarningIcon = "⚠️"
	SearchIcon  = "🔍"
	InfoIcon    = "📋"
)

// ListErrorFormat は一覧取得エラーのフォーマット
const ListErrorFormat = "%s %s一覧の取得に失敗: %w"
