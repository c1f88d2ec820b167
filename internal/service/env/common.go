package env

import (
	"fmt"
	"strings"

	"backend-infra/internal/config"
)

// ValidateVariable は変数名が有効かチェック
func ValidateVariable(variable string) error {
	if _, ok := SupportedVariables[variable]; !ok {
		return fmt.Errorf("❌ エラー: '%s' はサポートされていない変数です。%s のいずれかを指定してください", variable, strings.Join(Order, ", "))
	}
	return nil
}

// GetExportCommand は環境変数をエクスポートするコマンドを返す
func GetExportCommand(variable, value string) (string, error) {
	if err := ValidateVariable(variable); err != nil {
		return "", err
	}

	v := SupportedVariables[variable]
	if v.validate != nil {
		if err := v.validate(value); err != nil {
			return "", fmt.Errorf("❌ エラー: %s の値が不正です: %w", v.Name, err)
		}
	}
	return fmt.Sprintf("export %s=%s", v.Name, shellQuote(value)), nil
}

// GetUnsetCommand は環境変数を削除するコマンドを返す
func GetUnsetCommand(variable string) (string, error) {
	if err := ValidateVariable(variable); err != nil {
		return "", err
	}

	v := SupportedVariables[variable]
	return fmt.Sprintf("unset %s", v.Name), nil
}

func validateStacks(value string) error {
	_, err := config.ParseStackList(value)
	return err
}

// shellQuote は英数字と一部記号以外を含む値をシングルクォートで囲む
func shellQuote(value string) string {
	safe := value != "" && strings.IndexFunc(value, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_.,/:@", r))
	}) < 0
	if safe {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
