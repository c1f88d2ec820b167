package env

import (
	"fmt"
	"io"
)

// ShowAllVariables はすべてのサポートされている環境変数を表示
func ShowAllVariables(w io.Writer, getenv func(string) string) {
	fmt.Fprintln(w, "📋 backend-infra関連の環境変数の状態:")
	fmt.Fprintln(w)

	for _, key := range Order {
		v := SupportedVariables[key]
		value := getenv(v.Name)

		if value != "" {
			fmt.Fprintf(w, "  %s (%s): %s\n", v.Description, v.Name, value)
		} else {
			fmt.Fprintf(w, "  %s (%s): 未設定\n", v.Description, v.Name)
		}
	}
}
