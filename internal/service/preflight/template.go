package preflight

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2/cxapi"
	"github.com/aws/jsii-runtime-go"
	"github.com/mitchellh/mapstructure"
)

// DecodeTemplate は合成済みテンプレート（JSONをデコードした値）を構造体に変換
func DecodeTemplate(raw any) (*Template, error) {
	var t Template
	if err := mapstructure.Decode(raw, &t); err != nil {
		return nil, fmt.Errorf("テンプレートの解析エラー: %w", err)
	}
	return &t, nil
}

// LoadTemplate はクラウドアセンブリからスタックのテンプレートを取り出す
func LoadTemplate(assembly cxapi.CloudAssembly, stackId string) (*Template, error) {
	artifact := assembly.GetStackByName(jsii.String(stackId))
	return DecodeTemplate(artifact.Template())
}

// ResourcesOfType は指定タイプのリソースを論理ID順に返す
func (t *Template) ResourcesOfType(resourceType string) []string {
	var ids []string
	for id, r := range t.Resources {
		if r.Type == resourceType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func decodeProperties(r Resource, out any) error {
	return mapstructure.Decode(r.Properties, out)
}

// literalString は組み込み関数を含まない文字列値を返す
func literalString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

// stringList は単一文字列または文字列配列の値をスライスに揃える
func stringList(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		var out []string
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return x
	}
	return nil
}

// containsString は値に含まれる文字列（Fn::Join の要素も含む）に substr があるか判定
func containsString(v any, substr string) bool {
	switch x := v.(type) {
	case string:
		return strings.Contains(x, substr)
	case []any:
		for _, item := range x {
			if containsString(item, substr) {
				return true
			}
		}
	case map[string]any:
		for _, item := range x {
			if containsString(item, substr) {
				return true
			}
		}
	}
	return false
}

// isWildcardPrincipal は "*" または {"AWS": "*"} 形式のプリンシパルか判定
func isWildcardPrincipal(v any) bool {
	switch x := v.(type) {
	case string:
		return x == "*"
	case map[string]any:
		return slices.Contains(stringList(x["AWS"]), "*")
	}
	return false
}
