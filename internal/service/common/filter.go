package common

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter は名前の絞り込み条件
// ワイルドカード（* ? [ ] { }）を含む場合はglob形式、含まない場合は部分一致で判定する
type Filter struct {
	pattern string
	g       glob.Glob
}

// NewFilter はパターン文字列からFilterを作成（空文字はすべてに一致）
func NewFilter(pattern string) (*Filter, error) {
	f := &Filter{pattern: pattern}
	if strings.ContainsAny(pattern, "*?[]{}") {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("不正なフィルタパターン %q: %w", pattern, err)
		}
		f.g = g
	}
	return f, nil
}

// Match は名前が条件に一致するかを返す
func (f *Filter) Match(name string) bool {
	if f == nil || f.pattern == "" {
		return true
	}
	if f.g != nil {
		return f.g.Match(name)
	}
	return strings.Contains(name, f.pattern)
}

// String はフィルタ条件をタイトル表示用に返す
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.pattern
}
