package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Load は設定ファイル・環境変数・フラグの順に値を重ねて設定を解決する
// path が空の場合はカレントディレクトリの既定ファイルを探し、なければ無視する
func Load(path string, o Overrides) (*Settings, error) {
	return load(path, o, osGetenv)
}

func load(path string, o Overrides, getenv Getenv) (*Settings, error) {
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Prefix:  firstNonEmpty(o.Prefix, getenv(EnvPrefix), file.Prefix, DefaultPrefix),
		Account: firstNonEmpty(firstEnv(getenv, EnvCdkDefaultAccount, EnvAwsAccountId), file.Account),
		Region:  firstNonEmpty(o.Region, firstEnv(getenv, EnvCdkDefaultRegion, EnvAwsRegion), file.Region, DefaultRegion),
	}

	// スタック指定: フラグ > 環境変数 > 設定ファイル > 既定値
	rawStacks := o.Stacks
	if len(rawStacks) == 0 {
		rawStacks = splitList(getenv(EnvStacks))
	}
	if len(rawStacks) == 0 {
		rawStacks = file.Stacks
	}
	if len(rawStacks) == 0 {
		s.Stacks = append([]StackKind(nil), DefaultStackKinds...)
	} else {
		s.Stacks, err = ParseStackKinds(rawStacks)
		if err != nil {
			return nil, err
		}
	}

	s.Tags = DefaultTags(s.Prefix)
	for k, v := range file.Tags {
		s.Tags[k] = v
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// readFile は設定ファイルを読み込む
func readFile(path string) (File, error) {
	var file File

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return file, nil
		}
		return file, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}
	return file, nil
}

// Validate は解決済みの設定を検証する
func (s *Settings) Validate() error {
	if err := ValidatePrefix(s.Prefix); err != nil {
		return err
	}
	if s.Region == "" {
		return errors.New("region is required")
	}
	if len(s.Stacks) == 0 {
		return errors.New("at least one stack must be selected")
	}
	return nil
}

// Has は指定したスタックが選択されているかを返す
func (s *Settings) Has(kind StackKind) bool {
	return slices.Contains(s.Stacks, kind)
}

// DefaultTags はプレフィックスに応じた既定のスタックタグを返す
func DefaultTags(prefix string) map[string]string {
	return map[string]string{
		"Environment": prefix,
		"Project":     ProjectTag,
		"ManagedBy":   ManagedByTag,
	}
}

// ParseStackKinds は文字列からスタック種別を解析する（重複は除外）
func ParseStackKinds(values []string) ([]StackKind, error) {
	seen := make(map[StackKind]bool)
	var kinds []StackKind
	for _, v := range values {
		kind := StackKind(v)
		if !slices.Contains(AllStackKinds, kind) {
			return nil, fmt.Errorf("unknown stack %q (valid: %v)", v, AllStackKinds)
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// ParseStackList はカンマ区切りのスタック指定を解析する
func ParseStackList(value string) ([]StackKind, error) {
	return ParseStackKinds(splitList(value))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
