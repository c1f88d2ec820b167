package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPrefix はプレフィックスの形式が不正な場合のエラー
var ErrInvalidPrefix = errors.New("PREFIX must only contain alphanumeric characters and hyphens")

var prefixPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidatePrefix はリソース名の名前空間として使うプレフィックスを検証する
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w (value: %q)", ErrInvalidPrefix, prefix)
	}
	return nil
}
