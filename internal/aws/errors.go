package aws

import (
	"errors"
	"net/http"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// 存在しないリソースを示すエラーコード（サービスごとに表記が異なる）
var notFoundCodes = map[string]bool{
	"NotFound":                    true,
	"NoSuchBucket":                true,
	"NoSuchEntity":                true,
	"ResourceNotFoundException":   true,
	"RepositoryNotFoundException": true,
	"ClusterNotFoundException":    true,
	"ServiceNotFoundException":    true,
}

var accessDeniedCodes = map[string]bool{
	"AccessDenied":          true,
	"AccessDeniedException": true,
	"UnauthorizedOperation": true,
	"Forbidden":             true,
}

// ErrorCode はAPIエラーのコードを返す（APIエラーでなければ空文字）
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// HTTPStatus はレスポンスのステータスコードを返す（取得できなければ0）
func HTTPStatus(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

// IsNotFound はリソースが存在しないことを示すエラーか判定
// CloudFormationは存在しないスタックを ValidationError で返すため、呼び出し側で別途判定する
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if notFoundCodes[ErrorCode(err)] {
		return true
	}
	return HTTPStatus(err) == http.StatusNotFound
}

// IsAccessDenied は権限不足を示すエラーか判定
func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	if accessDeniedCodes[ErrorCode(err)] {
		return true
	}
	return HTTPStatus(err) == http.StatusForbidden
}

// IsStackNotFound は存在しないスタックへの問い合わせエラーか判定
// CloudFormationは ValidationError として返す
func IsStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
