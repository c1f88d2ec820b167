// Package naming はプレフィックスから各リソース名を決定する
//
// ここで定義する名前はプレフィックスだけで決まり、スタック定義・CLI・テストの
// すべてが同じ関数を参照する。
package naming

import (
	"fmt"
	"strings"
)

// バックエンドスタックの出力キー
const (
	OutputLoadBalancerDNS  = "LoadBalancerDNS"
	OutputECRRepositoryURI = "ECRRepositoryURI"
	OutputClusterName      = "ClusterName"
	OutputServiceName      = "ServiceName"
	OutputLogGroupName     = "LogGroupName"
	OutputSNSTopicArn      = "SNSTopicArn"
)

// RequiredOutputs はバックエンドスタックが必ず公開する出力キー
var RequiredOutputs = []string{
	OutputLoadBalancerDNS,
	OutputECRRepositoryURI,
	OutputClusterName,
	OutputServiceName,
	OutputLogGroupName,
	OutputSNSTopicArn,
}

// アラーム名のサフィックス
const (
	AlarmHighCPU          = "HighCPUUtilization"
	AlarmHighMemory       = "HighMemoryUtilization"
	AlarmUnhealthyTargets = "UnhealthyTargets"
	AlarmHTTP5xx          = "HTTP5xxErrors"
	AlarmHighResponseTime = "HighResponseTime"
	AlarmLowTaskCount     = "LowTaskCount"
)

func BackendStackId(prefix string) string     { return prefix + "-BackendInfraStack" }
func Ec2TestStackId(prefix string) string     { return prefix + "-Ec2TestStack" }
func IamDemoStackId(prefix string) string     { return prefix + "-IamDemoStack" }
func S3BucketStackId(prefix string) string    { return prefix + "-S3BucketStack" }
func AsyncWorkerStackId(prefix string) string { return prefix + "-AsyncWorkerStack" }

// RepositoryName はECRリポジトリ名（ECRは小文字のみ許容）
func RepositoryName(prefix string) string {
	return strings.ToLower(prefix + "-backend-app")
}

func ClusterName(prefix string) string       { return prefix + "-backend-cluster" }
func ServiceName(prefix string) string       { return prefix + "-backend-service" }
func ContainerName(prefix string) string     { return prefix + "-backend-container" }
func LoadBalancerName(prefix string) string  { return prefix + "-ALB" }
func CloudMapName(prefix string) string      { return prefix + "-backend" }
func CloudMapNamespace(prefix string) string { return prefix + ".local" }
func TopicName(prefix string) string         { return prefix + "-backend-alarms" }

func LogGroupName(prefix string) string {
	return fmt.Sprintf("/aws/ecs/%s-backend-app", prefix)
}

func TopicDisplayName(prefix string) string {
	return prefix + " Backend Infrastructure Alarms"
}

// AlarmName はアラーム名 (<prefix>-<suffix>)
func AlarmName(prefix, suffix string) string {
	return prefix + "-" + suffix
}

// AlarmNamePrefix はプレフィックス配下のアラームを検索するための接頭辞
func AlarmNamePrefix(prefix string) string {
	return prefix + "-"
}

// ExportName はCloudFormationのエクスポート名 (<prefix>-<outputKey>)
func ExportName(prefix, outputKey string) string {
	return prefix + "-" + outputKey
}

func AdminRoleName(prefix string) string        { return prefix + "-demo-admin-role" }
func CrossAccountRoleName(prefix string) string { return prefix + "-cross-account-role" }

// StackDescription はバックエンドスタックの説明文
func StackDescription(prefix string) string {
	return "Backend Infrastructure Stack with prefix: " + prefix
}
