package naming

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNamesForTestPrefix(t *testing.T) {
	got := map[string]string{
		"stack":      BackendStackId("test"),
		"repository": RepositoryName("test"),
		"cluster":    ClusterName("test"),
		"service":    ServiceName("test"),
		"container":  ContainerName("test"),
		"alb":        LoadBalancerName("test"),
		"cloudmap":   CloudMapName("test"),
		"namespace":  CloudMapNamespace("test"),
		"topic":      TopicName("test"),
		"topicName":  TopicDisplayName("test"),
		"logGroup":   LogGroupName("test"),
		"cpuAlarm":   AlarmName("test", AlarmHighCPU),
		"taskAlarm":  AlarmName("test", AlarmLowTaskCount),
		"export":     ExportName("test", OutputClusterName),
		"adminRole":  AdminRoleName("test"),
		"crossRole":  CrossAccountRoleName("test"),
	}
	want := map[string]string{
		"stack":      "test-BackendInfraStack",
		"repository": "test-backend-app",
		"cluster":    "test-backend-cluster",
		"service":    "test-backend-service",
		"container":  "test-backend-container",
		"alb":        "test-ALB",
		"cloudmap":   "test-backend",
		"namespace":  "test.local",
		"topic":      "test-backend-alarms",
		"topicName":  "test Backend Infrastructure Alarms",
		"logGroup":   "/aws/ecs/test-backend-app",
		"cpuAlarm":   "test-HighCPUUtilization",
		"taskAlarm":  "test-LowTaskCount",
		"export":     "test-ClusterName",
		"adminRole":  "test-demo-admin-role",
		"crossRole":  "test-cross-account-role",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositoryNameIsLowercase(t *testing.T) {
	if got := RepositoryName("Feature-ABC"); got != "feature-abc-backend-app" {
		t.Errorf("RepositoryName() = %q, want %q", got, "feature-abc-backend-app")
	}
	// リポジトリ以外は大文字を保持する
	if got := ClusterName("Feature-ABC"); got != "Feature-ABC-backend-cluster" {
		t.Errorf("ClusterName() = %q", got)
	}
}

func TestRequiredOutputs(t *testing.T) {
	want := []string{"LoadBalancerDNS", "ECRRepositoryURI", "ClusterName", "ServiceName", "LogGroupName", "SNSTopicArn"}
	if diff := cmp.Diff(want, RequiredOutputs); diff != "" {
		t.Errorf("RequiredOutputs mismatch (-want +got):\n%s", diff)
	}
}
