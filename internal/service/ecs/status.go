package ecs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"backend-infra/internal/service/common"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/applicationautoscaling"
	autoscalingtypes "github.com/aws/aws-sdk-go-v2/service/applicationautoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/rs/zerolog/log"
)

// GetServiceStatus はECSサービスの状態を取得する
func GetServiceStatus(ctx context.Context, clients Clients, opts StatusOptions) (*ServiceStatus, error) {
	serviceResp, err := clients.Ecs.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  awssdk.String(opts.ClusterName),
		Services: []string{opts.ServiceName},
	})
	if err != nil {
		return nil, fmt.Errorf("サービス情報の取得に失敗しました: %w", err)
	}

	if len(serviceResp.Services) == 0 {
		return nil, fmt.Errorf("サービス '%s' がクラスター '%s' に見つかりません", opts.ServiceName, opts.ClusterName)
	}

	service := serviceResp.Services[0]
	status := &ServiceStatus{
		ServiceName:    opts.ServiceName,
		ClusterName:    opts.ClusterName,
		Status:         awssdk.ToString(service.Status),
		TaskDefinition: awssdk.ToString(service.TaskDefinition),
		DesiredCount:   service.DesiredCount,
		RunningCount:   service.RunningCount,
		PendingCount:   service.PendingCount,
	}

	tasks, err := getTaskDetails(ctx, clients.Ecs, opts.ClusterName, opts.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("タスク情報の取得に失敗しました: %w", err)
	}
	status.Tasks = tasks

	if clients.AutoScaling != nil {
		autoScaling, err := getAutoScalingInfo(ctx, clients.AutoScaling, opts.ClusterName, opts.ServiceName)
		if err != nil {
			// Auto Scalingが設定されていない場合はエラーではない
			log.Debug().Err(err).Str("service", opts.ServiceName).Msg("auto scaling info unavailable")
		} else {
			status.AutoScaling = autoScaling
		}
	}

	if clients.TargetHealth != nil {
		for _, lb := range service.LoadBalancers {
			if lb.TargetGroupArn == nil {
				continue
			}
			targets, err := getTargetHealth(ctx, clients.TargetHealth, *lb.TargetGroupArn)
			if err != nil {
				return nil, fmt.Errorf("ターゲットヘルスの取得に失敗しました: %w", err)
			}
			status.Targets = append(status.Targets, targets...)
		}
	}

	return status, nil
}

// getTaskDetails はサービスに関連するタスクの詳細を取得する
func getTaskDetails(ctx context.Context, api API, clusterName, serviceName string) ([]TaskInfo, error) {
	tasksResp, err := api.ListTasks(ctx, &ecs.ListTasksInput{
		Cluster:     awssdk.String(clusterName),
		ServiceName: awssdk.String(serviceName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasksResp.TaskArns) == 0 {
		return []TaskInfo{}, nil
	}

	taskDetailsResp, err := api.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: awssdk.String(clusterName),
		Tasks:   tasksResp.TaskArns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe tasks: %w", err)
	}

	tasks := make([]TaskInfo, 0, len(taskDetailsResp.Tasks))
	for _, task := range taskDetailsResp.Tasks {
		healthStatus := "UNKNOWN"
		if task.HealthStatus != "" {
			healthStatus = string(task.HealthStatus)
		}

		createdAt := ""
		if task.CreatedAt != nil {
			createdAt = common.FormatTime(*task.CreatedAt)
		}

		tasks = append(tasks, TaskInfo{
			TaskId:       extractTaskId(awssdk.ToString(task.TaskArn)),
			Status:       awssdk.ToString(task.LastStatus),
			HealthStatus: healthStatus,
			CreatedAt:    createdAt,
		})
	}

	return tasks, nil
}

// getAutoScalingInfo はAuto Scalingの設定情報を取得する
func getAutoScalingInfo(ctx context.Context, api AutoScalingAPI, clusterName, serviceName string) (*AutoScalingInfo, error) {
	resourceId := fmt.Sprintf("service/%s/%s", clusterName, serviceName)

	targetsResp, err := api.DescribeScalableTargets(ctx, &applicationautoscaling.DescribeScalableTargetsInput{
		ServiceNamespace: autoscalingtypes.ServiceNamespaceEcs,
		ResourceIds:      []string{resourceId},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe scalable targets: %w", err)
	}

	if len(targetsResp.ScalableTargets) == 0 {
		return nil, fmt.Errorf("no scalable targets found for %s", resourceId)
	}

	target := targetsResp.ScalableTargets[0]
	return &AutoScalingInfo{
		MinCapacity: awssdk.ToInt32(target.MinCapacity),
		MaxCapacity: awssdk.ToInt32(target.MaxCapacity),
	}, nil
}

// getTargetHealth はターゲットグループ内の各ターゲットのヘルスを取得する
func getTargetHealth(ctx context.Context, api TargetHealthAPI, targetGroupArn string) ([]TargetInfo, error) {
	resp, err := api.DescribeTargetHealth(ctx, &elbv2.DescribeTargetHealthInput{
		TargetGroupArn: awssdk.String(targetGroupArn),
	})
	if err != nil {
		return nil, err
	}

	targets := make([]TargetInfo, 0, len(resp.TargetHealthDescriptions))
	for _, d := range resp.TargetHealthDescriptions {
		info := TargetInfo{}
		if d.Target != nil {
			info.TargetId = awssdk.ToString(d.Target.Id)
			info.Port = awssdk.ToInt32(d.Target.Port)
		}
		if d.TargetHealth != nil {
			info.State = string(d.TargetHealth.State)
			info.Reason = awssdk.ToString(d.TargetHealth.Description)
		}
		targets = append(targets, info)
	}
	return targets, nil
}

// extractTaskId はタスクARNからタスクIDを抽出する
func extractTaskId(taskArn string) string {
	// arn:aws:ecs:region:account:task/cluster-name/task-id の形式からtask-idを抽出
	parts := strings.Split(taskArn, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-1]
	}
	return taskArn
}

// ShowServiceStatus はECSサービスの状態を表示する
func ShowServiceStatus(w io.Writer, status *ServiceStatus) {
	fmt.Fprintf(w, "%s ECSサービス状態: %s/%s\n\n", common.SearchIcon, status.ClusterName, status.ServiceName)

	fmt.Fprintf(w, "📊 サービス情報:\n")
	fmt.Fprintf(w, "  状態:           %s\n", status.Status)
	fmt.Fprintf(w, "  タスク定義:      %s\n", status.TaskDefinition)
	fmt.Fprintf(w, "  期待数:         %d\n", status.DesiredCount)
	fmt.Fprintf(w, "  実行中:         %d\n", status.RunningCount)
	fmt.Fprintf(w, "  起動中:         %d\n", status.PendingCount)

	if status.AutoScaling != nil {
		fmt.Fprintf(w, "\n⚖️  Auto Scaling設定:\n")
		fmt.Fprintf(w, "  最小キャパシティ: %d\n", status.AutoScaling.MinCapacity)
		fmt.Fprintf(w, "  最大キャパシティ: %d\n", status.AutoScaling.MaxCapacity)
	}

	fmt.Fprintf(w, "\n%s タスク詳細:\n", common.InfoIcon)
	if len(status.Tasks) == 0 {
		fmt.Fprintln(w, "  実行中のタスクはありません")
	} else {
		for i, task := range status.Tasks {
			fmt.Fprintf(w, "  %d. タスクID: %s\n", i+1, task.TaskId)
			fmt.Fprintf(w, "     状態:     %s\n", task.Status)
			fmt.Fprintf(w, "     ヘルス:   %s\n", task.HealthStatus)
			if task.CreatedAt != "" {
				fmt.Fprintf(w, "     作成日時: %s\n", task.CreatedAt)
			}
			fmt.Fprintln(w)
		}
	}

	if len(status.Targets) > 0 {
		data := make([][]string, len(status.Targets))
		for i, t := range status.Targets {
			data[i] = []string{t.TargetId, fmt.Sprintf("%d", t.Port), t.State, t.Reason}
		}
		common.PrintTable(w, "🎯 ターゲットヘルス", []common.TableColumn{
			{Header: "ターゲット"}, {Header: "ポート"}, {Header: "状態"}, {Header: "理由"},
		}, data)
	}
}
