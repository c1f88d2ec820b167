package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"backend-infra/internal/config"
	"backend-infra/internal/naming"
	"backend-infra/internal/service/common"
	"backend-infra/internal/stacks"

	"github.com/aws/aws-cdk-go/awscdk/v2/cxapi"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/jsii-runtime-go"
	"github.com/rs/zerolog/log"
)

const defaultMaxWorkers = 4

// cdkErrorMetadata はCDKがエラー注記に使うメタデータ種別
const cdkErrorMetadata = "aws:cdk:error"

// synthesized は1スタック分の合成結果
type synthesized struct {
	kind        config.StackKind
	stackId     string
	template    *Template
	placements  []stacks.InstancePlacement
	annotations []Finding
	err         error
}

// Run は選択されたスタックを合成し、デプロイ前チェックを並列で実行する
// 1つのスタックの合成失敗が他のスタックのチェックを妨げないよう、スタックごとに合成する
func Run(ctx context.Context, s *config.Settings, clients Clients, opts Options) (*Report, error) {
	if err := config.ValidatePrefix(s.Prefix); err != nil {
		return nil, err
	}

	var findings []Finding
	s, findings = resolveAccount(ctx, s, clients.Sts)

	results := make([]synthesized, 0, len(s.Stacks))
	for _, kind := range s.Stacks {
		results = append(results, synthesize(s, kind))
	}

	var tasks []func() []Finding
	for _, r := range results {
		if r.err != nil {
			tasks = append(tasks, func() []Finding {
				return []Finding{synthFinding(r)}
			})
			continue
		}
		findings = append(findings, r.annotations...)
		tasks = append(tasks, checksFor(ctx, r, clients, opts)...)
	}

	// 呼び出し元の権限はアカウント単位なので、ロールを含む最初のスタックで1回だけ確認する
	if clients.Sts != nil && clients.Iam != nil {
		for _, r := range results {
			if r.err == nil && len(r.template.ResourcesOfType("AWS::IAM::Role")) > 0 {
				tasks = append(tasks, func() []Finding {
					return CheckCallerPermissions(ctx, clients.Sts, clients.Iam, r.stackId)
				})
				break
			}
		}
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	report := &Report{Findings: findings}
	for _, findings := range common.RunAll(maxWorkers, tasks) {
		report.Findings = append(report.Findings, findings...)
	}
	return report, nil
}

func synthesize(s *config.Settings, kind config.StackKind) synthesized {
	single := *s
	single.Stacks = []config.StackKind{kind}
	r := synthesized{kind: kind, stackId: stackId(kind, s.Prefix)}

	outdir, err := os.MkdirTemp("", "backend-infra-preflight-")
	if err != nil {
		r.err = fmt.Errorf("一時ディレクトリの作成エラー: %w", err)
		return r
	}
	defer os.RemoveAll(outdir)

	log.Debug().Str("stack", r.stackId).Str("outdir", outdir).Msg("synthesizing for preflight")
	assembly, built, err := stacks.Synth(&single, outdir)
	if err != nil {
		r.err = err
		return r
	}
	r.placements = built.Placements()
	r.annotations = cdkErrors(assembly, r.stackId)
	r.template, r.err = LoadTemplate(assembly, r.stackId)
	return r
}

// resolveAccount はアカウント未指定の場合に呼び出し元のアカウントで補う
// VPCのルックアップなど環境依存のスタックはアカウントがないと合成できない
func resolveAccount(ctx context.Context, s *config.Settings, api STSAPI) (*config.Settings, []Finding) {
	if s.Account != "" || api == nil {
		return s, nil
	}

	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil || out.Account == nil {
		return s, []Finding{{
			Check: CheckAccount, Severity: SeverityWarning,
			Message: fmt.Sprintf("呼び出し元のアカウントを取得できません: %v", err),
		}}
	}

	resolved := *s
	resolved.Account = *out.Account
	log.Debug().Str("account", resolved.Account).Msg("account resolved from caller identity")
	return &resolved, nil
}

// cdkErrors はスタックに付与されたCDKのエラー注記を検出結果に変換する
// コンテキストのルックアップが未解決の間はダミー値による注記が含まれるため警告に留める
func cdkErrors(assembly cxapi.CloudAssembly, stackId string) []Finding {
	artifact := assembly.GetStackByName(jsii.String(stackId))
	entries := artifact.FindMetadataByType(jsii.String(cdkErrorMetadata))
	if entries == nil || len(*entries) == 0 {
		return nil
	}

	severity := SeverityError
	note := ""
	if missing := assembly.Manifest().Missing; missing != nil && len(*missing) > 0 {
		severity = SeverityWarning
		note = " (コンテキストのルックアップが未解決)"
	}

	findings := make([]Finding, 0, len(*entries))
	for _, e := range *entries {
		findings = append(findings, Finding{
			Check:    CheckCdkError,
			Stack:    stackId,
			Resource: aws.ToString(e.Path),
			Severity: severity,
			Message:  fmt.Sprint(e.Data) + note,
		})
	}
	return findings
}

func checksFor(ctx context.Context, r synthesized, clients Clients, opts Options) []func() []Finding {
	t := r.template
	tasks := []func() []Finding{
		func() []Finding { return CheckParameters(r.stackId, t, opts.Parameters) },
		func() []Finding { return CheckIamRoles(r.stackId, t) },
	}

	if clients.Ec2 != nil {
		tasks = append(tasks, func() []Finding { return CheckInstanceCapacity(ctx, clients.Ec2, r.stackId, r.placements) })
	}
	if clients.S3 != nil {
		tasks = append(tasks, func() []Finding { return CheckBucketNames(ctx, clients.S3, r.stackId, t) })
	}
	return tasks
}

func synthFinding(r synthesized) Finding {
	msg := fmt.Sprintf("合成に失敗しました: %v", r.err)
	if errors.Is(r.err, stacks.ErrSynthesis) {
		msg = fmt.Sprintf("CDKがスタックの定義を拒否しました: %v", r.err)
	}
	return Finding{Check: CheckSynth, Stack: r.stackId, Severity: SeverityError, Message: msg}
}

func stackId(kind config.StackKind, prefix string) string {
	switch kind {
	case config.StackBackend:
		return naming.BackendStackId(prefix)
	case config.StackEc2Test:
		return naming.Ec2TestStackId(prefix)
	case config.StackIamDemo:
		return naming.IamDemoStackId(prefix)
	case config.StackS3Bucket:
		return naming.S3BucketStackId(prefix)
	case config.StackAsyncWorker:
		return naming.AsyncWorkerStackId(prefix)
	}
	return prefix + "-" + string(kind)
}

// PrintReport は検出結果を重要度のアイコン付きで表示
func PrintReport(w io.Writer, report *Report) {
	if len(report.Findings) == 0 {
		fmt.Fprintln(w, "✅ 問題は検出されませんでした")
		return
	}

	columns := []common.TableColumn{
		{Header: ""},
		{Header: "チェック"},
		{Header: "スタック"},
		{Header: "対象"},
		{Header: "内容"},
	}
	data := make([][]string, 0, len(report.Findings))
	counts := map[Severity]int{}
	for _, f := range report.Findings {
		counts[f.Severity]++
		data = append(data, []string{f.Severity.Icon(), f.Check, f.Stack, f.Resource, f.Message})
	}
	common.PrintTable(w, "デプロイ前チェック", columns, data)

	fmt.Fprintf(w, "\nエラー: %d件 / 警告: %d件 / 正常: %d件\n",
		counts[SeverityError], counts[SeverityWarning], counts[SeverityInfo])
}
