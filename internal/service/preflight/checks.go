package preflight

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	awsx "backend-infra/internal/aws"
	"backend-infra/internal/stacks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog/log"
)

const (
	adminPolicyName = "AdministratorAccess"
	assumeRole      = "sts:AssumeRole"
)

// RoleCreationActions はIAMロールを含むスタックのデプロイに必要な操作
var RoleCreationActions = []string{"iam:CreateRole", "iam:AttachRolePolicy", "iam:PutRolePolicy"}

// CheckParameters はデフォルト値がなく、指定もされていないパラメータを検出
func CheckParameters(stack string, t *Template, supplied map[string]string) []Finding {
	names := make([]string, 0, len(t.Parameters))
	for name := range t.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []Finding
	for _, name := range names {
		p := t.Parameters[name]
		// CDKが自動で追加するブートストラップ用パラメータは対象外
		if strings.HasPrefix(name, "BootstrapVersion") {
			continue
		}
		if p.Default != nil {
			continue
		}
		if _, ok := supplied[name]; ok {
			continue
		}
		findings = append(findings, Finding{
			Check:    CheckParameter,
			Stack:    stack,
			Resource: name,
			Severity: SeverityError,
			Message:  fmt.Sprintf("パラメータ %s (%s) にデフォルト値がありません。--parameters %s=<値> を指定してください", name, p.Type, name),
		})
	}
	return findings
}

// CheckIamRoles はテンプレート内の権限が強すぎるIAMロールを検出
func CheckIamRoles(stack string, t *Template) []Finding {
	var findings []Finding
	for _, id := range t.ResourcesOfType("AWS::IAM::Role") {
		var props roleProperties
		if err := decodeProperties(t.Resources[id], &props); err != nil {
			findings = append(findings, Finding{
				Check: CheckIamRole, Stack: stack, Resource: id, Severity: SeverityWarning,
				Message: fmt.Sprintf("ロール定義を解析できません: %v", err),
			})
			continue
		}

		name := id
		if n, ok := literalString(props.RoleName); ok {
			name = n
		}

		for _, arn := range props.ManagedPolicyArns {
			if containsString(arn, ":policy/"+adminPolicyName) {
				findings = append(findings, Finding{
					Check: CheckIamRole, Stack: stack, Resource: name, Severity: SeverityWarning,
					Message: fmt.Sprintf("ロール %s に %s が付与されています", name, adminPolicyName),
				})
			}
		}

		for _, st := range props.AssumeRolePolicyDocument.Statement {
			if st.Effect == "Allow" && isWildcardPrincipal(st.Principal) {
				findings = append(findings, Finding{
					Check: CheckIamRole, Stack: stack, Resource: name, Severity: SeverityWarning,
					Message: fmt.Sprintf("ロール %s は任意のプリンシパル (*) から引き受け可能です", name),
				})
			}
		}

		for _, policy := range props.Policies {
			for _, st := range policy.PolicyDocument.Statement {
				if st.Effect != "Allow" || !slices.Contains(stringList(st.Action), assumeRole) {
					continue
				}
				if slices.Contains(stringList(st.Resource), "*") {
					findings = append(findings, Finding{
						Check: CheckIamRole, Stack: stack, Resource: name, Severity: SeverityWarning,
						Message: fmt.Sprintf("ロール %s のポリシー %s は任意のロールへの %s を許可しています", name, policy.PolicyName, assumeRole),
					})
				}
			}
		}
	}
	return findings
}

// CheckCallerPermissions は呼び出し元がIAMロールを作成できるかシミュレーションで確認
func CheckCallerPermissions(ctx context.Context, stsApi STSAPI, iamApi IAMAPI, stack string) []Finding {
	identity, err := stsApi.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return []Finding{{
			Check: CheckIamCaller, Stack: stack, Severity: SeverityWarning,
			Message: fmt.Sprintf("呼び出し元の取得に失敗しました: %v", err),
		}}
	}
	principal := PrincipalArn(aws.ToString(identity.Arn))
	log.Debug().Str("principal", principal).Msg("simulating role creation permissions")

	out, err := iamApi.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
		PolicySourceArn: aws.String(principal),
		ActionNames:     RoleCreationActions,
	})
	if err != nil {
		msg := fmt.Sprintf("権限のシミュレーションに失敗しました: %v", err)
		if awsx.IsAccessDenied(err) {
			msg = "iam:SimulatePrincipalPolicy の権限がないため、ロール作成権限を確認できません"
		}
		return []Finding{{Check: CheckIamCaller, Stack: stack, Resource: principal, Severity: SeverityWarning, Message: msg}}
	}

	var denied []string
	for _, r := range out.EvaluationResults {
		if r.EvalDecision != iamtypes.PolicyEvaluationDecisionTypeAllowed {
			denied = append(denied, aws.ToString(r.EvalActionName))
		}
	}
	if len(denied) == 0 {
		return []Finding{{
			Check: CheckIamCaller, Stack: stack, Resource: principal, Severity: SeverityInfo,
			Message: "ロール作成に必要な権限があります",
		}}
	}
	return []Finding{{
		Check: CheckIamCaller, Stack: stack, Resource: principal, Severity: SeverityError,
		Message: fmt.Sprintf("ロール作成に必要な権限がありません: %s", strings.Join(denied, ", ")),
	}}
}

// PrincipalArn は引き受け中ロールのSTS ARNをIAMロールのARNに変換する
// arn:aws:sts::123456789012:assumed-role/Name/session → arn:aws:iam::123456789012:role/Name
func PrincipalArn(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" || !strings.HasPrefix(parts[5], "assumed-role/") {
		return arn
	}
	segments := strings.Split(strings.TrimPrefix(parts[5], "assumed-role/"), "/")
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", parts[1], parts[4], segments[0])
}

// CheckInstanceCapacity はEC2インスタンスが指定AZで提供されているか確認
// 合成前のVPCルックアップではテンプレートのAZがダミー値になるため、スタック定義の指定値を使う
func CheckInstanceCapacity(ctx context.Context, api EC2API, stack string, placements []stacks.InstancePlacement) []Finding {
	var findings []Finding
	for _, props := range placements {
		id := props.Resource
		if props.InstanceType == "" || props.AvailabilityZone == "" {
			continue
		}

		out, err := api.DescribeInstanceTypeOfferings(ctx, &ec2.DescribeInstanceTypeOfferingsInput{
			LocationType: ec2types.LocationTypeAvailabilityZone,
			Filters: []ec2types.Filter{
				{Name: aws.String("location"), Values: []string{props.AvailabilityZone}},
				{Name: aws.String("instance-type"), Values: []string{props.InstanceType}},
			},
		})
		if err != nil {
			findings = append(findings, Finding{
				Check: CheckCapacity, Stack: stack, Resource: id, Severity: SeverityWarning,
				Message: fmt.Sprintf("インスタンスタイプの提供状況を取得できません: %v", err),
			})
			continue
		}

		if len(out.InstanceTypeOfferings) == 0 {
			findings = append(findings, Finding{
				Check: CheckCapacity, Stack: stack, Resource: id, Severity: SeverityError,
				Message: fmt.Sprintf("%s は %s で提供されていません", props.InstanceType, props.AvailabilityZone),
			})
			continue
		}
		findings = append(findings, Finding{
			Check: CheckCapacity, Stack: stack, Resource: id, Severity: SeverityInfo,
			Message: fmt.Sprintf("%s は %s で提供されています", props.InstanceType, props.AvailabilityZone),
		})
	}
	return findings
}

// CheckBucketNames は固定名のS3バケットが既に使われていないか確認
func CheckBucketNames(ctx context.Context, api S3API, stack string, t *Template) []Finding {
	var findings []Finding
	for _, id := range t.ResourcesOfType("AWS::S3::Bucket") {
		var props bucketProperties
		if err := decodeProperties(t.Resources[id], &props); err != nil {
			continue
		}
		name, ok := literalString(props.BucketName)
		if !ok {
			continue
		}

		f := Finding{Check: CheckBucket, Stack: stack, Resource: name}
		_, err := api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
		switch {
		case err == nil:
			f.Severity = SeverityError
			f.Message = fmt.Sprintf("バケット %s は既に存在します", name)
		case awsx.IsNotFound(err):
			f.Severity = SeverityInfo
			f.Message = fmt.Sprintf("バケット %s は利用可能です", name)
		case awsx.IsAccessDenied(err):
			f.Severity = SeverityError
			f.Message = fmt.Sprintf("バケット %s は他のアカウントで使用されています", name)
		default:
			f.Severity = SeverityWarning
			f.Message = fmt.Sprintf("バケット %s の確認に失敗しました: %v", name, err)
		}
		findings = append(findings, f)
	}
	return findings
}
