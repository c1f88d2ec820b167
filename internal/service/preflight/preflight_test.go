package preflight

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"backend-infra/internal/config"
	"backend-infra/internal/stacks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/jsii-runtime-go"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	jsii.Close()
	os.Exit(code)
}

type fakeEc2 struct {
	offered bool
	input   *ec2.DescribeInstanceTypeOfferingsInput
}

func (f *fakeEc2) DescribeInstanceTypeOfferings(_ context.Context, in *ec2.DescribeInstanceTypeOfferingsInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error) {
	f.input = in
	out := &ec2.DescribeInstanceTypeOfferingsOutput{}
	if f.offered {
		out.InstanceTypeOfferings = []ec2types.InstanceTypeOffering{{InstanceType: ec2types.InstanceTypeT2Micro}}
	}
	return out, nil
}

type fakeSts struct {
	arn   string
	err   error
	calls int
}

func (f *fakeSts) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// arn:aws:sts::<account>:... の5番目の要素がアカウント
	account := strings.Split(f.arn, ":")[4]
	return &sts.GetCallerIdentityOutput{Arn: aws.String(f.arn), Account: aws.String(account)}, nil
}

type fakeIam struct {
	denied map[string]bool
	source string
}

func (f *fakeIam) SimulatePrincipalPolicy(_ context.Context, in *iam.SimulatePrincipalPolicyInput, _ ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	f.source = aws.ToString(in.PolicySourceArn)
	out := &iam.SimulatePrincipalPolicyOutput{}
	for _, action := range in.ActionNames {
		decision := iamtypes.PolicyEvaluationDecisionTypeAllowed
		if f.denied[action] {
			decision = iamtypes.PolicyEvaluationDecisionTypeImplicitDeny
		}
		out.EvaluationResults = append(out.EvaluationResults, iamtypes.EvaluationResult{
			EvalActionName: aws.String(action),
			EvalDecision:   decision,
		})
	}
	return out, nil
}

type fakeS3 struct{ errs map[string]error }

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err, ok := f.errs[aws.ToString(in.Bucket)]; ok {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func decode(t *testing.T, raw map[string]any) *Template {
	t.Helper()
	tmpl, err := DecodeTemplate(raw)
	require.NoError(t, err)
	return tmpl
}

func TestCheckParameters(t *testing.T) {
	tmpl := decode(t, map[string]any{
		"Parameters": map[string]any{
			"BucketName":       map[string]any{"Type": "String"},
			"Stage":            map[string]any{"Type": "String", "Default": "dev"},
			"BootstrapVersion": map[string]any{"Type": "AWS::SSM::Parameter::Value<String>", "Default": "/cdk-bootstrap/hnb659fds/version"},
		},
	})

	findings := CheckParameters("s", tmpl, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "BucketName", findings[0].Resource)
	assert.Equal(t, SeverityError, findings[0].Severity)

	assert.Empty(t, CheckParameters("s", tmpl, map[string]string{"BucketName": "my-bucket"}))
}

func TestCheckIamRoles(t *testing.T) {
	tmpl := decode(t, map[string]any{
		"Resources": map[string]any{
			"AdminRole": map[string]any{
				"Type": "AWS::IAM::Role",
				"Properties": map[string]any{
					"RoleName": "p-demo-admin-role",
					"ManagedPolicyArns": []any{
						map[string]any{"Fn::Join": []any{"", []any{"arn:", map[string]any{"Ref": "AWS::Partition"}, ":iam::aws:policy/AdministratorAccess"}}},
					},
				},
			},
			"CrossRole": map[string]any{
				"Type": "AWS::IAM::Role",
				"Properties": map[string]any{
					"AssumeRolePolicyDocument": map[string]any{
						"Statement": []any{
							map[string]any{"Action": "sts:AssumeRole", "Effect": "Allow", "Principal": map[string]any{"AWS": "*"}},
						},
					},
					"Policies": []any{
						map[string]any{
							"PolicyName": "AssumeAnyRole",
							"PolicyDocument": map[string]any{
								"Statement": []any{
									map[string]any{"Action": "sts:AssumeRole", "Effect": "Allow", "Resource": "*"},
								},
							},
						},
					},
				},
			},
			"TaskRole": map[string]any{
				"Type": "AWS::IAM::Role",
				"Properties": map[string]any{
					"AssumeRolePolicyDocument": map[string]any{
						"Statement": []any{
							map[string]any{"Action": "sts:AssumeRole", "Effect": "Allow", "Principal": map[string]any{"Service": "ecs-tasks.amazonaws.com"}},
						},
					},
				},
			},
		},
	})

	findings := CheckIamRoles("s", tmpl)
	var resources []string
	for _, f := range findings {
		assert.Equal(t, SeverityWarning, f.Severity)
		resources = append(resources, f.Resource)
	}
	if diff := cmp.Diff([]string{"p-demo-admin-role", "CrossRole", "CrossRole"}, resources); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestPrincipalArn(t *testing.T) {
	assert.Equal(t,
		"arn:aws:iam::123456789012:role/Deployer",
		PrincipalArn("arn:aws:sts::123456789012:assumed-role/Deployer/session-1"))
	assert.Equal(t,
		"arn:aws:iam::123456789012:user/alice",
		PrincipalArn("arn:aws:iam::123456789012:user/alice"))
}

func TestCheckCallerPermissions(t *testing.T) {
	fi := &fakeIam{denied: map[string]bool{"iam:CreateRole": true}}
	findings := CheckCallerPermissions(context.Background(),
		&fakeSts{arn: "arn:aws:sts::123456789012:assumed-role/Deployer/s"}, fi, "s")

	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "iam:CreateRole")
	assert.Equal(t, "arn:aws:iam::123456789012:role/Deployer", fi.source)
}

func TestCheckInstanceCapacity(t *testing.T) {
	placements := []stacks.InstancePlacement{
		{Resource: "TestInstance", InstanceType: "t2.micro", AvailabilityZone: "us-west-2d"},
		{Resource: "NoZone", InstanceType: "t2.micro"},
	}

	fe := &fakeEc2{}
	findings := CheckInstanceCapacity(context.Background(), fe, "s", placements)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Equal(t, "TestInstance", findings[0].Resource)
	assert.Equal(t, ec2types.LocationTypeAvailabilityZone, fe.input.LocationType)
	assert.Equal(t, []string{"us-west-2d"}, fe.input.Filters[0].Values)
	assert.Equal(t, []string{"t2.micro"}, fe.input.Filters[1].Values)

	findings = CheckInstanceCapacity(context.Background(), &fakeEc2{offered: true}, "s", placements)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityInfo, findings[0].Severity)

	assert.Empty(t, CheckInstanceCapacity(context.Background(), fe, "s", nil))
}

func TestCheckBucketNames(t *testing.T) {
	tmpl := decode(t, map[string]any{
		"Resources": map[string]any{
			"A": map[string]any{"Type": "AWS::S3::Bucket", "Properties": map[string]any{"BucketName": "free-bucket"}},
			"B": map[string]any{"Type": "AWS::S3::Bucket", "Properties": map[string]any{"BucketName": "taken-bucket"}},
			"C": map[string]any{"Type": "AWS::S3::Bucket", "Properties": map[string]any{"BucketName": map[string]any{"Ref": "BucketName"}}},
		},
	})
	api := &fakeS3{errs: map[string]error{
		"free-bucket":  &smithy.GenericAPIError{Code: "NotFound"},
		"taken-bucket": &smithy.GenericAPIError{Code: "Forbidden"},
	}}

	findings := CheckBucketNames(context.Background(), api, "s", tmpl)
	require.Len(t, findings, 2)
	assert.Equal(t, SeverityInfo, findings[0].Severity)
	assert.Equal(t, SeverityError, findings[1].Severity)
}

func TestRun(t *testing.T) {
	s := &config.Settings{
		Prefix:  "test",
		Account: "123456789012",
		Region:  config.DefaultRegion,
		Stacks:  []config.StackKind{config.StackIamDemo, config.StackS3Bucket, config.StackAsyncWorker, config.StackEc2Test},
	}
	fe := &fakeEc2{}
	clients := Clients{
		Ec2: fe,
		Sts: &fakeSts{arn: "arn:aws:sts::123456789012:assumed-role/Deployer/s"},
		Iam: &fakeIam{denied: map[string]bool{"iam:AttachRolePolicy": true}},
		S3:  &fakeS3{},
	}

	report, err := Run(context.Background(), s, clients, Options{})
	require.NoError(t, err)
	assert.True(t, report.HasErrors())

	byCheck := map[string][]Finding{}
	for _, f := range report.Findings {
		byCheck[f.Check] = append(byCheck[f.Check], f)
	}
	require.Len(t, byCheck[CheckSynth], 1)
	assert.Equal(t, "test-AsyncWorkerStack", byCheck[CheckSynth][0].Stack)
	require.Len(t, byCheck[CheckParameter], 1)
	assert.Equal(t, "BucketName", byCheck[CheckParameter][0].Resource)
	assert.Len(t, byCheck[CheckIamRole], 3)
	require.Len(t, byCheck[CheckIamCaller], 1)
	assert.Equal(t, SeverityError, byCheck[CheckIamCaller][0].Severity)

	// テンプレートのAZはダミー値だが、容量チェックは指定したAZで行う
	require.Len(t, byCheck[CheckCapacity], 1)
	assert.Equal(t, "test-Ec2TestStack", byCheck[CheckCapacity][0].Stack)
	assert.Equal(t, SeverityError, byCheck[CheckCapacity][0].Severity)
	assert.Contains(t, byCheck[CheckCapacity][0].Message, "us-west-2d")
	assert.Equal(t, []string{"us-west-2d"}, fe.input.Filters[0].Values)

	// VPCのルックアップが未解決のため、AZが見つからない注記は警告になる
	require.NotEmpty(t, byCheck[CheckCdkError])
	found := false
	for _, f := range byCheck[CheckCdkError] {
		assert.Equal(t, "test-Ec2TestStack", f.Stack)
		assert.Equal(t, SeverityWarning, f.Severity)
		if strings.Contains(f.Message, "us-west-2d") {
			found = true
		}
	}
	assert.True(t, found, "AZの注記が検出結果に含まれていません")

	var buf bytes.Buffer
	PrintReport(&buf, report)
	assert.Contains(t, buf.String(), "デプロイ前チェック")
	assert.Contains(t, buf.String(), "エラー:")
}

func TestRun_ResolvesAccountFromCallerIdentity(t *testing.T) {
	s := &config.Settings{
		Prefix: "test",
		Region: config.DefaultRegion,
		Stacks: []config.StackKind{config.StackEc2Test},
	}
	fs := &fakeSts{arn: "arn:aws:sts::123456789012:assumed-role/Deployer/s"}

	report, err := Run(context.Background(), s, Clients{Ec2: &fakeEc2{offered: true}, Sts: fs}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, fs.calls)
	assert.Empty(t, s.Account, "呼び出し元の設定は変更しない")

	var checks []string
	for _, f := range report.Findings {
		checks = append(checks, f.Check)
	}
	assert.NotContains(t, checks, CheckSynth)
	assert.NotContains(t, checks, CheckAccount)
	assert.Contains(t, checks, CheckCapacity)
}

func TestRun_CallerIdentityFailure(t *testing.T) {
	s := &config.Settings{
		Prefix: "test",
		Region: config.DefaultRegion,
		Stacks: []config.StackKind{config.StackEc2Test},
	}
	fs := &fakeSts{err: errors.New("expired token")}

	report, err := Run(context.Background(), s, Clients{Sts: fs}, Options{})
	require.NoError(t, err)

	byCheck := map[string][]Finding{}
	for _, f := range report.Findings {
		byCheck[f.Check] = append(byCheck[f.Check], f)
	}
	require.Len(t, byCheck[CheckAccount], 1)
	assert.Equal(t, SeverityWarning, byCheck[CheckAccount][0].Severity)
	assert.Contains(t, byCheck[CheckAccount][0].Message, "expired token")
	// アカウントがないままでは環境依存のスタックは合成できない
	require.Len(t, byCheck[CheckSynth], 1)
	assert.Equal(t, "test-Ec2TestStack", byCheck[CheckSynth][0].Stack)
}

func TestRun_InvalidPrefix(t *testing.T) {
	_, err := Run(context.Background(), &config.Settings{Prefix: "bad_prefix"}, Clients{}, Options{})
	assert.True(t, errors.Is(err, config.ErrInvalidPrefix))
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, &Report{})
	assert.Contains(t, buf.String(), "問題は検出されませんでした")
}
