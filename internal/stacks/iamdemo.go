package stacks

import (
	"backend-infra/internal/naming"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// AdminPolicyName はデモ用ロールに付与するAWS管理ポリシー
const AdminPolicyName = "AdministratorAccess"

// IamDemoStackProps はIamDemoStackのプロパティ
type IamDemoStackProps struct {
	awscdk.StackProps
	Prefix string
}

// NewIamDemoStack は過剰な権限を持つロールを2つ作成する
// 一般的なデプロイロールではロール作成の権限不足でデプロイに失敗する
func NewIamDemoStack(scope constructs.Construct, id string, props *IamDemoStackProps) awscdk.Stack {
	sprops := props.StackProps
	stack := awscdk.NewStack(scope, &id, &sprops)

	awsiam.NewRole(stack, jsii.String("AdminRole"), &awsiam.RoleProps{
		RoleName:  jsii.String(naming.AdminRoleName(props.Prefix)),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("ec2.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String(AdminPolicyName)),
		},
	})

	awsiam.NewRole(stack, jsii.String("CrossAccountRole"), &awsiam.RoleProps{
		RoleName:  jsii.String(naming.CrossAccountRoleName(props.Prefix)),
		AssumedBy: awsiam.NewArnPrincipal(jsii.String("*")),
		InlinePolicies: &map[string]awsiam.PolicyDocument{
			"AssumeAnyRole": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &[]awsiam.PolicyStatement{
					awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
						Effect:    awsiam.Effect_ALLOW,
						Actions:   jsii.Strings("sts:AssumeRole"),
						Resources: jsii.Strings("*"),
					}),
				},
			}),
		},
	})

	return stack
}
