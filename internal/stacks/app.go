// Package stacks はCDKのスタック定義とアプリの組み立てを行う
package stacks

import (
	"errors"
	"fmt"

	"backend-infra/internal/config"
	"backend-infra/internal/naming"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/cxapi"
	"github.com/aws/jsii-runtime-go"
)

// ErrSynthesis はスタック構築中にCDKが例外を送出したことを示す
var ErrSynthesis = errors.New("CDKスタックの構築に失敗しました")

// Build は選択されたスタックを固定の順序でアプリに追加する
// CDK内部の例外（jsiiのpanic）はエラーとして返す
func Build(app awscdk.App, s *config.Settings) (built *Stacks, err error) {
	if err := config.ValidatePrefix(s.Prefix); err != nil {
		return nil, err
	}

	built = &Stacks{}
	current := ""
	defer func() {
		if r := recover(); r != nil {
			built = nil
			err = fmt.Errorf("%w (%s): %v", ErrSynthesis, current, r)
		}
	}()

	envProps := awscdk.StackProps{Env: env(s)}
	prefix := s.Prefix

	if s.Has(config.StackBackend) {
		current = naming.BackendStackId(prefix)
		props := envProps
		props.Tags = jsiiTags(s.Tags)
		built.Backend = NewBackendInfraStack(app, current, &BackendInfraStackProps{
			StackProps: props,
			Prefix:     prefix,
		})
	}

	if s.Has(config.StackEc2Test) {
		current = naming.Ec2TestStackId(prefix)
		props := envProps
		built.Ec2Test = NewEc2TestStack(app, current, &props)
	}

	if s.Has(config.StackIamDemo) {
		current = naming.IamDemoStackId(prefix)
		built.IamDemo = NewIamDemoStack(app, current, &IamDemoStackProps{
			StackProps: envProps,
			Prefix:     prefix,
		})
	}

	if s.Has(config.StackS3Bucket) {
		current = naming.S3BucketStackId(prefix)
		props := envProps
		built.S3Bucket = NewS3BucketStack(app, current, &props)
	}

	if s.Has(config.StackAsyncWorker) {
		current = naming.AsyncWorkerStackId(prefix)
		props := envProps
		built.AsyncWorker = NewAsyncWorkerStack(app, current, &props)
	}

	return built, nil
}

// Synth は新しいアプリを作成してスタックを構築し、クラウドアセンブリを出力する
// outdir が空の場合はCDKの既定（CDK_OUTDIR または cdk.out）に従う
func Synth(s *config.Settings, outdir string) (assembly cxapi.CloudAssembly, built *Stacks, err error) {
	if err := config.ValidatePrefix(s.Prefix); err != nil {
		return nil, nil, err
	}

	var props *awscdk.AppProps
	if outdir != "" {
		props = &awscdk.AppProps{Outdir: jsii.String(outdir)}
	}
	app := awscdk.NewApp(props)

	built, err = Build(app, s)
	if err != nil {
		return nil, nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			assembly, built = nil, nil
			err = fmt.Errorf("%w: %v", ErrSynthesis, r)
		}
	}()
	return app.Synth(nil), built, nil
}

// env はスタックのデプロイ先環境を返す
// アカウントが未指定の場合は環境非依存のスタックになる
func env(s *config.Settings) *awscdk.Environment {
	e := &awscdk.Environment{Region: jsii.String(s.Region)}
	if s.Account != "" {
		e.Account = jsii.String(s.Account)
	}
	return e
}

func jsiiTags(tags map[string]string) *map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]*string, len(tags))
	for k, v := range tags {
		m[k] = jsii.String(v)
	}
	return &m
}
