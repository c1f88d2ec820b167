package cmd

import (
	"fmt"
	"os"

	"backend-infra/internal/stacks"

	"github.com/aws/jsii-runtime-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var synthOutdir string

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "CDKアプリを合成してクラウドアセンブリを出力するコマンド",
	Long: `選択されたスタックを構築し、CloudFormationテンプレートを含むクラウドアセンブリを出力します。
cdk.json の app から呼び出されます。出力先は --outdir、CDK_OUTDIR、cdk.out の順に決まります。

例:
  ` + AppName + ` synth
  PREFIX=stg ` + AppName + ` synth --stacks backend,iam-demo --outdir /tmp/cdk.out`,
	Annotations: map[string]string{annotationNoAws: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer jsii.Close()

		log.Debug().Strs("stacks", stackKindStrings()).Msg("synthesizing")
		assembly, _, err := stacks.Synth(settings, synthOutdir)
		if err != nil {
			return fmt.Errorf("❌ 合成エラー: %w", err)
		}

		for _, stack := range *assembly.Stacks() {
			fmt.Fprintf(os.Stderr, "✅ %s\n", *stack.StackName())
		}
		fmt.Fprintf(os.Stderr, "📦 クラウドアセンブリ: %s\n", *assembly.Directory())
		return nil
	},
}

func stackKindStrings() []string {
	kinds := make([]string, 0, len(settings.Stacks))
	for _, k := range settings.Stacks {
		kinds = append(kinds, string(k))
	}
	return kinds
}

func init() {
	RootCmd.AddCommand(synthCmd)
	synthCmd.Flags().StringVarP(&synthOutdir, "outdir", "o", "", "クラウドアセンブリの出力先")
}
