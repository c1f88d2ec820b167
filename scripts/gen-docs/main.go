// gen-docs はコマンドのMarkdownドキュメントを docs/ に生成する
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"backend-infra/cmd"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const docsDir = "./docs"

func main() {
	if err := os.RemoveAll(docsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to clean docs directory")
	}
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create docs directory")
	}

	cmd.RootCmd.DisableAutoGenTag = true

	// ルートコマンドは docs/README.md
	if err := writeMarkdown(filepath.Join(docsDir, "README.md"), cmd.RootCmd); err != nil {
		log.Fatal().Err(err).Msg("failed to generate root documentation")
	}

	count := 1
	for _, sub := range cmd.RootCmd.Commands() {
		if !sub.IsAvailableCommand() || sub.IsAdditionalHelpTopicCommand() {
			continue
		}
		commands := []*cobra.Command{sub}
		for _, child := range sub.Commands() {
			if child.IsAvailableCommand() {
				commands = append(commands, child)
			}
		}
		if err := writeMarkdown(filepath.Join(docsDir, sub.Name()+".md"), commands...); err != nil {
			log.Error().Err(err).Str("command", sub.Name()).Msg("failed to generate documentation")
			continue
		}
		count++
	}

	fmt.Printf("✅ Documentation generated in %s (%d files)\n", docsDir, count)
}

// writeMarkdown は複数のコマンドのドキュメントを1つのファイルにまとめて書き出す
func writeMarkdown(filename string, commands ...*cobra.Command) error {
	var content strings.Builder
	for i, c := range commands {
		if i > 0 {
			content.WriteString("\n---\n\n")
		}
		buf := new(bytes.Buffer)
		if err := doc.GenMarkdownCustom(c, buf, linkHandler); err != nil {
			return fmt.Errorf("failed to generate markdown for %s: %w", c.CommandPath(), err)
		}
		content.WriteString(buf.String())
	}
	return os.WriteFile(filename, []byte(content.String()), 0o644)
}

// linkHandler は cobra のファイル名をこのディレクトリ構成のリンクに変換する
// backend-infra.md → README.md, backend-infra_cfn.md → cfn.md, backend-infra_cfn_ls.md → cfn.md#backend-infra-cfn-ls
func linkHandler(name string) string {
	base := strings.TrimSuffix(name, ".md")
	parts := strings.Split(base, "_")
	switch {
	case len(parts) == 1:
		return "README.md"
	case len(parts) == 2:
		return parts[1] + ".md"
	default:
		return parts[1] + ".md#" + strings.ReplaceAll(base, "_", "-")
	}
}
