// Package logging は診断ログ（stderr）の設定を行う
// コマンドの結果表示は標準出力に fmt で出し、ここでは扱わない
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup はグローバルロガーをコンソール出力で初期化する
func Setup(debug bool) {
	SetupWithWriter(debug, os.Stderr)
}

// SetupWithWriter は出力先を指定してグローバルロガーを初期化する
func SetupWithWriter(debug bool, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: w != os.Stderr})
}
